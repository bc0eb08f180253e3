package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDefaultOTelConfig(t *testing.T) {
	cfg := DefaultOTelConfig()

	assert.Equal(t, "stockboard", cfg.ServiceName)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableTracing)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.Equal(t, 1.0, cfg.SampleRatio)
}

func TestInitializeOTel_MetricsOnly(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "stockboard-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "stockboard-test",
		ServiceVersion: "test",
		Environment:    "test",
		MetricExporter: "statsd",
		EnableMetrics:  true,
	}

	_, err := InitializeOTel(cfg, testLogger())
	assert.Error(t, err)
}

func TestCreateBusinessMetrics(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "stockboard-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
	}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()

	// Instruments accept recordings without panicking.
	metrics.HTTPRequestsTotal.Add(ctx, 1)
	RecordRenderMetrics(ctx, metrics, "2024-10", "All", 5*time.Millisecond, false)
	RecordRenderMetrics(ctx, metrics, "2024-10", "Technology", time.Millisecond, true)
	RecordUploadMetrics(ctx, metrics, 2048, true)
	RecordDatasetRowsChange(ctx, metrics, 465)
}

func TestRecordMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	RecordRenderMetrics(ctx, nil, "2024-10", "All", time.Millisecond, false)
	RecordUploadMetrics(ctx, nil, 100, false)
	RecordDatasetRowsChange(ctx, nil, 1)
}

func TestSystemMetricsCollector(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "stockboard-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
	}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	collector, err := NewSystemMetricsCollector(providers.Meter, time.Minute)
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	require.NotNil(t, stats)
	assert.Greater(t, stats.GoRoutines, int64(0))
	assert.Greater(t, stats.MemoryUsage, int64(0))
	assert.Greater(t, stats.CPUCount, 0)
}
