package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/internal/config"
)

func TestHealthService_Check(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dashboard, err := NewDashboardService(&cfg, logger)
	require.NoError(t, err)

	hs := NewHealthService("1.0.0-test", "2026-08-26", dashboard, logger)

	status := hs.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0-test", status.Version)
	require.NotNil(t, status.Dataset)
	assert.Greater(t, status.Dataset.RowCount, 0)
	assert.NotEmpty(t, status.Runtime)
}

func TestHealthService_Ready(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dashboard, err := NewDashboardService(&cfg, logger)
	require.NoError(t, err)

	hs := NewHealthService("test", "", dashboard, logger)
	assert.NoError(t, hs.Ready(context.Background()))

	missing := NewHealthService("test", "", nil, logger)
	assert.Error(t, missing.Ready(context.Background()))
}
