package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"stockboard/internal/analytics"
	"stockboard/internal/config"
	"stockboard/internal/dataprocessing"
	"stockboard/internal/exporter"
	"stockboard/internal/infrastructure"
	"stockboard/internal/sampledata"
	"stockboard/internal/validation"
	"stockboard/pkg/contracts/domain"
)

// DashboardService owns the active price table and answers every
// dashboard query against an immutable snapshot of it. Table
// replacement (upload, sample reset) swaps the slice wholesale under
// the write lock; renders take the read lock only long enough to grab
// the snapshot.
type DashboardService struct {
	mu       sync.RWMutex
	records  []domain.PriceRecord
	source   string
	loadedAt time.Time

	loader         *dataprocessing.Loader
	engine         *analytics.Engine
	writer         *exporter.Writer
	validator      *validation.FileValidator
	logger         *slog.Logger
	maxUploadBytes int64

	metricsMu sync.RWMutex
	metrics   *infrastructure.BusinessMetrics
}

// NewDashboardService creates the service and seeds it with the
// synthetic sample table. If cfg.Dashboard.DataFile names a readable
// table it is preloaded through the same path as an upload; failures
// there are logged and leave the sample table active.
func NewDashboardService(cfg *config.Config, logger *slog.Logger) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "dashboard_service")

	sampleTable := buildSampleTable(cfg.Dashboard.SampleSeed)
	sample := func() []domain.PriceRecord { return sampleTable }

	s := &DashboardService{
		loader:         dataprocessing.NewLoader(logger, sample),
		engine:         analytics.NewEngine(logger),
		writer:         exporter.NewWriter(logger),
		validator:      validation.NewFileValidator(logger),
		logger:         logger,
		maxUploadBytes: cfg.Dashboard.MaxUploadBytes,
	}

	ctx := context.Background()
	result := s.loader.LoadSample(ctx)
	s.swapTable(ctx, result.Records, result.Source)

	if cfg.Dashboard.DataFile != "" {
		if err := s.preloadDataFile(ctx, cfg.Dashboard.DataFile); err != nil {
			logger.Warn("data file preload failed, keeping sample table",
				slog.String("path", cfg.Dashboard.DataFile),
				slog.String("error", err.Error()))
		}
	}

	return s, nil
}

// buildSampleTable generates the synthetic table once per service. A
// nonzero seed makes the table reproducible across restarts.
func buildSampleTable(seed int64) []domain.PriceRecord {
	if seed != 0 {
		return sampledata.Generate(rand.New(rand.NewSource(seed)))
	}
	return sampledata.Table()
}

// SetMetrics wires the OTel business metrics after provider startup.
func (s *DashboardService) SetMetrics(m *infrastructure.BusinessMetrics) {
	s.metricsMu.Lock()
	s.metrics = m
	s.metricsMu.Unlock()
}

func (s *DashboardService) businessMetrics() *infrastructure.BusinessMetrics {
	s.metricsMu.RLock()
	defer s.metricsMu.RUnlock()
	return s.metrics
}

// Dashboard renders the full view model for one selector combination.
// Returns analytics.ErrNoRowsForFilter (wrapped) when the month and
// industry match no rows.
func (s *DashboardService) Dashboard(ctx context.Context, sel analytics.Selectors) (*domain.ViewModel, error) {
	records := s.snapshot()

	start := time.Now()
	vm, err := s.engine.Render(ctx, records, sel)
	duration := time.Since(start)

	empty := errors.Is(err, analytics.ErrNoRowsForFilter)
	infrastructure.RecordRenderMetrics(ctx, s.businessMetrics(), sel.Month, sel.Industry, duration, empty)

	if err != nil {
		return nil, err
	}
	return vm, nil
}

// Months returns the distinct month strings of the active table, newest
// first. A fresh table always has at least one month.
func (s *DashboardService) Months(ctx context.Context) []string {
	return dataprocessing.Months(s.snapshot())
}

// Industries returns "All" plus the distinct industry tags ascending.
func (s *DashboardService) Industries(ctx context.Context) []string {
	return dataprocessing.Industries(s.snapshot())
}

// Info describes the active dataset.
func (s *DashboardService) Info(ctx context.Context) domain.DatasetInfo {
	s.mu.RLock()
	records := s.records
	source := s.source
	s.mu.RUnlock()

	info := domain.DatasetInfo{
		Source:   source,
		RowCount: len(records),
		Months:   len(dataprocessing.Months(records)),
	}

	first, last := dataprocessing.DateRange(records)
	if !first.IsZero() {
		info.FirstDate = first.Format("2006-01-02")
	}
	if !last.IsZero() {
		info.LastDate = last.Format("2006-01-02")
	}

	return info
}

// Upload replaces the active table with an uploaded file. A structurally
// unparseable file is rejected outright; a parseable file missing
// required columns falls back to the sample table and reports a warning
// in the result, matching the loader's contract.
func (s *DashboardService) Upload(ctx context.Context, r io.Reader, filename string, size int64) (*dataprocessing.LoadResult, error) {
	if _, err := s.validator.ValidateUpload(filename, size, s.maxUploadBytes); err != nil {
		return nil, err
	}

	body := r
	if s.maxUploadBytes > 0 {
		// Guard against lying Content-Length headers.
		body = io.LimitReader(r, s.maxUploadBytes+1)
	}

	result, err := s.loader.Load(ctx, body, filename)
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrDatasetEmpty
	}

	s.swapTable(ctx, result.Records, result.Source)
	infrastructure.RecordUploadMetrics(ctx, s.businessMetrics(), size, result.Fallback)

	s.logger.InfoContext(ctx, "dataset replaced",
		slog.String("source", result.Source),
		slog.Int("row_count", len(result.Records)),
		slog.Bool("fallback", result.Fallback))

	return result, nil
}

// UseSample resets the active table to the synthetic sample.
func (s *DashboardService) UseSample(ctx context.Context) *dataprocessing.LoadResult {
	result := s.loader.LoadSample(ctx)
	s.swapTable(ctx, result.Records, result.Source)

	s.logger.InfoContext(ctx, "dataset reset to sample",
		slog.Int("row_count", len(result.Records)))

	return result
}

// ExportCSV streams the month/industry filtered rows as CSV and returns
// the download filename and row count. An empty filter selection is an
// error, mirroring the dashboard render path.
func (s *DashboardService) ExportCSV(ctx context.Context, month, industry string, out io.Writer) (string, int, error) {
	if industry == "" {
		industry = analytics.IndustryAll
	}

	rows := analytics.FilterMonth(s.snapshot(), month, industry)
	if len(rows) == 0 {
		return "", 0, fmt.Errorf("%w: month=%s industry=%s", analytics.ErrNoRowsForFilter, month, industry)
	}

	counter := &countingWriter{w: out}
	if err := s.writer.Write(ctx, counter, rows); err != nil {
		return "", 0, fmt.Errorf("export csv: %w", err)
	}

	if m := s.businessMetrics(); m != nil {
		m.ExportsTotal.Add(ctx, 1)
		m.ExportBytes.Add(ctx, counter.n)
	}

	return exporter.Filename(month), len(rows), nil
}

// snapshot returns the current table slice. Callers must treat it as
// read-only; replacement never mutates a published slice.
func (s *DashboardService) snapshot() []domain.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Source reports where the active table came from ("sample" or the
// upload filename) and when it was loaded.
func (s *DashboardService) Source() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, s.loadedAt
}

func (s *DashboardService) swapTable(ctx context.Context, records []domain.PriceRecord, source string) {
	s.mu.Lock()
	previous := len(s.records)
	s.records = records
	s.source = source
	s.loadedAt = time.Now()
	s.mu.Unlock()

	infrastructure.RecordDatasetRowsChange(ctx, s.businessMetrics(), int64(len(records)-previous))
}

// preloadDataFile loads a configured local table at startup. The boot
// path has no request ID, so it gets a trace ID of its own.
func (s *DashboardService) preloadDataFile(ctx context.Context, path string) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	if _, err := s.validator.ValidateDataFile(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	result, err := s.loader.Load(ctx, file, path)
	if err != nil {
		return err
	}
	if result.Fallback {
		return fmt.Errorf("data file rejected: %s", result.Warning)
	}

	s.swapTable(ctx, result.Records, result.Source)
	return nil
}

// countingWriter counts bytes passed through to the wrapped writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
