package http

import (
	"context"
	"io"

	"stockboard/internal/analytics"
	"stockboard/internal/dataprocessing"
	"stockboard/pkg/contracts/domain"
)

// DashboardServiceInterface is the read surface the dashboard handler
// needs. Satisfied by services.DashboardService.
type DashboardServiceInterface interface {
	Dashboard(ctx context.Context, sel analytics.Selectors) (*domain.ViewModel, error)
	Months(ctx context.Context) []string
	Industries(ctx context.Context) []string
	ExportCSV(ctx context.Context, month, industry string, out io.Writer) (string, int, error)
}

// DatasetServiceInterface is the write surface the dataset handler
// needs. Satisfied by services.DashboardService.
type DatasetServiceInterface interface {
	Upload(ctx context.Context, r io.Reader, filename string, size int64) (*dataprocessing.LoadResult, error)
	UseSample(ctx context.Context) *dataprocessing.LoadResult
	Info(ctx context.Context) domain.DatasetInfo
}
