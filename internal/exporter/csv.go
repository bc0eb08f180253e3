package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"stockboard/pkg/contracts/domain"
)

// Header is the canonical 14-column external schema, the exact order the
// loader expects on import. Derived calendar fields are recomputed on
// import and never serialized.
var Header = []string{
	"Date", "Open", "High", "Low", "Close", "Volume",
	"Dividends", "Stock Splits", "Brand_Name", "Ticker",
	"Industry_Tag", "Country", "lat", "lon",
}

// Filename returns the download name for a filtered export, embedding the
// selected month string.
func Filename(month string) string {
	return fmt.Sprintf("stock_filtered_%s.csv", month)
}

// Writer serializes price records as comma-delimited UTF-8 text with a
// header row and no index column.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a CSV writer.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger.With(slog.String("component", "exporter"))}
}

// Write streams the records to out. The output round-trips through the
// loader: row count and Close values survive export/import unchanged.
func (w *Writer) Write(ctx context.Context, out io.Writer, records []domain.PriceRecord) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, record := range records {
		if err := cw.Write(recordRow(record)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	w.logger.InfoContext(ctx, "wrote csv export",
		slog.Int("record_count", len(records)))

	return nil
}

// WriteFile writes the records to a file on disk, creating parent
// directories as needed.
func (w *Writer) WriteFile(ctx context.Context, path string, records []domain.PriceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	w.logger.InfoContext(ctx, "writing csv file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	return w.Write(ctx, file, records)
}

// recordRow serializes one record in Header order.
func recordRow(r domain.PriceRecord) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		formatFloat(r.Open),
		formatFloat(r.High),
		formatFloat(r.Low),
		formatFloat(r.Close),
		formatInt(r.Volume),
		formatFloat(r.Dividends),
		formatFloat(r.StockSplits),
		r.BrandName,
		r.Ticker,
		r.IndustryTag,
		r.Country,
		formatOptFloat(r.Lat),
		formatOptFloat(r.Lon),
	}
}
