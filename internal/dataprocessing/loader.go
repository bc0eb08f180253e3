package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"stockboard/pkg/contracts/domain"
)

// Required external columns. A table missing any of these is discarded
// whole and replaced by the synthetic table; there is no partial-row
// rejection.
var requiredColumns = []string{"close", "brand_name", "ticker"}

// dateColumnCandidates are tried in priority order when searching for the
// date-like column, case-insensitively. First match wins.
var dateColumnCandidates = []string{"date", "datetime", "day"}

// dateLayouts are tried in fixed order when coercing a date cell.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// LoadResult carries the normalized table plus any non-fatal warning
// raised while loading.
type LoadResult struct {
	Records  []domain.PriceRecord
	Source   string
	Warning  string
	Fallback bool
}

// Loader parses uploaded tabular files into the canonical price table,
// falling back to the sample table when the upload cannot serve.
type Loader struct {
	logger *slog.Logger
	sample func() []domain.PriceRecord
}

// NewLoader creates a loader. The sample function supplies the synthetic
// fallback table; memoization is the supplier's concern.
func NewLoader(logger *slog.Logger, sample func() []domain.PriceRecord) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
		sample: sample,
	}
}

// LoadSample returns the normalized synthetic table.
func (l *Loader) LoadSample(ctx context.Context) *LoadResult {
	records := cloneRecords(l.sample())
	Normalize(records)

	l.logger.InfoContext(ctx, "loaded sample table",
		slog.Int("row_count", len(records)))

	return &LoadResult{Records: records, Source: "sample"}
}

// Load parses the named upload. A parse failure of the byte stream is
// terminal and returns an error with no table. Missing required columns
// are non-fatal: the whole table is replaced by the sample table and the
// result carries a warning.
func (l *Loader) Load(ctx context.Context, r io.Reader, filename string) (*LoadResult, error) {
	header, rows, err := l.parseTable(r, filename)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to parse upload",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	records, missing := buildRecords(header, rows)
	if len(missing) > 0 {
		warning := fmt.Sprintf("uploaded file missing columns: %s; using sample data", strings.Join(missing, ", "))
		l.logger.WarnContext(ctx, "upload missing required columns, substituting sample table",
			slog.String("filename", filename),
			slog.Any("missing", missing))

		result := l.LoadSample(ctx)
		result.Warning = warning
		result.Fallback = true
		return result, nil
	}

	Normalize(records)

	l.logger.InfoContext(ctx, "loaded uploaded table",
		slog.String("filename", filename),
		slog.Int("row_count", len(records)))

	return &LoadResult{Records: records, Source: "upload:" + filename}, nil
}

// parseTable reads the raw header and data rows from a CSV or XLSX stream.
// The extension decides the format; anything that is not .xlsx is treated
// as delimited text.
func (l *Loader) parseTable(r io.Reader, filename string) ([]string, [][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return parseXLSX(r)
	}
	return parseCSV(r)
}

// parseCSV reads delimited text, tolerating a UTF-8 BOM and ragged rows.
func parseCSV(r io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	return all[0], all[1:], nil
}

// parseXLSX reads the first sheet of an Excel workbook.
func parseXLSX(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	return rows[0], rows[1:], nil
}

// buildRecords maps raw rows onto price records using a header-driven
// column map. It returns the list of missing required columns instead of
// records when the table cannot serve.
func buildRecords(header []string, rows [][]string) ([]domain.PriceRecord, []string) {
	columnMap := mapColumns(header)

	var missing []string
	if _, ok := columnMap["date"]; !ok {
		missing = append(missing, "Date")
	}
	for _, col := range requiredColumns {
		if _, ok := columnMap[col]; !ok {
			missing = append(missing, canonicalName(col))
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	records := make([]domain.PriceRecord, 0, len(rows))
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}

		getString := func(col string) string {
			if idx, ok := columnMap[col]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		parseFloat := func(col string) float64 {
			v, _ := strconv.ParseFloat(strings.ReplaceAll(getString(col), ",", ""), 64)
			return v
		}
		parseInt := func(col string) int64 {
			raw := strings.ReplaceAll(getString(col), ",", "")
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return v
			}
			// Volume exported as a float (e.g. "1.2e+07") still counts.
			f, _ := strconv.ParseFloat(raw, 64)
			return int64(f)
		}

		record := domain.PriceRecord{
			// Unparseable dates become the zero time, a missing marker
			// rather than a failure.
			Date:        parseDate(getString("date")),
			Open:        parseFloat("open"),
			High:        parseFloat("high"),
			Low:         parseFloat("low"),
			Close:       parseFloat("close"),
			Volume:      parseInt("volume"),
			Dividends:   parseFloat("dividends"),
			StockSplits: parseFloat("stock_splits"),
			BrandName:   getString("brand_name"),
			Ticker:      getString("ticker"),
			IndustryTag: getString("industry_tag"),
			Country:     getString("country"),
		}

		if raw := getString("lat"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				record.Lat = &v
			}
		}
		if raw := getString("lon"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				record.Lon = &v
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// mapColumns builds a canonical-name -> column-index map from the header
// row. The date column is resolved through the ordered candidate list;
// all other columns match their canonical name case-insensitively.
func mapColumns(header []string) map[string]int {
	columnMap := make(map[string]int, len(header))

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, candidate := range dateColumnCandidates {
		for i, h := range normalized {
			if h == candidate {
				columnMap["date"] = i
				break
			}
		}
		if _, ok := columnMap["date"]; ok {
			break
		}
	}

	for i, h := range normalized {
		switch h {
		case "open":
			columnMap["open"] = i
		case "high":
			columnMap["high"] = i
		case "low":
			columnMap["low"] = i
		case "close":
			columnMap["close"] = i
		case "volume":
			columnMap["volume"] = i
		case "dividends":
			columnMap["dividends"] = i
		case "stock splits", "stock_splits":
			columnMap["stock_splits"] = i
		case "brand_name", "brand name":
			columnMap["brand_name"] = i
		case "ticker":
			columnMap["ticker"] = i
		case "industry_tag", "industry tag", "industry":
			columnMap["industry_tag"] = i
		case "country":
			columnMap["country"] = i
		case "lat", "latitude":
			columnMap["lat"] = i
		case "lon", "lng", "longitude":
			columnMap["lon"] = i
		}
	}

	return columnMap
}

func canonicalName(col string) string {
	switch col {
	case "close":
		return "Close"
	case "brand_name":
		return "Brand_Name"
	case "ticker":
		return "Ticker"
	default:
		return col
	}
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cloneRecords(records []domain.PriceRecord) []domain.PriceRecord {
	out := make([]domain.PriceRecord, len(records))
	copy(out, records)
	return out
}
