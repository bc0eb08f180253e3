package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"stockboard/pkg/contracts/domain"
)

// ErrNoRowsForFilter is returned when the month/industry selection matches
// no rows. The engine halts before producing any aggregate; there is no
// empty-chart rendering.
var ErrNoRowsForFilter = errors.New("no rows for selected month and industry")

// Selector bounds, mirrored by the UI sliders.
const (
	MinTopK     = 5
	MaxTopK     = 20
	DefaultTopK = 10

	MinAnimN     = 2
	MaxAnimN     = 10
	DefaultAnimN = 5

	// MaxSampleRows caps the data-explorer table.
	MaxSampleRows = 200

	// MaxMapMarkers caps the marker map regardless of K.
	MaxMapMarkers = 10
)

// IndustryAll is the industry selector value that keeps every row.
const IndustryAll = "All"

// Selectors are the three user-facing filter inputs plus the animation
// width. Zero values are clamped to defaults by Clamp.
type Selectors struct {
	Month    string `json:"month" validate:"required"`
	Industry string `json:"industry"`
	TopK     int    `json:"top_k" validate:"omitempty,min=5,max=20"`
	AnimN    int    `json:"anim_n" validate:"omitempty,min=2,max=10"`
}

// Clamp forces the selectors into their documented ranges and defaults
// the industry to All.
func (s *Selectors) Clamp() {
	if s.Industry == "" {
		s.Industry = IndustryAll
	}
	switch {
	case s.TopK == 0:
		s.TopK = DefaultTopK
	case s.TopK < MinTopK:
		s.TopK = MinTopK
	case s.TopK > MaxTopK:
		s.TopK = MaxTopK
	}
	switch {
	case s.AnimN == 0:
		s.AnimN = DefaultAnimN
	case s.AnimN < MinAnimN:
		s.AnimN = MinAnimN
	case s.AnimN > MaxAnimN:
		s.AnimN = MaxAnimN
	}
}

// Engine computes the dashboard view model from the normalized price
// table. Render is a pure function of (records, selectors); the engine
// itself carries only a logger.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an aggregation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "analytics"))}
}

// Render runs the full filter/aggregate pipeline for one selection.
func (e *Engine) Render(ctx context.Context, records []domain.PriceRecord, sel Selectors) (*domain.ViewModel, error) {
	sel.Clamp()

	monthRows := FilterMonth(records, sel.Month, sel.Industry)
	if len(monthRows) == 0 {
		e.logger.WarnContext(ctx, "empty filter window",
			slog.String("month", sel.Month),
			slog.String("industry", sel.Industry))
		return nil, fmt.Errorf("%w: month=%s industry=%s", ErrNoRowsForFilter, sel.Month, sel.Industry)
	}

	companyAvg := CompanyAverages(monthRows)
	top := TopCompanies(companyAvg, sel.TopK)
	bottom := BottomCompanies(companyAvg, sel.TopK)

	vm := &domain.ViewModel{
		Month:           sel.Month,
		Industry:        sel.Industry,
		TopK:            sel.TopK,
		AnimN:           sel.AnimN,
		Metrics:         Metrics(monthRows, companyAvg),
		Daily:           DailyAverages(monthRows),
		TopCompanies:    top,
		BottomCompanies: bottom,
		Markers:         MapMarkers(top),
		Animation:       AnimationSeries(monthRows, companyAvg, sel.AnimN),
		SampleRows:      sampleRows(monthRows),
		RowCount:        len(monthRows),
	}

	e.logger.InfoContext(ctx, "rendered view model",
		slog.String("month", sel.Month),
		slog.String("industry", sel.Industry),
		slog.Int("row_count", vm.RowCount),
		slog.Int("company_count", vm.Metrics.CompanyCount))

	return vm, nil
}

// FilterMonth selects the rows whose MonthStr equals month and, unless the
// industry is All (or empty), whose IndustryTag equals industry.
func FilterMonth(records []domain.PriceRecord, month, industry string) []domain.PriceRecord {
	var out []domain.PriceRecord
	for _, r := range records {
		if r.MonthStr != month {
			continue
		}
		if industry != "" && industry != IndustryAll && r.IndustryTag != industry {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CompanyAverages produces one row per distinct (Brand_Name, Ticker,
// Industry_Tag, Country) tuple present in the window, in first-seen order.
// avg_close is the arithmetic mean of Close; lat/lon come from the first
// row encountered for the company.
func CompanyAverages(rows []domain.PriceRecord) []domain.CompanyAverage {
	type accumulator struct {
		index int
		sum   float64
		count int
	}

	groups := make(map[domain.CompanyKey]*accumulator)
	var averages []domain.CompanyAverage

	for _, r := range rows {
		key := r.Key()
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{index: len(averages)}
			groups[key] = acc
			averages = append(averages, domain.CompanyAverage{
				BrandName:   r.BrandName,
				Ticker:      r.Ticker,
				IndustryTag: r.IndustryTag,
				Country:     r.Country,
				Lat:         r.Lat,
				Lon:         r.Lon,
			})
		}
		acc.sum += r.Close
		acc.count++
	}

	for _, acc := range groups {
		averages[acc.index].AvgClose = acc.sum / float64(acc.count)
	}

	return averages
}

// TopCompanies returns the k companies with the highest avg_close,
// descending. Ties keep the insertion order of the input table.
func TopCompanies(averages []domain.CompanyAverage, k int) []domain.CompanyAverage {
	sorted := make([]domain.CompanyAverage, len(averages))
	copy(sorted, averages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgClose > sorted[j].AvgClose
	})
	return head(sorted, k)
}

// BottomCompanies returns the k companies with the lowest avg_close,
// ascending. When the distinct-company count is <= k the result overlaps
// TopCompanies; that is allowed, not deduplicated.
func BottomCompanies(averages []domain.CompanyAverage, k int) []domain.CompanyAverage {
	sorted := make([]domain.CompanyAverage, len(averages))
	copy(sorted, averages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgClose < sorted[j].AvgClose
	})
	return head(sorted, k)
}

// DailyAverages computes the mean Close grouped by day-of-month,
// ascending by day.
func DailyAverages(rows []domain.PriceRecord) []domain.DailyAverage {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range rows {
		sums[r.Day] += r.Close
		counts[r.Day]++
	}

	days := make([]int, 0, len(sums))
	for day := range sums {
		days = append(days, day)
	}
	sort.Ints(days)

	daily := make([]domain.DailyAverage, 0, len(days))
	for _, day := range days {
		daily = append(daily, domain.DailyAverage{
			Day:      day,
			AvgClose: sums[day] / float64(counts[day]),
		})
	}
	return daily
}

// TrendPercent computes (last − first) / first × 100 over the per-date
// cross-company mean close. Returns nil when the window holds fewer than
// two distinct dates, or when the first mean is zero.
func TrendPercent(rows []domain.PriceRecord) *float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		key := r.Date.Format("2006-01-02")
		sums[key] += r.Close
		counts[key]++
	}
	if len(sums) < 2 {
		return nil
	}

	dates := make([]string, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	first := sums[dates[0]] / float64(counts[dates[0]])
	last := sums[dates[len(dates)-1]] / float64(counts[dates[len(dates)-1]])
	if first == 0 {
		return nil
	}

	pct := (last - first) / first * 100
	return &pct
}

// Metrics assembles the headline numbers: distinct brand count, mean Close
// over the window, total volume, and the market trend.
func Metrics(rows []domain.PriceRecord, averages []domain.CompanyAverage) domain.DashboardMetrics {
	brands := make(map[string]bool, len(averages))
	for _, a := range averages {
		brands[a.BrandName] = true
	}

	var closeSum float64
	var volume int64
	for _, r := range rows {
		closeSum += r.Close
		volume += r.Volume
	}

	mean := 0.0
	if len(rows) > 0 {
		mean = closeSum / float64(len(rows))
	}

	return domain.DashboardMetrics{
		CompanyCount: len(brands),
		AvgClose:     mean,
		TotalVolume:  volume,
		TrendPercent: TrendPercent(rows),
	}
}

// AnimationSeries computes, for the top n companies by avg_close, the
// per-day mean close across the window, ordered by date then company rank.
func AnimationSeries(rows []domain.PriceRecord, averages []domain.CompanyAverage, n int) []domain.AnimationPoint {
	ranked := TopCompanies(averages, n)

	rank := make(map[string]int, len(ranked))
	for i, c := range ranked {
		rank[c.BrandName] = i
	}

	type dayKey struct {
		date  string
		brand string
	}
	sums := make(map[dayKey]float64)
	counts := make(map[dayKey]int)
	for _, r := range rows {
		if _, ok := rank[r.BrandName]; !ok {
			continue
		}
		key := dayKey{date: r.Date.Format("2006-01-02"), brand: r.BrandName}
		sums[key] += r.Close
		counts[key]++
	}

	keys := make([]dayKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return rank[keys[i].brand] < rank[keys[j].brand]
	})

	series := make([]domain.AnimationPoint, 0, len(keys))
	for _, k := range keys {
		series = append(series, domain.AnimationPoint{
			Date:      k.date,
			BrandName: k.brand,
			AvgClose:  sums[k] / float64(counts[k]),
		})
	}
	return series
}

// MapMarkers places the leading companies with known coordinates on the
// map, capped at MaxMapMarkers.
func MapMarkers(top []domain.CompanyAverage) []domain.MapMarker {
	markers := make([]domain.MapMarker, 0, MaxMapMarkers)
	for _, c := range top {
		if len(markers) == MaxMapMarkers {
			break
		}
		if c.Lat == nil || c.Lon == nil {
			continue
		}
		markers = append(markers, domain.MapMarker{
			BrandName: c.BrandName,
			Ticker:    c.Ticker,
			AvgClose:  c.AvgClose,
			Lat:       *c.Lat,
			Lon:       *c.Lon,
		})
	}
	return markers
}

func sampleRows(rows []domain.PriceRecord) []domain.PriceRecord {
	n := len(rows)
	if n > MaxSampleRows {
		n = MaxSampleRows
	}
	out := make([]domain.PriceRecord, n)
	copy(out, rows[:n])
	return out
}

func head(averages []domain.CompanyAverage, k int) []domain.CompanyAverage {
	if k > len(averages) {
		k = len(averages)
	}
	return averages[:k]
}
