package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/pkg/contracts/domain"
)

func record(brand, ticker, industry string, date string, close float64, volume int64) domain.PriceRecord {
	d, _ := time.Parse("2006-01-02", date)
	r := domain.PriceRecord{
		Date:        d,
		Close:       close,
		Volume:      volume,
		BrandName:   brand,
		Ticker:      ticker,
		IndustryTag: industry,
	}
	r.DeriveCalendar()
	return r
}

func TestSelectors_Clamp(t *testing.T) {
	tests := []struct {
		name string
		in   Selectors
		want Selectors
	}{
		{"zero values get defaults", Selectors{Month: "2023-05"},
			Selectors{Month: "2023-05", Industry: "All", TopK: 10, AnimN: 5}},
		{"low values clamp up", Selectors{Month: "2023-05", TopK: 1, AnimN: 1},
			Selectors{Month: "2023-05", Industry: "All", TopK: 5, AnimN: 2}},
		{"high values clamp down", Selectors{Month: "2023-05", TopK: 99, AnimN: 99},
			Selectors{Month: "2023-05", Industry: "All", TopK: 20, AnimN: 10}},
		{"in-range values survive", Selectors{Month: "2023-05", Industry: "Tech", TopK: 7, AnimN: 3},
			Selectors{Month: "2023-05", Industry: "Tech", TopK: 7, AnimN: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Clamp()
			assert.Equal(t, tt.want, tt.in)
		})
	}
}

func TestFilterMonth(t *testing.T) {
	records := []domain.PriceRecord{
		record("apple", "AAPL", "Technology", "2023-05-01", 10, 100),
		record("apple", "AAPL", "Technology", "2023-06-01", 11, 100),
		record("coca-cola", "KO", "Food & Beverage", "2023-05-02", 20, 100),
	}

	assert.Len(t, FilterMonth(records, "2023-05", "All"), 2)
	assert.Len(t, FilterMonth(records, "2023-05", ""), 2)
	assert.Len(t, FilterMonth(records, "2023-05", "Technology"), 1)
	assert.Len(t, FilterMonth(records, "2023-06", "All"), 1)
	assert.Empty(t, FilterMonth(records, "2024-01", "All"))
	assert.Empty(t, FilterMonth(records, "2023-05", "Mining"))
}

func TestCompanyAverages_GroupMean(t *testing.T) {
	rows := []domain.PriceRecord{
		record("apple", "AAPL", "Technology", "2023-05-01", 10, 0),
		record("apple", "AAPL", "Technology", "2023-05-02", 20, 0),
		record("apple", "AAPL", "Technology", "2023-05-03", 30, 0),
	}

	averages := CompanyAverages(rows)
	require.Len(t, averages, 1)
	assert.InDelta(t, 20.0, averages[0].AvgClose, 1e-9)
	assert.Equal(t, "apple", averages[0].BrandName)
}

func TestTopBottom_ThreeCompaniesK2(t *testing.T) {
	rows := []domain.PriceRecord{
		record("a", "A", "T", "2023-05-01", 100, 0),
		record("b", "B", "T", "2023-05-01", 50, 0),
		record("c", "C", "T", "2023-05-01", 75, 0),
	}

	averages := CompanyAverages(rows)

	top := TopCompanies(averages, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].BrandName)
	assert.Equal(t, "c", top[1].BrandName)

	bottom := BottomCompanies(averages, 2)
	require.Len(t, bottom, 2)
	assert.Equal(t, "b", bottom[0].BrandName)
	assert.Equal(t, "c", bottom[1].BrandName)
}

func TestTopCompanies_KLargerThanInput(t *testing.T) {
	averages := CompanyAverages([]domain.PriceRecord{
		record("a", "A", "T", "2023-05-01", 100, 0),
	})
	assert.Len(t, TopCompanies(averages, 10), 1)
}

func TestDailyAverages(t *testing.T) {
	rows := []domain.PriceRecord{
		record("a", "A", "T", "2023-05-02", 10, 0),
		record("b", "B", "T", "2023-05-02", 30, 0),
		record("a", "A", "T", "2023-05-01", 5, 0),
	}

	daily := DailyAverages(rows)
	require.Len(t, daily, 2)
	assert.Equal(t, 1, daily[0].Day)
	assert.InDelta(t, 5.0, daily[0].AvgClose, 1e-9)
	assert.Equal(t, 2, daily[1].Day)
	assert.InDelta(t, 20.0, daily[1].AvgClose, 1e-9)
}

func TestTrendPercent(t *testing.T) {
	rows := []domain.PriceRecord{
		record("a", "A", "T", "2023-05-01", 100, 0),
		record("a", "A", "T", "2023-05-31", 110, 0),
	}

	pct := TrendPercent(rows)
	require.NotNil(t, pct)
	assert.InDelta(t, 10.0, *pct, 1e-9)
}

func TestTrendPercent_SingleDateIsNil(t *testing.T) {
	rows := []domain.PriceRecord{
		record("a", "A", "T", "2023-05-01", 100, 0),
		record("b", "B", "T", "2023-05-01", 200, 0),
	}
	assert.Nil(t, TrendPercent(rows))
}

func TestTrendPercent_ZeroFirstMeanIsNil(t *testing.T) {
	rows := []domain.PriceRecord{
		record("a", "A", "T", "2023-05-01", 0, 0),
		record("a", "A", "T", "2023-05-02", 10, 0),
	}
	assert.Nil(t, TrendPercent(rows))
}

func TestMetrics(t *testing.T) {
	rows := []domain.PriceRecord{
		record("a", "A", "T", "2023-05-01", 10, 100),
		record("a", "A", "T", "2023-05-02", 20, 200),
		record("b", "B", "T", "2023-05-01", 30, 300),
	}

	m := Metrics(rows, CompanyAverages(rows))
	assert.Equal(t, 2, m.CompanyCount)
	assert.InDelta(t, 20.0, m.AvgClose, 1e-9)
	assert.Equal(t, int64(600), m.TotalVolume)
	require.NotNil(t, m.TrendPercent)
}

func TestAnimationSeries_OrderedByDateThenRank(t *testing.T) {
	rows := []domain.PriceRecord{
		record("low", "L", "T", "2023-05-01", 10, 0),
		record("high", "H", "T", "2023-05-01", 100, 0),
		record("low", "L", "T", "2023-05-02", 11, 0),
		record("high", "H", "T", "2023-05-02", 101, 0),
		record("mid", "M", "T", "2023-05-01", 50, 0),
	}

	series := AnimationSeries(rows, CompanyAverages(rows), 2)
	require.Len(t, series, 4)
	// Both dates, top-ranked company first within each date.
	assert.Equal(t, "2023-05-01", series[0].Date)
	assert.Equal(t, "high", series[0].BrandName)
	assert.Equal(t, "mid", series[1].BrandName)
	assert.Equal(t, "2023-05-02", series[2].Date)
	assert.Equal(t, "high", series[2].BrandName)
}

func TestMapMarkers_SkipsMissingCoordinates(t *testing.T) {
	lat, lon := 37.33, -122.03
	top := []domain.CompanyAverage{
		{BrandName: "located", Ticker: "L", AvgClose: 10, Lat: &lat, Lon: &lon},
		{BrandName: "nowhere", Ticker: "N", AvgClose: 9},
	}

	markers := MapMarkers(top)
	require.Len(t, markers, 1)
	assert.Equal(t, "located", markers[0].BrandName)
	assert.Equal(t, lat, markers[0].Lat)
}

func TestEngine_Render(t *testing.T) {
	engine := NewEngine(nil)
	records := []domain.PriceRecord{
		record("a", "A", "Technology", "2023-05-01", 10, 100),
		record("a", "A", "Technology", "2023-05-02", 12, 100),
		record("b", "B", "Food & Beverage", "2023-05-01", 20, 100),
	}

	vm, err := engine.Render(context.Background(), records, Selectors{Month: "2023-05"})
	require.NoError(t, err)
	assert.Equal(t, 3, vm.RowCount)
	assert.Equal(t, 2, vm.Metrics.CompanyCount)
	assert.Len(t, vm.Daily, 2)
	assert.Len(t, vm.SampleRows, 3)

	// Industry filter narrows the window.
	vm, err = engine.Render(context.Background(), records, Selectors{Month: "2023-05", Industry: "Technology"})
	require.NoError(t, err)
	assert.Equal(t, 2, vm.RowCount)
	assert.Equal(t, 1, vm.Metrics.CompanyCount)
}

func TestEngine_Render_EmptyFilter(t *testing.T) {
	engine := NewEngine(nil)
	records := []domain.PriceRecord{
		record("a", "A", "Technology", "2023-05-01", 10, 100),
	}

	_, err := engine.Render(context.Background(), records, Selectors{Month: "2024-01"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRowsForFilter)
}
