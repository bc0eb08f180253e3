package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/pkg/contracts/domain"
)

func day(date string) time.Time {
	d, _ := time.Parse("2006-01-02", date)
	return d
}

func TestNormalize_DerivesCalendarFields(t *testing.T) {
	records := []domain.PriceRecord{
		{Date: day("2023-05-17"), Close: 1},
		{Close: 2}, // zero date stays zeroed
	}

	Normalize(records)

	assert.Equal(t, 2023, records[0].Year)
	assert.Equal(t, 5, records[0].Month)
	assert.Equal(t, "2023-05", records[0].MonthStr)
	assert.Equal(t, 17, records[0].Day)
	assert.Empty(t, records[1].MonthStr)
}

func TestMonths_DescendingAndDistinct(t *testing.T) {
	records := []domain.PriceRecord{
		{Date: day("2023-05-01")},
		{Date: day("2023-07-01")},
		{Date: day("2023-05-20")},
		{Date: day("2024-01-02")},
		{}, // no date, no month
	}
	Normalize(records)

	assert.Equal(t, []string{"2024-01", "2023-07", "2023-05"}, Months(records))
}

func TestIndustries_AllFirstThenAscending(t *testing.T) {
	records := []domain.PriceRecord{
		{IndustryTag: "Technology"},
		{IndustryTag: "Apparel"},
		{IndustryTag: "Technology"},
		{IndustryTag: ""},
	}

	assert.Equal(t, []string{"All", "Apparel", "Technology"}, Industries(records))
}

func TestIndustries_EmptyTable(t *testing.T) {
	assert.Equal(t, []string{"All"}, Industries(nil))
}

func TestDateRange(t *testing.T) {
	records := []domain.PriceRecord{
		{Date: day("2023-05-10")},
		{Date: day("2023-04-01")},
		{Date: day("2023-06-30")},
		{},
	}

	first, last := DateRange(records)
	assert.Equal(t, day("2023-04-01"), first)
	assert.Equal(t, day("2023-06-30"), last)
}

func TestDateRange_EmptyTable(t *testing.T) {
	first, last := DateRange(nil)
	require.True(t, first.IsZero())
	require.True(t, last.IsZero())
}

func TestParseDate_Layouts(t *testing.T) {
	for _, raw := range []string{"2023-05-01", "2023/05/01", "05/01/2023", "2023-05-01 14:30:00"} {
		got := parseDate(raw)
		require.False(t, got.IsZero(), "layout for %q", raw)
		assert.Equal(t, "2023-05", got.Format("2006-01"))
	}

	assert.True(t, parseDate("").IsZero())
	assert.True(t, parseDate("May 1st 2023").IsZero())
}
