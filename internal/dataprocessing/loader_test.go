package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/pkg/contracts/domain"
)

func sampleTable() []domain.PriceRecord {
	d, _ := time.Parse("2006-01-02", "2024-01-15")
	return []domain.PriceRecord{
		{Date: d, Close: 42, BrandName: "sample-co", Ticker: "SMP", IndustryTag: "Technology"},
	}
}

func newTestLoader() *Loader {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewLoader(logger, sampleTable)
}

func TestLoad_ValidCSV(t *testing.T) {
	loader := newTestLoader()

	csv := strings.Join([]string{
		"Date,Open,High,Low,Close,Volume,Brand_Name,Ticker,Industry_Tag,Country",
		"2023-05-01,10,12,9,11,1000,apple,AAPL,Technology,USA",
		"2023-05-02,11,13,10,12.5,2000,apple,AAPL,Technology,USA",
	}, "\n")

	result, err := loader.Load(context.Background(), strings.NewReader(csv), "prices.csv")
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.Equal(t, "upload:prices.csv", result.Source)
	require.Len(t, result.Records, 2)

	r := result.Records[0]
	assert.Equal(t, "apple", r.BrandName)
	assert.Equal(t, "AAPL", r.Ticker)
	assert.Equal(t, 11.0, r.Close)
	assert.Equal(t, int64(1000), r.Volume)
	assert.Equal(t, "2023-05", r.MonthStr)
	assert.Equal(t, 1, r.Day)
}

func TestLoad_BOMAndRaggedRows(t *testing.T) {
	loader := newTestLoader()

	csv := "\xEF\xBB\xBFDate,Close,Brand_Name,Ticker\n" +
		"2023-05-01,11,apple,AAPL\n" +
		"2023-05-02,12,apple\n" + // short row
		"\n"

	result, err := loader.Load(context.Background(), strings.NewReader(csv), "prices.csv")
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "", result.Records[1].Ticker)
}

func TestLoad_MissingRequiredColumnsFallsBack(t *testing.T) {
	loader := newTestLoader()

	// Ticker and Brand_Name absent: whole table replaced by the sample.
	csv := "Date,Close\n2023-05-01,11\n"

	result, err := loader.Load(context.Background(), strings.NewReader(csv), "broken.csv")
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, "sample", result.Source)
	assert.Contains(t, result.Warning, "Brand_Name")
	assert.Contains(t, result.Warning, "Ticker")
	require.Len(t, result.Records, 1)
	assert.Equal(t, "sample-co", result.Records[0].BrandName)
}

func TestLoad_MalformedCSVIsTerminal(t *testing.T) {
	loader := newTestLoader()

	// Unclosed quote makes the stream structurally unparseable.
	csv := "Date,Close,Brand_Name,Ticker\n\"2023-05-01,11,apple,AAPL\n"

	_, err := loader.Load(context.Background(), strings.NewReader(csv), "bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestLoad_EmptyFileIsTerminal(t *testing.T) {
	loader := newTestLoader()

	_, err := loader.Load(context.Background(), strings.NewReader(""), "empty.csv")
	require.Error(t, err)
}

func TestLoad_AlternateDateColumnAndLayouts(t *testing.T) {
	loader := newTestLoader()

	csv := strings.Join([]string{
		"Datetime,Close,Brand_Name,Ticker",
		"2023/05/01,11,apple,AAPL",
		"05/02/2023,12,apple,AAPL",
		"not-a-date,13,apple,AAPL",
	}, "\n")

	result, err := loader.Load(context.Background(), strings.NewReader(csv), "prices.csv")
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "2023-05", result.Records[0].MonthStr)
	assert.Equal(t, "2023-05", result.Records[1].MonthStr)
	// Unparseable dates carry a zero time, not an error.
	assert.True(t, result.Records[2].Date.IsZero())
	assert.Empty(t, result.Records[2].MonthStr)
}

func TestLoad_ThousandsSeparatorsAndFloatVolume(t *testing.T) {
	loader := newTestLoader()

	csv := "Date,Close,Volume,Brand_Name,Ticker\n" +
		`2023-05-01,"1,234.5","1.2e+03",apple,AAPL` + "\n"

	result, err := loader.Load(context.Background(), strings.NewReader(csv), "prices.csv")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 1234.5, result.Records[0].Close)
	assert.Equal(t, int64(1200), result.Records[0].Volume)
}

func TestLoad_CoordinateColumns(t *testing.T) {
	loader := newTestLoader()

	csv := "Date,Close,Brand_Name,Ticker,lat,lon\n" +
		"2023-05-01,11,apple,AAPL,37.33,-122.03\n" +
		"2023-05-01,12,mystery,MYS,,\n"

	result, err := loader.Load(context.Background(), strings.NewReader(csv), "prices.csv")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	require.True(t, result.Records[0].HasLocation())
	assert.Equal(t, 37.33, *result.Records[0].Lat)
	assert.False(t, result.Records[1].HasLocation())
}

func TestLoadSample(t *testing.T) {
	loader := newTestLoader()

	result := loader.LoadSample(context.Background())
	assert.Equal(t, "sample", result.Source)
	assert.False(t, result.Fallback)
	require.Len(t, result.Records, 1)
	// Normalization runs on the sample too.
	assert.Equal(t, "2024-01", result.Records[0].MonthStr)
}

func TestMapColumns_CaseInsensitiveAliases(t *testing.T) {
	header := []string{"DATE", " close ", "Brand Name", "TICKER", "Industry", "Longitude"}
	m := mapColumns(header)

	assert.Equal(t, 0, m["date"])
	assert.Equal(t, 1, m["close"])
	assert.Equal(t, 2, m["brand_name"])
	assert.Equal(t, 3, m["ticker"])
	assert.Equal(t, 4, m["industry_tag"])
	assert.Equal(t, 5, m["lon"])
}
