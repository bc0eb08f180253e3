package sampledata

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"stockboard/pkg/contracts/domain"
)

// WindowDays is the number of consecutive calendar days generated per company.
const WindowDays = 31

// windowStart is the first day of the synthetic price window.
var windowStart = time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

var roster = []domain.Company{
	{BrandName: "Apple Inc.", Ticker: "AAPL", IndustryTag: "Technology", Country: "USA", Lat: 37.3318, Lon: -122.0296},
	{BrandName: "Microsoft Corp.", Ticker: "MSFT", IndustryTag: "Technology", Country: "USA", Lat: 47.6062, Lon: -122.3321},
	{BrandName: "Amazon.com Inc.", Ticker: "AMZN", IndustryTag: "Retail", Country: "USA", Lat: 47.6062, Lon: -122.3321},
	{BrandName: "Alphabet Inc.", Ticker: "GOOGL", IndustryTag: "Technology", Country: "USA", Lat: 37.4220, Lon: -122.0841},
	{BrandName: "Tesla Inc.", Ticker: "TSLA", IndustryTag: "Automotive", Country: "USA", Lat: 37.3947, Lon: -122.1498},
	{BrandName: "NVIDIA Corp.", Ticker: "NVDA", IndustryTag: "Technology", Country: "USA", Lat: 37.3708, Lon: -121.9959},
	{BrandName: "Meta Platforms", Ticker: "META", IndustryTag: "Technology", Country: "USA", Lat: 37.4850, Lon: -122.1473},
	{BrandName: "JPMorgan Chase", Ticker: "JPM", IndustryTag: "Finance", Country: "USA", Lat: 40.7128, Lon: -74.0060},
	{BrandName: "Johnson & Johnson", Ticker: "JNJ", IndustryTag: "Healthcare", Country: "USA", Lat: 40.4968, Lon: -74.4444},
	{BrandName: "Walmart Inc.", Ticker: "WMT", IndustryTag: "Retail", Country: "USA", Lat: 36.3729, Lon: -94.2088},
	{BrandName: "ExxonMobil", Ticker: "XOM", IndustryTag: "Energy", Country: "USA", Lat: 32.8893, Lon: -97.0362},
	{BrandName: "Pfizer Inc.", Ticker: "PFE", IndustryTag: "Healthcare", Country: "USA", Lat: 40.7128, Lon: -74.0060},
	{BrandName: "Chevron Corp.", Ticker: "CVX", IndustryTag: "Energy", Country: "USA", Lat: 37.9265, Lon: -122.5270},
	{BrandName: "Home Depot", Ticker: "HD", IndustryTag: "Retail", Country: "USA", Lat: 33.7490, Lon: -84.3880},
	{BrandName: "Mastercard Inc.", Ticker: "MA", IndustryTag: "Finance", Country: "USA", Lat: 41.0382, Lon: -73.5413},
}

// Roster returns a copy of the fixed company roster covered by the generator.
func Roster() []domain.Company {
	out := make([]domain.Company, len(roster))
	copy(out, roster)
	return out
}

var (
	tableOnce sync.Once
	table     []domain.PriceRecord
)

// Table returns the process-wide synthetic price table. The first call
// generates it from the process random stream; later calls return the cached
// table, so the dashboard stays visually stable between unrelated
// interactions. The cache key is the (absent) argument list and the cache is
// never invalidated during the process lifetime.
func Table() []domain.PriceRecord {
	tableOnce.Do(func() {
		table = Generate(rand.New(rand.NewSource(time.Now().UnixNano())))
	})
	return table
}

// Generate builds a synthetic price table covering the fixed 31-day window
// for the fixed roster. Deterministic for a given rng seed.
//
// Prices are drawn per company around a uniform base in [50, 800]; high and
// low are offset from open by independent half-normal noise, so the usual
// High >= Open >= Low ordering is not guaranteed.
func Generate(rng *rand.Rand) []domain.PriceRecord {
	records := make([]domain.PriceRecord, 0, len(roster)*WindowDays)

	for _, comp := range roster {
		base := uniform(rng, 50, 800)

		for d := 0; d < WindowDays; d++ {
			date := windowStart.AddDate(0, 0, d)

			open := base + rng.NormFloat64()*base*0.02 + uniform(rng, -3, 3)
			high := open + math.Abs(rng.NormFloat64()*base*0.01) + uniform(rng, 0, 5)
			low := open - math.Abs(rng.NormFloat64()*base*0.01) - uniform(rng, 0, 5)
			closePrice := open + rng.NormFloat64()*base*0.01
			volume := int64(uniform(rng, 1e5, 5e7))

			lat, lon := comp.Lat, comp.Lon
			record := domain.PriceRecord{
				Date:        date,
				Open:        round2(open),
				High:        round2(high),
				Low:         round2(low),
				Close:       round2(closePrice),
				Volume:      volume,
				Dividends:   0.0,
				StockSplits: 0.0,
				BrandName:   comp.BrandName,
				Ticker:      comp.Ticker,
				IndustryTag: comp.IndustryTag,
				Country:     comp.Country,
				Lat:         &lat,
				Lon:         &lon,
			}
			record.DeriveCalendar()
			records = append(records, record)
		}
	}

	return records
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
