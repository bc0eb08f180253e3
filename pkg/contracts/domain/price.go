package domain

import (
	"fmt"
	"time"
)

// PriceRecord represents a single daily price observation for one listed company.
// This is the canonical row of the in-memory price table; the external CSV/XLSX
// schema maps onto it column by column.
type PriceRecord struct {
	Date        time.Time `json:"date" csv:"Date" validate:"required"`
	Open        float64   `json:"open" csv:"Open"`
	High        float64   `json:"high" csv:"High"`
	Low         float64   `json:"low" csv:"Low"`
	Close       float64   `json:"close" csv:"Close" validate:"required"`
	Volume      int64     `json:"volume" csv:"Volume"`
	Dividends   float64   `json:"dividends" csv:"Dividends"`
	StockSplits float64   `json:"stock_splits" csv:"Stock Splits"`
	BrandName   string    `json:"brand_name" csv:"Brand_Name" validate:"required"`
	Ticker      string    `json:"ticker" csv:"Ticker" validate:"required"`
	IndustryTag string    `json:"industry_tag,omitempty" csv:"Industry_Tag"`
	Country     string    `json:"country,omitempty" csv:"Country"`
	Lat         *float64  `json:"lat,omitempty" csv:"lat"`
	Lon         *float64  `json:"lon,omitempty" csv:"lon"`

	// Calendar fields derived from Date by the normalizer. Never serialized
	// to CSV; recomputed on every import.
	Year     int    `json:"year,omitempty"`
	Month    int    `json:"month,omitempty"`
	MonthStr string `json:"month_str,omitempty"`
	Day      int    `json:"day,omitempty"`
}

// DeriveCalendar fills the Year/Month/MonthStr/Day fields from Date.
// Idempotent; a zero Date leaves the fields zeroed.
func (p *PriceRecord) DeriveCalendar() {
	if p.Date.IsZero() {
		p.Year, p.Month, p.MonthStr, p.Day = 0, 0, "", 0
		return
	}
	p.Year = p.Date.Year()
	p.Month = int(p.Date.Month())
	p.MonthStr = p.Date.Format("2006-01")
	p.Day = p.Date.Day()
}

// HasLocation reports whether the record carries map coordinates.
func (p *PriceRecord) HasLocation() bool {
	return p.Lat != nil && p.Lon != nil
}

// CompanyKey identifies a distinct company within a filter window.
// Grouping is by the full tuple, matching the aggregation contract.
type CompanyKey struct {
	BrandName   string
	Ticker      string
	IndustryTag string
	Country     string
}

// Key returns the grouping key for this record.
func (p *PriceRecord) Key() CompanyKey {
	return CompanyKey{
		BrandName:   p.BrandName,
		Ticker:      p.Ticker,
		IndustryTag: p.IndustryTag,
		Country:     p.Country,
	}
}

// String implements fmt.Stringer for log output.
func (k CompanyKey) String() string {
	return fmt.Sprintf("%s (%s)", k.BrandName, k.Ticker)
}
