package domain

// CompanyAverage is one row of the per-company aggregate for a filter window.
// Lat/Lon are taken from the first record encountered for the company, not
// averaged; coordinates are assumed invariant per company within a window.
type CompanyAverage struct {
	BrandName   string   `json:"brand_name"`
	Ticker      string   `json:"ticker"`
	IndustryTag string   `json:"industry_tag,omitempty"`
	Country     string   `json:"country,omitempty"`
	AvgClose    float64  `json:"avg_close"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
}

// DailyAverage is the mean closing price across all companies for one
// day of the selected month.
type DailyAverage struct {
	Day      int     `json:"day"`
	AvgClose float64 `json:"avg_close"`
}

// AnimationPoint is one sample of the date-ordered animation series:
// the per-day mean close of one of the top N companies.
type AnimationPoint struct {
	Date      string  `json:"date"`
	BrandName string  `json:"brand_name"`
	AvgClose  float64 `json:"avg_close"`
}

// MapMarker places one top company on the dashboard map.
type MapMarker struct {
	BrandName string  `json:"brand_name"`
	Ticker    string  `json:"ticker"`
	AvgClose  float64 `json:"avg_close"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// DashboardMetrics are the headline numbers rendered above the charts.
// TrendPercent is nil when the window holds fewer than two distinct dates.
type DashboardMetrics struct {
	CompanyCount int      `json:"company_count"`
	AvgClose     float64  `json:"avg_close"`
	TotalVolume  int64    `json:"total_volume"`
	TrendPercent *float64 `json:"trend_percent"`
}

// ViewModel is the complete dashboard payload for one
// (month, industry, K, N) selection. Every chart and metric on the page
// is a direct rendering of one of these fields.
type ViewModel struct {
	Month           string           `json:"month"`
	Industry        string           `json:"industry"`
	TopK            int              `json:"top_k"`
	AnimN           int              `json:"anim_n"`
	Metrics         DashboardMetrics `json:"metrics"`
	Daily           []DailyAverage   `json:"daily"`
	TopCompanies    []CompanyAverage `json:"top_companies"`
	BottomCompanies []CompanyAverage `json:"bottom_companies"`
	Markers         []MapMarker      `json:"markers"`
	Animation       []AnimationPoint `json:"animation"`
	SampleRows      []PriceRecord    `json:"sample_rows"`
	RowCount        int              `json:"row_count"`
}

// DatasetInfo describes the table currently backing the dashboard.
type DatasetInfo struct {
	Source    string `json:"source"`
	RowCount  int    `json:"row_count"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
	Months    int    `json:"months"`
}
