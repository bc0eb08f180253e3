package domain

// Company is one entry of the fixed roster used by the sample data
// generator: display name, symbol, industry, and headquarters
// coordinates for map placement.
type Company struct {
	BrandName   string  `json:"brand_name"`
	Ticker      string  `json:"ticker"`
	IndustryTag string  `json:"industry_tag"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}
