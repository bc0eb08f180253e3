package exporter

import "strconv"

// formatFloat uses the shortest representation that parses back to the
// same float64, so exported Close values survive an import round trip.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatOptFloat serializes optional coordinates; missing values become
// empty cells.
func formatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
