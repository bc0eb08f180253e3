package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/pkg/contracts/domain"
)

func testRecords() []domain.PriceRecord {
	d, _ := time.Parse("2006-01-02", "2023-05-01")
	lat, lon := 37.33, -122.03
	return []domain.PriceRecord{
		{
			Date: d, Open: 10.5, High: 12, Low: 9.25, Close: 11, Volume: 1000,
			BrandName: "apple", Ticker: "AAPL", IndustryTag: "Technology", Country: "USA",
			Lat: &lat, Lon: &lon,
		},
		{
			Date: d.AddDate(0, 0, 1), Close: 12.5, Volume: 2000,
			BrandName: "microsoft", Ticker: "MSFT", IndustryTag: "Technology", Country: "USA",
		},
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "stock_filtered_2023-05.csv", Filename("2023-05"))
}

func TestWrite_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(nil)

	require.NoError(t, w.Write(context.Background(), &buf, testRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "2023-05-01", rows[1][0])
	assert.Equal(t, "11", rows[1][4])
	assert.Equal(t, "AAPL", rows[1][9])
	assert.Equal(t, "37.33", rows[1][12])

	// Missing coordinates serialize as empty cells.
	assert.Equal(t, "", rows[2][12])
	assert.Equal(t, "", rows[2][13])
}

func TestWrite_EmptyTableStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(nil)

	require.NoError(t, w.Write(context.Background(), &buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}

func TestWriteFile_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "export.csv")
	w := NewWriter(nil)

	require.NoError(t, w.WriteFile(context.Background(), path, testRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Brand_Name")
	assert.Contains(t, string(data), "apple")
}
