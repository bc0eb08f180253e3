// Package dataprocessing loads and normalizes the tabular stock price data
// backing the dashboard. It parses uploaded CSV or XLSX files into the
// canonical price table, coerces the date-like column through an ordered
// list of candidates, validates the required columns, and substitutes the
// synthetic sample table when an upload cannot serve.
//
// # Data Flow
//
//	Upload (CSV/XLSX) → Loader → PriceRecords → Normalize → derived calendar fields
//
// A parse failure of the byte stream itself is terminal; a table missing a
// required column is replaced whole by the sample table with a warning.
// There is no partial-row rejection.
package dataprocessing
