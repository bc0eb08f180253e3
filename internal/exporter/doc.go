// Package exporter serializes the filtered price table to CSV, both as an
// HTTP download stream and as files on disk. Output uses the canonical
// 14-column external schema with a header row and no index column, and
// round-trips through the dataprocessing loader.
package exporter
