// Package analytics is the filter and aggregation engine behind the
// dashboard. Given the normalized price table and a (month, industry, K, N)
// selection it computes per-company average closes, top/bottom-K rankings,
// per-day market means, the month trend percentage, and the animation
// series, assembled into a single view model.
//
// Rendering is a pure function of (table, selectors); every user
// interaction re-runs the full pipeline over the in-memory table.
package analytics
