// Package sampledata generates the synthetic price table used whenever no
// valid upload is available. The table covers a fixed 31-day window for a
// fixed roster of 15 companies and is memoized process-wide so repeated
// dashboard interactions see the same data.
package sampledata
