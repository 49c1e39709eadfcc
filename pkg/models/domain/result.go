package domain

import "time"

// Request carries the caller-supplied parameters of one load cycle.
type Request struct {
	Start           string
	End             string
	Order           Order
	RequireLocation bool
	Limit           int
}

// NormalizeStats counts what happened to the rows of one batch.
type NormalizeStats struct {
	Input            int
	Kept             int
	DroppedTimestamp int
	OutOfRange       int
	UnparsedCurrency int
	MissingLocation  int
}

// Result is the outcome of one query-and-normalize cycle. Records is never nil.
// Invalid marks a request whose range could not be parsed; Range is then unset.
type Result struct {
	Range    QueryRange
	Records  []ServiceRecord
	Notices  []Notice
	Stats    NormalizeStats
	Failed   bool
	Invalid  bool
	Duration time.Duration
}
