package store

import "time"

// DateBounds is the raw span reported by a backend.
type DateBounds struct {
	First any
	Last  any
	Count int64
}

// WriteStats is returned by writers after a batch insert.
type WriteStats struct {
	Inserted int
	Started  time.Time
	Finished time.Time
}
