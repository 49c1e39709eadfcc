package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("invalid query range")

// QueryRange is an inclusive timestamp interval with Start <= End.
type QueryRange struct {
	Start time.Time
	End   time.Time
}

func NewQueryRange(start, end time.Time) (QueryRange, error) {
	if start.After(end) {
		return QueryRange{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, start.Format(time.DateTime), end.Format(time.DateTime))
	}
	return QueryRange{Start: start, End: end}, nil
}

// Contains reports whether t lies within the inclusive range.
func (r QueryRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days touched by the range.
func (r QueryRange) Days() int {
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, r.Start.Location())
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, r.Start.Location())
	return int(end.Sub(start).Hours()/24) + 1
}

func (r QueryRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.DateTime), r.End.Format(time.DateTime))
}

// Order is the timestamp ordering of a result.
type Order string

const (
	OrderAscending  Order = "asc"
	OrderDescending Order = "desc"
)

// ParseOrder accepts "asc", "desc" or empty (ascending).
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderAscending:
		return OrderAscending, nil
	case OrderDescending:
		return OrderDescending, nil
	default:
		return "", fmt.Errorf("unknown order %q", s)
	}
}

// DateBounds describes the span of data available in a backend.
type DateBounds struct {
	First *time.Time
	Last  *time.Time
	Count int64
}
