// Package parse holds the textual parsing rules shared by the backends, the
// normalizer and the request layer: accepted date formats, Brazilian currency
// strings, coordinates and categorical text.
package parse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

var ErrInvalidDate = errors.New("invalid date")

type layout struct {
	format  string
	hasTime bool
}

// Accepted query boundary formats, in priority order. The first one that
// parses wins.
var boundaryLayouts = []layout{
	{format: "02/01/2006", hasTime: false},
	{format: "02/01/2006 15:04", hasTime: true},
	{format: time.DateOnly, hasTime: false},
	{format: time.DateTime, hasTime: true},
}

// Row timestamp formats, in priority order.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006-01-02 15:04:05 -0700 MST",
}

// Date parses a query boundary. hasTime reports whether the matching format
// carried a time of day.
func Date(s string) (t time.Time, hasTime bool, err error) {
	s = strings.TrimSpace(s)
	for _, l := range boundaryLayouts {
		t, err := time.ParseInLocation(l.format, s, time.UTC)
		if err == nil {
			return t, l.hasTime, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Range builds a QueryRange from two boundary strings. An end without a time
// of day is widened to the last second of its day.
func Range(start, end string) (domain.QueryRange, error) {
	s, _, err := Date(start)
	if err != nil {
		return domain.QueryRange{}, fmt.Errorf("start date: %w", err)
	}
	e, hasTime, err := Date(end)
	if err != nil {
		return domain.QueryRange{}, fmt.Errorf("end date: %w", err)
	}
	if !hasTime {
		e = EndOfDay(e)
	}
	return domain.NewQueryRange(s, e)
}

// EndOfDay returns 23:59:59 of the day of t.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Timestamp converts a source value into a point in time. ok is false for
// missing or unparseable values.
func Timestamp(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val.UTC(), !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return Timestamp(*val)
	case []byte:
		return TimestampText(string(val))
	case string:
		return TimestampText(val)
	default:
		return time.Time{}, false
	}
}

// TimestampText parses s against the row timestamp formats in order.
func TimestampText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range timestampLayouts {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
