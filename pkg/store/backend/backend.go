package backend

import (
	"context"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
)

// FetchOptions selects the variant of a range retrieval.
type FetchOptions struct {
	Order domain.Order
	// RequireLocation keeps only rows with both coordinates present.
	RequireLocation bool
	// Limit caps the total number of rows; 0 means unlimited.
	Limit int
}

// Backend is the capability set every data source provides. A Backend is
// safe for concurrent use.
type Backend interface {
	// Name identifies the technology, e.g. "postgres" or "excel".
	Name() string
	// FetchRange returns the rows whose timestamp lies in r, inclusive on
	// both ends, ordered by timestamp.
	FetchRange(ctx context.Context, r domain.QueryRange, opts FetchOptions) (store.RowSet, error)
	// ListColumns returns the physical column names of the service table.
	ListColumns(ctx context.Context) ([]string, error)
	// DateBounds reports the earliest and latest timestamp and the row count.
	DateBounds(ctx context.Context) (store.DateBounds, error)
	Close() error
}
