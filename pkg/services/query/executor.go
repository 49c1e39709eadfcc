package query

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/adapters"
	"github.com/de-tools/service-atlas/pkg/metrics"
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/services/notify"
	"github.com/de-tools/service-atlas/pkg/store/backend"
)

const DefaultTimeout = 30 * time.Second

type Settings struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Executor runs range retrievals against one backend. Backend failures
// never reach the caller: they are logged, reported as error notices and
// turned into empty results.
type Executor struct {
	backend backend.Backend
	timeout time.Duration
}

func NewExecutor(b backend.Backend, s Settings) *Executor {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{backend: b, timeout: timeout}
}

func (e *Executor) Backend() string {
	return e.backend.Name()
}

// Fetch returns the rows of r. ok is false when the backend failed, in
// which case rows is empty.
func (e *Executor) Fetch(ctx context.Context, r domain.QueryRange, opts backend.FetchOptions) (rows store.RowSet, ok bool) {
	logger := zerolog.Ctx(ctx).With().
		Str("backend", e.backend.Name()).
		Str("range", r.String()).
		Str("order", string(opts.Order)).
		Bool("located", opts.RequireLocation).
		Int("limit", opts.Limit).
		Logger()

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	set, err := e.backend.FetchRange(qctx, r, opts)
	took := time.Since(started)

	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(qctx.Err(), context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		metrics.ObserveQuery(e.backend.Name(), took, outcome, 0)
		logger.Error().Err(err).Dur("took", took).Msg("range query failed")

		if outcome == metrics.OutcomeTimeout {
			notify.Error(ctx, "Query exceeded the %s time limit", e.timeout)
		} else {
			notify.Error(ctx, "Failed to load data: %v", err)
		}
		return store.EmptyRowSet(set.Columns), false
	}

	if set.Rows == nil {
		set = store.EmptyRowSet(set.Columns)
	}
	metrics.ObserveQuery(e.backend.Name(), took, metrics.OutcomeSuccess, set.Len())
	logger.Debug().Int("rows", set.Len()).Dur("took", took).Msg("range query done")
	return set, true
}

// Bounds reports the available data span, or nil when the backend fails or
// holds no rows.
func (e *Executor) Bounds(ctx context.Context) *domain.DateBounds {
	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.backend.DateBounds(qctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("backend", e.backend.Name()).Msg("date bounds query failed")
		notify.Error(ctx, "Failed to check available dates: %v", err)
		return nil
	}

	bounds := adapters.MapDateBoundsStoreToDomain(raw)
	if bounds.First == nil || bounds.Last == nil {
		notify.Warn(ctx, "Could not determine the available date range")
		return nil
	}
	return &bounds
}

// Columns lists the physical columns of the service table, or nil on
// failure.
func (e *Executor) Columns(ctx context.Context) []string {
	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cols, err := e.backend.ListColumns(qctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("backend", e.backend.Name()).Msg("list columns failed")
		notify.Error(ctx, "Failed to list columns: %v", err)
		return nil
	}
	return cols
}
