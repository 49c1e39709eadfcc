package dashboard

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/metrics"
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/parse"
	"github.com/de-tools/service-atlas/pkg/services/cache"
	"github.com/de-tools/service-atlas/pkg/services/normalize"
	"github.com/de-tools/service-atlas/pkg/services/notify"
	"github.com/de-tools/service-atlas/pkg/services/query"
	"github.com/de-tools/service-atlas/pkg/store/backend"
)

const (
	DefaultBoundsTTL = time.Hour
	// DisplayLayout formats timestamps in notices.
	DisplayLayout = "02/01/2006 15:04"
)

type Settings struct {
	Cache     cache.Settings `mapstructure:"cache"`
	BoundsTTL time.Duration  `mapstructure:"bounds_ttl"`
}

// Controller drives one load cycle: parse the range, consult the cache,
// fetch, normalize and enforce the range and ordering invariants.
type Controller interface {
	Load(ctx context.Context, req domain.Request) domain.Result
	Bounds(ctx context.Context) *domain.DateBounds
	Columns(ctx context.Context) ([]string, map[domain.Field]string)
}

type controller struct {
	executor   *query.Executor
	normalizer *normalize.Normalizer
	results    *cache.Cache[domain.Result]
	bounds     *cache.Cache[*domain.DateBounds]
}

func NewController(executor *query.Executor, normalizer *normalize.Normalizer, s Settings) Controller {
	boundsTTL := s.BoundsTTL
	if boundsTTL <= 0 {
		boundsTTL = DefaultBoundsTTL
	}
	return &controller{
		executor:   executor,
		normalizer: normalizer,
		results:    cache.New[domain.Result]("services", s.Cache),
		bounds: cache.New[*domain.DateBounds]("bounds", cache.Settings{
			TTL:          boundsTTL,
			Size:         8,
			SingleFlight: s.Cache.SingleFlight,
		}),
	}
}

func (c *controller) Load(ctx context.Context, req domain.Request) domain.Result {
	started := time.Now()
	collector := &notify.Collector{Next: notify.From(ctx)}
	ctx = notify.WithNotifier(ctx, collector)
	logger := zerolog.Ctx(ctx)

	r, err := parse.Range(req.Start, req.End)
	if err != nil {
		logger.Warn().Err(err).Str("start", req.Start).Str("end", req.End).Msg("invalid range")
		notify.Warn(ctx, "Invalid dates provided: %v", err)
		return domain.Result{
			Records:  []domain.ServiceRecord{},
			Notices:  collector.Notices(),
			Invalid:  true,
			Duration: time.Since(started),
		}
	}

	order := req.Order
	if order == "" {
		order = domain.OrderAscending
	}
	opts := backend.FetchOptions{Order: order, RequireLocation: req.RequireLocation, Limit: req.Limit}
	key := cache.Key(c.executor.Backend(),
		r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339),
		order, req.RequireLocation, req.Limit)

	cached, hit := c.results.GetOrLoad(ctx, key, func(ctx context.Context) (domain.Result, bool) {
		return c.load(ctx, r, opts)
	})

	result := cached
	result.Records = slices.Clone(cached.Records)
	if result.Records == nil {
		result.Records = []domain.ServiceRecord{}
	}

	switch {
	case result.Failed:
		// a shared load reports its error to the caller that ran it only
		if !hasError(collector.Notices()) {
			notify.Error(ctx, "Failed to load data")
		}
	case len(result.Records) == 0:
		notify.Warn(ctx, "No data found for the selected period")
	default:
		if result.Stats.DroppedTimestamp > 0 {
			notify.Warn(ctx, "%d rows without a valid timestamp were ignored", result.Stats.DroppedTimestamp)
		}
		notify.Info(ctx, "Loaded %d records in %.2fs", len(result.Records), time.Since(started).Seconds())
	}

	logger.Debug().
		Str("range", r.String()).
		Bool("cache_hit", hit).
		Int("records", len(result.Records)).
		Msg("dashboard load")

	result.Notices = collector.Notices()
	result.Duration = time.Since(started)
	return result
}

func hasError(notices []domain.Notice) bool {
	return slices.ContainsFunc(notices, func(n domain.Notice) bool {
		return n.Level == domain.NoticeError
	})
}

func (c *controller) load(ctx context.Context, r domain.QueryRange, opts backend.FetchOptions) (domain.Result, bool) {
	rows, ok := c.executor.Fetch(ctx, r, opts)
	if !ok {
		return domain.Result{Range: r, Records: []domain.ServiceRecord{}, Failed: true}, false
	}

	records, stats := c.normalizer.NormalizeSet(rows)
	records, stats.OutOfRange = InRange(records, r)
	SortRecords(records, opts.Order)
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	stats.Kept = len(records)
	stats.UnparsedCurrency, stats.MissingLocation = 0, 0
	for _, rec := range records {
		if rec.Unparsed() {
			stats.UnparsedCurrency++
		}
		if !rec.HasLocation() {
			stats.MissingLocation++
		}
	}
	metrics.ObserveNormalize(stats)

	return domain.Result{Range: r, Records: records, Stats: stats}, true
}

func (c *controller) Bounds(ctx context.Context) *domain.DateBounds {
	bounds, _ := c.bounds.GetOrLoad(ctx, c.executor.Backend(), func(ctx context.Context) (*domain.DateBounds, bool) {
		b := c.executor.Bounds(ctx)
		return b, b != nil
	})
	if bounds != nil {
		notify.Info(ctx, "Data available from %s to %s",
			bounds.First.Format(DisplayLayout), bounds.Last.Format(DisplayLayout))
	}
	return bounds
}

func (c *controller) Columns(ctx context.Context) ([]string, map[domain.Field]string) {
	cols := c.executor.Columns(ctx)
	if cols == nil {
		return nil, nil
	}
	return cols, normalize.ResolveColumns(cols).Columns()
}

// InRange keeps the records whose timestamp lies within r and reports how
// many were removed.
func InRange(records []domain.ServiceRecord, r domain.QueryRange) ([]domain.ServiceRecord, int) {
	kept := records[:0]
	for _, rec := range records {
		if r.Contains(rec.Timestamp) {
			kept = append(kept, rec)
		}
	}
	return kept, len(records) - len(kept)
}

// SortRecords orders records by timestamp. The sort is stable so rows
// sharing a timestamp keep the backend order.
func SortRecords(records []domain.ServiceRecord, order domain.Order) {
	slices.SortStableFunc(records, func(a, b domain.ServiceRecord) int {
		if order == domain.OrderDescending {
			return b.Timestamp.Compare(a.Timestamp)
		}
		return a.Timestamp.Compare(b.Timestamp)
	})
}
