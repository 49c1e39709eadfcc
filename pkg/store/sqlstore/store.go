package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/parse"
	"github.com/de-tools/service-atlas/pkg/store/backend"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the number of rows fetched per round trip.
const DefaultPageSize = 5000

// Backend runs range queries against a SQL table.
type Backend struct {
	db         *sql.DB
	dialect    Dialect
	schema     Schema
	pageSize   int
	countCheck bool

	mu       sync.Mutex
	tiebreak []string
}

var _ backend.Backend = (*Backend)(nil)

type Option func(*Backend)

// WithPageSize sets the page size; 0 fetches everything in one query.
func WithPageSize(n int) Option {
	return func(b *Backend) {
		if n >= 0 {
			b.pageSize = n
		}
	}
}

// WithCountCheck runs a COUNT(*) before paging and stops once that many
// rows were read.
func WithCountCheck(enabled bool) Option {
	return func(b *Backend) {
		b.countCheck = enabled
	}
}

func New(db *sql.DB, dialect Dialect, schema Schema, opts ...Option) (*Backend, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		db:       db,
		dialect:  dialect,
		schema:   schema,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Backend) Name() string {
	return b.dialect.Name
}

func (b *Backend) Schema() Schema {
	return b.schema
}

func (b *Backend) DB() *sql.DB {
	return b.db
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) FetchRange(ctx context.Context, r domain.QueryRange, opts backend.FetchOptions) (store.RowSet, error) {
	logger := zerolog.Ctx(ctx)

	where, args, err := b.rangeFilter(r, opts)
	if err != nil {
		return store.RowSet{}, err
	}

	total := int64(-1)
	if b.countCheck && b.pageSize > 0 {
		total, err = b.count(ctx, where, args)
		if err != nil {
			return store.RowSet{}, err
		}
		if total == 0 {
			return store.EmptyRowSet(b.schema.Select), nil
		}
	}

	var tiebreak []string
	if b.pageSize > 0 {
		tiebreak, err = b.tiebreakColumns(ctx)
		if err != nil {
			return store.RowSet{}, err
		}
	}

	result := store.EmptyRowSet(nil)
	offset := 0
	for {
		limit := b.pageSize
		if opts.Limit > 0 {
			remaining := opts.Limit - offset
			if remaining <= 0 {
				break
			}
			if limit == 0 || remaining < limit {
				limit = remaining
			}
		}

		page, err := b.page(ctx, where, args, opts.Order, tiebreak, limit, offset)
		if err != nil {
			return store.RowSet{}, err
		}
		result = result.Append(page)
		offset += page.Len()

		logger.Debug().
			Str("backend", b.dialect.Name).
			Int("page_rows", page.Len()).
			Int("offset", offset).
			Msg("fetched page")

		if b.pageSize == 0 || limit == 0 || page.Len() < limit {
			break
		}
		if total >= 0 && int64(offset) >= total {
			break
		}
	}
	return result, nil
}

func (b *Backend) ListColumns(ctx context.Context) ([]string, error) {
	return ListColumns(ctx, b.db, b.dialect, b.schema.Table)
}

// ListColumns returns the column names of table without reading any row.
func ListColumns(ctx context.Context, db *sql.DB, d Dialect, table string) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	query := fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", d.Quote(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close column listing rows")
		}
	}(rows)

	return rows.Columns()
}

func (b *Backend) DateBounds(ctx context.Context) (store.DateBounds, error) {
	ts, _ := b.schema.Column(domain.FieldTimestamp)
	expr := b.dialect.timestampExpr(ts)
	query := fmt.Sprintf("SELECT MIN(%[1]s), MAX(%[1]s), COUNT(*) FROM %[2]s", expr, b.dialect.Quote(b.schema.Table))

	var bounds store.DateBounds
	err := b.db.QueryRowContext(ctx, query).Scan(&bounds.First, &bounds.Last, &bounds.Count)
	if err != nil {
		return store.DateBounds{}, fmt.Errorf("date bounds of %s: %w", b.schema.Table, err)
	}
	bounds.First = textValue(bounds.First)
	bounds.Last = textValue(bounds.Last)
	return bounds, nil
}

// EnsureIndexes creates the timestamp, technician and city indexes when the
// dialect supports idempotent index creation. It reports how many
// statements ran.
func (b *Backend) EnsureIndexes(ctx context.Context) (int, error) {
	if !b.dialect.Indexes {
		zerolog.Ctx(ctx).Debug().Str("backend", b.dialect.Name).Msg("dialect has no idempotent index creation")
		return 0, nil
	}
	created := 0
	for _, f := range []domain.Field{domain.FieldTimestamp, domain.FieldTechnician, domain.FieldCity} {
		col, ok := b.schema.Column(f)
		if !ok {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			b.dialect.Quote(IndexName(b.schema.Table, col)),
			b.dialect.Quote(b.schema.Table),
			b.dialect.Quote(col),
		)
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return created, fmt.Errorf("create index on %s.%s: %w", b.schema.Table, col, err)
		}
		created++
	}
	return created, nil
}

// IndexName derives a stable index name from table and column.
func IndexName(table, column string) string {
	return "idx_" + strings.ToLower(parse.ColumnKey(table)) + "_" + strings.ToLower(parse.ColumnKey(column))
}

// tiebreakColumns lists the columns that order rows sharing a timestamp, so
// that LIMIT/OFFSET pages neither overlap nor skip rows. Schema.Key wins,
// then the projection, then every column of the table.
func (b *Backend) tiebreakColumns(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tiebreak != nil {
		return b.tiebreak, nil
	}

	cols := b.schema.Key
	if len(cols) == 0 {
		cols = b.schema.Select
	}
	if len(cols) == 0 {
		listed, err := ListColumns(ctx, b.db, b.dialect, b.schema.Table)
		if err != nil {
			return nil, err
		}
		cols = listed
	}

	ts, _ := b.schema.Column(domain.FieldTimestamp)
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != ts {
			out = append(out, c)
		}
	}
	b.tiebreak = out
	return out, nil
}

// SelectQuery renders the range query for one page. Rows sharing a
// timestamp are ordered by the tiebreak columns. It is exported for logging
// and tests.
func (b *Backend) SelectQuery(where string, order domain.Order, tiebreak []string, limit, offset int) string {
	ts, _ := b.schema.Column(domain.FieldTimestamp)

	projection := "*"
	if len(b.schema.Select) > 0 {
		quoted := make([]string, len(b.schema.Select))
		for i, c := range b.schema.Select {
			quoted[i] = b.dialect.Quote(c)
		}
		projection = strings.Join(quoted, ", ")
	}

	direction := "ASC"
	if order == domain.OrderDescending {
		direction = "DESC"
	}

	var q strings.Builder
	fmt.Fprintf(&q, "SELECT %s FROM %s WHERE %s ORDER BY %s %s",
		projection, b.dialect.Quote(b.schema.Table), where, b.dialect.timestampExpr(ts), direction)
	for _, c := range tiebreak {
		q.WriteString(", ")
		q.WriteString(b.dialect.Quote(c))
	}
	if limit > 0 {
		fmt.Fprintf(&q, " LIMIT %d", limit)
		if offset > 0 {
			fmt.Fprintf(&q, " OFFSET %d", offset)
		}
	}
	return q.String()
}

func (b *Backend) rangeFilter(r domain.QueryRange, opts backend.FetchOptions) (string, []any, error) {
	ts, _ := b.schema.Column(domain.FieldTimestamp)
	where := fmt.Sprintf("%s BETWEEN %s AND %s",
		b.dialect.timestampExpr(ts), b.dialect.Placeholder(1), b.dialect.Placeholder(2))

	if opts.RequireLocation {
		lat, okLat := b.schema.Column(domain.FieldLatitude)
		lon, okLon := b.schema.Column(domain.FieldLongitude)
		if !okLat || !okLon {
			return "", nil, fmt.Errorf("table %s has no coordinate columns", b.schema.Table)
		}
		where += fmt.Sprintf(" AND %s IS NOT NULL AND %s IS NOT NULL", b.dialect.Quote(lat), b.dialect.Quote(lon))
	}
	return where, []any{b.dialect.Bind(r.Start), b.dialect.Bind(r.End)}, nil
}

func (b *Backend) count(ctx context.Context, where string, args []any) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", b.dialect.Quote(b.schema.Table), where)
	var total int64
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s rows: %w", b.schema.Table, err)
	}
	return total, nil
}

func (b *Backend) page(ctx context.Context, where string, args []any, order domain.Order, tiebreak []string, limit, offset int) (store.RowSet, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := b.db.QueryContext(ctx, b.SelectQuery(where, order, tiebreak, limit, offset), args...)
	if err != nil {
		return store.RowSet{}, fmt.Errorf("%s range query failed: %w", b.dialect.Name, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close range query rows")
		}
	}(rows)

	return ScanRows(rows)
}

// ScanRows reads every row into a RowSet. Byte slices become strings.
func ScanRows(rows *sql.Rows) (store.RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return store.RowSet{}, fmt.Errorf("read columns: %w", err)
	}

	set := store.EmptyRowSet(columns)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return store.RowSet{}, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			values[i] = textValue(v)
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return store.RowSet{}, fmt.Errorf("iterate rows: %w", err)
	}
	return set, nil
}

func textValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
