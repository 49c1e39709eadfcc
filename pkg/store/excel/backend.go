package excel

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/parse"
	"github.com/de-tools/service-atlas/pkg/store/backend"
)

type Settings struct {
	Path    string                  `mapstructure:"path"`
	Sheet   string                  `mapstructure:"sheet"`
	Columns map[domain.Field]string `mapstructure:"-"`
}

// Backend serves range queries from a spreadsheet. The file is read on
// every call and filtered in memory.
type Backend struct {
	settings Settings
}

var _ backend.Backend = (*Backend)(nil)

func New(settings Settings) (*Backend, error) {
	if settings.Path == "" {
		return nil, fmt.Errorf("excel path is empty")
	}
	if settings.Columns[domain.FieldTimestamp] == "" {
		return nil, fmt.Errorf("excel backend needs a timestamp column")
	}
	return &Backend{settings: settings}, nil
}

func (b *Backend) Name() string {
	return "excel"
}

func (b *Backend) Close() error {
	return nil
}

func (b *Backend) read(ctx context.Context) (store.RowSet, error) {
	if err := ctx.Err(); err != nil {
		return store.RowSet{}, err
	}
	wb, err := OpenWorkbook(b.settings.Path)
	if err != nil {
		return store.RowSet{}, err
	}
	defer func() {
		if err := wb.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	sheet, err := wb.SheetName(b.settings.Sheet)
	if err != nil {
		return store.RowSet{}, err
	}
	return wb.Read(sheet, b.settings.Columns[domain.FieldTimestamp])
}

func (b *Backend) FetchRange(ctx context.Context, r domain.QueryRange, opts backend.FetchOptions) (store.RowSet, error) {
	all, err := b.read(ctx)
	if err != nil {
		return store.RowSet{}, err
	}

	tsIdx := slices.Index(all.Columns, b.settings.Columns[domain.FieldTimestamp])
	if tsIdx < 0 {
		return store.RowSet{}, fmt.Errorf("column %q not found in sheet", b.settings.Columns[domain.FieldTimestamp])
	}
	latIdx, lonIdx := -1, -1
	if opts.RequireLocation {
		latIdx = slices.Index(all.Columns, b.settings.Columns[domain.FieldLatitude])
		lonIdx = slices.Index(all.Columns, b.settings.Columns[domain.FieldLongitude])
		if latIdx < 0 || lonIdx < 0 {
			return store.RowSet{}, fmt.Errorf("sheet has no coordinate columns")
		}
	}

	type keyed struct {
		ts  int64
		row []any
	}
	matched := make([]keyed, 0, len(all.Rows))
	for _, row := range all.Rows {
		ts, ok := parse.Timestamp(row[tsIdx])
		if !ok || !r.Contains(ts) {
			continue
		}
		if opts.RequireLocation && (parse.Latitude(row[latIdx]) == nil || parse.Longitude(row[lonIdx]) == nil) {
			continue
		}
		matched = append(matched, keyed{ts: ts.UnixNano(), row: row})
	}

	slices.SortStableFunc(matched, func(a, b keyed) int {
		if opts.Order == domain.OrderDescending {
			return cmp.Compare(b.ts, a.ts)
		}
		return cmp.Compare(a.ts, b.ts)
	})
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := store.EmptyRowSet(all.Columns)
	for _, m := range matched {
		out.Rows = append(out.Rows, m.row)
	}
	return out, nil
}

func (b *Backend) ListColumns(ctx context.Context) ([]string, error) {
	wb, err := OpenWorkbook(b.settings.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.SheetName(b.settings.Sheet)
	if err != nil {
		return nil, err
	}
	return wb.Header(sheet)
}

func (b *Backend) DateBounds(ctx context.Context) (store.DateBounds, error) {
	all, err := b.read(ctx)
	if err != nil {
		return store.DateBounds{}, err
	}
	tsIdx := slices.Index(all.Columns, b.settings.Columns[domain.FieldTimestamp])
	if tsIdx < 0 {
		return store.DateBounds{}, fmt.Errorf("column %q not found in sheet", b.settings.Columns[domain.FieldTimestamp])
	}

	bounds := store.DateBounds{Count: int64(all.Len())}
	var first, last int64
	for _, row := range all.Rows {
		ts, ok := parse.Timestamp(row[tsIdx])
		if !ok {
			continue
		}
		if bounds.First == nil || ts.UnixNano() < first {
			bounds.First, first = ts, ts.UnixNano()
		}
		if bounds.Last == nil || ts.UnixNano() > last {
			bounds.Last, last = ts, ts.UnixNano()
		}
	}
	return bounds, nil
}
