package normalize

import (
	"errors"
	"maps"
	"slices"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/parse"
)

// ErrDropped is returned for rows that cannot become a ServiceRecord.
var ErrDropped = errors.New("row dropped: missing or unparseable timestamp")

type Normalizer struct {
	sentinel string
}

type Option func(*Normalizer)

// WithSentinel overrides the placeholder used for missing categorical values.
func WithSentinel(s string) Option {
	return func(n *Normalizer) {
		n.sentinel = s
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{sentinel: domain.Unspecified}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a single raw row. Columns are resolved in sorted order
// so a row carrying two aliases of one field always yields the same record.
func (n *Normalizer) Normalize(row store.RawRow) (domain.ServiceRecord, error) {
	columns := slices.Sorted(maps.Keys(row))
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = row[col]
	}
	return n.normalizeRow(ResolveColumns(columns), values)
}

// NormalizeSet converts every row of set independently. Dropped rows are
// counted in the returned stats and never abort the batch.
func (n *Normalizer) NormalizeSet(set store.RowSet) ([]domain.ServiceRecord, domain.NormalizeStats) {
	idx := ResolveColumns(set.Columns)
	records := make([]domain.ServiceRecord, 0, len(set.Rows))
	stats := domain.NormalizeStats{Input: len(set.Rows)}

	for _, row := range set.Rows {
		rec, err := n.normalizeRow(idx, row)
		if err != nil {
			stats.DroppedTimestamp++
			continue
		}
		if rec.Unparsed() {
			stats.UnparsedCurrency++
		}
		if !rec.HasLocation() {
			stats.MissingLocation++
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)
	return records, stats
}

// NormalizeRecord re-applies the categorical and coordinate rules to an
// already canonical record. Monetary values and their flags are kept.
func (n *Normalizer) NormalizeRecord(rec domain.ServiceRecord) domain.ServiceRecord {
	rec.Timestamp = rec.Timestamp.UTC()
	rec.TechnicianID = parse.Category(rec.TechnicianID, n.sentinel)
	rec.City = parse.Category(rec.City, n.sentinel)
	rec.Base = parse.Category(rec.Base, n.sentinel)
	rec.Status = parse.Category(rec.Status, n.sentinel)
	rec.ServiceType = parse.Category(rec.ServiceType, n.sentinel)
	rec.Latitude = parse.Latitude(rec.Latitude)
	rec.Longitude = parse.Longitude(rec.Longitude)
	rec.Contract = parse.Text(rec.Contract)
	rec.OrderID = parse.Text(rec.OrderID)
	return rec
}

func (n *Normalizer) normalizeRow(idx ColumnIndex, row []any) (domain.ServiceRecord, error) {
	ts, ok := parse.Timestamp(idx.value(row, domain.FieldTimestamp))
	if !ok {
		return domain.ServiceRecord{}, ErrDropped
	}

	techValue, techErr := parse.Currency(idx.value(row, domain.FieldTechnicianValue))
	companyValue, companyErr := parse.Currency(idx.value(row, domain.FieldCompanyValue))

	return domain.ServiceRecord{
		Timestamp:               ts,
		TechnicianID:            parse.Category(idx.value(row, domain.FieldTechnician), n.sentinel),
		City:                    parse.Category(idx.value(row, domain.FieldCity), n.sentinel),
		Base:                    parse.Category(idx.value(row, domain.FieldBase), n.sentinel),
		Status:                  parse.Category(idx.value(row, domain.FieldStatus), n.sentinel),
		ServiceType:             parse.Category(idx.value(row, domain.FieldServiceType), n.sentinel),
		Latitude:                parse.Latitude(idx.value(row, domain.FieldLatitude)),
		Longitude:               parse.Longitude(idx.value(row, domain.FieldLongitude)),
		TechnicianValue:         techValue,
		CompanyValue:            companyValue,
		TechnicianValueUnparsed: techErr != nil,
		CompanyValueUnparsed:    companyErr != nil,
		Contract:                parse.Text(idx.value(row, domain.FieldContract)),
		OrderID:                 parse.Text(idx.value(row, domain.FieldOrderID)),
	}, nil
}
