package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/service-atlas/pkg/adapters"
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/store/sqlstore"
	"github.com/rs/zerolog"
)

// Writer persists ServiceRecords into a table laid out with the canonical
// column names.
type Writer interface {
	CreateTable(ctx context.Context) error
	DropTable(ctx context.Context) error
	EnsureIndexes(ctx context.Context) (int, error)
	Add(ctx context.Context, records []domain.ServiceRecord) (store.WriteStats, error)
}

type writer struct {
	db      *sql.DB
	dialect sqlstore.Dialect
	table   string
}

func NewWriter(db *sql.DB, dialect sqlstore.Dialect, table string) (Writer, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if table == "" {
		return nil, fmt.Errorf("table name is empty")
	}
	return &writer{db: db, dialect: dialect, table: table}, nil
}

// Schema describes the canonical table for the range backend.
func Schema(table string) sqlstore.Schema {
	return sqlstore.Schema{
		Table: table,
		Columns: map[domain.Field]string{
			domain.FieldTimestamp:  adapters.CanonicalColumns[domain.FieldTimestamp],
			domain.FieldTechnician: adapters.CanonicalColumns[domain.FieldTechnician],
			domain.FieldCity:       adapters.CanonicalColumns[domain.FieldCity],
			domain.FieldLatitude:   adapters.CanonicalColumns[domain.FieldLatitude],
			domain.FieldLongitude:  adapters.CanonicalColumns[domain.FieldLongitude],
		},
	}
}

// CreateTableStatement renders the DDL of the canonical service table.
func CreateTableStatement(d sqlstore.Dialect, table string) string {
	defs := make([]string, 0, len(domain.Fields))
	for _, f := range domain.Fields {
		def := d.Quote(adapters.CanonicalColumns[f]) + " " + columnType(d, f)
		if f == domain.FieldTimestamp {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", d.Quote(table), strings.Join(defs, ",\n\t"))
}

func columnType(d sqlstore.Dialect, f domain.Field) string {
	switch f {
	case domain.FieldTimestamp:
		return d.TimestampType
	case domain.FieldLatitude, domain.FieldLongitude, domain.FieldTechnicianValue, domain.FieldCompanyValue:
		return d.FloatType
	default:
		return d.TextType
	}
}

func (w *writer) CreateTable(ctx context.Context) error {
	if _, err := w.exec(ctx, CreateTableStatement(w.dialect, w.table)); err != nil {
		return fmt.Errorf("create table %s: %w", w.table, err)
	}
	return nil
}

func (w *writer) DropTable(ctx context.Context) error {
	if _, err := w.exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", w.dialect.Quote(w.table))); err != nil {
		return fmt.Errorf("drop table %s: %w", w.table, err)
	}
	return nil
}

func (w *writer) EnsureIndexes(ctx context.Context) (int, error) {
	b, err := sqlstore.New(w.db, w.dialect, Schema(w.table))
	if err != nil {
		return 0, err
	}
	return b.EnsureIndexes(ctx)
}

// Add inserts records with one prepared statement. It joins the
// transaction bound to ctx when there is one.
func (w *writer) Add(ctx context.Context, records []domain.ServiceRecord) (store.WriteStats, error) {
	logger := zerolog.Ctx(ctx)
	stats := store.WriteStats{Started: time.Now()}
	if len(records) == 0 {
		stats.Finished = stats.Started
		return stats, nil
	}

	columns := make([]string, len(domain.Fields))
	params := make([]string, len(domain.Fields))
	for i, f := range domain.Fields {
		columns[i] = w.dialect.Quote(adapters.CanonicalColumns[f])
		params[i] = w.dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		w.dialect.Quote(w.table), strings.Join(columns, ", "), strings.Join(params, ", "))

	var stmt *sql.Stmt
	var err error
	if tx := GetTransaction(ctx); tx != nil {
		stmt, err = tx.PrepareContext(ctx, query)
	} else {
		stmt, err = w.db.PrepareContext(ctx, query)
	}
	if err != nil {
		return stats, fmt.Errorf("prepare statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		if err := stmt.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close insert statement")
		}
	}(stmt)

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, w.values(rec)...); err != nil {
			return stats, fmt.Errorf("insert record: %w", err)
		}
		stats.Inserted++
	}
	stats.Finished = time.Now()

	logger.Debug().
		Str("table", w.table).
		Int("inserted", stats.Inserted).
		Dur("took", stats.Finished.Sub(stats.Started)).
		Msg("records written")
	return stats, nil
}

func (w *writer) values(rec domain.ServiceRecord) []any {
	row := adapters.MapServiceRecordToRawRow(rec)
	values := make([]any, len(domain.Fields))
	for i, f := range domain.Fields {
		v := row[adapters.CanonicalColumns[f]]
		if f == domain.FieldTimestamp {
			v = w.dialect.Bind(rec.Timestamp)
		}
		values[i] = v
	}
	return values
}

func (w *writer) exec(ctx context.Context, query string) (sql.Result, error) {
	if tx := GetTransaction(ctx); tx != nil {
		return tx.ExecContext(ctx, query)
	}
	return w.db.ExecContext(ctx, query)
}
