package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/de-tools/service-atlas/pkg/store/records"
	"github.com/de-tools/service-atlas/pkg/store/sqlstore"
	"github.com/marcboeker/go-duckdb/v2"
)

// DefaultTable is the service table created in a local DuckDB file.
const DefaultTable = "servicos"

type Settings struct {
	DbPath  string `mapstructure:"path"`
	Table   string `mapstructure:"table"`
	Threads int    `mapstructure:"threads"`
}

func bootQueries(table string) []string {
	queries := []string{records.CreateTableStatement(sqlstore.DuckDB, table)}
	// DATA_TOA is the only index the local store needs for range scans.
	queries = append(queries, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		sqlstore.DuckDB.Quote(sqlstore.IndexName(table, "DATA_TOA")),
		sqlstore.DuckDB.Quote(table),
		sqlstore.DuckDB.Quote("DATA_TOA"),
	))
	return queries
}

// NewDB opens a DuckDB database and makes sure the service table exists
// on every new connection.
func NewDB(settings Settings) (*sql.DB, error) {
	table := settings.Table
	if table == "" {
		table = DefaultTable
	}
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries(table) {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return fmt.Errorf("duckdb boot query failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}

// Open returns a range backend over the local service table.
func Open(settings Settings, opts ...sqlstore.Option) (*sqlstore.Backend, error) {
	db, err := NewDB(settings)
	if err != nil {
		return nil, err
	}
	table := settings.Table
	if table == "" {
		table = DefaultTable
	}
	b, err := sqlstore.New(db, sqlstore.DuckDB, records.Schema(table), opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}
