package backends

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/services/config"
	"github.com/de-tools/service-atlas/pkg/services/normalize"
	"github.com/de-tools/service-atlas/pkg/store/backend"
	"github.com/de-tools/service-atlas/pkg/store/client"
	"github.com/de-tools/service-atlas/pkg/store/duckdb"
	"github.com/de-tools/service-atlas/pkg/store/excel"
	"github.com/de-tools/service-atlas/pkg/store/sqlstore"
)

// PresetAuto forces column detection even where a default preset exists.
const PresetAuto = "auto"

// DefaultTable is read when neither a table nor a preset names one.
const DefaultTable = duckdb.DefaultTable

var builtin = map[string]Factory{
	config.BackendPostgres:   sqlFactory,
	config.BackendMySQL:      sqlFactory,
	config.BackendSQLite:     sqlFactory,
	config.BackendDuckDB:     sqlFactory,
	config.BackendSnowflake:  sqlFactory,
	config.BackendDatabricks: sqlFactory,
	config.BackendExcel:      excelFactory,
}

var defaultPresets = map[string]string{
	config.BackendPostgres: "neon",
	config.BackendMySQL:    "mysql",
}

// OpenDB opens the connection pool of a SQL backend.
func OpenDB(cfg *config.Config) (*sql.DB, sqlstore.Dialect, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err = client.OpenPostgres(cfg.Postgres)
	case config.BackendMySQL:
		db, err = client.OpenMySQL(cfg.MySQL)
	case config.BackendSQLite:
		db, err = client.OpenSQLite(cfg.SQLite)
	case config.BackendDuckDB:
		settings := cfg.DuckDB
		settings.Table = Table(cfg)
		db, err = duckdb.NewDB(settings)
	case config.BackendSnowflake:
		db, err = client.OpenSnowflake(cfg.Snowflake.DriverConfig())
	case config.BackendDatabricks:
		db, err = client.OpenDatabricks(cfg.Databricks.DatabricksConfig)
	default:
		return nil, sqlstore.Dialect{}, fmt.Errorf("backend %q is not a SQL backend", cfg.Backend)
	}
	if err != nil {
		return nil, sqlstore.Dialect{}, err
	}
	d, err := sqlstore.LookupDialect(cfg.Backend)
	if err != nil {
		db.Close()
		return nil, sqlstore.Dialect{}, err
	}
	cfg.Pool.Apply(db)
	return db, d, nil
}

// Table returns the service table configured for cfg.
func Table(cfg *config.Config) string {
	if cfg.Table != "" {
		return cfg.Table
	}
	if cfg.Backend == config.BackendDuckDB && cfg.DuckDB.Table != "" {
		return cfg.DuckDB.Table
	}
	if s, ok := sqlstore.Preset(preset(cfg)); ok {
		return s.Table
	}
	return DefaultTable
}

func preset(cfg *config.Config) string {
	if cfg.Preset != "" {
		return cfg.Preset
	}
	return defaultPresets[cfg.Backend]
}

// ResolveSchema picks the table layout: an explicit column mapping wins,
// then a preset, then columns detected from the table itself.
func ResolveSchema(ctx context.Context, db *sql.DB, d sqlstore.Dialect, cfg *config.Config) (sqlstore.Schema, error) {
	schema, err := resolveColumns(ctx, db, d, cfg)
	if err != nil {
		return sqlstore.Schema{}, err
	}
	if len(cfg.KeyColumns) > 0 {
		schema.Key = append([]string(nil), cfg.KeyColumns...)
	}
	return schema, nil
}

func resolveColumns(ctx context.Context, db *sql.DB, d sqlstore.Dialect, cfg *config.Config) (sqlstore.Schema, error) {
	table := Table(cfg)
	mapping, err := cfg.ColumnMapping()
	if err != nil {
		return sqlstore.Schema{}, err
	}
	if mapping != nil {
		return sqlstore.Schema{Table: table, Columns: mapping}, nil
	}

	name := preset(cfg)
	if name != "" && name != PresetAuto {
		s, ok := sqlstore.Preset(name)
		if !ok {
			return sqlstore.Schema{}, fmt.Errorf("unknown preset %q", name)
		}
		return s.WithTable(table), nil
	}

	columns, err := sqlstore.ListColumns(ctx, db, d, table)
	if err != nil {
		return sqlstore.Schema{}, err
	}
	schema := sqlstore.Schema{Table: table, Columns: normalize.ResolveColumns(columns).Columns()}
	zerolog.Ctx(ctx).Debug().
		Str("table", table).
		Interface("columns", schema.Columns).
		Msg("detected service columns")
	return schema, nil
}

func sqlFactory(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	db, d, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	schema, err := ResolveSchema(ctx, db, d, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	b, err := sqlstore.New(db, d, schema,
		sqlstore.WithPageSize(cfg.PageSize),
		sqlstore.WithCountCheck(cfg.CountCheck),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	if cfg.EnsureIndexes {
		n, err := b.EnsureIndexes(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("backend", d.Name).Msg("failed to create indexes")
		} else {
			zerolog.Ctx(ctx).Debug().Int("indexes", n).Str("backend", d.Name).Msg("indexes ensured")
		}
	}
	return b, nil
}

func excelFactory(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	mapping, err := cfg.ColumnMapping()
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		mapping, err = detectSheetColumns(cfg.Excel)
		if err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Debug().Interface("columns", mapping).Msg("detected sheet columns")
	}
	return excel.New(excel.Settings{
		Path:    cfg.Excel.Path,
		Sheet:   cfg.Excel.Sheet,
		Columns: mapping,
	})
}

func detectSheetColumns(cfg config.ExcelConfig) (map[domain.Field]string, error) {
	wb, err := excel.OpenWorkbook(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.SheetName(cfg.Sheet)
	if err != nil {
		return nil, err
	}
	header, err := wb.Header(sheet)
	if err != nil {
		return nil, err
	}
	return normalize.ResolveColumns(header).Columns(), nil
}
