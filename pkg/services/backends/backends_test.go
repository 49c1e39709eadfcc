package backends

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/services/config"
	"github.com/de-tools/service-atlas/pkg/store/backend"
	"github.com/de-tools/service-atlas/pkg/store/client"
	"github.com/de-tools/service-atlas/pkg/store/duckdb"
	"github.com/de-tools/service-atlas/pkg/store/records"
	"github.com/de-tools/service-atlas/pkg/store/sqlstore"
)

func seedSQLite(t *testing.T, table string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servicos.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	w, err := records.NewWriter(db, sqlstore.SQLite, table)
	require.NoError(t, err)
	require.NoError(t, w.CreateTable(ctx))
	lat, lon := -22.9, -47.06
	_, err = w.Add(ctx, []domain.ServiceRecord{
		{Timestamp: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC), TechnicianID: "JOAO", Latitude: &lat, Longitude: &lon},
		{Timestamp: time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), TechnicianID: "MARIA"},
	})
	require.NoError(t, err)
	return path
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	noop := func(context.Context, *config.Config) (backend.Backend, error) { return nil, nil }

	assert.Error(t, r.Register("", noop))
	assert.Error(t, r.Register("x", nil))
	require.NoError(t, r.Register("x", noop))
	assert.Error(t, r.Register("x", noop))
	assert.Equal(t, []string{"x"}, r.ListBackends())

	_, err := r.Create(context.Background(), &config.Config{Backend: "y"})
	assert.Error(t, err)
	_, err = r.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestDefault_ListsBuiltins(t *testing.T) {
	assert.Equal(t,
		[]string{"databricks", "duckdb", "excel", "mysql", "postgres", "snowflake", "sqlite"},
		Default().ListBackends(),
	)
}

func TestTable(t *testing.T) {
	assert.Equal(t, "basic", Table(&config.Config{Backend: config.BackendPostgres}))
	assert.Equal(t, "servicos", Table(&config.Config{Backend: config.BackendMySQL}))
	assert.Equal(t, "servicos", Table(&config.Config{Backend: config.BackendSQLite}))
	assert.Equal(t, "Basic", Table(&config.Config{Backend: config.BackendPostgres, Table: "Basic"}))
	assert.Equal(t, "local", Table(&config.Config{Backend: config.BackendDuckDB, DuckDB: duckdb.Settings{Table: "local"}}))
}

func TestCreate_SQLiteDetectsColumns(t *testing.T) {
	// Given
	path := seedSQLite(t, "servicos")
	cfg := &config.Config{
		Backend:  config.BackendSQLite,
		SQLite:   client.SQLiteConfig{Path: path},
		PageSize: 1,
	}
	ctx := context.Background()

	// When
	b, err := Default().Create(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	// Then
	assert.Equal(t, "sqlite", b.Name())
	schema := b.(*sqlstore.Backend).Schema()
	assert.Equal(t, "LATIDUDE", schema.Columns[domain.FieldLatitude])
	assert.Equal(t, "DATA_TOA", schema.Columns[domain.FieldTimestamp])

	r, err := domain.NewQueryRange(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	set, err := b.FetchRange(ctx, r, backend.FetchOptions{RequireLocation: true})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "JOAO", set.Row(0)["TECNICO"])
}

func TestResolveSchema(t *testing.T) {
	path := seedSQLite(t, "atendimentos")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	t.Run("mapping wins", func(t *testing.T) {
		cfg := &config.Config{
			Backend: config.BackendSQLite,
			Table:   "atendimentos",
			Preset:  "neon",
			Columns: map[string]string{"timestamp": "DATA_TOA"},
		}
		s, err := ResolveSchema(ctx, db, sqlstore.SQLite, cfg)
		require.NoError(t, err)
		assert.Equal(t, map[domain.Field]string{domain.FieldTimestamp: "DATA_TOA"}, s.Columns)
	})

	t.Run("preset keeps configured table", func(t *testing.T) {
		cfg := &config.Config{Backend: config.BackendSQLite, Table: "atendimentos", Preset: "mysql"}
		s, err := ResolveSchema(ctx, db, sqlstore.SQLite, cfg)
		require.NoError(t, err)
		assert.Equal(t, "atendimentos", s.Table)
		assert.Equal(t, "LATITUDE", s.Columns[domain.FieldLatitude])
	})

	t.Run("auto detects on postgres-like config", func(t *testing.T) {
		cfg := &config.Config{Backend: config.BackendPostgres, Table: "atendimentos", Preset: PresetAuto}
		s, err := ResolveSchema(ctx, db, sqlstore.SQLite, cfg)
		require.NoError(t, err)
		assert.Equal(t, "VALOR TÉCNICO", s.Columns[domain.FieldTechnicianValue])
	})

	t.Run("key columns apply to any layout", func(t *testing.T) {
		cfg := &config.Config{Backend: config.BackendSQLite, Table: "atendimentos", Preset: "neon", KeyColumns: []string{"CONTRATO"}}
		s, err := ResolveSchema(ctx, db, sqlstore.SQLite, cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"CONTRATO"}, s.Key)
	})

	t.Run("unknown preset", func(t *testing.T) {
		cfg := &config.Config{Backend: config.BackendSQLite, Table: "atendimentos", Preset: "oracle"}
		_, err := ResolveSchema(ctx, db, sqlstore.SQLite, cfg)
		assert.Error(t, err)
	})

	t.Run("missing table", func(t *testing.T) {
		cfg := &config.Config{Backend: config.BackendSQLite, Table: "nope"}
		_, err := ResolveSchema(ctx, db, sqlstore.SQLite, cfg)
		assert.Error(t, err)
	})
}

func TestCreate_ExcelDetectsColumns(t *testing.T) {
	// Given
	f := excelize.NewFile()
	header := []any{"Data", "Técnico", "Latitude", "Longitude"}
	row := []any{"02/01/2025 08:00", "JOAO", -22.9, -47.06}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	path := filepath.Join(t.TempDir(), "servicos.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cfg := &config.Config{Backend: config.BackendExcel, Excel: config.ExcelConfig{Path: path}}
	ctx := context.Background()

	// When
	b, err := Default().Create(ctx, cfg)
	require.NoError(t, err)
	bounds, err := b.DateBounds(ctx)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "excel", b.Name())
	assert.EqualValues(t, 1, bounds.Count)
}

func TestOpenDB_RejectsExcel(t *testing.T) {
	_, _, err := OpenDB(&config.Config{Backend: config.BackendExcel})
	assert.Error(t, err)
}
