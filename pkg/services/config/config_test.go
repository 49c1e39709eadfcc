package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_SecretsPostgres(t *testing.T) {
	// Given
	path := writeFile(t, "secrets.toml", `
[postgres]
url = "postgresql://user:pw@ep-neon.aws.neon.tech/neondb?sslmode=require"
`)

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgresql://user:pw@ep-neon.aws.neon.tech/neondb?sslmode=require", cfg.Postgres.URL)
	assert.Equal(t, 5000, cfg.PageSize)
	assert.Equal(t, 15, cfg.Pool.MaxOpen)
	assert.Equal(t, 5, cfg.Pool.MaxIdle)
	assert.Equal(t, 30*time.Minute, cfg.Pool.ConnMaxLifetime)
	assert.Equal(t, 30*time.Second, cfg.Query.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.Cache.TTL)
	assert.Equal(t, time.Hour, cfg.Dashboard.BoundsTTL)
	assert.False(t, cfg.Dashboard.Cache.SingleFlight)
	assert.True(t, cfg.Import.Replace)
}

func TestLoadConfig_SecretsMySQL(t *testing.T) {
	// Given
	path := writeFile(t, "secrets.toml", `
[mysql]
user = "dash"
password = "pw"
host = "mysql.local"
database = "campo"
`)

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, BackendMySQL, cfg.Backend)
	assert.Equal(t, "dash", cfg.MySQL.User)
	assert.Equal(t, 3306, cfg.MySQL.Port)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	// Given
	t.Setenv("SERVICE_ATLAS_BACKEND", "SQLite")
	t.Setenv("SERVICE_ATLAS_SQLITE_PATH", "/tmp/servicos.db")
	t.Setenv("SERVICE_ATLAS_QUERY_TIMEOUT", "5s")

	// When
	cfg, err := LoadConfig("")

	// Then
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/servicos.db", cfg.SQLite.Path)
	assert.Equal(t, 5*time.Second, cfg.Query.Timeout)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend: snowflake\n")

	_, err := LoadConfig(path)

	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend: oracle\n")

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeFile(t, "bad.yaml", "backend: excel: bad")

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestLoadConfig_ColumnMapping(t *testing.T) {
	// Given
	path := writeFile(t, "config.yaml", `
backend: sqlite
table: atendimentos
sqlite:
  path: /tmp/a.db
columns:
  timestamp: DT_ATEND
  latitude: LAT
`)

	// When
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	mapping, err := cfg.ColumnMapping()

	// Then
	require.NoError(t, err)
	assert.Equal(t, "atendimentos", cfg.Table)
	assert.Equal(t, map[domain.Field]string{
		domain.FieldTimestamp: "DT_ATEND",
		domain.FieldLatitude:  "LAT",
	}, mapping)
}

func TestLoadConfig_UnknownColumnField(t *testing.T) {
	path := writeFile(t, "config.yaml", `
backend: sqlite
sqlite:
  path: /tmp/a.db
columns:
  weather: CLIMA
`)

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestLoadConfig_DatabricksProfile(t *testing.T) {
	// Given
	profiles := writeFile(t, ".databrickscfg", `
[DEFAULT]
host = https://default.cloud.databricks.com
token = dapi-default

[campo]
host = https://campo.cloud.databricks.com
token = dapi-campo
`)
	path := writeFile(t, "config.yaml", `
backend: databricks
databricks:
  profile: campo
  profile_file: `+profiles+`
  http_path: /sql/1.0/warehouses/wh
`)

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "https://campo.cloud.databricks.com", cfg.Databricks.Host)
	assert.Equal(t, "dapi-campo", cfg.Databricks.Token)
	assert.Equal(t, "/sql/1.0/warehouses/wh", cfg.Databricks.HTTPPath)
}

func TestProfileRegistry(t *testing.T) {
	// Given
	path := writeFile(t, ".databrickscfg", `
[DEFAULT]
host = https://default.cloud.databricks.com
token = dapi-default

[empty]
`)
	ctx := context.Background()

	// When
	registry, err := NewProfileRegistry(path)
	require.NoError(t, err)
	profiles, err := registry.GetProfiles(ctx)
	require.NoError(t, err)

	// Then
	assert.Equal(t, []string{"DEFAULT"}, profiles)
	sdkCfg, err := registry.GetConfig(ctx, "DEFAULT")
	require.NoError(t, err)
	assert.Equal(t, "https://default.cloud.databricks.com", sdkCfg.Host)
	assert.Equal(t, "dapi-default", sdkCfg.Token)
	_, err = registry.GetConfig(ctx, "missing")
	assert.Error(t, err)
	_, err = registry.GetConfig(ctx, "empty")
	assert.Error(t, err)
}

func TestConfig_Logger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "debug"}}
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger(zerolog.Nop()).GetLevel())

	cfg.Log.Level = "nonsense"
	assert.Equal(t, zerolog.InfoLevel, cfg.Logger(zerolog.Nop()).GetLevel())
}
