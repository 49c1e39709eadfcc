package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/services/cache"
	"github.com/de-tools/service-atlas/pkg/services/dashboard"
	"github.com/de-tools/service-atlas/pkg/services/importer"
	"github.com/de-tools/service-atlas/pkg/services/query"
	"github.com/de-tools/service-atlas/pkg/store/client"
	"github.com/de-tools/service-atlas/pkg/store/duckdb"
	"github.com/de-tools/service-atlas/pkg/store/sqlstore"
)

// EnvPrefix prefixes environment overrides, e.g. SERVICE_ATLAS_POSTGRES_URL.
const EnvPrefix = "SERVICE_ATLAS"

const (
	BackendPostgres   = "postgres"
	BackendMySQL      = "mysql"
	BackendSQLite     = "sqlite"
	BackendDuckDB     = "duckdb"
	BackendSnowflake  = "snowflake"
	BackendDatabricks = "databricks"
	BackendExcel      = "excel"
)

var Backends = []string{
	BackendPostgres, BackendMySQL, BackendSQLite, BackendDuckDB,
	BackendSnowflake, BackendDatabricks, BackendExcel,
}

var ErrMissingCredentials = errors.New("missing credentials")

type DatabricksConfig struct {
	client.DatabricksConfig `mapstructure:",squash"`
	// Profile reads host and token from a .databrickscfg section.
	Profile     string `mapstructure:"profile"`
	ProfileFile string `mapstructure:"profile_file"`
}

type ExcelConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Backend string `mapstructure:"backend"`
	// Preset selects a known table layout ("neon", "mysql").
	Preset string `mapstructure:"preset"`
	Table  string `mapstructure:"table"`
	// Columns maps field names (timestamp, technician_id, ...) to physical
	// columns. Left empty, columns are detected from the table.
	Columns map[string]string `mapstructure:"columns"`
	// KeyColumns identify a row; paging orders timestamp ties by them.
	// Left empty, every projected column is used.
	KeyColumns    []string `mapstructure:"key_columns"`
	PageSize      int      `mapstructure:"page_size"`
	CountCheck    bool     `mapstructure:"count_check"`
	EnsureIndexes bool     `mapstructure:"ensure_indexes"`

	Postgres   client.PostgresConfig  `mapstructure:"postgres"`
	MySQL      client.MySQLConfig     `mapstructure:"mysql"`
	SQLite     client.SQLiteConfig    `mapstructure:"sqlite"`
	DuckDB     duckdb.Settings        `mapstructure:"duckdb"`
	Snowflake  client.SnowflakeConfig `mapstructure:"snowflake"`
	Databricks DatabricksConfig       `mapstructure:"databricks"`
	Excel      ExcelConfig            `mapstructure:"excel"`

	Pool      sqlstore.PoolSettings `mapstructure:"pool"`
	Query     query.Settings        `mapstructure:"query"`
	Dashboard dashboard.Settings    `mapstructure:"dashboard"`
	Import    importer.Settings     `mapstructure:"import"`
	Log       LogConfig             `mapstructure:"log"`
	Server    ServerConfig          `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	pool := sqlstore.DefaultPoolSettings()

	v.SetDefault("backend", "")
	v.SetDefault("preset", "")
	v.SetDefault("table", "")
	v.SetDefault("page_size", sqlstore.DefaultPageSize)
	v.SetDefault("count_check", false)
	v.SetDefault("ensure_indexes", false)

	v.SetDefault("postgres.url", "")
	v.SetDefault("mysql.user", "")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.host", "")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.database", "")
	v.SetDefault("sqlite.path", "")
	v.SetDefault("duckdb.path", "")
	v.SetDefault("duckdb.table", duckdb.DefaultTable)
	v.SetDefault("duckdb.threads", 4)
	v.SetDefault("snowflake.account", "")
	v.SetDefault("snowflake.user", "")
	v.SetDefault("snowflake.password", "")
	v.SetDefault("snowflake.database", "")
	v.SetDefault("snowflake.schema", "")
	v.SetDefault("snowflake.warehouse", "")
	v.SetDefault("snowflake.role", "")
	v.SetDefault("databricks.host", "")
	v.SetDefault("databricks.token", "")
	v.SetDefault("databricks.http_path", "")
	v.SetDefault("databricks.catalog", "")
	v.SetDefault("databricks.schema", "")
	v.SetDefault("databricks.profile", "")
	v.SetDefault("databricks.profile_file", "")
	v.SetDefault("excel.path", "")
	v.SetDefault("excel.sheet", "")

	v.SetDefault("pool.max_open", pool.MaxOpen)
	v.SetDefault("pool.max_idle", pool.MaxIdle)
	v.SetDefault("pool.conn_max_lifetime", pool.ConnMaxLifetime)
	v.SetDefault("pool.conn_max_idle_time", time.Duration(0))
	v.SetDefault("query.timeout", query.DefaultTimeout)
	v.SetDefault("dashboard.cache.ttl", cache.DefaultTTL)
	v.SetDefault("dashboard.cache.size", cache.DefaultSize)
	v.SetDefault("dashboard.cache.single_flight", false)
	v.SetDefault("dashboard.bounds_ttl", dashboard.DefaultBoundsTTL)
	v.SetDefault("import.sheet", "")
	v.SetDefault("import.replace", true)
	v.SetDefault("import.title_case", true)
	v.SetDefault("import.indexes", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
}

// LoadConfig reads the optional config file at path, applies environment
// overrides and defaults, and validates the selected backend.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = cfg.inferBackend()
	}

	if cfg.Backend == BackendDatabricks && cfg.Databricks.Profile != "" {
		if err := cfg.applyDatabricksProfile(context.Background()); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// inferBackend picks the backend of a secrets file that only carries a
// [postgres] or [mysql] section.
func (c *Config) inferBackend() string {
	if c.Postgres.URL == "" && c.MySQL.Host != "" {
		return BackendMySQL
	}
	return BackendPostgres
}

func (c *Config) applyDatabricksProfile(ctx context.Context) error {
	file := c.Databricks.ProfileFile
	if file == "" {
		file = DefaultProfileFile()
	}
	profiles, err := NewProfileRegistry(file)
	if err != nil {
		return err
	}
	p, err := profiles.GetConnection(ctx, c.Databricks.Profile)
	if err != nil {
		return err
	}
	d := &c.Databricks.DatabricksConfig
	if d.Host == "" {
		d.Host = p.Host
	}
	if d.Token == "" {
		d.Token = p.Token
	}
	if d.HTTPPath == "" {
		d.HTTPPath = p.HTTPPath
	}
	if d.Catalog == "" {
		d.Catalog = p.Catalog
	}
	if d.Schema == "" {
		d.Schema = p.Schema
	}
	return nil
}

// Validate checks that the selected backend is known and has credentials.
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative")
	}
	if _, err := c.ColumnMapping(); err != nil {
		return err
	}

	missing := func(what string) error {
		return fmt.Errorf("%w: %s backend requires %s", ErrMissingCredentials, c.Backend, what)
	}
	switch c.Backend {
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return missing("postgres.url")
		}
	case BackendMySQL:
		if c.MySQL.User == "" || c.MySQL.Host == "" || c.MySQL.Database == "" {
			return missing("mysql.user, mysql.host and mysql.database")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return missing("sqlite.path")
		}
	case BackendDuckDB:
		if c.DuckDB.DbPath == "" {
			return missing("duckdb.path")
		}
	case BackendSnowflake:
		if c.Snowflake.Account == "" || c.Snowflake.User == "" {
			return missing("snowflake.account and snowflake.user")
		}
	case BackendDatabricks:
		d := c.Databricks
		if d.Host == "" || d.Token == "" || d.HTTPPath == "" {
			return missing("databricks.host, databricks.token and databricks.http_path")
		}
	case BackendExcel:
		if c.Excel.Path == "" {
			return missing("excel.path")
		}
	}
	return nil
}

// ColumnMapping converts the configured column names into field keys.
func (c *Config) ColumnMapping() (map[domain.Field]string, error) {
	if len(c.Columns) == 0 {
		return nil, nil
	}
	out := make(map[domain.Field]string, len(c.Columns))
	for name, column := range c.Columns {
		f := domain.Field(strings.ToLower(name))
		if !slices.Contains(domain.Fields, f) {
			return nil, fmt.Errorf("unknown column field %q", name)
		}
		out[f] = column
	}
	return out, nil
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger(base zerolog.Logger) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	return base.Level(level)
}
