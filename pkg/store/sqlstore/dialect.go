package sqlstore

import (
	"fmt"
	"strings"
	"time"
)

// ParamLayout is the textual form of bound timestamps for dialects that
// compare against text columns.
const ParamLayout = "2006-01-02 15:04:05"

// Dialect captures the SQL differences between supported engines.
type Dialect struct {
	Name string
	// QuoteOpen and QuoteClose delimit identifiers.
	QuoteOpen  string
	QuoteClose string
	// NumberedParams renders placeholders as $1, $2 instead of ?.
	NumberedParams bool
	// TimestampCast is appended to the timestamp column in filters and
	// aggregates, e.g. "::timestamp".
	TimestampCast string
	// BindTime passes time.Time parameters; otherwise they are bound as text
	// in ParamLayout.
	BindTime bool
	// Indexes reports whether CREATE INDEX IF NOT EXISTS is available.
	Indexes bool

	// Column types used when creating the service table.
	TimestampType string
	TextType      string
	FloatType     string
}

var (
	Postgres = Dialect{
		Name:           "postgres",
		QuoteOpen:      `"`,
		QuoteClose:     `"`,
		NumberedParams: true,
		TimestampCast:  "::timestamp",
		BindTime:       true,
		Indexes:        true,
		TimestampType:  "TIMESTAMP",
		TextType:       "TEXT",
		FloatType:      "DOUBLE PRECISION",
	}
	MySQL = Dialect{
		Name:       "mysql",
		QuoteOpen:  "`",
		QuoteClose: "`",
		BindTime:   true,

		TimestampType: "DATETIME",
		TextType:      "VARCHAR(255)",
		FloatType:     "DOUBLE",
	}
	SQLite = Dialect{
		Name:       "sqlite",
		QuoteOpen:  `"`,
		QuoteClose: `"`,
		Indexes:    true,

		TimestampType: "TEXT",
		TextType:      "TEXT",
		FloatType:     "REAL",
	}
	DuckDB = Dialect{
		Name:       "duckdb",
		QuoteOpen:  `"`,
		QuoteClose: `"`,
		BindTime:   true,
		Indexes:    true,

		TimestampType: "TIMESTAMP",
		TextType:      "VARCHAR",
		FloatType:     "DOUBLE",
	}
	Snowflake = Dialect{
		Name:       "snowflake",
		QuoteOpen:  `"`,
		QuoteClose: `"`,
		BindTime:   true,

		TimestampType: "TIMESTAMP_NTZ",
		TextType:      "VARCHAR",
		FloatType:     "DOUBLE",
	}
	Databricks = Dialect{
		Name:       "databricks",
		QuoteOpen:  "`",
		QuoteClose: "`",
		BindTime:   true,

		TimestampType: "TIMESTAMP",
		TextType:      "STRING",
		FloatType:     "DOUBLE",
	}
)

var dialects = map[string]Dialect{
	Postgres.Name:   Postgres,
	MySQL.Name:      MySQL,
	SQLite.Name:     SQLite,
	DuckDB.Name:     DuckDB,
	Snowflake.Name:  Snowflake,
	Databricks.Name: Databricks,
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
	}
	return d, nil
}

// Quote renders a quoted identifier. Dotted names are quoted per part.
func (d Dialect) Quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		p = strings.ReplaceAll(p, d.QuoteClose, d.QuoteClose+d.QuoteClose)
		parts[i] = d.QuoteOpen + p + d.QuoteClose
	}
	return strings.Join(parts, ".")
}

// Placeholder renders the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d.NumberedParams {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Bind converts a boundary timestamp into a driver argument.
func (d Dialect) Bind(t time.Time) any {
	if d.BindTime {
		return t.UTC()
	}
	return t.UTC().Format(ParamLayout)
}

func (d Dialect) timestampExpr(column string) string {
	return d.Quote(column) + d.TimestampCast
}
