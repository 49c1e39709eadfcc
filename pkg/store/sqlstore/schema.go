package sqlstore

import (
	"errors"
	"fmt"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

var ErrNoTimestampColumn = errors.New("schema has no timestamp column")

// Schema locates the service table and the physical columns the backend
// filters, orders and indexes on.
type Schema struct {
	Table   string
	Columns map[domain.Field]string
	// Select lists the projected columns; empty selects every column.
	Select []string
	// Key lists columns that identify a row, used to order rows sharing a
	// timestamp when paging.
	Key []string
}

// NeonSchema is the layout of the postgres "basic" table.
var NeonSchema = Schema{
	Table: "basic",
	Columns: map[domain.Field]string{
		domain.FieldTimestamp:  "DATA_TOA",
		domain.FieldTechnician: "TECNICO",
		domain.FieldCity:       "CIDADES",
		domain.FieldLatitude:   "LATIDUDE",
		domain.FieldLongitude:  "LONGITUDE",
	},
}

// MySQLSchema is the layout of the mysql "servicos" table.
var MySQLSchema = Schema{
	Table: "servicos",
	Columns: map[domain.Field]string{
		domain.FieldTimestamp:  "DATA_TOA",
		domain.FieldTechnician: "TECNICO",
		domain.FieldCity:       "CIDADES",
		domain.FieldLatitude:   "LATITUDE",
		domain.FieldLongitude:  "LONGITUDE",
	},
	Select: []string{"DATA_TOA", "TECNICO", "CIDADES", "SERVICO", "STATUS", "LATITUDE", "LONGITUDE"},
}

var presets = map[string]Schema{
	"neon":  NeonSchema,
	"mysql": MySQLSchema,
}

// Preset returns a copy of a named schema preset.
func Preset(name string) (Schema, bool) {
	s, ok := presets[name]
	if !ok {
		return Schema{}, false
	}
	return s.WithTable(s.Table), true
}

// WithTable returns a copy of s reading from table.
func (s Schema) WithTable(table string) Schema {
	cols := make(map[domain.Field]string, len(s.Columns))
	for f, c := range s.Columns {
		cols[f] = c
	}
	return Schema{
		Table:   table,
		Columns: cols,
		Select:  append([]string(nil), s.Select...),
		Key:     append([]string(nil), s.Key...),
	}
}

func (s Schema) Column(f domain.Field) (string, bool) {
	c, ok := s.Columns[f]
	return c, ok && c != ""
}

func (s Schema) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("schema table name is empty")
	}
	if _, ok := s.Column(domain.FieldTimestamp); !ok {
		return ErrNoTimestampColumn
	}
	return nil
}
