package normalize

import (
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/parse"
)

// Aliases maps each logical field to the folded column keys (see
// parse.ColumnKey) it may appear under, in preference order.
var Aliases = map[domain.Field][]string{
	domain.FieldTimestamp:       {"DATATOA", "DATA", "TIMESTAMP", "DATAHORA"},
	domain.FieldTechnician:      {"TECNICO", "TECHNICIAN", "TECHNICIANID"},
	domain.FieldCity:            {"CIDADES", "CIDADE", "CITY"},
	domain.FieldBase:            {"BASE"},
	domain.FieldStatus:          {"STATUS"},
	domain.FieldServiceType:     {"SERVICO", "SERVICETYPE", "TIPODESERVICO"},
	domain.FieldLatitude:        {"LATITUDE", "LATIDUDE", "LAT"},
	domain.FieldLongitude:       {"LONGITUDE", "LONG", "LON", "LNG"},
	domain.FieldTechnicianValue: {"VALORTECNICO", "TECHNICIANVALUE"},
	domain.FieldCompanyValue:    {"VALOREMPRESA", "COMPANYVALUE"},
	domain.FieldContract:        {"CONTRATO", "CONTRACT"},
	domain.FieldOrderID:         {"OS", "ORDERID"},
}

// ColumnIndex resolves logical fields to column positions of a row set.
type ColumnIndex struct {
	positions map[domain.Field]int
	names     map[domain.Field]string
}

// ResolveColumns matches physical column names against Aliases. Fields
// without a matching column are absent from the index.
func ResolveColumns(columns []string) ColumnIndex {
	byKey := make(map[string]int, len(columns))
	for i, col := range columns {
		key := parse.ColumnKey(col)
		if _, exists := byKey[key]; !exists {
			byKey[key] = i
		}
	}

	idx := ColumnIndex{
		positions: make(map[domain.Field]int, len(Aliases)),
		names:     make(map[domain.Field]string, len(Aliases)),
	}
	for field, aliases := range Aliases {
		for _, alias := range aliases {
			if pos, ok := byKey[alias]; ok {
				idx.positions[field] = pos
				idx.names[field] = columns[pos]
				break
			}
		}
	}
	return idx
}

// Column returns the physical column name of a field.
func (c ColumnIndex) Column(field domain.Field) (string, bool) {
	name, ok := c.names[field]
	return name, ok
}

// Columns returns the physical name of every resolved field.
func (c ColumnIndex) Columns() map[domain.Field]string {
	out := make(map[domain.Field]string, len(c.names))
	for f, n := range c.names {
		out[f] = n
	}
	return out
}

func (c ColumnIndex) value(row []any, field domain.Field) any {
	pos, ok := c.positions[field]
	if !ok || pos >= len(row) {
		return nil
	}
	return row[pos]
}
