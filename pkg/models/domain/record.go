package domain

import "time"

// Unspecified replaces missing categorical values. Stored data written by the
// importer uses the same value, so grouping keys match across sources.
const Unspecified = "Não Especificado"

// ServiceRecord is the canonical, typed representation of one field service.
type ServiceRecord struct {
	Timestamp    time.Time
	TechnicianID string
	City         string
	Base         string
	Status       string
	ServiceType  string

	// nil means the source had no usable coordinate. 0.0 is a valid value.
	Latitude  *float64
	Longitude *float64

	TechnicianValue float64
	CompanyValue    float64

	// Set when a non-empty source amount could not be parsed and was zero-filled.
	TechnicianValueUnparsed bool
	CompanyValueUnparsed    bool

	Contract string
	OrderID  string
}

// HasLocation reports whether both coordinates are present.
func (r ServiceRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Unparsed reports whether any monetary value was zero-filled after a parse failure.
func (r ServiceRecord) Unparsed() bool {
	return r.TechnicianValueUnparsed || r.CompanyValueUnparsed
}

// Field names a logical column of a ServiceRecord.
type Field string

const (
	FieldTimestamp       Field = "timestamp"
	FieldTechnician      Field = "technician_id"
	FieldCity            Field = "city"
	FieldBase            Field = "base"
	FieldStatus          Field = "status"
	FieldServiceType     Field = "service_type"
	FieldLatitude        Field = "latitude"
	FieldLongitude       Field = "longitude"
	FieldTechnicianValue Field = "technician_value"
	FieldCompanyValue    Field = "company_value"
	FieldContract        Field = "contract"
	FieldOrderID         Field = "order_id"
)

// Fields lists every logical column in select order.
var Fields = []Field{
	FieldTimestamp,
	FieldTechnician,
	FieldCity,
	FieldBase,
	FieldStatus,
	FieldServiceType,
	FieldLatitude,
	FieldLongitude,
	FieldTechnicianValue,
	FieldCompanyValue,
	FieldContract,
	FieldOrderID,
}
