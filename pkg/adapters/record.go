package adapters

import (
	"github.com/de-tools/service-atlas/pkg/models/api"
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/parse"
)

// CanonicalColumns names the physical columns written by the importer and
// produced by MapServiceRecordToRawRow.
var CanonicalColumns = map[domain.Field]string{
	domain.FieldTimestamp:       "DATA_TOA",
	domain.FieldTechnician:      "TECNICO",
	domain.FieldCity:            "CIDADES",
	domain.FieldBase:            "BASE",
	domain.FieldStatus:          "STATUS",
	domain.FieldServiceType:     "SERVIÇO",
	domain.FieldLatitude:        "LATIDUDE",
	domain.FieldLongitude:       "LONGITUDE",
	domain.FieldTechnicianValue: "VALOR TÉCNICO",
	domain.FieldCompanyValue:    "VALOR EMPRESA",
	domain.FieldContract:        "CONTRATO",
	domain.FieldOrderID:         "OS",
}

// MapServiceRecordToRawRow renders a record with canonical column names and
// typed values. Absent coordinates become nil.
func MapServiceRecordToRawRow(rec domain.ServiceRecord) store.RawRow {
	row := store.RawRow{
		CanonicalColumns[domain.FieldTimestamp]:       rec.Timestamp,
		CanonicalColumns[domain.FieldTechnician]:      rec.TechnicianID,
		CanonicalColumns[domain.FieldCity]:            rec.City,
		CanonicalColumns[domain.FieldBase]:            rec.Base,
		CanonicalColumns[domain.FieldStatus]:          rec.Status,
		CanonicalColumns[domain.FieldServiceType]:     rec.ServiceType,
		CanonicalColumns[domain.FieldTechnicianValue]: rec.TechnicianValue,
		CanonicalColumns[domain.FieldCompanyValue]:    rec.CompanyValue,
		CanonicalColumns[domain.FieldContract]:        rec.Contract,
		CanonicalColumns[domain.FieldOrderID]:         rec.OrderID,
		CanonicalColumns[domain.FieldLatitude]:        nil,
		CanonicalColumns[domain.FieldLongitude]:       nil,
	}
	if rec.Latitude != nil {
		row[CanonicalColumns[domain.FieldLatitude]] = *rec.Latitude
	}
	if rec.Longitude != nil {
		row[CanonicalColumns[domain.FieldLongitude]] = *rec.Longitude
	}
	return row
}

func MapServiceRecordDomainToApi(rec domain.ServiceRecord) api.ServiceRecord {
	out := api.ServiceRecord{
		Timestamp:       rec.Timestamp,
		TechnicianID:    rec.TechnicianID,
		City:            rec.City,
		Base:            rec.Base,
		BaseType:        domain.ClassifyBase(rec.Base),
		Status:          rec.Status,
		ServiceType:     rec.ServiceType,
		Latitude:        rec.Latitude,
		Longitude:       rec.Longitude,
		TechnicianValue: rec.TechnicianValue,
		CompanyValue:    rec.CompanyValue,
		Contract:        rec.Contract,
		OrderID:         rec.OrderID,
	}
	if rec.TechnicianValueUnparsed {
		out.Unparsed = append(out.Unparsed, string(domain.FieldTechnicianValue))
	}
	if rec.CompanyValueUnparsed {
		out.Unparsed = append(out.Unparsed, string(domain.FieldCompanyValue))
	}
	return out
}

func MapNoticesDomainToApi(notices []domain.Notice) []api.Notice {
	out := make([]api.Notice, 0, len(notices))
	for _, n := range notices {
		out = append(out, api.Notice{Level: string(n.Level), Message: n.Message})
	}
	return out
}

func MapResultDomainToApi(result domain.Result) api.ServicesResponse {
	resp := api.ServicesResponse{
		Records:    make([]api.ServiceRecord, 0, len(result.Records)),
		Notices:    MapNoticesDomainToApi(result.Notices),
		Stats:      api.NormalizeStats(result.Stats),
		Failed:     result.Failed,
		Invalid:    result.Invalid,
		DurationMS: result.Duration.Milliseconds(),
	}
	if !result.Range.Start.IsZero() || !result.Range.End.IsZero() {
		resp.Period = &api.TimePeriod{
			Start: result.Range.Start,
			End:   result.Range.End,
			Days:  result.Range.Days(),
		}
	}
	for _, rec := range result.Records {
		resp.Records = append(resp.Records, MapServiceRecordDomainToApi(rec))
	}
	return resp
}

func MapDateBoundsDomainToApi(bounds *domain.DateBounds, notices []domain.Notice) api.DateBounds {
	out := api.DateBounds{Notices: MapNoticesDomainToApi(notices)}
	if bounds != nil {
		out.First = bounds.First
		out.Last = bounds.Last
		out.Count = bounds.Count
	}
	return out
}

// MapDateBoundsStoreToDomain parses the raw MIN/MAX values of a backend.
// Unparseable bounds are left nil.
func MapDateBoundsStoreToDomain(raw store.DateBounds) domain.DateBounds {
	out := domain.DateBounds{Count: raw.Count}
	if ts, ok := parse.Timestamp(raw.First); ok {
		out.First = &ts
	}
	if ts, ok := parse.Timestamp(raw.Last); ok {
		out.Last = &ts
	}
	return out
}
