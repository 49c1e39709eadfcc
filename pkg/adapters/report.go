package adapters

import (
	"maps"

	"github.com/de-tools/service-atlas/pkg/models/api"
	"github.com/de-tools/service-atlas/pkg/models/domain"
)

func MapOverviewDomainToApi(o domain.Overview) api.Overview {
	return api.Overview{
		Period: api.TimePeriod{
			Start: o.Period.Start,
			End:   o.Period.End,
			Days:  o.Period.Duration,
		},
		TotalServices:        o.TotalServices,
		Technicians:          o.Technicians,
		Cities:               o.Cities,
		DailyAverage:         o.DailyAverage,
		TechnicianValueTotal: o.TechnicianValueTotal,
		CompanyValueTotal:    o.CompanyValueTotal,
		Located:              o.Located,
		Unparsed:             o.Unparsed,
	}
}

func MapTechnicianMetricsDomainToApi(metrics []domain.TechnicianMetrics) []api.TechnicianMetrics {
	out := make([]api.TechnicianMetrics, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, api.TechnicianMetrics{
			TechnicianID:       m.TechnicianID,
			DaysWorked:         m.DaysWorked,
			ContractsExecuted:  m.ContractsExecuted,
			TotalValue:         m.TotalValue,
			ContractsPerDay:    m.ContractsPerDay,
			ValuePerDay:        m.ValuePerDay,
			StatusDistribution: maps.Clone(m.StatusDistribution),
		})
	}
	return out
}

func MapCityMetricsDomainToApi(metrics []domain.CityMetrics) []api.CityMetrics {
	out := make([]api.CityMetrics, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, api.CityMetrics{
			City:      m.City,
			Services:  m.Services,
			Completed: m.Completed,
			ByStatus:  maps.Clone(m.ByStatus),
		})
	}
	return out
}
