package report

import (
	"fmt"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

const (
	Currency = "BRL"
	// TopN bounds the technician and city sections.
	TopN = 10
)

// Build renders a result as a sectioned report. The filter is applied to
// the result records first.
func Build(result domain.Result, f Filter) *domain.Report {
	records := f.Apply(result.Records)
	overview := Overview(records, result.Range)

	report := &domain.Report{
		Title:           "Field Service Report",
		Period:          overview.Period,
		Services:        overview.TotalServices,
		TechnicianValue: overview.TechnicianValueTotal,
		CompanyValue:    overview.CompanyValueTotal,
		Currency:        Currency,
	}

	report.Sections = append(report.Sections, domain.ReportSection{
		Title: "Overview",
		Summary: map[string]any{
			"Total Services":   overview.TotalServices,
			"Technicians":      overview.Technicians,
			"Cities":           overview.Cities,
			"Daily Average":    fmt.Sprintf("%.2f", overview.DailyAverage),
			"Located Services": overview.Located,
			"Unparsed Amounts": overview.Unparsed,
		},
	})

	techs := Technicians(records)
	techSection := domain.ReportSection{
		Title:   "Technicians (executed)",
		Summary: map[string]any{"Technicians": len(techs)},
	}
	for i, m := range techs {
		if i == TopN {
			break
		}
		techSection.Details = append(techSection.Details, domain.ReportDetail{
			Name:  m.TechnicianID,
			Value: m.ContractsExecuted,
			Unit:  "contracts",
			Note: fmt.Sprintf("%d days, %.2f/day, %s %.2f (%.2f/day)",
				m.DaysWorked, m.ContractsPerDay, Currency, m.TotalValue, m.ValuePerDay),
		})
	}
	report.Sections = append(report.Sections, techSection)

	cities := Cities(records)
	citySection := domain.ReportSection{
		Title:   "Cities",
		Summary: map[string]any{"Cities": len(cities)},
	}
	for i, m := range cities {
		if i == TopN {
			break
		}
		citySection.Details = append(citySection.Details, domain.ReportDetail{
			Name:  m.City,
			Value: m.Services,
			Unit:  "services",
			Note:  fmt.Sprintf("%d completed", m.Completed),
		})
	}
	report.Sections = append(report.Sections, citySection)

	hourSection := domain.ReportSection{Title: "Demand by Hour"}
	for hour, n := range Hourly(records) {
		if n == 0 {
			continue
		}
		hourSection.Details = append(hourSection.Details, domain.ReportDetail{
			Name:  fmt.Sprintf("%02d:00", hour),
			Value: n,
			Unit:  "services",
		})
	}
	report.Sections = append(report.Sections, hourSection)

	return report
}
