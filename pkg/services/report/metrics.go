package report

import (
	"slices"
	"strings"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

const (
	StatusExecuted  = "EXECUTADO"
	StatusCompleted = "concluído"
)

// Technicians aggregates executed services per technician. Contracts are
// counted once per day; records without a contract are ignored for the
// contract and value metrics. The status distribution covers every status
// and counts each contract once per status.
func Technicians(records []domain.ServiceRecord) []domain.TechnicianMetrics {
	type contractDay struct {
		day      string
		contract string
	}
	type acc struct {
		days      map[string]struct{}
		contracts map[contractDay]struct{}
		value     float64
		statuses  map[string]map[string]struct{}
	}

	byTech := map[string]*acc{}
	get := func(id string) *acc {
		a, ok := byTech[id]
		if !ok {
			a = &acc{
				days:      map[string]struct{}{},
				contracts: map[contractDay]struct{}{},
				statuses:  map[string]map[string]struct{}{},
			}
			byTech[id] = a
		}
		return a
	}

	for _, rec := range records {
		if rec.Contract == "" {
			continue
		}
		a := get(rec.TechnicianID)
		if a.statuses[rec.Status] == nil {
			a.statuses[rec.Status] = map[string]struct{}{}
		}
		a.statuses[rec.Status][rec.Contract] = struct{}{}

		if !strings.EqualFold(strings.TrimSpace(rec.Status), StatusExecuted) {
			continue
		}
		day := rec.Timestamp.Format("2006-01-02")
		a.days[day] = struct{}{}
		a.contracts[contractDay{day: day, contract: rec.Contract}] = struct{}{}
		a.value += rec.TechnicianValue
	}

	out := make([]domain.TechnicianMetrics, 0, len(byTech))
	for id, a := range byTech {
		if len(a.days) == 0 {
			continue
		}
		m := domain.TechnicianMetrics{
			TechnicianID:       id,
			DaysWorked:         len(a.days),
			ContractsExecuted:  len(a.contracts),
			TotalValue:         a.value,
			StatusDistribution: make(map[string]int, len(a.statuses)),
		}
		for status, contracts := range a.statuses {
			m.StatusDistribution[status] = len(contracts)
		}
		if m.DaysWorked > 0 {
			m.ContractsPerDay = float64(m.ContractsExecuted) / float64(m.DaysWorked)
			m.ValuePerDay = m.TotalValue / float64(m.DaysWorked)
		}
		out = append(out, m)
	}

	slices.SortFunc(out, func(a, b domain.TechnicianMetrics) int {
		if a.ContractsExecuted != b.ContractsExecuted {
			return b.ContractsExecuted - a.ContractsExecuted
		}
		return strings.Compare(a.TechnicianID, b.TechnicianID)
	})
	return out
}

// Cities counts services per city with their status breakdown.
func Cities(records []domain.ServiceRecord) []domain.CityMetrics {
	byCity := map[string]*domain.CityMetrics{}
	for _, rec := range records {
		m, ok := byCity[rec.City]
		if !ok {
			m = &domain.CityMetrics{City: rec.City, ByStatus: map[string]int{}}
			byCity[rec.City] = m
		}
		m.Services++
		m.ByStatus[rec.Status]++
		if IsCompleted(rec.Status) {
			m.Completed++
		}
	}

	out := make([]domain.CityMetrics, 0, len(byCity))
	for _, m := range byCity {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b domain.CityMetrics) int {
		if a.Services != b.Services {
			return b.Services - a.Services
		}
		return strings.Compare(a.City, b.City)
	})
	return out
}

// IsCompleted matches statuses containing "Concluído" in any letter case.
func IsCompleted(status string) bool {
	return strings.Contains(strings.ToLower(status), StatusCompleted)
}

// Overview summarizes records over r.
func Overview(records []domain.ServiceRecord, r domain.QueryRange) domain.Overview {
	techs := map[string]struct{}{}
	cities := map[string]struct{}{}
	o := domain.Overview{
		Period:        domain.TimePeriod{Start: r.Start, End: r.End, Duration: r.Days()},
		TotalServices: len(records),
	}
	for _, rec := range records {
		techs[rec.TechnicianID] = struct{}{}
		cities[rec.City] = struct{}{}
		o.TechnicianValueTotal += rec.TechnicianValue
		o.CompanyValueTotal += rec.CompanyValue
		if rec.HasLocation() {
			o.Located++
		}
		if rec.Unparsed() {
			o.Unparsed++
		}
	}
	o.Technicians = len(techs)
	o.Cities = len(cities)
	if o.Period.Duration > 0 && !r.Start.IsZero() {
		o.DailyAverage = float64(o.TotalServices) / float64(o.Period.Duration)
	}
	return o
}

// Hourly counts services per hour of the day.
func Hourly(records []domain.ServiceRecord) [24]int {
	var hours [24]int
	for _, rec := range records {
		hours[rec.Timestamp.Hour()]++
	}
	return hours
}

func sortStrings(s []string) {
	slices.Sort(s)
}
