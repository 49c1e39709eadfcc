package report

import (
	"github.com/de-tools/service-atlas/pkg/models/domain"
)

// Filter is a set of multiselect constraints. An empty list does not
// constrain its field.
type Filter struct {
	Cities      []string
	Technicians []string
	Bases       []string
	BaseTypes   []string
	Services    []string
	Statuses    []string
}

func (f Filter) IsEmpty() bool {
	return len(f.Cities) == 0 && len(f.Technicians) == 0 && len(f.Bases) == 0 &&
		len(f.BaseTypes) == 0 && len(f.Services) == 0 && len(f.Statuses) == 0
}

// Apply returns the records matching every constraint of f.
func (f Filter) Apply(records []domain.ServiceRecord) []domain.ServiceRecord {
	if f.IsEmpty() {
		return records
	}
	cities, techs, bases := set(f.Cities), set(f.Technicians), set(f.Bases)
	baseTypes, services, statuses := set(f.BaseTypes), set(f.Services), set(f.Statuses)

	out := make([]domain.ServiceRecord, 0, len(records))
	for _, rec := range records {
		if !match(cities, rec.City) ||
			!match(techs, rec.TechnicianID) ||
			!match(bases, rec.Base) ||
			!match(baseTypes, domain.ClassifyBase(rec.Base)) ||
			!match(services, rec.ServiceType) ||
			!match(statuses, rec.Status) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Options lists the distinct values available for each filter.
func Options(records []domain.ServiceRecord) Filter {
	var opts Filter
	seen := map[string]map[string]bool{}
	add := func(kind string, dst *[]string, v string) {
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if !seen[kind][v] {
			seen[kind][v] = true
			*dst = append(*dst, v)
		}
	}
	for _, rec := range records {
		add("city", &opts.Cities, rec.City)
		add("technician", &opts.Technicians, rec.TechnicianID)
		add("base", &opts.Bases, rec.Base)
		add("base_type", &opts.BaseTypes, domain.ClassifyBase(rec.Base))
		add("service", &opts.Services, rec.ServiceType)
		add("status", &opts.Statuses, rec.Status)
	}
	for _, l := range [][]string{opts.Cities, opts.Technicians, opts.Bases, opts.BaseTypes, opts.Services, opts.Statuses} {
		sortStrings(l)
	}
	return opts
}

func set(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func match(s map[string]struct{}, v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}
