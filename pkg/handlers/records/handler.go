package records

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/adapters"
	"github.com/de-tools/service-atlas/pkg/models/api"
	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/services/dashboard"
	"github.com/de-tools/service-atlas/pkg/services/notify"
	"github.com/de-tools/service-atlas/pkg/services/report"
)

type Handler struct {
	controller dashboard.Controller
}

func NewHandler(controller dashboard.Controller) *Handler {
	return &Handler{controller: controller}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}

// ParseRequest reads the range, ordering and filter parameters of a query
// string. Filter values may repeat or be comma separated.
func ParseRequest(q url.Values) (domain.Request, report.Filter, error) {
	order, err := domain.ParseOrder(strings.ToLower(q.Get("order")))
	if err != nil {
		return domain.Request{}, report.Filter{}, err
	}
	req := domain.Request{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Order: order,
	}
	if v := q.Get("located"); v != "" {
		req.RequireLocation, err = strconv.ParseBool(v)
		if err != nil {
			return domain.Request{}, report.Filter{}, fmt.Errorf("invalid located flag %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, err = strconv.Atoi(v)
		if err != nil || req.Limit < 0 {
			return domain.Request{}, report.Filter{}, fmt.Errorf("invalid limit %q", v)
		}
	}

	f := report.Filter{
		Cities:      values(q, "city"),
		Technicians: values(q, "technician"),
		Bases:       values(q, "base"),
		BaseTypes:   values(q, "base_type"),
		Services:    values(q, "service"),
		Statuses:    values(q, "status"),
	}
	return req, f, nil
}

func values(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// load runs one dashboard cycle for the request. ok is false when a
// response was already written.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (domain.Result, report.Filter, bool) {
	req, f, err := ParseRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return domain.Result{}, f, false
	}

	result := h.controller.Load(r.Context(), req)
	if result.Invalid {
		writeJSON(w, r, http.StatusBadRequest, adapters.MapResultDomainToApi(result))
		return domain.Result{}, f, false
	}
	return result, f, true
}

func status(result domain.Result) int {
	if result.Failed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	result, f, ok := h.load(w, r)
	if !ok {
		return
	}
	result.Records = f.Apply(result.Records)
	writeJSON(w, r, status(result), adapters.MapResultDomainToApi(result))
}

func (h *Handler) GetBounds(w http.ResponseWriter, r *http.Request) {
	collector := &notify.Collector{Next: notify.From(r.Context())}
	ctx := notify.WithNotifier(r.Context(), collector)

	bounds := h.controller.Bounds(ctx)
	code := http.StatusOK
	if bounds == nil {
		code = http.StatusNotFound
	}
	writeJSON(w, r, code, adapters.MapDateBoundsDomainToApi(bounds, collector.Notices()))
}

func (h *Handler) ListColumns(w http.ResponseWriter, r *http.Request) {
	cols, resolved := h.controller.Columns(r.Context())
	if cols == nil {
		writeJSON(w, r, http.StatusBadGateway, errorResponse{Error: "failed to list columns"})
		return
	}
	out := api.Columns{Columns: cols, Resolved: make(map[string]string, len(resolved))}
	for f, c := range resolved {
		out.Resolved[string(f)] = c
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	switch kind {
	case "overview", "technicians", "cities", "filters":
	default:
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown report %q", kind)})
		return
	}

	result, f, ok := h.load(w, r)
	if !ok {
		return
	}
	code := status(result)
	if kind == "filters" {
		// options come from the unfiltered period
		opts := report.Options(result.Records)
		writeJSON(w, r, code, api.FilterOptions{
			Cities:      opts.Cities,
			Technicians: opts.Technicians,
			Bases:       opts.Bases,
			BaseTypes:   opts.BaseTypes,
			Services:    opts.Services,
			Statuses:    opts.Statuses,
		})
		return
	}
	result.Records = f.Apply(result.Records)
	switch kind {
	case "overview":
		writeJSON(w, r, code, adapters.MapOverviewDomainToApi(report.Overview(result.Records, result.Range)))
	case "technicians":
		writeJSON(w, r, code, adapters.MapTechnicianMetricsDomainToApi(report.Technicians(result.Records)))
	case "cities":
		writeJSON(w, r, code, adapters.MapCityMetricsDomainToApi(report.Cities(result.Records)))
	}
}
