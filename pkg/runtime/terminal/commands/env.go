package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/runtime/session"
	"github.com/de-tools/service-atlas/pkg/services/backends"
	"github.com/de-tools/service-atlas/pkg/services/config"
	"github.com/de-tools/service-atlas/pkg/services/report"
)

// ReportHandler renders a sectioned report.
type ReportHandler interface {
	Handle(report *domain.Report) error
}

// Env carries what every command needs to reach the configured backend.
type Env struct {
	// ConfigPath points at the config or secrets file; it is read when a
	// command runs so flags are already parsed.
	ConfigPath *string
	Registry   backends.Registry
}

// LoadConfig reads the configuration and returns a context whose logger
// uses the configured level.
func (e Env) LoadConfig(ctx context.Context) (context.Context, *config.Config, error) {
	path := ""
	if e.ConfigPath != nil {
		path = *e.ConfigPath
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return ctx, nil, err
	}
	logger := cfg.Logger(*zerolog.Ctx(ctx))
	return logger.WithContext(ctx), cfg, nil
}

func (e Env) Open(ctx context.Context) (context.Context, *session.Session, error) {
	ctx, cfg, err := e.LoadConfig(ctx)
	if err != nil {
		return ctx, nil, err
	}
	s, err := session.Open(ctx, cfg, e.Registry, nil)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, s, nil
}

func closeSession(ctx context.Context, s *session.Session) {
	if err := s.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close backend")
	}
}

// rangeFlags are shared by commands that load a period.
type rangeFlags struct {
	start       string
	end         string
	order       string
	located     bool
	limit       int
	cities      []string
	technicians []string
	bases       []string
	baseTypes   []string
	services    []string
	statuses    []string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (DD/MM/YYYY or DD/MM/YYYY HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (DD/MM/YYYY or DD/MM/YYYY HH:MM)")
	cmd.Flags().StringVar(&f.order, "order", "asc", "Timestamp order (asc or desc)")
	cmd.Flags().BoolVar(&f.located, "located", false, "Only services with coordinates")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of records (0 for all)")
	cmd.Flags().StringSliceVar(&f.cities, "city", nil, "Filter by city")
	cmd.Flags().StringSliceVar(&f.technicians, "technician", nil, "Filter by technician")
	cmd.Flags().StringSliceVar(&f.bases, "base", nil, "Filter by base")
	cmd.Flags().StringSliceVar(&f.baseTypes, "base-type", nil, "Filter by base type")
	cmd.Flags().StringSliceVar(&f.services, "service", nil, "Filter by service type")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "Filter by status")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *rangeFlags) request() (domain.Request, report.Filter, error) {
	order, err := domain.ParseOrder(f.order)
	if err != nil {
		return domain.Request{}, report.Filter{}, err
	}
	if f.limit < 0 {
		return domain.Request{}, report.Filter{}, fmt.Errorf("limit must not be negative")
	}
	req := domain.Request{
		Start:           f.start,
		End:             f.end,
		Order:           order,
		RequireLocation: f.located,
		Limit:           f.limit,
	}
	filter := report.Filter{
		Cities:      f.cities,
		Technicians: f.technicians,
		Bases:       f.bases,
		BaseTypes:   f.baseTypes,
		Services:    f.services,
		Statuses:    f.statuses,
	}
	return req, filter, nil
}
