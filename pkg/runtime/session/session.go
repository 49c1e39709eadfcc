package session

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/de-tools/service-atlas/pkg/metrics"
	"github.com/de-tools/service-atlas/pkg/services/backends"
	"github.com/de-tools/service-atlas/pkg/services/config"
	"github.com/de-tools/service-atlas/pkg/services/dashboard"
	"github.com/de-tools/service-atlas/pkg/services/normalize"
	"github.com/de-tools/service-atlas/pkg/services/query"
	"github.com/de-tools/service-atlas/pkg/store/backend"
)

// Session holds the backend and dashboard controller built from one
// configuration.
type Session struct {
	Config     *config.Config
	Backend    backend.Backend
	Controller dashboard.Controller
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Open creates the configured backend and the controller serving it.
// Metrics are registered on reg when it is not nil.
func Open(ctx context.Context, cfg *config.Config, registry backends.Registry, reg prometheus.Registerer) (*Session, error) {
	if reg != nil {
		if err := metrics.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	b, err := registry.Create(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	zerolog.Ctx(ctx).Debug().Str("backend", b.Name()).Msg("backend ready")

	executor := query.NewExecutor(b, cfg.Query)
	return &Session{
		Config:     cfg,
		Backend:    b,
		Controller: dashboard.NewController(executor, normalize.New(), cfg.Dashboard),
	}, nil
}

// Health pings backends that support it.
func (s *Session) Health(ctx context.Context) error {
	if p, ok := s.Backend.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Session) Close() error {
	return s.Backend.Close()
}
