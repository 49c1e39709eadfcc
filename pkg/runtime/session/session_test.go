package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/services/backends"
	"github.com/de-tools/service-atlas/pkg/services/config"
	"github.com/de-tools/service-atlas/pkg/store/backend"
	"github.com/de-tools/service-atlas/pkg/store/backend/backendmock"
)

func registryWith(t *testing.T, b backend.Backend, err error) backends.Registry {
	t.Helper()
	r := backends.NewRegistry()
	require.NoError(t, r.Register("fake", func(context.Context, *config.Config) (backend.Backend, error) {
		return b, err
	}))
	return r
}

func TestOpen_LoadsThroughController(t *testing.T) {
	// Given
	b := new(backendmock.Backend)
	b.On("Name").Return("fake")
	b.On("FetchRange", mock.Anything, mock.Anything, mock.Anything).Return(store.RowSet{
		Columns: []string{"DATA_TOA", "TECNICO"},
		Rows:    [][]any{{"2025-01-02 08:00:00", "JOAO"}},
	}, nil)
	b.On("Close").Return(nil)
	cfg := &config.Config{Backend: "fake"}

	// When
	s, err := Open(context.Background(), cfg, registryWith(t, b, nil), prometheus.NewRegistry())
	require.NoError(t, err)
	result := s.Controller.Load(context.Background(), domain.Request{Start: "01/01/2025", End: "31/01/2025"})

	// Then
	require.Len(t, result.Records, 1)
	assert.Equal(t, "JOAO", result.Records[0].TechnicianID)
	assert.Equal(t, time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC), result.Records[0].Timestamp)
	assert.NoError(t, s.Health(context.Background()))
	assert.NoError(t, s.Close())
	b.AssertExpectations(t)
}

func TestOpen_BackendError(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Backend: "fake"},
		registryWith(t, nil, errors.New("dial tcp: refused")), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}
