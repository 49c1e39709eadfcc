// Package backendmock provides a testify mock of backend.Backend.
package backendmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/models/store"
	"github.com/de-tools/service-atlas/pkg/store/backend"
)

type Backend struct {
	mock.Mock
}

var _ backend.Backend = (*Backend)(nil)

func (m *Backend) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *Backend) FetchRange(ctx context.Context, r domain.QueryRange, opts backend.FetchOptions) (store.RowSet, error) {
	args := m.Called(ctx, r, opts)
	return args.Get(0).(store.RowSet), args.Error(1)
}

func (m *Backend) ListColumns(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *Backend) DateBounds(ctx context.Context) (store.DateBounds, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.DateBounds), args.Error(1)
}

func (m *Backend) Close() error {
	return m.Called().Error(0)
}
