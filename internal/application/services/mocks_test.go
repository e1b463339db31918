package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/ports"
)

// MockRepository is a testify mock of ports.Repository
type MockRepository[T ports.Entity] struct {
	mock.Mock
}

func (m *MockRepository[T]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]T)
	return records, args.Error(1)
}

func (m *MockRepository[T]) Get(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(T)
	return record, args.Error(1)
}

func (m *MockRepository[T]) Create(ctx context.Context, record T) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRepository[T]) Update(ctx context.Context, record T) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRepository[T]) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository[T]) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository[T]) ReplaceAll(ctx context.Context, records []T) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockRepository[T]) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockEventRepo = MockRepository[*entities.Event]
type mockTaskRepo = MockRepository[*entities.Task]

// recorder collects published notification names
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) Publish(_ context.Context, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
