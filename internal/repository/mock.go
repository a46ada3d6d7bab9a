package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spaceship-manager/internal/model"
)

// MockSpaceshipStore is a testify mock of SpaceshipStore for service tests.
type MockSpaceshipStore struct {
	mock.Mock
}

func (m *MockSpaceshipStore) Get(ctx context.Context, id int64) (model.Spaceship, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Spaceship), args.Error(1)
}

func (m *MockSpaceshipStore) GetAny(ctx context.Context, id int64) (model.Spaceship, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Spaceship), args.Error(1)
}

func (m *MockSpaceshipStore) List(ctx context.Context, spec model.PageSpec) (model.SpaceshipPage, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(model.SpaceshipPage), args.Error(1)
}

func (m *MockSpaceshipStore) SearchByName(ctx context.Context, term string) ([]model.Spaceship, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Spaceship), args.Error(1)
}

func (m *MockSpaceshipStore) Save(ctx context.Context, s model.Spaceship) (model.Spaceship, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(model.Spaceship), args.Error(1)
}

func (m *MockSpaceshipStore) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
