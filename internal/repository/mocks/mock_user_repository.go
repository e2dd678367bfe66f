package mocks

import (
	"context"

	"shopapi/internal/model"
	"shopapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Update applies fn to the *model.User given as the first return value, mimicking a store.
// Return(nil, err) simulates a storage failure without invoking fn.
func (m *MockUserRepository) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.User, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	u := args.Get(0).(*model.User).Clone()
	if err := fn(u); err != nil {
		return nil, err
	}
	return u, args.Error(1)
}

func (m *MockUserRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
