package mocks

import (
	"context"

	"shopapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, obj storage.Object) (storage.ObjectInfo, error) {
	args := m.Called(ctx, obj)
	if f, ok := args.Get(0).(func(context.Context, storage.Object) storage.ObjectInfo); ok {
		return f(ctx, obj), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}
