package mocks

import (
	"context"

	"shopapi/internal/model"
	"shopapi/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockShopService struct {
	mock.Mock
}

func (m *MockShopService) Register(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockShopService) Profile(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockShopService) Products(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockShopService) AddToCart(ctx context.Context, userID, productID string, quantity int) ([]model.CartLineItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLineItem), args.Error(1)
}

func (m *MockShopService) SetCartQuantity(ctx context.Context, userID, productID string, quantity *int) ([]model.CartLineItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLineItem), args.Error(1)
}

func (m *MockShopService) SetBalance(ctx context.Context, userID string, balance *decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, balance)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockShopService) ViewCart(ctx context.Context, userID string) (*service.CartView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockShopService) Checkout(ctx context.Context, userID string) (*service.CheckoutResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutResult), args.Error(1)
}
