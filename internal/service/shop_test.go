package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopapi/internal/catalog"
	"shopapi/internal/model"
	"shopapi/internal/repository"
	"shopapi/internal/repository/memory"
	repoMocks "shopapi/internal/repository/mocks"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []model.Order
	err    error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, order model.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
	return n.err
}

func newTestShop(t *testing.T, notifiers ...OrderNotifier) (ShopService, map[string]model.Product) {
	t.Helper()
	products := memory.NewProducts()
	seeded, err := products.Seed(context.Background(), catalog.Default())
	require.NoError(t, err)

	byName := make(map[string]model.Product, len(seeded))
	for _, p := range seeded {
		byName[p.Name] = p
	}
	return NewShopService(memory.NewUsers(), products, zerolog.Nop(), notifiers...), byName
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(i int) *int { return &i }

func TestShopService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestShop(t)

	u, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "100.00", u.Balance.StringFixed(2))
	assert.Empty(t, u.Cart)

	_, err = svc.Register(ctx, "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, "")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = svc.Register(ctx, "   ")
	assert.ErrorIs(t, err, ErrUsernameRequired)
}

func TestShopService_Profile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestShop(t)

	u, err := svc.Register(ctx, "bob")
	require.NoError(t, err)

	got, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestShopService_Products(t *testing.T) {
	svc, _ := newTestShop(t)

	got, err := svc.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"T-shirt", "Jeans", "Sneakers"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestShopService_AddToCart(t *testing.T) {
	ctx := context.Background()
	svc, products := newTestShop(t)
	u, err := svc.Register(ctx, "carol")
	require.NoError(t, err)
	tshirt := products["T-shirt"]

	t.Run("merges quantities into one line", func(t *testing.T) {
		_, err := svc.AddToCart(ctx, u.ID, tshirt.ID, 2)
		require.NoError(t, err)
		cart, err := svc.AddToCart(ctx, u.ID, tshirt.ID, 3)
		require.NoError(t, err)

		assert.Equal(t, []model.CartLineItem{{ProductID: tshirt.ID, Quantity: 5}}, cart)
	})

	t.Run("appends new products in order", func(t *testing.T) {
		cart, err := svc.AddToCart(ctx, u.ID, products["Jeans"].ID, 1)
		require.NoError(t, err)
		require.Len(t, cart, 2)
		assert.Equal(t, products["Jeans"].ID, cart[1].ProductID)
	})

	tests := []struct {
		name      string
		userID    string
		productID string
		quantity  int
		wantErr   error
	}{
		{name: "zero quantity", userID: u.ID, productID: tshirt.ID, quantity: 0, wantErr: ErrQuantityTooLow},
		{name: "negative quantity", userID: u.ID, productID: tshirt.ID, quantity: -1, wantErr: ErrQuantityTooLow},
		{name: "quantity checked before user", userID: "missing", productID: tshirt.ID, quantity: 0, wantErr: ErrQuantityTooLow},
		{name: "unknown user", userID: "missing", productID: tshirt.ID, quantity: 1, wantErr: ErrUserNotFound},
		{name: "unknown product", userID: u.ID, productID: "missing", quantity: 1, wantErr: ErrProductNotFound},
		{name: "user checked before product", userID: "missing", productID: "missing", quantity: 1, wantErr: ErrUserNotFound},
		{name: "quantity above line maximum", userID: u.ID, productID: tshirt.ID, quantity: model.MaxLineQuantity + 1, wantErr: ErrQuantityTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddToCart(ctx, tt.userID, tt.productID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShopService_AddToCartCapsMergedQuantity(t *testing.T) {
	ctx := context.Background()
	svc, products := newTestShop(t)
	u, err := svc.Register(ctx, "mallory")
	require.NoError(t, err)
	tshirt := products["T-shirt"]

	_, err = svc.AddToCart(ctx, u.ID, tshirt.ID, model.MaxLineQuantity)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, u.ID, tshirt.ID, 2)
	assert.ErrorIs(t, err, ErrQuantityTooHigh)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.CartLineItem{{ProductID: tshirt.ID, Quantity: model.MaxLineQuantity}}, profile.Cart)

	view, err := svc.ViewCart(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, view.TotalAmount.IsPositive())

	_, err = svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	profile, err = svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(profile.Balance))
}

func TestShopService_SetCartQuantity(t *testing.T) {
	ctx := context.Background()
	svc, products := newTestShop(t)
	u, err := svc.Register(ctx, "dave")
	require.NoError(t, err)
	tshirt, jeans := products["T-shirt"], products["Jeans"]

	_, err = svc.AddToCart(ctx, u.ID, tshirt.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, u.ID, jeans.ID, 1)
	require.NoError(t, err)

	t.Run("absolute set", func(t *testing.T) {
		cart, err := svc.SetCartQuantity(ctx, u.ID, tshirt.ID, intPtr(7))
		require.NoError(t, err)
		assert.Equal(t, 7, cart[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		cart, err := svc.SetCartQuantity(ctx, u.ID, tshirt.ID, intPtr(0))
		require.NoError(t, err)
		assert.Equal(t, []model.CartLineItem{{ProductID: jeans.ID, Quantity: 1}}, cart)
	})

	tests := []struct {
		name      string
		userID    string
		productID string
		quantity  *int
		wantErr   error
	}{
		{name: "missing quantity", userID: u.ID, productID: jeans.ID, quantity: nil, wantErr: ErrQuantityNegative},
		{name: "negative quantity", userID: u.ID, productID: jeans.ID, quantity: intPtr(-1), wantErr: ErrQuantityNegative},
		{name: "unknown user", userID: "missing", productID: jeans.ID, quantity: intPtr(1), wantErr: ErrUserNotFound},
		{name: "product not in cart", userID: u.ID, productID: tshirt.ID, quantity: intPtr(1), wantErr: ErrProductNotInCart},
		{name: "quantity above line maximum", userID: u.ID, productID: jeans.ID, quantity: intPtr(model.MaxLineQuantity + 1), wantErr: ErrQuantityTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetCartQuantity(ctx, tt.userID, tt.productID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShopService_SetBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestShop(t)
	u, err := svc.Register(ctx, "erin")
	require.NoError(t, err)

	b := dec("50.555")
	got, err := svc.SetBalance(ctx, u.ID, &b)
	require.NoError(t, err)
	assert.Equal(t, "50.56", got.StringFixed(2))

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, dec("50.56").Equal(profile.Balance))

	zero := decimal.Zero
	_, err = svc.SetBalance(ctx, u.ID, &zero)
	assert.NoError(t, err)

	neg := dec("-0.01")
	_, err = svc.SetBalance(ctx, u.ID, &neg)
	assert.ErrorIs(t, err, ErrBalanceNegative)

	_, err = svc.SetBalance(ctx, u.ID, nil)
	assert.ErrorIs(t, err, ErrBalanceNegative)

	ceiling := model.MaxBalance
	_, err = svc.SetBalance(ctx, u.ID, &ceiling)
	assert.NoError(t, err)

	huge := dec("1000000000000")
	_, err = svc.SetBalance(ctx, u.ID, &huge)
	assert.ErrorIs(t, err, ErrBalanceTooHigh)

	profile, err = svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, model.MaxBalance.Equal(profile.Balance))

	_, err = svc.SetBalance(ctx, "missing", &b)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestShopService_ViewCart(t *testing.T) {
	ctx := context.Background()
	svc, products := newTestShop(t)
	u, err := svc.Register(ctx, "frank")
	require.NoError(t, err)

	empty, err := svc.ViewCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
	assert.True(t, empty.TotalAmount.IsZero())

	_, err = svc.AddToCart(ctx, u.ID, products["T-shirt"].ID, 3)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, u.ID, products["Sneakers"].ID, 1)
	require.NoError(t, err)

	view, err := svc.ViewCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	assert.Equal(t, "T-shirt", view.Lines[0].Name)
	assert.Equal(t, "19.99", view.Lines[0].Price.StringFixed(2))
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, "59.97", view.Lines[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "89.99", view.Lines[1].TotalPrice.StringFixed(2))

	sum := decimal.Zero
	for _, l := range view.Lines {
		sum = sum.Add(model.LineTotal(l.Price, l.Quantity))
	}
	assert.True(t, model.Round(sum).Equal(view.TotalAmount))
	assert.Equal(t, "149.96", view.TotalAmount.StringFixed(2))

	_, err = svc.ViewCart(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestShopService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("example order", func(t *testing.T) {
		n := &recordingNotifier{}
		svc, products := newTestShop(t, n)
		u, err := svc.Register(ctx, "gina")
		require.NoError(t, err)

		_, err = svc.AddToCart(ctx, u.ID, products["T-shirt"].ID, 1)
		require.NoError(t, err)
		_, err = svc.AddToCart(ctx, u.ID, products["Jeans"].ID, 1)
		require.NoError(t, err)

		view, err := svc.ViewCart(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "69.98", view.TotalAmount.StringFixed(2))

		res, err := svc.Checkout(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "30.02", res.RemainingBalance.StringFixed(2))
		assert.True(t, view.TotalAmount.Equal(res.Order.Total))
		assert.NotEmpty(t, res.Order.ID)
		assert.Equal(t, u.ID, res.Order.UserID)
		require.Len(t, res.Order.Products, 2)
		assert.Equal(t, "T-shirt", res.Order.Products[0].Name)
		assert.Equal(t, 1, res.Order.Products[0].Quantity)
		assert.Equal(t, "19.99", res.Order.Products[0].Price.StringFixed(2))

		after, err := svc.ViewCart(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, after.Lines)

		profile, err := svc.Profile(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, dec("30.02").Equal(profile.Balance))

		require.Len(t, n.orders, 1)
		assert.Equal(t, res.Order.ID, n.orders[0].ID)
	})

	t.Run("empty cart", func(t *testing.T) {
		svc, _ := newTestShop(t)
		u, err := svc.Register(ctx, "hank")
		require.NoError(t, err)

		_, err = svc.Checkout(ctx, u.ID)
		assert.ErrorIs(t, err, ErrCartEmpty)
		assert.Equal(t, "Cart empty", err.Error())
	})

	t.Run("insufficient balance leaves state unchanged", func(t *testing.T) {
		n := &recordingNotifier{}
		svc, products := newTestShop(t, n)
		u, err := svc.Register(ctx, "iris")
		require.NoError(t, err)

		_, err = svc.AddToCart(ctx, u.ID, products["Sneakers"].ID, 2)
		require.NoError(t, err)

		_, err = svc.Checkout(ctx, u.ID)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, "Insufficient balance", err.Error())

		profile, err := svc.Profile(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.00", profile.Balance.StringFixed(2))
		assert.Equal(t, []model.CartLineItem{{ProductID: products["Sneakers"].ID, Quantity: 2}}, profile.Cart)
		assert.Empty(t, n.orders)
	})

	t.Run("exact balance is enough", func(t *testing.T) {
		svc, products := newTestShop(t)
		u, err := svc.Register(ctx, "jack")
		require.NoError(t, err)
		b := dec("89.99")
		_, err = svc.SetBalance(ctx, u.ID, &b)
		require.NoError(t, err)
		_, err = svc.AddToCart(ctx, u.ID, products["Sneakers"].ID, 1)
		require.NoError(t, err)

		res, err := svc.Checkout(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, res.RemainingBalance.IsZero())
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestShop(t)
		_, err := svc.Checkout(ctx, "missing")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("notifier failure does not fail checkout", func(t *testing.T) {
		failing := &recordingNotifier{err: errors.New("broker down")}
		after := &recordingNotifier{}
		svc, products := newTestShop(t, failing, after)
		u, err := svc.Register(ctx, "kate")
		require.NoError(t, err)
		_, err = svc.AddToCart(ctx, u.ID, products["T-shirt"].ID, 1)
		require.NoError(t, err)

		res, err := svc.Checkout(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "80.01", res.RemainingBalance.StringFixed(2))
		assert.Len(t, failing.orders, 1)
		assert.Len(t, after.orders, 1)
	})
}

func TestShopService_ConcurrentCheckoutSpendsOnce(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc, products := newTestShop(t, n)
	u, err := svc.Register(ctx, "lena")
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, u.ID, products["Jeans"].ID, 1)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(ctx, u.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrCartEmpty)
	}
	assert.Equal(t, 1, succeeded)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.01", profile.Balance.StringFixed(2))
	assert.Len(t, n.orders, 1)
}

func TestShopService_StorageFailures(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset")

	t.Run("register", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mProducts := new(repoMocks.MockProductRepository)
		svc := NewShopService(mUsers, mProducts, zerolog.Nop())

		mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "mia" && u.Balance.Equal(model.DefaultBalance)
		})).Return(nil, storeErr)

		_, err := svc.Register(ctx, "mia")
		assert.ErrorIs(t, err, storeErr)
		var de *Error
		assert.False(t, errors.As(err, &de))
		mUsers.AssertExpectations(t)
	})

	t.Run("checkout", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mProducts := new(repoMocks.MockProductRepository)
		svc := NewShopService(mUsers, mProducts, zerolog.Nop())

		mUsers.On("Update", mock.Anything, "u1", mock.Anything).Return(nil, storeErr)

		_, err := svc.Checkout(ctx, "u1")
		assert.ErrorIs(t, err, storeErr)
		mUsers.AssertExpectations(t)
	})

	t.Run("products", func(t *testing.T) {
		mProducts := new(repoMocks.MockProductRepository)
		svc := NewShopService(new(repoMocks.MockUserRepository), mProducts, zerolog.Nop())

		mProducts.On("List", ctx).Return(nil, storeErr)

		_, err := svc.Products(ctx)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("dangling cart line is not reported as missing user", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mProducts := new(repoMocks.MockProductRepository)
		svc := NewShopService(mUsers, mProducts, zerolog.Nop())

		u := &model.User{ID: "u1", Balance: model.DefaultBalance, Cart: []model.CartLineItem{{ProductID: "gone", Quantity: 1}}}
		mUsers.On("Update", mock.Anything, "u1", mock.Anything).Return(u, nil)
		mProducts.On("FindByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

		_, err := svc.Checkout(ctx, "u1")
		assert.ErrorIs(t, err, errDanglingCartLine)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}
