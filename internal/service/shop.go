package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const notifyTimeout = 5 * time.Second

var errDanglingCartLine = errors.New("cart references an unknown product")

var tracer = otel.Tracer("shopapi/internal/service")

// CartLine is a cart line joined with the current product name and price.
type CartLine struct {
	ProductID  string
	Name       string
	Price      decimal.Decimal
	Quantity   int
	TotalPrice decimal.Decimal
}

// CartView is the priced contents of a cart.
type CartView struct {
	Lines       []CartLine
	TotalAmount decimal.Decimal
}

// CheckoutResult is returned by a successful checkout.
type CheckoutResult struct {
	Order            model.Order
	RemainingBalance decimal.Decimal
}

// OrderNotifier is told about every order after it has been committed.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order model.Order) error
}

// ShopService defines the cart and checkout use cases.
type ShopService interface {
	// Register creates a user with the default balance and an empty cart.
	Register(ctx context.Context, username string) (*model.User, error)

	// Profile returns the user's username and balance.
	Profile(ctx context.Context, userID string) (*model.User, error)

	// Products lists the catalog.
	Products(ctx context.Context) ([]model.Product, error)

	// AddToCart merges quantity into the product's line, appending a new line if absent.
	AddToCart(ctx context.Context, userID, productID string, quantity int) ([]model.CartLineItem, error)

	// SetCartQuantity replaces a line's quantity; zero removes the line.
	// A nil quantity means the client did not send one.
	SetCartQuantity(ctx context.Context, userID, productID string, quantity *int) ([]model.CartLineItem, error)

	// SetBalance replaces the user's balance, rounded to two places.
	SetBalance(ctx context.Context, userID string, balance *decimal.Decimal) (decimal.Decimal, error)

	// ViewCart prices every line and the cart total.
	ViewCart(ctx context.Context, userID string) (*CartView, error)

	// Checkout converts the cart into an order and deducts its total from the balance.
	Checkout(ctx context.Context, userID string) (*CheckoutResult, error)
}

type shopService struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	notifiers []OrderNotifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewShopService constructs a ShopService. Notifiers are invoked in order after each checkout.
func NewShopService(users repository.UserRepository, products repository.ProductRepository, log zerolog.Logger, notifiers ...OrderNotifier) ShopService {
	return &shopService{
		users:     users,
		products:  products,
		notifiers: notifiers,
		log:       log.With().Str("component", "shop_service").Logger(),
		now:       time.Now,
	}
}

func (s *shopService) Register(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	u, err := s.users.Create(ctx, &model.User{
		Username: username,
		Balance:  model.DefaultBalance,
		Cart:     []model.CartLineItem{},
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (s *shopService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

func (s *shopService) Products(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *shopService) AddToCart(ctx context.Context, userID, productID string, quantity int) ([]model.CartLineItem, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}
	if quantity > model.MaxLineQuantity {
		return nil, ErrQuantityTooHigh
	}

	u, err := s.users.Update(ctx, userID, func(u *model.User) error {
		if _, err := s.product(ctx, productID); err != nil {
			return err
		}
		if i := u.LineIndex(productID); i >= 0 {
			if u.Cart[i].Quantity > model.MaxLineQuantity-quantity {
				return ErrQuantityTooHigh
			}
			u.Cart[i].Quantity += quantity
			return nil
		}
		u.Cart = append(u.Cart, model.CartLineItem{ProductID: productID, Quantity: quantity})
		return nil
	})
	if err != nil {
		return nil, userErr(err)
	}
	return u.Cart, nil
}

func (s *shopService) SetCartQuantity(ctx context.Context, userID, productID string, quantity *int) ([]model.CartLineItem, error) {
	if quantity == nil || *quantity < 0 {
		return nil, ErrQuantityNegative
	}
	if *quantity > model.MaxLineQuantity {
		return nil, ErrQuantityTooHigh
	}
	qty := *quantity

	u, err := s.users.Update(ctx, userID, func(u *model.User) error {
		i := u.LineIndex(productID)
		if i < 0 {
			return ErrProductNotInCart
		}
		if qty == 0 {
			u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
			return nil
		}
		u.Cart[i].Quantity = qty
		return nil
	})
	if err != nil {
		return nil, userErr(err)
	}
	return u.Cart, nil
}

func (s *shopService) SetBalance(ctx context.Context, userID string, balance *decimal.Decimal) (decimal.Decimal, error) {
	if balance == nil || balance.IsNegative() {
		return decimal.Zero, ErrBalanceNegative
	}
	rounded := model.Round(*balance)
	if rounded.GreaterThan(model.MaxBalance) {
		return decimal.Zero, ErrBalanceTooHigh
	}

	u, err := s.users.Update(ctx, userID, func(u *model.User) error {
		u.Balance = rounded
		return nil
	})
	if err != nil {
		return decimal.Zero, userErr(err)
	}
	return u.Balance, nil
}

func (s *shopService) ViewCart(ctx context.Context, userID string) (*CartView, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, userErr(err)
	}

	view := &CartView{Lines: make([]CartLine, 0, len(u.Cart)), TotalAmount: decimal.Zero}
	for _, line := range u.Cart {
		p, err := s.cartProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		lineTotal := model.Round(model.LineTotal(p.Price, line.Quantity))
		view.Lines = append(view.Lines, CartLine{
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Quantity:   line.Quantity,
			TotalPrice: lineTotal,
		})
		view.TotalAmount = view.TotalAmount.Add(lineTotal)
	}
	view.TotalAmount = model.Round(view.TotalAmount)

	return view, nil
}

func (s *shopService) Checkout(ctx context.Context, userID string) (*CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "ShopService.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("shop.user_id", userID))

	var order model.Order
	u, err := s.users.Update(ctx, userID, func(u *model.User) error {
		if len(u.Cart) == 0 {
			return ErrCartEmpty
		}

		lines := make([]model.OrderLine, 0, len(u.Cart))
		total := decimal.Zero
		for _, line := range u.Cart {
			p, err := s.cartProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			total = total.Add(model.LineTotal(p.Price, line.Quantity))
			lines = append(lines, model.OrderLine{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  line.Quantity,
				Price:     p.Price,
			})
		}

		if u.Balance.LessThan(total) {
			return ErrInsufficientBalance
		}

		u.Balance = model.Round(u.Balance.Sub(total))
		u.Cart = []model.CartLineItem{}
		order = model.Order{
			ID:       uuid.NewString(),
			UserID:   u.ID,
			Products: lines,
			Total:    model.Round(total),
			PlacedAt: s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		err = userErr(err)
		var de *Error
		if errors.As(err, &de) {
			span.SetAttributes(attribute.String("shop.checkout_rejected", de.Code))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "checkout failed")
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("shop.order_id", order.ID),
		attribute.String("shop.order_total", order.Total.StringFixed(model.MoneyPlaces)),
	)
	s.log.Info().
		Str("user_id", userID).
		Str("order_id", order.ID).
		Str("total", order.Total.StringFixed(model.MoneyPlaces)).
		Msg("order placed")

	s.notify(ctx, order)

	return &CheckoutResult{Order: order, RemainingBalance: u.Balance}, nil
}

// notify fans the order out to every notifier. Failures are logged and never undo the checkout.
func (s *shopService) notify(ctx context.Context, order model.Order) {
	if len(s.notifiers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for _, n := range s.notifiers {
		if err := n.OrderPlaced(ctx, order); err != nil {
			s.log.Error().Err(err).
				Str("order_id", order.ID).
				Str("notifier", fmt.Sprintf("%T", n)).
				Msg("order notification failed")
		}
	}
}

func (s *shopService) product(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// cartProduct resolves a product referenced by a stored cart line; a dangling reference
// is a data integrity failure rather than a client error.
func (s *shopService) cartProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", errDanglingCartLine, id)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// userErr translates repository sentinels into domain errors and passes domain errors through.
func userErr(err error) error {
	var de *Error
	switch {
	case errors.As(err, &de):
		return de
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("user store: %w", err)
	}
}
