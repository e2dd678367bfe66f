package handler

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"shopapi/internal/service"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches the shop API and probe routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, store Pinger, svc service.ShopService, log zerolog.Logger) {
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	app.Get("/products", ListProducts(svc, log))

	users := app.Group("/users")
	users.Post("/register", RegisterUser(svc, log))
	users.Get("/:userId/profile", GetProfile(svc, log))
	users.Post("/:userId/cart", AddToCart(svc, log))
	users.Put("/:userId/cart", UpdateCart(svc, log))
	users.Get("/:userId/cart", GetCart(svc, log))
	users.Put("/:userId/balance", UpdateBalance(svc, log))
	users.Post("/:userId/checkout", Checkout(svc, log))
}

// decodeBody parses a JSON body into v. An empty body leaves v untouched, so absent
// fields surface as validation errors rather than parse errors.
func decodeBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return c.App().Config().JSONDecoder(body, v)
}

func invalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
}

// HealthCheck checks store connectivity.
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} productResponse
// @Router /products [get]
func ListProducts(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.Products(c.UserContext())
		if err != nil {
			return writeServiceError(c, log, err, "Failed to fetch products")
		}
		return c.JSON(toProducts(products))
	}
}

// RegisterUser godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body registerRequest true "username"
// @Success 200 {object} registerResponse
// @Failure 400 {object} errorPayload
// @Router /users/register [post]
func RegisterUser(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c)
		}

		u, err := svc.Register(c.UserContext(), req.Username)
		if err != nil {
			return writeServiceError(c, log, err, "Registration failed")
		}
		return c.JSON(registerResponse{
			Message: "User registered",
			UserID:  u.ID,
			Balance: money(u.Balance),
		})
	}
}

// GetProfile godoc
// @Summary Get username and balance
// @Tags users
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {object} profileResponse
// @Failure 404 {object} errorPayload
// @Router /users/{userId}/profile [get]
func GetProfile(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Profile(c.UserContext(), c.Params("userId"))
		if err != nil {
			return writeServiceError(c, log, err, "Failed to get profile")
		}
		return c.JSON(profileResponse{Username: u.Username, Balance: money(u.Balance)})
	}
}

// AddToCart godoc
// @Summary Add a product to the cart
// @Description Quantity defaults to 1 and is added to any existing line for the product.
// @Tags cart
// @Accept json
// @Produce json
// @Param userId path string true "user id"
// @Param body body addToCartRequest true "product and quantity"
// @Success 200 {object} cartMutationResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{userId}/cart [post]
func AddToCart(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addToCartRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c)
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		cart, err := svc.AddToCart(c.UserContext(), c.Params("userId"), req.ProductID, quantity)
		if err != nil {
			return writeServiceError(c, log, err, "Failed to add to cart")
		}
		return c.JSON(cartMutationResponse{Message: "Product added to cart", Cart: toCartLines(cart)})
	}
}

// UpdateCart godoc
// @Summary Set a cart line's quantity
// @Description Quantity 0 removes the line.
// @Tags cart
// @Accept json
// @Produce json
// @Param userId path string true "user id"
// @Param body body updateCartRequest true "product and quantity"
// @Success 200 {object} cartMutationResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{userId}/cart [put]
func UpdateCart(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateCartRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c)
		}

		cart, err := svc.SetCartQuantity(c.UserContext(), c.Params("userId"), req.ProductID, req.Quantity)
		if err != nil {
			return writeServiceError(c, log, err, "Failed to update cart")
		}
		return c.JSON(cartMutationResponse{Message: "Cart updated", Cart: toCartLines(cart)})
	}
}

// UpdateBalance godoc
// @Summary Replace the user's balance
// @Tags users
// @Accept json
// @Produce json
// @Param userId path string true "user id"
// @Param body body updateBalanceRequest true "balance"
// @Success 200 {object} balanceResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{userId}/balance [put]
func UpdateBalance(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateBalanceRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c)
		}

		balance, err := svc.SetBalance(c.UserContext(), c.Params("userId"), req.Balance)
		if err != nil {
			return writeServiceError(c, log, err, "Failed to update balance")
		}
		return c.JSON(balanceResponse{Message: "Balance updated", Balance: money(balance)})
	}
}

// GetCart godoc
// @Summary View the priced cart
// @Tags cart
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {object} cartViewResponse
// @Failure 404 {object} errorPayload
// @Router /users/{userId}/cart [get]
func GetCart(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.ViewCart(c.UserContext(), c.Params("userId"))
		if err != nil {
			return writeServiceError(c, log, err, "Failed to fetch cart")
		}
		return c.JSON(toCartView(view))
	}
}

// Checkout godoc
// @Summary Place an order for the cart
// @Tags cart
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {object} checkoutResponse
// @Failure 400 {object} errorPayload "Cart empty | Insufficient balance"
// @Failure 404 {object} errorPayload
// @Router /users/{userId}/checkout [post]
func Checkout(svc service.ShopService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Checkout(c.UserContext(), c.Params("userId"))
		if err != nil {
			return writeServiceError(c, log, err, "Checkout failed")
		}
		return c.JSON(checkoutResponse{
			Message:          "Order placed",
			Order:            toOrder(res.Order),
			RemainingBalance: money(res.RemainingBalance),
		})
	}
}
