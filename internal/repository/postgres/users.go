package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

// Users stores users in the users table and their carts in cart_items.
type Users struct {
	db *sql.DB
}

// NewUsers creates a new Users repository.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

var _ repository.UserRepository = (*Users)(nil)

// Create inserts a user with a fresh ID. Carts start empty, so no cart rows are written.
func (r *Users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `INSERT INTO users (id, username, balance) VALUES ($1, $2, $3)`

	out := u.Clone()
	out.ID = uuid.NewString()
	out.Cart = []model.CartLineItem{}
	if _, err := r.db.ExecContext(ctx, q, out.ID, out.Username, out.Balance); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByID loads a user and the cart lines in insertion order.
func (r *Users) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, username, balance FROM users WHERE id = $1`
	return loadUser(ctx, r.db, q, id)
}

// Update locks the user row, applies fn and writes back the balance and, when it changed, the cart.
func (r *Users) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.User, error) {
	const q = `SELECT id, username, balance FROM users WHERE id = $1 FOR UPDATE`

	var out *model.User
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		u, err := loadUser(ctx, tx, q, id)
		if err != nil {
			return err
		}
		before := u.Clone()

		if err := fn(u); err != nil {
			return err
		}
		u.ID, u.Username = before.ID, before.Username

		if !u.Balance.Equal(before.Balance) {
			if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = $2 WHERE id = $1`, id, u.Balance); err != nil {
				return fmt.Errorf("update balance: %w", err)
			}
		}
		if !sameCart(before.Cart, u.Cart) {
			if err := replaceCart(ctx, tx, id, u.Cart); err != nil {
				return err
			}
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks database connectivity.
func (r *Users) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func loadUser(ctx context.Context, db querier, q, id string) (*model.User, error) {
	var u model.User
	if err := db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Username, &u.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	const cq = `SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY position`
	rows, err := db.QueryContext(ctx, cq, id)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	u.Cart = []model.CartLineItem{}
	for rows.Next() {
		var l model.CartLineItem
		if err := rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		u.Cart = append(u.Cart, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &u, nil
}

func replaceCart(ctx context.Context, tx *sql.Tx, userID string, cart []model.CartLineItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	const q = `INSERT INTO cart_items (user_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`
	for i, l := range cart {
		if _, err := tx.ExecContext(ctx, q, userID, l.ProductID, l.Quantity, i); err != nil {
			return fmt.Errorf("insert cart line: %w", err)
		}
	}
	return nil
}

func sameCart(a, b []model.CartLineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
