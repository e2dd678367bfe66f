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

// Products reads the catalog from the products table.
type Products struct {
	db *sql.DB
}

// NewProducts creates a new Products repository.
func NewProducts(db *sql.DB) *Products {
	return &Products{db: db}
}

var _ repository.ProductRepository = (*Products)(nil)

// List returns all products in seed order.
func (r *Products) List(ctx context.Context) ([]model.Product, error) {
	return listProducts(ctx, r.db)
}

// FindByID fetches a single product.
func (r *Products) FindByID(ctx context.Context, id string) (*model.Product, error) {
	const q = `SELECT id, name, price FROM products WHERE id = $1`
	var p model.Product
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Seed inserts products when the table is empty. The table lock keeps concurrent
// instances from seeding twice.
func (r *Products) Seed(ctx context.Context, products []model.Product) ([]model.Product, error) {
	var out []model.Product
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		var n int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n == 0 {
			const q = `INSERT INTO products (id, name, price, position) VALUES ($1, $2, $3, $4)`
			for i, p := range products {
				if _, err := tx.ExecContext(ctx, q, uuid.NewString(), p.Name, model.Round(p.Price), i); err != nil {
					return fmt.Errorf("insert product %q: %w", p.Name, err)
				}
			}
		}

		var err error
		out, err = listProducts(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func listProducts(ctx context.Context, db querier) ([]model.Product, error) {
	const q = `SELECT id, name, price FROM products ORDER BY position`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
