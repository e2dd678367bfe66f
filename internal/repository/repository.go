package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres, mongo, cached) inside this directory.

import (
	"context"
	"errors"

	"shopapi/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (username) is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConcurrentUpdate is returned when an optimistic update kept losing to other writers.
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// UpdateFunc mutates a user in place. Returning an error aborts the update.
type UpdateFunc func(u *model.User) error

// UserRepository owns user records, including their embedded carts.
// Implementations hold no business rules.
type UserRepository interface {
	// Create stores a new user and assigns its ID. Returns ErrDuplicate if the username is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Update applies fn to the user while holding it exclusively and persists the result.
	// If fn returns an error nothing is written and that error is returned as is.
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.User, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// ProductRepository provides read access to the fixed catalog.
type ProductRepository interface {
	// List returns every product in seed order.
	List(ctx context.Context) ([]model.Product, error)

	// FindByID returns a product by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// Seed inserts products only when the catalog is empty and returns the stored catalog.
	Seed(ctx context.Context, products []model.Product) ([]model.Product, error)
}
