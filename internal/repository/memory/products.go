package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

// Products is an in-memory, append-once catalog.
type Products struct {
	mu    sync.RWMutex
	items []model.Product
	index map[string]int
}

// NewProducts creates an empty catalog; call Seed to populate it.
func NewProducts() *Products {
	return &Products{index: make(map[string]int)}
}

var _ repository.ProductRepository = (*Products)(nil)

// List returns the catalog in seed order.
func (p *Products) List(context.Context) ([]model.Product, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]model.Product(nil), p.items...), nil
}

// FindByID returns a product by ID.
func (p *Products) FindByID(_ context.Context, id string) (*model.Product, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	i, ok := p.index[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := p.items[i]
	return &out, nil
}

// Seed assigns IDs to products lacking one and stores them if the catalog is empty.
func (p *Products) Seed(_ context.Context, products []model.Product) ([]model.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 {
		for _, prod := range products {
			if prod.ID == "" {
				prod.ID = uuid.NewString()
			}
			p.index[prod.ID] = len(p.items)
			p.items = append(p.items, prod)
		}
	}
	return append([]model.Product(nil), p.items...), nil
}
