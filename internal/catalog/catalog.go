package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"shopapi/internal/model"
)

// Entry is a product definition before it has been assigned a store identifier.
type Entry struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type file struct {
	Products []Entry `yaml:"products"`
}

// Default is the sample catalog the shop starts with.
func Default() []model.Product {
	return []model.Product{
		{Name: "T-shirt", Price: decimal.RequireFromString("19.99")},
		{Name: "Jeans", Price: decimal.RequireFromString("49.99")},
		{Name: "Sneakers", Price: decimal.RequireFromString("89.99")},
	}
}

// Load returns the products listed in the YAML file at path, or Default when path is empty.
func Load(path string) ([]model.Product, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML catalog document. Prices are rounded to two places.
func Parse(b []byte) ([]model.Product, error) {
	var f file
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}

	out := make([]model.Product, 0, len(f.Products))
	for i, e := range f.Products {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: invalid price %q: %w", i, e.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog entry %d: price must be non-negative", i)
		}
		out = append(out, model.Product{Name: name, Price: model.Round(price)})
	}
	return out, nil
}
