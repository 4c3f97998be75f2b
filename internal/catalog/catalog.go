// Package catalog provides product storage interfaces and implementations.
package catalog

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

// Product is a catalog item an operator can advertise.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store defines the interface for persisting products.
type Store interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, ownerID string) ([]Product, error)
	UpsertProduct(ctx context.Context, ownerID string, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
	Close() error
}
