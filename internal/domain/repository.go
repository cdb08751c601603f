package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
)

// ProductRepository defines the contract for the catalog data source.
// FindAll returns products in catalog order, which is the featured order.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
}

// CartRepository defines the contract for session cart storage
type CartRepository interface {
	Create(ctx context.Context) (*Cart, error)
	FindByID(ctx context.Context, id string) (*Cart, error)
	// Update runs fn against the stored cart while holding its lock and
	// returns a snapshot taken after fn succeeds.
	Update(ctx context.Context, id string, fn func(*Cart) error) (*Cart, error)
	Delete(ctx context.Context, id string) error
}
