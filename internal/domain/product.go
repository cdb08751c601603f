package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductID            = errors.New("product id is required")
	ErrInvalidProductName          = errors.New("product name is required")
	ErrInvalidProductPrice         = errors.New("product price must not be negative")
	ErrInvalidProductOriginalPrice = errors.New("product original price must not be below price")
	ErrInvalidProductRating        = errors.New("product rating must be between 0 and 5")
	ErrInvalidProductReviews       = errors.New("product reviews must not be negative")
	ErrInvalidSustainabilityScore  = errors.New("sustainability score must be between 0 and 100")
)

const (
	MaxRating = 5.0

	// EcoThreshold is the sustainability score a product must exceed to
	// count as eco-friendly.
	EcoThreshold = 80
)

// Product represents a catalog record. Products are immutable once loaded.
type Product struct {
	ID                  string
	Name                string
	Price               decimal.Decimal
	OriginalPrice       *decimal.Decimal
	Image               string
	Category            string
	Brand               string
	Rating              float64
	Reviews             int
	IsNew               bool
	IsSale              bool
	SustainabilityScore *int
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidProductID
	}
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if p.Price.IsNegative() {
		return ErrInvalidProductPrice
	}
	if p.OriginalPrice != nil && p.OriginalPrice.LessThan(p.Price) {
		return ErrInvalidProductOriginalPrice
	}
	if p.Rating < 0 || p.Rating > MaxRating {
		return ErrInvalidProductRating
	}
	if p.Reviews < 0 {
		return ErrInvalidProductReviews
	}
	if s := p.SustainabilityScore; s != nil && (*s < 0 || *s > 100) {
		return ErrInvalidSustainabilityScore
	}
	return nil
}

// IsEco reports whether the product passes the eco-only filter.
func (p *Product) IsEco() bool {
	return p.SustainabilityScore != nil && *p.SustainabilityScore > EcoThreshold
}

// DiscountPercent returns the whole percentage taken off the original price,
// rounded down. Products without an original price have no discount.
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice == nil || !p.OriginalPrice.IsPositive() {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price)
	if !off.IsPositive() {
		return 0
	}
	return int(off.Mul(decimal.NewFromInt(100)).Div(*p.OriginalPrice).IntPart())
}

// Savings is the amount saved against the original price.
func (p *Product) Savings() decimal.Decimal {
	if p.OriginalPrice == nil || p.OriginalPrice.LessThanOrEqual(p.Price) {
		return decimal.Zero
	}
	return p.OriginalPrice.Sub(p.Price)
}
