package dto

import (
	"time"

	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest represents the request to add one unit of a product
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// SetQuantityRequest represents the request to replace a line quantity.
// Zero removes the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=999"`
}

// CartLineResponse represents one cart line
type CartLineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse represents a cart with totals computed at response time
type CartResponse struct {
	ID        string              `json:"id"`
	Lines     []*CartLineResponse `json:"lines"`
	LineCount int                 `json:"line_count"`
	ItemCount int                 `json:"item_count"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ToCartResponse converts a domain Cart to CartResponse
func ToCartResponse(c *domain.Cart) *CartResponse {
	lines := c.Lines()
	responses := make([]*CartLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = &CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Image:     l.Image,
			Category:  l.Category,
			LineTotal: l.LineTotal(),
		}
	}
	return &CartResponse{
		ID:        c.ID,
		Lines:     responses,
		LineCount: c.LineCount(),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
