package dto

import (
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ListProductsQuery holds the raw catalog filter parameters of a request
type ListProductsQuery struct {
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Categories []string `validate:"dive,required"`
	Brands     []string `validate:"dive,required"`
	MinRating  float64  `validate:"gte=0,lte=5"`
	EcoOnly    bool
	Sort       string `validate:"omitempty,oneof=featured price-low price-high rating newest discount"`
}

// ToFilterState converts a validated query into domain filters
func (q *ListProductsQuery) ToFilterState() (domain.FilterState, error) {
	filters := domain.NewFilterState()

	sort, err := domain.ParseSortKey(q.Sort)
	if err != nil {
		return filters, err
	}
	filters.Sort = sort

	if q.MinPrice != nil {
		filters.MinPrice = *q.MinPrice
	}
	filters.MaxPrice = q.MaxPrice
	filters.Categories = q.Categories
	filters.Brands = q.Brands
	filters.MinRating = q.MinRating
	filters.EcoOnly = q.EcoOnly

	if err := filters.Validate(); err != nil {
		return filters, err
	}
	return filters, nil
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Price               decimal.Decimal  `json:"price"`
	OriginalPrice       *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercent     int              `json:"discount_percent,omitempty"`
	Savings             *decimal.Decimal `json:"savings,omitempty"`
	Image               string           `json:"image,omitempty"`
	Category            string           `json:"category"`
	Brand               string           `json:"brand"`
	Rating              float64          `json:"rating"`
	Reviews             int              `json:"reviews"`
	IsNew               bool             `json:"is_new"`
	IsSale              bool             `json:"is_sale"`
	SustainabilityScore *int             `json:"sustainability_score,omitempty"`
	Eco                 bool             `json:"eco"`
}

// ProductListResponse is a filtered catalog view. Products is empty, never
// null, when nothing matches.
type ProductListResponse struct {
	Products []*ProductResponse `json:"products"`
	Count    int                `json:"count"`
	Total    int                `json:"total"`
	Sort     domain.SortKey     `json:"sort"`
}

// FacetsResponse lists the values available for catalog filters
type FacetsResponse struct {
	Categories []string         `json:"categories"`
	Brands     []string         `json:"brands"`
	MinPrice   decimal.Decimal  `json:"min_price"`
	MaxPrice   decimal.Decimal  `json:"max_price"`
	Count      int              `json:"count"`
	SortKeys   []domain.SortKey `json:"sort_keys"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	var savings *decimal.Decimal
	if p.OriginalPrice != nil {
		s := p.Savings()
		savings = &s
	}
	return &ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Price:               p.Price,
		OriginalPrice:       p.OriginalPrice,
		DiscountPercent:     p.DiscountPercent(),
		Savings:             savings,
		Image:               p.Image,
		Category:            p.Category,
		Brand:               p.Brand,
		Rating:              p.Rating,
		Reviews:             p.Reviews,
		IsNew:               p.IsNew,
		IsSale:              p.IsSale,
		SustainabilityScore: p.SustainabilityScore,
		Eco:                 p.IsEco(),
	}
}

// ToProductListResponse wraps a filtered view of total catalog products
func ToProductListResponse(products []domain.Product, total int, sort domain.SortKey) *ProductListResponse {
	responses := make([]*ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return &ProductListResponse{
		Products: responses,
		Count:    len(responses),
		Total:    total,
		Sort:     sort,
	}
}

// ToFacetsResponse converts domain facets
func ToFacetsResponse(f domain.Facets) *FacetsResponse {
	return &FacetsResponse{
		Categories: f.Categories,
		Brands:     f.Brands,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		Count:      f.Count,
		SortKeys:   domain.SortKeys(),
	}
}
