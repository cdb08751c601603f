package domain

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSortKey    = errors.New("unknown sort key")
	ErrInvalidPriceRange = errors.New("price range must be non-negative with min not above max")
	ErrInvalidMinRating  = errors.New("minimum rating must be between 0 and 5")
)

// SortKey selects the ordering of a filtered catalog view.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortDiscount  SortKey = "discount"
)

var sortKeys = []SortKey{SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest, SortDiscount}

// SortKeys lists every supported sort key in display order.
func SortKeys() []SortKey {
	return slices.Clone(sortKeys)
}

// ParseSortKey maps a raw key to a SortKey. Empty input means featured.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortFeatured, nil
	}
	k := SortKey(s)
	if !slices.Contains(sortKeys, k) {
		return "", ErrInvalidSortKey
	}
	return k, nil
}

// FilterState holds the user-chosen constraints for a catalog view.
// A nil MaxPrice leaves the upper bound open.
type FilterState struct {
	MinPrice   decimal.Decimal
	MaxPrice   *decimal.Decimal
	Categories []string
	Brands     []string
	MinRating  float64
	EcoOnly    bool
	Sort       SortKey
}

// NewFilterState returns the cleared filter state.
func NewFilterState() FilterState {
	return FilterState{
		MinPrice: decimal.Zero,
		Sort:     SortFeatured,
	}
}

// Reset clears every predicate and restores the featured order.
func (f *FilterState) Reset() {
	*f = NewFilterState()
}

// Active reports whether any predicate would exclude products.
func (f *FilterState) Active() bool {
	return f.MinPrice.IsPositive() ||
		f.MaxPrice != nil ||
		len(f.Categories) > 0 ||
		len(f.Brands) > 0 ||
		f.MinRating > 0 ||
		f.EcoOnly
}

// Validate rejects filter states no product could be meaningfully
// checked against.
func (f *FilterState) Validate() error {
	if f.MinPrice.IsNegative() {
		return ErrInvalidPriceRange
	}
	if f.MaxPrice != nil && (f.MaxPrice.IsNegative() || f.MaxPrice.LessThan(f.MinPrice)) {
		return ErrInvalidPriceRange
	}
	if f.MinRating < 0 || f.MinRating > MaxRating {
		return ErrInvalidMinRating
	}
	return nil
}

// Matches reports whether p passes every active predicate.
func (f *FilterState) Matches(p *Product) bool {
	if p.Price.LessThan(f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, p.Brand) {
		return false
	}
	if p.Rating < f.MinRating {
		return false
	}
	if f.EcoOnly && !p.IsEco() {
		return false
	}
	return true
}

// FilterAndSort returns the products passing filters, ordered by
// filters.Sort. The input slice is never modified and the sort is stable,
// so equal keys keep catalog order. The result is never nil.
func FilterAndSort(products []Product, filters FilterState) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		if filters.Matches(&products[i]) {
			out = append(out, products[i])
		}
	}

	if cmp := comparator(filters.Sort); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func comparator(key SortKey) func(a, b Product) int {
	switch key {
	case SortPriceLow:
		return func(a, b Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceHigh:
		return func(a, b Product) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		return func(a, b Product) int { return compareFloat(b.Rating, a.Rating) }
	case SortNewest:
		return func(a, b Product) int { return boolRank(b.IsNew) - boolRank(a.IsNew) }
	case SortDiscount:
		return func(a, b Product) int { return b.DiscountPercent() - a.DiscountPercent() }
	default:
		return nil
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Facets summarises a product list for building filter controls.
type Facets struct {
	Categories []string
	Brands     []string
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	Count      int
}

// BuildFacets collects distinct categories and brands in first-seen order
// along with the price span of products.
func BuildFacets(products []Product) Facets {
	f := Facets{
		Categories: []string{},
		Brands:     []string{},
		Count:      len(products),
	}
	for i, p := range products {
		if !slices.Contains(f.Categories, p.Category) {
			f.Categories = append(f.Categories, p.Category)
		}
		if !slices.Contains(f.Brands, p.Brand) {
			f.Brands = append(f.Brands, p.Brand)
		}
		if i == 0 || p.Price.LessThan(f.MinPrice) {
			f.MinPrice = p.Price
		}
		if i == 0 || p.Price.GreaterThan(f.MaxPrice) {
			f.MaxPrice = p.Price
		}
	}
	return f
}
