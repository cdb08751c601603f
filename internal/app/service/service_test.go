package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/mrops-br/storefront-api/internal/infrastructure/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

var (
	tracer = tracenoop.NewTracerProvider().Tracer("test")
	meter  = metricnoop.NewMeterProvider().Meter("test")
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Cheap", Price: decimal.RequireFromString("10"), Category: "Home", Brand: "A", Rating: 4.1},
		{ID: "2", Name: "Pricey", Price: decimal.RequireFromString("50"), Category: "Tech", Brand: "B", Rating: 4.9, SustainabilityScore: intPtr(90)},
		{ID: "3", Name: "Middle", Price: decimal.RequireFromString("25.50"), Category: "Home", Brand: "B", Rating: 3.2, IsNew: true},
	}
}

func newServices(t *testing.T) (*service.CatalogService, *service.CartService) {
	t.Helper()
	products := memory.NewProductRepository(catalog(), tracer, logger)
	carts := memory.NewCartRepository(tracer, logger)
	return service.NewCatalogService(products, tracer, meter, logger),
		service.NewCartService(carts, products, tracer, meter, logger)
}

func productIDs(resp *dto.ProductListResponse) []string {
	out := make([]string, len(resp.Products))
	for i, p := range resp.Products {
		out[i] = p.ID
	}
	return out
}

func TestCatalogService_ListProducts(t *testing.T) {
	catalogSvc, _ := newServices(t)
	ctx := context.Background()

	t.Run("price range scenario", func(t *testing.T) {
		resp, err := catalogSvc.ListProducts(ctx, &dto.ListProductsQuery{
			MinPrice: decPtr("0"),
			MaxPrice: decPtr("20"),
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, productIDs(resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, domain.SortFeatured, resp.Sort)
	})

	t.Run("category and sort", func(t *testing.T) {
		resp, err := catalogSvc.ListProducts(ctx, &dto.ListProductsQuery{
			Categories: []string{"Home"},
			Sort:       "price-high",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"3", "1"}, productIDs(resp))
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		resp, err := catalogSvc.ListProducts(ctx, &dto.ListProductsQuery{Brands: []string{"Nobody"}})

		require.NoError(t, err)
		require.NotNil(t, resp.Products)
		assert.Empty(t, resp.Products)
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, err := catalogSvc.ListProducts(ctx, &dto.ListProductsQuery{Sort: "popular"})

		assert.ErrorIs(t, err, service.ErrValidation)
		assert.True(t, service.IsInvalidInput(err))
	})

	t.Run("inverted price range", func(t *testing.T) {
		_, err := catalogSvc.ListProducts(ctx, &dto.ListProductsQuery{
			MinPrice: decPtr("30"),
			MaxPrice: decPtr("20"),
		})

		assert.ErrorIs(t, err, domain.ErrInvalidPriceRange)
		assert.True(t, service.IsInvalidInput(err))
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := catalogSvc.ListProducts(ctx, &dto.ListProductsQuery{MinRating: 7})

		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestCatalogService_GetProductAndFacets(t *testing.T) {
	catalogSvc, _ := newServices(t)
	ctx := context.Background()

	p, err := catalogSvc.GetProduct(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Pricey", p.Name)

	_, err = catalogSvc.GetProduct(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.True(t, service.IsNotFound(err))

	facets, err := catalogSvc.Facets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Tech"}, facets.Categories)
	assert.Equal(t, []string{"A", "B"}, facets.Brands)
	assert.Equal(t, "10", facets.MinPrice.String())
	assert.Equal(t, "50", facets.MaxPrice.String())
	assert.Contains(t, facets.SortKeys, domain.SortDiscount)
}

func TestCartService_AddTwiceAggregates(t *testing.T) {
	_, cartSvc := newServices(t)
	ctx := context.Background()

	cart, err := cartSvc.CreateCart(ctx)
	require.NoError(t, err)

	_, err = cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	require.NoError(t, err)
	resp, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	require.NoError(t, err)

	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.Equal(t, 2, resp.ItemCount)
	assert.Equal(t, "20", resp.Subtotal.String())
	assert.Equal(t, "20", resp.Lines[0].LineTotal.String())
}

func TestCartService_SetQuantityAndRemove(t *testing.T) {
	_, cartSvc := newServices(t)
	ctx := context.Background()
	cart, _ := cartSvc.CreateCart(ctx)

	_, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "3"})
	require.NoError(t, err)

	resp, err := cartSvc.SetQuantity(ctx, cart.ID, "3", &dto.SetQuantityRequest{Quantity: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.ItemCount)
	assert.Equal(t, "102", resp.Subtotal.String())

	resp, err = cartSvc.SetQuantity(ctx, cart.ID, "absent", &dto.SetQuantityRequest{Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LineCount)

	resp, err = cartSvc.SetQuantity(ctx, cart.ID, "3", &dto.SetQuantityRequest{Quantity: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.Subtotal.IsZero())

	_, err = cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "2"})
	require.NoError(t, err)
	resp, err = cartSvc.RemoveItem(ctx, cart.ID, "2")
	require.NoError(t, err)
	assert.Zero(t, resp.ItemCount)

	resp, err = cartSvc.RemoveItem(ctx, cart.ID, "2")
	require.NoError(t, err)
	assert.Zero(t, resp.LineCount)
}

func TestCartService_InvalidInput(t *testing.T) {
	_, cartSvc := newServices(t)
	ctx := context.Background()
	cart, _ := cartSvc.CreateCart(ctx)

	_, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = cartSvc.SetQuantity(ctx, cart.ID, "1", &dto.SetQuantityRequest{})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = cartSvc.SetQuantity(ctx, cart.ID, "1", &dto.SetQuantityRequest{Quantity: intPtr(-2)})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = cartSvc.SetQuantity(ctx, cart.ID, "1", &dto.SetQuantityRequest{Quantity: intPtr(domain.MaxLineQuantity + 1)})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.True(t, service.IsInvalidInput(err))
}

func TestCartService_AddItemAtQuantityLimit(t *testing.T) {
	_, cartSvc := newServices(t)
	ctx := context.Background()
	cart, _ := cartSvc.CreateCart(ctx)

	_, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	require.NoError(t, err)
	_, err = cartSvc.SetQuantity(ctx, cart.ID, "1", &dto.SetQuantityRequest{Quantity: intPtr(domain.MaxLineQuantity)})
	require.NoError(t, err)

	_, err = cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	assert.ErrorIs(t, err, domain.ErrQuantityLimit)
	assert.True(t, service.IsInvalidInput(err))

	got, err := cartSvc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxLineQuantity, got.ItemCount)
}

func TestCartService_NotFound(t *testing.T) {
	_, cartSvc := newServices(t)
	ctx := context.Background()
	cart, _ := cartSvc.CreateCart(ctx)

	_, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "missing"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	got, err := cartSvc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LineCount)

	_, err = cartSvc.GetCart(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	_, err = cartSvc.AddItem(ctx, "unknown", &dto.AddCartItemRequest{ProductID: "1"})
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartService_ClearAndDelete(t *testing.T) {
	_, cartSvc := newServices(t)
	ctx := context.Background()
	cart, _ := cartSvc.CreateCart(ctx)
	_, _ = cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	_, _ = cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "2"})

	resp, err := cartSvc.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Zero(t, resp.LineCount)
	assert.Equal(t, cart.ID, resp.ID)

	require.NoError(t, cartSvc.DeleteCart(ctx, cart.ID))
	err = cartSvc.DeleteCart(ctx, cart.ID)
	assert.True(t, errors.Is(err, domain.ErrCartNotFound))
}

func TestCartService_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	products := memory.NewProductRepository(catalog(), tracer, logger)
	carts := memory.NewCartRepository(tracer, logger)
	cartSvc := service.NewCartService(carts, products, tracer, meter, logger)
	ctx := context.Background()
	cart, _ := cartSvc.CreateCart(ctx)
	_, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	require.NoError(t, err)

	repriced := catalog()
	repriced[0].Price = decimal.RequireFromString("99")
	cartSvc = service.NewCartService(carts, memory.NewProductRepository(repriced, tracer, logger), tracer, meter, logger)

	resp, err := cartSvc.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "10", resp.Lines[0].Price.String())
	assert.Equal(t, "20", resp.Subtotal.String())
}
