package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	tracer = noop.NewTracerProvider().Tracer("test")
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func TestProductRepository_PreservesSeedOrder(t *testing.T) {
	repo := NewProductRepository([]domain.Product{
		{ID: "c", Name: "C", Price: decimal.NewFromInt(3)},
		{ID: "a", Name: "A", Price: decimal.NewFromInt(1)},
		{ID: "c", Name: "C duplicate", Price: decimal.NewFromInt(9)},
		{ID: "b", Name: "B", Price: decimal.NewFromInt(2)},
	}, tracer, logger)

	products, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "c", products[0].ID)
	assert.Equal(t, "C", products[0].Name)
	assert.Equal(t, "a", products[1].ID)
	assert.Equal(t, "b", products[2].ID)
}

func TestProductRepository_FindByID(t *testing.T) {
	repo := NewProductRepository([]domain.Product{{ID: "a", Name: "A"}}, tracer, logger)
	ctx := context.Background()

	p, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	p.Name = "mutated"
	again, _ := repo.FindByID(ctx, "a")
	assert.Equal(t, "A", again.Name)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_FindAllReturnsCopy(t *testing.T) {
	repo := NewProductRepository([]domain.Product{{ID: "a", Name: "A"}}, tracer, logger)
	ctx := context.Background()

	products, _ := repo.FindAll(ctx)
	products[0].Name = "mutated"

	again, _ := repo.FindAll(ctx)
	assert.Equal(t, "A", again[0].Name)
}

func TestCartRepository_Lifecycle(t *testing.T) {
	repo := NewCartRepository(tracer, logger)
	ctx := context.Background()
	product := &domain.Product{ID: "p", Name: "P", Price: decimal.NewFromInt(4)}

	cart, err := repo.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())

	updated, err := repo.Update(ctx, cart.ID, func(c *domain.Cart) error {
		return c.Add(product)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ItemCount())

	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.LineCount())

	require.NoError(t, repo.Delete(ctx, cart.ID))
	_, err = repo.FindByID(ctx, cart.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, cart.ID), domain.ErrCartNotFound)
}

func TestCartRepository_FailedUpdateLeavesCartUntouched(t *testing.T) {
	repo := NewCartRepository(tracer, logger)
	ctx := context.Background()
	cart, _ := repo.Create(ctx)
	boom := errors.New("boom")

	_, err := repo.Update(ctx, cart.ID, func(c *domain.Cart) error {
		require.NoError(t, c.Add(&domain.Product{ID: "p", Price: decimal.NewFromInt(1)}))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	found, _ := repo.FindByID(ctx, cart.ID)
	assert.Zero(t, found.LineCount())
}

func TestCartRepository_UpdateUnknownCart(t *testing.T) {
	repo := NewCartRepository(tracer, logger)

	_, err := repo.Update(context.Background(), "nope", func(*domain.Cart) error { return nil })

	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartRepository_ConcurrentAdds(t *testing.T) {
	repo := NewCartRepository(tracer, logger)
	ctx := context.Background()
	cart, _ := repo.Create(ctx)
	product := &domain.Product{ID: "p", Price: decimal.NewFromInt(1)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Update(ctx, cart.ID, func(c *domain.Cart) error {
				return c.Add(product)
			})
		}()
	}
	wg.Wait()

	found, _ := repo.FindByID(ctx, cart.ID)
	assert.Equal(t, 50, found.ItemCount())
	assert.True(t, found.Subtotal().Equal(decimal.NewFromInt(50)))
}
