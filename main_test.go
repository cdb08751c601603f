package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/mrops-br/storefront-api/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewProductRepository(t *testing.T) {
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	products := []domain.Product{
		{ID: "1", Name: "Mug", Price: decimal.RequireFromString("10"), Category: "Home", Brand: "Clay"},
	}
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, closeStore, err := newProductRepository(ctx,
			&config.CatalogConfig{Source: config.CatalogSourceMemory}, products, tracer, logger)
		require.NoError(t, err)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		assert.NoError(t, closeStore())
	})

	t.Run("sqlite is closed by the returned func", func(t *testing.T) {
		repo, closeStore, err := newProductRepository(ctx,
			&config.CatalogConfig{Source: config.CatalogSourceSQLite, DSN: "file:main_close?mode=memory&cache=shared"},
			products, tracer, logger)
		require.NoError(t, err)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, closeStore())

		_, err = repo.FindAll(ctx)
		assert.Error(t, err)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, _, err := newProductRepository(ctx,
			&config.CatalogConfig{Source: "redis"}, products, tracer, logger)
		assert.Error(t, err)
	})
}
