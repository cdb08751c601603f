package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mrops-br/storefront-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository.
// It keeps products in seed order, which is the featured order.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates an in-memory product repository seeded with
// products. Later duplicates of an id are ignored.
func NewProductRepository(products []domain.Product, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	r := &ProductRepository{
		products: make([]domain.Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
		tracer:   tracer,
		logger:   logger,
	}
	for _, p := range products {
		if _, exists := r.index[p.ID]; exists {
			continue
		}
		r.index[p.ID] = len(r.products)
		r.products = append(r.products, p)
	}
	return r
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.index[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	product := r.products[i]

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.String("product_id", id),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	return &product, nil
}

// FindAll retrieves all products in catalog order
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	products := slices.Clone(r.products)
	r.mu.RUnlock()

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}
