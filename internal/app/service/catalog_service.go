package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CatalogService handles catalog browsing use cases
type CatalogService struct {
	repo              domain.ProductRepository
	validate          *validator.Validate
	tracer            trace.Tracer
	logger            *slog.Logger
	catalogOperations metric.Int64Counter
	resultSize        metric.Int64Histogram
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CatalogService {
	catalogOperations, _ := meter.Int64Counter(
		"storefront.catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)

	resultSize, _ := meter.Int64Histogram(
		"storefront.catalog.result_size",
		metric.WithDescription("Number of products returned by a filtered catalog query"),
		metric.WithUnit("{product}"),
	)

	return &CatalogService{
		repo:              repo,
		validate:          validator.New(),
		tracer:            tracer,
		logger:            logger,
		catalogOperations: catalogOperations,
		resultSize:        resultSize,
	}
}

func (s *CatalogService) record(ctx context.Context, span trace.Span, operation string, err error) {
	result := resultOf(err)
	s.catalogOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return
	}
	span.SetStatus(codes.Ok, result)
}

// ListProducts returns the catalog filtered and ordered by query
func (s *CatalogService) ListProducts(ctx context.Context, query *dto.ListProductsQuery) (_ *dto.ProductListResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()
	defer func() { s.record(ctx, span, "list", err) }()

	if err := s.validate.Struct(query); err != nil {
		s.logger.WarnContext(ctx, "Invalid catalog query",
			slog.String("error", err.Error()),
		)
		return nil, mapValidationError(err)
	}

	filters, err := query.ToFilterState()
	if err != nil {
		s.logger.WarnContext(ctx, "Invalid catalog filters",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("catalog.sort", string(filters.Sort)),
		attribute.StringSlice("catalog.categories", filters.Categories),
		attribute.StringSlice("catalog.brands", filters.Brands),
		attribute.Float64("catalog.min_rating", filters.MinRating),
		attribute.Bool("catalog.eco_only", filters.EcoOnly),
	)

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load catalog",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	view := domain.FilterAndSort(products, filters)

	span.SetAttributes(
		attribute.Int("catalog.total", len(products)),
		attribute.Int("catalog.count", len(view)),
	)
	s.resultSize.Record(ctx, int64(len(view)),
		metric.WithAttributes(attribute.String("sort", string(filters.Sort))),
	)

	s.logger.InfoContext(ctx, "Catalog listed",
		slog.Int("count", len(view)),
		slog.Int("total", len(products)),
		slog.String("sort", string(filters.Sort)),
		slog.Bool("filtered", filters.Active()),
	)

	return dto.ToProductListResponse(view, len(products), filters.Sort), nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (_ *dto.ProductResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct")
	defer span.End()
	defer func() { s.record(ctx, span, "read", err) }()

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Product retrieved",
		slog.String("product_id", id),
	)
	return dto.ToProductResponse(product), nil
}

// Facets returns the categories, brands and price span of the catalog
func (s *CatalogService) Facets(ctx context.Context) (_ *dto.FacetsResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Facets")
	defer span.End()
	defer func() { s.record(ctx, span, "facets", err) }()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load catalog",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	facets := domain.BuildFacets(products)
	span.SetAttributes(
		attribute.Int("catalog.categories", len(facets.Categories)),
		attribute.Int("catalog.brands", len(facets.Brands)),
	)
	return dto.ToFacetsResponse(facets), nil
}
