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

// CartService handles shopping cart use cases
type CartService struct {
	carts          domain.CartRepository
	products       domain.ProductRepository
	validate       *validator.Validate
	tracer         trace.Tracer
	logger         *slog.Logger
	cartOperations metric.Int64Counter
	itemsAdded     metric.Int64Counter
}

// NewCartService creates a new cart service
func NewCartService(
	carts domain.CartRepository,
	products domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CartService {
	cartOperations, _ := meter.Int64Counter(
		"storefront.cart.operations",
		metric.WithDescription("Total number of cart operations"),
	)

	itemsAdded, _ := meter.Int64Counter(
		"storefront.cart.items_added.total",
		metric.WithDescription("Total number of product units added to carts"),
	)

	return &CartService{
		carts:          carts,
		products:       products,
		validate:       validator.New(),
		tracer:         tracer,
		logger:         logger,
		cartOperations: cartOperations,
		itemsAdded:     itemsAdded,
	}
}

func (s *CartService) record(ctx context.Context, span trace.Span, operation string, err error) {
	result := resultOf(err)
	s.cartOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		if result == "failure" {
			s.logger.ErrorContext(ctx, "Cart operation failed",
				slog.String("operation", operation),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	span.SetStatus(codes.Ok, result)
}

func (s *CartService) startSpan(ctx context.Context, name, cartID string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "CartService."+name)
	if cartID != "" {
		span.SetAttributes(attribute.String("cart.id", cartID))
	}
	return ctx, span
}

// CreateCart opens a new empty cart session
func (s *CartService) CreateCart(ctx context.Context) (_ *dto.CartResponse, err error) {
	ctx, span := s.startSpan(ctx, "CreateCart", "")
	defer span.End()
	defer func() { s.record(ctx, span, "create", err) }()

	cart, err := s.carts.Create(ctx)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("cart.id", cart.ID))
	s.logger.InfoContext(ctx, "Cart created",
		slog.String("cart_id", cart.ID),
	)
	return dto.ToCartResponse(cart), nil
}

// GetCart returns the cart lines with fresh totals
func (s *CartService) GetCart(ctx context.Context, cartID string) (_ *dto.CartResponse, err error) {
	ctx, span := s.startSpan(ctx, "GetCart", cartID)
	defer span.End()
	defer func() { s.record(ctx, span, "read", err) }()

	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return dto.ToCartResponse(cart), nil
}

// AddItem adds one unit of a catalog product, snapshotting its name, price
// and category on first add.
func (s *CartService) AddItem(ctx context.Context, cartID string, req *dto.AddCartItemRequest) (_ *dto.CartResponse, err error) {
	ctx, span := s.startSpan(ctx, "AddItem", cartID)
	defer span.End()
	defer func() { s.record(ctx, span, "add", err) }()

	if err := s.validate.Struct(req); err != nil {
		return nil, mapValidationError(err)
	}
	span.SetAttributes(attribute.String("product.id", req.ProductID))

	// Resolve the product before touching the cart so an unknown product
	// leaves the session unchanged.
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Update(ctx, cartID, func(c *domain.Cart) error {
		return c.Add(product)
	})
	if err != nil {
		return nil, err
	}

	s.itemsAdded.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", product.Category)),
	)
	s.logger.InfoContext(ctx, "Item added to cart",
		slog.String("cart_id", cartID),
		slog.String("product_id", product.ID),
		slog.Int("item_count", cart.ItemCount()),
	)
	return dto.ToCartResponse(cart), nil
}

// SetQuantity replaces a line quantity; zero removes the line and an absent
// line is left alone.
func (s *CartService) SetQuantity(ctx context.Context, cartID, productID string, req *dto.SetQuantityRequest) (_ *dto.CartResponse, err error) {
	ctx, span := s.startSpan(ctx, "SetQuantity", cartID)
	defer span.End()
	defer func() { s.record(ctx, span, "set_quantity", err) }()

	if err := s.validate.Struct(req); err != nil {
		return nil, mapValidationError(err)
	}
	quantity := *req.Quantity
	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	)

	cart, err := s.carts.Update(ctx, cartID, func(c *domain.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Cart quantity set",
		slog.String("cart_id", cartID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return dto.ToCartResponse(cart), nil
}

// RemoveItem deletes a line if present
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (_ *dto.CartResponse, err error) {
	ctx, span := s.startSpan(ctx, "RemoveItem", cartID)
	defer span.End()
	defer func() { s.record(ctx, span, "remove", err) }()

	span.SetAttributes(attribute.String("product.id", productID))

	cart, err := s.carts.Update(ctx, cartID, func(c *domain.Cart) error {
		c.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Item removed from cart",
		slog.String("cart_id", cartID),
		slog.String("product_id", productID),
	)
	return dto.ToCartResponse(cart), nil
}

// ClearCart removes every line but keeps the session
func (s *CartService) ClearCart(ctx context.Context, cartID string) (_ *dto.CartResponse, err error) {
	ctx, span := s.startSpan(ctx, "ClearCart", cartID)
	defer span.End()
	defer func() { s.record(ctx, span, "clear", err) }()

	cart, err := s.carts.Update(ctx, cartID, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Cart cleared",
		slog.String("cart_id", cartID),
	)
	return dto.ToCartResponse(cart), nil
}

// DeleteCart ends the cart session
func (s *CartService) DeleteCart(ctx context.Context, cartID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCart", cartID)
	defer span.End()
	defer func() { s.record(ctx, span, "delete", err) }()

	if err := s.carts.Delete(ctx, cartID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Cart deleted",
		slog.String("cart_id", cartID),
	)
	return nil
}
