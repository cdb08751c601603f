package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mrops-br/storefront-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CartRepository keeps session carts in process memory. Carts do not
// survive a restart.
type CartRepository struct {
	mu     sync.Mutex
	carts  map[string]*domain.Cart
	tracer trace.Tracer
	logger *slog.Logger
}

// NewCartRepository creates an empty cart store
func NewCartRepository(tracer trace.Tracer, logger *slog.Logger) *CartRepository {
	return &CartRepository{
		carts:  make(map[string]*domain.Cart),
		tracer: tracer,
		logger: logger,
	}
}

// Create stores a new empty cart
func (r *CartRepository) Create(ctx context.Context) (*domain.Cart, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Create")
	defer span.End()

	cart := domain.NewCart()

	r.mu.Lock()
	r.carts[cart.ID] = cart
	r.mu.Unlock()

	span.SetAttributes(attribute.String("cart.id", cart.ID))
	r.logger.DebugContext(ctx, "Cart created in repository",
		slog.String("cart_id", cart.ID),
	)

	span.SetStatus(codes.Ok, "Cart created")
	return cart.Clone(), nil
}

// FindByID returns a snapshot of the cart
func (r *CartRepository) FindByID(ctx context.Context, id string) (*domain.Cart, error) {
	_, span := r.tracer.Start(ctx, "CartRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("cart.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	cart, exists := r.carts[id]
	if !exists {
		span.RecordError(domain.ErrCartNotFound)
		span.SetStatus(codes.Error, "Cart not found")
		return nil, domain.ErrCartNotFound
	}

	span.SetStatus(codes.Ok, "Cart found")
	return cart.Clone(), nil
}

// Update applies fn to a working copy of the cart and stores it only when
// fn succeeds, so a failed mutation leaves the cart untouched.
func (r *CartRepository) Update(ctx context.Context, id string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	_, span := r.tracer.Start(ctx, "CartRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("cart.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.carts[id]
	if !exists {
		span.RecordError(domain.ErrCartNotFound)
		span.SetStatus(codes.Error, "Cart not found")
		return nil, domain.ErrCartNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Cart update rejected")
		return nil, err
	}
	r.carts[id] = working

	span.SetAttributes(attribute.Int("cart.line_count", working.LineCount()))
	span.SetStatus(codes.Ok, "Cart updated")
	return working.Clone(), nil
}

// Delete drops the cart session. Deleting an unknown cart reports
// domain.ErrCartNotFound.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	_, span := r.tracer.Start(ctx, "CartRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("cart.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.carts[id]; !exists {
		span.SetStatus(codes.Error, "Cart not found")
		return domain.ErrCartNotFound
	}
	delete(r.carts, id)

	span.SetStatus(codes.Ok, "Cart deleted")
	return nil
}

// Len reports the number of live cart sessions.
func (r *CartRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
