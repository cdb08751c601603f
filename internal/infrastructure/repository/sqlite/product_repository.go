// Package sqlite serves the product catalog from a SQLite table through GORM.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// productRecord is the persisted catalog row. Position holds the featured
// order.
type productRecord struct {
	ID                  string              `gorm:"primaryKey;size:64"`
	Position            int                 `gorm:"not null;index"`
	Name                string              `gorm:"size:200;not null"`
	Price               decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	OriginalPrice       decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Image               string              `gorm:"size:200"`
	Category            string              `gorm:"size:100;not null;index"`
	Brand               string              `gorm:"size:100;not null;index"`
	Rating              float64             `gorm:"not null;default:0"`
	Reviews             int                 `gorm:"not null;default:0"`
	IsNew               bool                `gorm:"not null;default:false"`
	IsSale              bool                `gorm:"not null;default:false"`
	SustainabilityScore *int
}

func (productRecord) TableName() string {
	return "products"
}

func toRecord(p domain.Product, position int) productRecord {
	rec := productRecord{
		ID:                  p.ID,
		Position:            position,
		Name:                p.Name,
		Price:               p.Price,
		Image:               p.Image,
		Category:            p.Category,
		Brand:               p.Brand,
		Rating:              p.Rating,
		Reviews:             p.Reviews,
		IsNew:               p.IsNew,
		IsSale:              p.IsSale,
		SustainabilityScore: p.SustainabilityScore,
	}
	if p.OriginalPrice != nil {
		rec.OriginalPrice = decimal.NewNullDecimal(*p.OriginalPrice)
	}
	return rec
}

func (r productRecord) toDomain() domain.Product {
	p := domain.Product{
		ID:                  r.ID,
		Name:                r.Name,
		Price:               r.Price,
		Image:               r.Image,
		Category:            r.Category,
		Brand:               r.Brand,
		Rating:              r.Rating,
		Reviews:             r.Reviews,
		IsNew:               r.IsNew,
		IsSale:              r.IsSale,
		SustainabilityScore: r.SustainabilityScore,
	}
	if r.OriginalPrice.Valid {
		op := r.OriginalPrice.Decimal
		p.OriginalPrice = &op
	}
	return p
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&productRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// ProductRepository implements domain.ProductRepository on GORM
type ProductRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a GORM-backed product repository
func NewProductRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		tracer: tracer,
		logger: logger,
	}
}

// SeedIfEmpty inserts products in order when the table has no rows. It
// returns the number of rows inserted.
func (r *ProductRepository) SeedIfEmpty(ctx context.Context, products []domain.Product) (int, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.SeedIfEmpty")
	defer span.End()

	var count int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Count(&count).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Count failed")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		r.logger.InfoContext(ctx, "Catalog table already populated, skipping seed",
			slog.Int64("count", count),
		)
		span.SetStatus(codes.Ok, "Already seeded")
		return 0, nil
	}

	records := make([]productRecord, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		records = append(records, toRecord(p, len(records)))
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(records, 100).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Seed failed")
		return 0, fmt.Errorf("failed to seed products: %w", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(records)))
	r.logger.InfoContext(ctx, "Catalog table seeded",
		slog.Int("count", len(records)),
	)
	span.SetStatus(codes.Ok, "Seeded")
	return len(records), nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(domain.ErrProductNotFound)
			span.SetStatus(codes.Error, "Product not found")
			r.logger.WarnContext(ctx, "Product not found",
				slog.String("product_id", id),
			)
			return nil, domain.ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	p := rec.toDomain()
	span.SetStatus(codes.Ok, "Product found")
	return &p, nil
}

// FindAll retrieves all products in featured order
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	var records []productRecord
	if err := r.db.WithContext(ctx).Order("position asc").Find(&records).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	products := make([]domain.Product, len(records))
	for i, rec := range records {
		products[i] = rec.toDomain()
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	r.logger.DebugContext(ctx, "Products retrieved from database",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}
