package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/mrops-br/storefront-api/internal/infrastructure/catalog"
	"github.com/mrops-br/storefront-api/internal/infrastructure/config"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/storefront-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/storefront-api/internal/infrastructure/repository/sqlite"
	"github.com/mrops-br/storefront-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "storefront-api"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Disabled {
		telem = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	} else {
		var err error
		telem, err = telemetry.NewTelemetry(ctx, &cfg.OTLP)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	// Flush telemetry after the server has drained
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Storefront API",
		slog.String("catalog_source", string(cfg.Catalog.Source)),
	)

	products, err := catalog.Load(cfg.Catalog.File, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	productRepo, closeCatalog, err := newProductRepository(ctx, &cfg.Catalog, products, tracer, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCatalog(); err != nil {
			logger.Error("Failed to close catalog store", slog.String("error", err.Error()))
		}
	}()

	cartRepo := memory.NewCartRepository(tracer, logger)
	if err := registerCartGauge(meter, cartRepo); err != nil {
		return err
	}

	catalogService := service.NewCatalogService(productRepo, tracer, meter, logger)
	cartService := service.NewCartService(cartRepo, productRepo, tracer, meter, logger)

	server := http.NewServer(&cfg.Server,
		handler.NewProductHandler(catalogService, logger),
		handler.NewCartHandler(cartService, logger),
		telem.MeterProvider,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// newProductRepository builds the catalog store named by cfg.Source. The
// SQLite store is seeded from products on first start. The returned func
// releases the store and must be called on shutdown.
func newProductRepository(
	ctx context.Context,
	cfg *config.CatalogConfig,
	products []domain.Product,
	tracer trace.Tracer,
	logger *slog.Logger,
) (domain.ProductRepository, func() error, error) {
	switch cfg.Source {
	case config.CatalogSourceMemory:
		return memory.NewProductRepository(products, tracer, logger), func() error { return nil }, nil
	case config.CatalogSourceSQLite:
		db, err := sqlite.Open(cfg.DSN, logger.Enabled(ctx, slog.LevelDebug))
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}

		repo := sqlite.NewProductRepository(db, tracer, logger)
		inserted, err := repo.SeedIfEmpty(ctx, products)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		logger.Info("SQLite catalog ready",
			slog.String("dsn", cfg.DSN),
			slog.Int("seeded", inserted),
		)
		return repo, sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

func registerCartGauge(meter metric.Meter, carts *memory.CartRepository) error {
	_, err := meter.Int64ObservableGauge(
		"storefront.carts.active",
		metric.WithDescription("Number of open cart sessions"),
		metric.WithUnit("{cart}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(carts.Len()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to register cart gauge: %w", err)
	}
	return nil
}
