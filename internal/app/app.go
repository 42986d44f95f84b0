package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/leathric/storefront/internal/health"
	"github.com/leathric/storefront/internal/messaging/kafka"
	"github.com/leathric/storefront/internal/service/cart"
	"github.com/leathric/storefront/internal/service/order"
	"github.com/leathric/storefront/internal/service/wishlist"
	transport "github.com/leathric/storefront/internal/transport/http"
	"github.com/leathric/storefront/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает приложение и держит HTTP-сервер до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	if cfg.SeedDemoData && cfg.StorageDriver == StorageMemory {
		if err := SeedDemoData(ctx, deps, logger); err != nil {
			return err
		}
	}

	// Kafka опционален: без брокеров события просто не публикуются.
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
			producer = nil
		} else {
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}()

	orderService := order.NewService(
		deps.TxManager,
		deps.Orders,
		deps.Products,
		deps.Ledger,
		deps.Carts,
		deps.Users,
		producer,
		logger.WithField("component", "order-service"),
	)
	cartService := cart.NewService(deps.Carts, deps.Products, logger.WithField("component", "cart-service"))
	wishlistService := wishlist.NewService(deps.Wishlists, deps.Products, logger.WithField("component", "wishlist-service"))

	healthHandler := healthcheck.NewHandler(version.Short())
	deps.RegisterHealthChecks(healthHandler)

	mux := http.NewServeMux()
	handler := transport.NewHandler(
		orderService,
		cartService,
		wishlistService,
		deps.Products,
		healthHandler,
		logger.WithField("component", "http"),
	)
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("graceful shutdown завершился с ошибкой")
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
