package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/health"
	"github.com/leathric/storefront/internal/storage/memory"
	"github.com/leathric/storefront/internal/storage/postgres"
)

// Dependencies содержит хранилище и репозитории приложения.
type Dependencies struct {
	TxManager domain.TxManager
	Orders    domain.OrderRepository
	Products  domain.ProductRepository
	Ledger    domain.InventoryLedger
	Carts     domain.CartRepository
	Users     domain.UserRepository
	Wishlists domain.WishlistRepository

	// store не nil только для драйвера postgres.
	store *postgres.Store
}

// NewDependencies собирает слой хранения под выбранный драйвер.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	switch cfg.StorageDriver {
	case StoragePostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	case StorageMemory:
		return newMemoryDependencies(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newMemoryDependencies() *Dependencies {
	orders := memory.NewOrderRepository()
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	users := memory.NewUserRepository()
	wishlists := memory.NewWishlistRepository()

	return &Dependencies{
		TxManager: memory.NewTxManager(orders, products, carts, users, wishlists),
		Orders:    orders,
		Products:  products,
		Ledger:    products,
		Carts:     carts,
		Users:     users,
		Wishlists: wishlists,
	}
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	return &Dependencies{
		TxManager: postgres.NewTxManager(store),
		Orders:    postgres.NewOrderRepository(store),
		Products:  postgres.NewProductRepository(store),
		Ledger:    postgres.NewInventoryLedger(store),
		Carts:     postgres.NewCartRepository(store),
		Users:     postgres.NewUserRepository(store),
		Wishlists: postgres.NewWishlistRepository(store),
		store:     store,
	}, nil
}

// RegisterHealthChecks добавляет проверки хранилища в health handler.
func (d *Dependencies) RegisterHealthChecks(handler *health.Handler) {
	if d.store != nil {
		handler.RegisterChecker("postgres", health.NewPingChecker("postgres", d.store))
	}
}

// Close освобождает ресурсы слоя хранения.
func (d *Dependencies) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
