package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/service/cart"
	"github.com/leathric/storefront/internal/storage/memory"
)

func newCartService(t *testing.T) (cart.Service, *memory.ProductRepository) {
	t.Helper()

	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	logger := baseLogger.WithField("component", "cart-service-test")

	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	return cart.NewService(carts, products, logger), products
}

func seedCatalog(t *testing.T, products *memory.ProductRepository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, products.Create(ctx, domain.Product{
		ID:            "prod-a",
		Name:          "Leather Jacket",
		Price:         decimal.RequireFromString("219.99"),
		StockQuantity: 5,
	}))
	require.NoError(t, products.Create(ctx, domain.Product{
		ID:            "prod-b",
		Name:          "Leather Wallet",
		Price:         decimal.RequireFromString("49.99"),
		StockQuantity: 2,
	}))
}

func TestGetCart_CreatesOnFirstAccess(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	view, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, view.CartID)
	require.Empty(t, view.Items)
	require.True(t, view.Total.IsZero())

	// Повторное обращение возвращает ту же корзину.
	again, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, view.CartID, again.CartID)
}

func TestAddItem_MergesQuantity(t *testing.T) {
	svc, products := newCartService(t)
	seedCatalog(t, products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-a", 2)
	require.NoError(t, err)

	view, err := svc.AddItem(ctx, "user-1", "prod-a", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, int32(3), view.Items[0].Quantity)
	require.Equal(t, "659.97", view.Items[0].LineTotal.StringFixed(2))
	require.Equal(t, "659.97", view.Total.StringFixed(2))
}

func TestAddItem_StockAware(t *testing.T) {
	svc, products := newCartService(t)
	seedCatalog(t, products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-b", 2)
	require.NoError(t, err)

	// Слияние выводит количество за остаток: 2 + 1 > 2.
	_, err = svc.AddItem(ctx, "user-1", "prod-b", 1)
	require.True(t, domain.IsInsufficientStock(err), "got %v", err)

	view, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int32(2), view.Items[0].Quantity)
}

func TestAddItem_Validation(t *testing.T) {
	svc, products := newCartService(t)
	seedCatalog(t, products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-a", 0)
	require.ErrorIs(t, err, domain.ErrQuantityInvalid)

	_, err = svc.AddItem(ctx, "user-1", "missing", 1)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateItem(t *testing.T) {
	svc, products := newCartService(t)
	seedCatalog(t, products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-a", 1)
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, "user-1", "prod-a", 4)
	require.NoError(t, err)
	require.Equal(t, int32(4), view.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, "user-1", "prod-a", 6)
	require.True(t, domain.IsInsufficientStock(err), "got %v", err)

	_, err = svc.UpdateItem(ctx, "user-1", "prod-b", 1)
	require.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, products := newCartService(t)
	seedCatalog(t, products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-a", 1)
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, "user-1", "prod-a")
	require.NoError(t, err)
	require.Empty(t, view.Items)

	_, err = svc.RemoveItem(ctx, "user-1", "prod-a")
	require.ErrorIs(t, err, domain.ErrCartItemNotFound)

	// У пользователя без корзины позиции тоже нет.
	_, err = svc.RemoveItem(ctx, "user-2", "prod-a")
	require.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestClear(t *testing.T) {
	svc, products := newCartService(t)
	seedCatalog(t, products)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "prod-a", 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "user-1"))

	view, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)

	// Clear без корзины — no-op.
	require.NoError(t, svc.Clear(ctx, "user-2"))
}
