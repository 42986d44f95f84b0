package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/service/cart"
	"github.com/leathric/storefront/internal/service/order"
	"github.com/leathric/storefront/internal/storage/memory"
)

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказов
// поверх in-memory хранилища: корзина → заказ → оплата → доставка.
type OrderLifecycleTestSuite struct {
	suite.Suite
	orders   order.Service
	carts    cart.Service
	products *memory.ProductRepository
	users    *memory.UserRepository
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	orderRepo := memory.NewOrderRepository()
	s.products = memory.NewProductRepository()
	cartRepo := memory.NewCartRepository()
	s.users = memory.NewUserRepository()
	wishlistRepo := memory.NewWishlistRepository()
	txm := memory.NewTxManager(orderRepo, s.products, cartRepo, s.users, wishlistRepo)

	s.orders = order.NewServiceWithoutMetrics(txm, orderRepo, s.products, s.products, cartRepo, s.users, logger)
	s.carts = cart.NewService(cartRepo, s.products, logger)

	ctx := context.Background()
	require.NoError(s.T(), s.users.Create(ctx, domain.User{
		ID:    "customer-123",
		Email: "customer@example.com",
	}))
	require.NoError(s.T(), s.products.Create(ctx, domain.Product{
		ID:            "leather-jacket",
		Name:          "Leather Jacket",
		Price:         decimal.RequireFromString("219.99"),
		StockQuantity: 3,
	}))
	require.NoError(s.T(), s.products.Create(ctx, domain.Product{
		ID:            "leather-wallet",
		Name:          "Leather Wallet",
		Price:         decimal.RequireFromString("49.99"),
		StockQuantity: 10,
	}))
}

func (s *OrderLifecycleTestSuite) stock(productID string) int32 {
	product, err := s.products.Get(context.Background(), productID)
	require.NoError(s.T(), err)
	return product.StockQuantity
}

func (s *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	ctx := context.Background()

	// 1. Наполняем корзину
	_, err := s.carts.AddItem(ctx, "customer-123", "leather-jacket", 1)
	require.NoError(s.T(), err)
	_, err = s.carts.AddItem(ctx, "customer-123", "leather-wallet", 2)
	require.NoError(s.T(), err)

	// 2. Оформляем заказ
	placed, err := s.orders.PlaceOrder(ctx, "customer-123", "ring the bell")
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.OrderStatusCreated, placed.Status)
	require.True(s.T(), placed.TotalAmount.Equal(decimal.RequireFromString("319.97")),
		"total = %s", placed.TotalAmount) // 219.99 + 2*49.99
	require.Equal(s.T(), int32(2), s.stock("leather-jacket"))
	require.Equal(s.T(), int32(8), s.stock("leather-wallet"))

	// 3. Подтверждаем оплату
	confirmed, err := s.orders.ConfirmPayment(ctx, "customer-123", placed.ID, "pay-789")
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.OrderStatusConfirmed, confirmed.Status)
	require.Equal(s.T(), domain.PaymentStatusCompleted, confirmed.PaymentStatus)

	// 4. Ведём заказ по цепочке доставки
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPacked,
		domain.OrderStatusShipped,
		domain.OrderStatusOutForDelivery,
		domain.OrderStatusDelivered,
	} {
		updated, err := s.orders.UpdateOrderStatus(ctx, placed.ID, status, "")
		require.NoError(s.T(), err, "transition to %s", status)
		require.Equal(s.T(), status, updated.Status)
	}

	// 5. Полная история в хронологическом порядке
	tracking, err := s.orders.GetTracking(ctx, "customer-123", placed.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), tracking.History, 6)
	require.Equal(s.T(), domain.OrderStatusCreated, tracking.History[0].Status)
	require.Equal(s.T(), domain.OrderStatusDelivered, tracking.History[5].Status)
	require.True(s.T(), tracking.TotalAmount.Equal(placed.TotalAmount))
	require.Equal(s.T(), domain.PaymentStatusCompleted, tracking.PaymentStatus)

	// 6. Доставленный заказ уже нельзя отменить
	_, err = s.orders.CancelOrder(ctx, "customer-123", placed.ID)
	require.ErrorIs(s.T(), err, domain.ErrNotCancellable)
}

func (s *OrderLifecycleTestSuite) TestCancelRestoresStockAndCart() {
	ctx := context.Background()

	_, err := s.carts.AddItem(ctx, "customer-123", "leather-jacket", 2)
	require.NoError(s.T(), err)

	placed, err := s.orders.PlaceOrder(ctx, "customer-123", "")
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(1), s.stock("leather-jacket"))

	cancelled, err := s.orders.CancelOrder(ctx, "customer-123", placed.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.OrderStatusCancelled, cancelled.Status)
	require.Equal(s.T(), int32(3), s.stock("leather-jacket"))

	// Отменённый заказ остаётся в истории пользователя.
	orders, total, err := s.orders.ListMyOrders(ctx, "customer-123", 1, 10)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, total)
	require.Equal(s.T(), domain.OrderStatusCancelled, orders[0].Status)

	// Отмена терминальна: повторная отмена невозможна.
	_, err = s.orders.CancelOrder(ctx, "customer-123", placed.ID)
	require.ErrorIs(s.T(), err, domain.ErrNotCancellable)
}

func (s *OrderLifecycleTestSuite) TestFailedPlacementKeepsCart() {
	ctx := context.Background()

	_, err := s.carts.AddItem(ctx, "customer-123", "leather-jacket", 3)
	require.NoError(s.T(), err)

	// Другой покупатель успевает забрать часть остатка напрямую.
	require.NoError(s.T(), s.products.Reserve(ctx, "leather-jacket", 2))

	_, err = s.orders.PlaceOrder(ctx, "customer-123", "")
	require.True(s.T(), domain.IsInsufficientStock(err), "got %v", err)

	// Корзина и остаток не пострадали от неудачной попытки.
	view, err := s.carts.GetCart(ctx, "customer-123")
	require.NoError(s.T(), err)
	require.Len(s.T(), view.Items, 1)
	require.Equal(s.T(), int32(1), s.stock("leather-jacket"))
}

func (s *OrderLifecycleTestSuite) TestFrozenPricesSurviveCatalogChanges() {
	ctx := context.Background()

	_, err := s.carts.AddItem(ctx, "customer-123", "leather-wallet", 1)
	require.NoError(s.T(), err)

	placed, err := s.orders.PlaceOrder(ctx, "customer-123", "")
	require.NoError(s.T(), err)
	require.True(s.T(), placed.TotalAmount.Equal(decimal.RequireFromString("49.99")))

	// Каталог живёт своей жизнью: остаток меняется, но заказ
	// хранит зафиксированную цену и сумму.
	require.NoError(s.T(), s.products.Reserve(ctx, "leather-wallet", 5))

	stored, err := s.orders.GetOrder(ctx, "customer-123", placed.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), stored.TotalAmount.Equal(decimal.RequireFromString("49.99")))
	require.True(s.T(), stored.Items[0].Price.Equal(decimal.RequireFromString("49.99")))
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
