package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/messaging/kafka"
	"github.com/leathric/storefront/internal/metrics"
)

// Количество попыток оформления при коллизии номера заказа.
const maxPlaceAttempts = 3

const (
	cancelledByUserNote = "Order cancelled by user"
	paymentNotePrefix   = "Payment confirmed: "
)

// Service описывает операции обработки заказов.
type Service interface {
	// PlaceOrder оформляет заказ из корзины пользователя: списывает
	// остатки, фиксирует цены, создаёт заказ и очищает корзину —
	// всё в одной транзакции.
	PlaceOrder(ctx context.Context, userID, note string) (domain.Order, error)
	// ConfirmPayment подтверждает оплату заказа и переводит его в CONFIRMED.
	ConfirmPayment(ctx context.Context, userID, orderID, paymentRef string) (domain.Order, error)
	// UpdateOrderStatus выполняет переход статуса по графу жизненного цикла.
	UpdateOrderStatus(ctx context.Context, orderID string, target domain.OrderStatus, note string) (domain.Order, error)
	// CancelOrder отменяет заказ пользователя и возвращает товар на склад.
	CancelOrder(ctx context.Context, userID, orderID string) (domain.Order, error)
	// GetOrder возвращает заказ пользователя с позициями и историей.
	GetOrder(ctx context.Context, userID, orderID string) (domain.Order, error)
	// ListMyOrders возвращает страницу заказов пользователя, новые первыми.
	ListMyOrders(ctx context.Context, userID string, page, size int) ([]domain.Order, int, error)
	// GetTracking возвращает проекцию отслеживания заказа.
	GetTracking(ctx context.Context, userID, orderID string) (Tracking, error)
}

// Tracking — проекция отслеживания заказа: номер, текущий статус,
// зафиксированная сумма и полная история переходов в хронологическом
// порядке.
type Tracking struct {
	OrderID       string
	Number        string
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	TotalAmount   decimal.Decimal
	History       []domain.OrderStatusHistory
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type service struct {
	txm      domain.TxManager
	orders   domain.OrderRepository
	products domain.ProductRepository
	ledger   domain.InventoryLedger
	carts    domain.CartRepository
	users    domain.UserRepository
	producer *kafka.Producer
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
}

// NewService создаёт рабочий экземпляр сервиса заказов.
// producer может быть nil — публикация событий тогда отключена.
func NewService(
	txm domain.TxManager,
	orders domain.OrderRepository,
	products domain.ProductRepository,
	ledger domain.InventoryLedger,
	carts domain.CartRepository,
	users domain.UserRepository,
	producer *kafka.Producer,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &service{
		txm:      txm,
		orders:   orders,
		products: products,
		ledger:   ledger,
		carts:    carts,
		users:    users,
		producer: producer,
		logger:   logger,
		metrics:  metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	txm domain.TxManager,
	orders domain.OrderRepository,
	products domain.ProductRepository,
	ledger domain.InventoryLedger,
	carts domain.CartRepository,
	users domain.UserRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &service{
		txm:      txm,
		orders:   orders,
		products: products,
		ledger:   ledger,
		carts:    carts,
		users:    users,
		logger:   logger,
	}
}

// PlaceOrder оформляет заказ из корзины. Списание остатков, создание
// заказа и очистка корзины выполняются в одной транзакции; при
// коллизии номера заказа транзакция повторяется целиком.
func (s *service) PlaceOrder(ctx context.Context, userID, note string) (domain.Order, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordPlacementDuration(time.Since(start))
	}()

	var placed domain.Order
	var err error
	for attempt := 1; attempt <= maxPlaceAttempts; attempt++ {
		placed, err = s.placeOnce(ctx, userID, note)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			s.metrics.RecordPlacementFailed(placementFailureReason(err))
			return domain.Order{}, err
		}
		s.logger.WithFields(log.Fields{
			"user_id": userID,
			"attempt": attempt,
		}).Warn("order number collision, retrying placement")
	}
	if err != nil {
		s.metrics.RecordPlacementFailed("number_collision")
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}

	s.metrics.RecordOrderPlaced()
	s.logger.WithFields(log.Fields{
		"order_id":     placed.ID,
		"order_number": placed.Number,
		"user_id":      userID,
		"total":        placed.TotalAmount.StringFixed(2),
		"items":        len(placed.Items),
	}).Info("order placed")

	s.publishOrderEvent(kafka.EventTypeOrderPlaced, placed, map[string]interface{}{
		"total": placed.TotalAmount.StringFixed(2),
	})
	return placed, nil
}

func (s *service) placeOnce(ctx context.Context, userID, note string) (domain.Order, error) {
	var placed domain.Order
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}

		cart, err := s.carts.GetByUser(ctx, user.ID)
		if err != nil {
			if errors.Is(err, domain.ErrCartNotFound) {
				return domain.ErrCartEmpty
			}
			return err
		}
		if len(cart.Items) == 0 {
			return domain.ErrCartEmpty
		}

		// Резервируем остатки по каждой позиции; первая нехватка
		// откатывает уже сделанные списания вместе с транзакцией.
		lines := make([]domain.OrderLine, 0, len(cart.Items))
		for _, item := range cart.Items {
			product, err := s.products.Get(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := s.ledger.Reserve(ctx, product.ID, item.Quantity); err != nil {
				return err
			}
			lines = append(lines, domain.OrderLine{Product: product, Quantity: item.Quantity})
		}

		order, err := domain.NewOrder(user.ID, lines, note)
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		if err := s.carts.Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart after placement: %w", err)
		}

		placed = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return placed, nil
}

// ConfirmPayment подтверждает оплату: допускается только из статуса
// CREATED, повторное подтверждение отклоняется.
func (s *service) ConfirmPayment(ctx context.Context, userID, orderID, paymentRef string) (domain.Order, error) {
	var updated domain.Order
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return domain.ErrAccessDenied
		}
		if order.Status != domain.OrderStatusCreated {
			return fmt.Errorf("%w: payment confirmation requires status %s, got %s",
				domain.ErrInvalidState, domain.OrderStatusCreated, order.Status)
		}
		if order.PaymentStatus == domain.PaymentStatusCompleted {
			return domain.ErrPaymentAlreadyConfirmed
		}

		order.PaymentStatus = domain.PaymentStatusCompleted
		order.AppendStatus(domain.OrderStatusConfirmed, paymentNotePrefix+paymentRef)
		if err := s.orders.Save(ctx, &order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordOrderConfirmed()
	s.metrics.RecordStatusTransition(string(domain.OrderStatusConfirmed))
	s.logger.WithFields(log.Fields{
		"order_id":    updated.ID,
		"payment_ref": paymentRef,
	}).Info("payment confirmed")

	s.publishOrderEvent(kafka.EventTypeOrderPaid, updated, map[string]interface{}{
		"payment_ref": paymentRef,
	})
	return updated, nil
}

// UpdateOrderStatus выполняет одиночный переход статуса. Переход в
// текущий статус и переходы вне графа отклоняются.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID string, target domain.OrderStatus, note string) (domain.Order, error) {
	var updated domain.Order
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == target {
			return fmt.Errorf("%w: order is already %s", domain.ErrInvalidState, target)
		}
		if !order.Status.CanTransitionTo(target) {
			return &domain.IllegalTransitionError{From: order.Status, To: target}
		}

		order.AppendStatus(target, note)
		if err := s.orders.Save(ctx, &order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordStatusTransition(string(target))
	if target.Terminal() {
		s.metrics.RecordOrderFinished()
	}
	s.logger.WithFields(log.Fields{
		"order_id": updated.ID,
		"status":   target,
	}).Info("order status updated")

	s.publishOrderEvent(kafka.EventTypeOrderStatusChanged, updated, nil)
	return updated, nil
}

// CancelOrder отменяет заказ и возвращает на склад ровно те
// количества, что были списаны при оформлении.
func (s *service) CancelOrder(ctx context.Context, userID, orderID string) (domain.Order, error) {
	var cancelled domain.Order
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return domain.ErrAccessDenied
		}
		if !order.Status.Cancellable() {
			return fmt.Errorf("%w: order is %s", domain.ErrNotCancellable, order.Status)
		}

		for _, item := range order.Items {
			if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock for product %s: %w", item.ProductID, err)
			}
		}

		order.AppendStatus(domain.OrderStatusCancelled, cancelledByUserNote)
		if err := s.orders.Save(ctx, &order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordOrderCancelled()
	s.metrics.RecordStatusTransition(string(domain.OrderStatusCancelled))
	s.logger.WithFields(log.Fields{
		"order_id": cancelled.ID,
		"user_id":  userID,
	}).Info("order cancelled")

	s.publishOrderEvent(kafka.EventTypeOrderCancelled, cancelled, nil)
	return cancelled, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.ErrAccessDenied
	}
	return order, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID string, page, size int) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.orders.ListByUser(ctx, userID, page, size)
}

func (s *service) GetTracking(ctx context.Context, userID, orderID string) (Tracking, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return Tracking{}, err
	}
	return Tracking{
		OrderID:       order.ID,
		Number:        order.Number,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		History:       order.History,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

func (s *service) publishOrderEvent(eventType kafka.EventType, order domain.Order, metadata map[string]interface{}) {
	if s.producer == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.Number, order.UserID, string(order.Status), metadata)
	if err := s.producer.PublishOrderEvent(event); err != nil {
		// Публикация событий не должна ломать уже зафиксированную операцию.
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to publish order event")
	}
}

func placementFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCartEmpty):
		return "cart_empty"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	default:
		return "internal"
	}
}

var _ Service = (*service)(nil)
