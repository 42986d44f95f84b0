package domain

import "fmt"

// OrderStatus — статус жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "CREATED"
	OrderStatusConfirmed       OrderStatus = "CONFIRMED"
	OrderStatusPacked          OrderStatus = "PACKED"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery  OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusReturnRequested OrderStatus = "RETURN_REQUESTED"
	OrderStatusRefunded        OrderStatus = "REFUNDED"
)

// PaymentStatus — статус оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// orderTransitions — полный граф разрешённых переходов статусов.
// Отсутствие статуса в карте означает терминальное состояние.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:         {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:       {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:          {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:         {OrderStatusOutForDelivery, OrderStatusReturnRequested},
	OrderStatusOutForDelivery:  {OrderStatusDelivered, OrderStatusReturnRequested},
	OrderStatusDelivered:       {OrderStatusReturnRequested},
	OrderStatusReturnRequested: {OrderStatusRefunded},
	OrderStatusCancelled:       {},
	OrderStatusRefunded:        {},
}

// CanTransitionTo сообщает, разрешён ли переход из текущего статуса в target.
// Переход в тот же самый статус запрещён.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Cancellable сообщает, можно ли ещё отменить заказ в этом статусе.
// Отмена возможна только до передачи заказа в доставку.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusCreated, OrderStatusConfirmed, OrderStatusPacked:
		return true
	default:
		return false
	}
}

// Terminal сообщает, является ли статус конечным.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// ToOrderStatus преобразует строку в статус; ErrUnknownStatus для
// значений вне известного набора.
func ToOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if _, ok := orderTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return status, nil
}

// OrderStatuses возвращает все известные статусы заказа.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusCreated,
		OrderStatusConfirmed,
		OrderStatusPacked,
		OrderStatusShipped,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusReturnRequested,
		OrderStatusRefunded,
	}
}
