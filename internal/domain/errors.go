package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrCartNotFound возвращается, если у пользователя ещё нет корзины.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound возвращается при операции над отсутствующей позицией корзины.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrCartEmpty — попытка оформить заказ из пустой корзины.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrInvalidState — операция запрещена в текущем статусе заказа или оплаты.
	ErrInvalidState = errors.New("operation not allowed in current order state")
	// ErrNotCancellable — заказ уже нельзя отменить (передан в доставку или завершён).
	ErrNotCancellable = errors.New("order can no longer be cancelled")
	// ErrAccessDenied — заказ принадлежит другому пользователю.
	ErrAccessDenied = errors.New("access denied to this order")
	// ErrPaymentAlreadyConfirmed — повторное подтверждение оплаты.
	ErrPaymentAlreadyConfirmed = errors.New("payment already confirmed")
	// ErrInsufficientStock — на складе недостаточно товара.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrIllegalTransition — переход статуса нарушает граф жизненного цикла.
	ErrIllegalTransition = errors.New("illegal order status transition")
	// ErrUnknownStatus — строка статуса не входит в известный набор.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrAlreadyExists — запись с таким ключом уже существует.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrWishlistDuplicate — товар уже добавлен в избранное.
	ErrWishlistDuplicate = errors.New("product already in wishlist")
	// ErrVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrVersionConflict = errors.New("order version conflict")
	// ErrQuantityInvalid — количество должно быть положительным.
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// ErrItemsRequired — заказ обязан содержать хотя бы одну позицию.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrUserRequired — заказ обязан принадлежать пользователю.
	ErrUserRequired = errors.New("user_id is required")
	// ErrAmountNegative — цена и сумма заказа не могут быть отрицательными.
	ErrAmountNegative = errors.New("amount must be non-negative")
	// ErrAmountMismatch — сумма заказа не сходится с суммой позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// ErrHistoryRequired — у заказа всегда есть хотя бы одна запись в истории.
	ErrHistoryRequired = errors.New("order must contain at least one history entry")
	// ErrHistoryStatusMismatch — последняя запись истории обязана совпадать со статусом заказа.
	ErrHistoryStatusMismatch = errors.New("last history entry does not match order status")
)

// InsufficientStockError уточняет, какого товара не хватило и сколько было доступно.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// Is позволяет сопоставлять ошибку с ErrInsufficientStock через errors.Is.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IllegalTransitionError уточняет, какой именно переход статуса был отклонён.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// Is позволяет сопоставлять ошибку с ErrIllegalTransition через errors.Is.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой товара.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
