package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const initialHistoryNote = "Order created from cart"

// Order агрегирует заказ, его позиции и историю статусов.
// Позиции и история принадлежат заказу и живут только вместе с ним.
type Order struct {
	ID            string
	Number        string
	UserID        string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	Note          string
	Items         []OrderItem
	History       []OrderStatusHistory
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem представляет одну позицию заказа. Цена и название товара
// копируются из каталога в момент оформления и больше не меняются.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int32
	Price       decimal.Decimal
	CreatedAt   time.Time
}

// LineTotal возвращает стоимость позиции: цена × количество.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// OrderStatusHistory — одна запись в истории статусов заказа.
// Записи только добавляются, никогда не правятся и не удаляются.
type OrderStatusHistory struct {
	ID         string
	OrderID    string
	Status     OrderStatus
	Note       string
	OccurredAt time.Time
}

// OrderLine связывает товар каталога с количеством из корзины
// на входе в оформление заказа.
type OrderLine struct {
	Product  Product
	Quantity int32
}

// NewOrder собирает новый заказ из позиций корзины: фиксирует цены,
// считает сумму, генерирует номер и пишет первую запись истории.
func NewOrder(userID string, lines []OrderLine, note string) (Order, error) {
	if userID == "" {
		return Order{}, ErrUserRequired
	}
	if len(lines) == 0 {
		return Order{}, ErrItemsRequired
	}

	now := time.Now().UTC()
	orderID := uuid.NewString()

	items := make([]OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Order{}, ErrQuantityInvalid
		}
		item := OrderItem{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
			CreatedAt:   now,
		}
		items = append(items, item)
		total = total.Add(item.LineTotal())
	}

	order := Order{
		ID:            orderID,
		Number:        GenerateOrderNumber(now),
		UserID:        userID,
		Status:        OrderStatusCreated,
		PaymentStatus: PaymentStatusPending,
		TotalAmount:   total,
		Note:          note,
		Items:         items,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.History = []OrderStatusHistory{{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Status:     OrderStatusCreated,
		Note:       initialHistoryNote,
		OccurredAt: now,
	}}

	return order, nil
}

// AppendStatus меняет текущий статус и дописывает запись в историю.
// Легальность перехода проверяет вызывающая сторона.
func (o *Order) AppendStatus(newStatus OrderStatus, note string) {
	now := time.Now().UTC()
	o.Status = newStatus
	o.UpdatedAt = now
	o.History = append(o.History, OrderStatusHistory{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		Status:     newStatus,
		Note:       note,
		OccurredAt: now,
	})
}

// GenerateOrderNumber строит человекочитаемый номер заказа:
// ORD-<unix millis>-<четыре случайные цифры>. Уникальность страхует
// ограничение в БД, коллизия разрешается повторной попыткой оформления.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%04d", now.UnixMilli(), rand.Intn(10000))
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	calc := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if item.Price.IsNegative() {
			errs = append(errs, ErrAmountNegative)
		}
		calc = calc.Add(item.LineTotal())
	}
	if !calc.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	if len(o.History) == 0 {
		errs = append(errs, ErrHistoryRequired)
	} else if o.History[len(o.History)-1].Status != o.Status {
		errs = append(errs, ErrHistoryStatusMismatch)
	}

	return errs
}
