package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар каталога. Ядро читает цену и название, а остаток
// меняет только через InventoryLedger.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int32
	ImageURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User — покупатель. Управление учётными записями лежит вне ядра.
type User struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
}

// Cart — корзина пользователя. Создаётся лениво при первом обращении
// и очищается атомарно после успешного оформления заказа.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
}

// CartItem — позиция корзины: товар и запрошенное количество.
type CartItem struct {
	ProductID string
	Quantity  int32
	CreatedAt time.Time
}

// Wishlist — список избранного пользователя. Как и корзина,
// создаётся лениво; товар может встречаться в нём только один раз.
type Wishlist struct {
	ID        string
	UserID    string
	Items     []WishlistItem
	CreatedAt time.Time
}

// WishlistItem — товар в избранном.
type WishlistItem struct {
	ProductID string
	CreatedAt time.Time
}
