package domain

import "context"

// TxManager исполняет fn внутри одной транзакции хранилища:
// либо фиксируются все изменения, сделанные через репозитории
// с этим ctx, либо ни одно из них.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// InventoryLedger — единственная точка изменения складских остатков.
// Проверка и списание выполняются одним атомарным действием против
// хранилища; кеширование остатков поверх него запрещено.
type InventoryLedger interface {
	// Reserve атомарно списывает qty единиц товара или возвращает
	// *InsufficientStockError, если доступно меньше запрошенного.
	Reserve(ctx context.Context, productID string, qty int32) error
	// Release атомарно возвращает qty единиц на склад (компенсация отмены).
	Release(ctx context.Context, productID string, qty int32) error
}

// ProductRepository — доступ к каталогу товаров.
type ProductRepository interface {
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// List возвращает страницу каталога и общее количество товаров.
	List(ctx context.Context, page, size int) ([]Product, int, error)
	// Create добавляет товар (используется сидированием и каталожным CRUD).
	Create(ctx context.Context, product Product) error
}

// UserRepository — доступ к пользователям.
type UserRepository interface {
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) error
}

// CartRepository — хранилище корзин.
type CartRepository interface {
	// GetByUser возвращает корзину пользователя или ErrCartNotFound.
	GetByUser(ctx context.Context, userID string) (Cart, error)
	// Create заводит пустую корзину; ErrAlreadyExists при гонке создания.
	Create(ctx context.Context, cart Cart) error
	// AddItem добавляет позицию либо увеличивает количество существующей.
	AddItem(ctx context.Context, cartID string, item CartItem) error
	// SetItemQuantity выставляет точное количество; false, если позиции нет.
	SetItemQuantity(ctx context.Context, cartID, productID string, qty int32) (bool, error)
	// RemoveItem удаляет позицию; false, если позиции не было.
	RemoveItem(ctx context.Context, cartID, productID string) (bool, error)
	// Clear опустошает корзину.
	Clear(ctx context.Context, cartID string) error
}

// WishlistRepository — хранилище списков избранного.
type WishlistRepository interface {
	// GetByUser возвращает избранное пользователя; false — списка ещё нет.
	GetByUser(ctx context.Context, userID string) (Wishlist, bool, error)
	// Create заводит пустой список; ErrAlreadyExists при гонке создания.
	Create(ctx context.Context, wishlist Wishlist) error
	// AddItem добавляет товар; ErrWishlistDuplicate, если он уже есть.
	AddItem(ctx context.Context, wishlistID string, item WishlistItem) error
	// RemoveItem удаляет товар; false, если его не было.
	RemoveItem(ctx context.Context, wishlistID, productID string) (bool, error)
	// Clear опустошает список.
	Clear(ctx context.Context, wishlistID string) error
}
