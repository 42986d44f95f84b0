package memory

import (
	"context"
	"sync"

	"github.com/leathric/storefront/internal/domain"
)

// CartRepository — in-memory реализация domain.CartRepository.
type CartRepository struct {
	mu     sync.RWMutex
	carts  map[string]domain.Cart // cart id -> cart
	byUser map[string]string      // user id -> cart id
}

// NewCartRepository возвращает пустое in-memory хранилище корзин.
func NewCartRepository() *CartRepository {
	return &CartRepository{
		carts:  make(map[string]domain.Cart),
		byUser: make(map[string]string),
	}
}

// GetByUser возвращает корзину пользователя или ErrCartNotFound.
func (r *CartRepository) GetByUser(_ context.Context, userID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cartID, ok := r.byUser[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(r.carts[cartID]), nil
}

// Create заводит корзину; ErrAlreadyExists при гонке первого обращения.
func (r *CartRepository) Create(_ context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[cart.UserID]; exists {
		return domain.ErrAlreadyExists
	}
	r.carts[cart.ID] = cloneCart(cart)
	r.byUser[cart.UserID] = cart.ID
	return nil
}

// AddItem добавляет позицию либо увеличивает количество существующей.
func (r *CartRepository) AddItem(_ context.Context, cartID string, item domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			r.carts[cartID] = cart
			return nil
		}
	}

	cart.Items = append(cart.Items, item)
	r.carts[cartID] = cart
	return nil
}

// SetItemQuantity выставляет точное количество позиции.
func (r *CartRepository) SetItemQuantity(_ context.Context, cartID, productID string, qty int32) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return false, domain.ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = qty
			r.carts[cartID] = cart
			return true, nil
		}
	}
	return false, nil
}

// RemoveItem удаляет позицию корзины.
func (r *CartRepository) RemoveItem(_ context.Context, cartID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return false, domain.ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			r.carts[cartID] = cart
			return true, nil
		}
	}
	return false, nil
}

// Clear опустошает корзину.
func (r *CartRepository) Clear(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	cart.Items = nil
	r.carts[cartID] = cart
	return nil
}

func (r *CartRepository) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	carts := make(map[string]domain.Cart, len(r.carts))
	for id, cart := range r.carts {
		carts[id] = cloneCart(cart)
	}
	byUser := make(map[string]string, len(r.byUser))
	for userID, cartID := range r.byUser {
		byUser[userID] = cartID
	}
	return &cartSnapshot{carts: carts, byUser: byUser}
}

func (r *CartRepository) restore(snap any) {
	s, ok := snap.(*cartSnapshot)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = s.carts
	r.byUser = s.byUser
}

type cartSnapshot struct {
	carts  map[string]domain.Cart
	byUser map[string]string
}

func cloneCart(cart domain.Cart) domain.Cart {
	clone := cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	return clone
}

var _ domain.CartRepository = (*CartRepository)(nil)
