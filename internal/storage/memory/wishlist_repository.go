package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leathric/storefront/internal/domain"
)

// WishlistRepository — in-memory реализация domain.WishlistRepository.
type WishlistRepository struct {
	mu     sync.RWMutex
	lists  map[string]domain.Wishlist
	byUser map[string]string
}

// NewWishlistRepository возвращает пустое in-memory хранилище избранного.
func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{
		lists:  make(map[string]domain.Wishlist),
		byUser: make(map[string]string),
	}
}

// GetByUser возвращает избранное пользователя; false — списка ещё нет.
func (r *WishlistRepository) GetByUser(_ context.Context, userID string) (domain.Wishlist, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listID, ok := r.byUser[userID]
	if !ok {
		return domain.Wishlist{}, false, nil
	}
	return cloneWishlist(r.lists[listID]), true, nil
}

// Create заводит список; ErrAlreadyExists при гонке первого обращения.
func (r *WishlistRepository) Create(_ context.Context, wishlist domain.Wishlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[wishlist.UserID]; exists {
		return domain.ErrAlreadyExists
	}
	r.lists[wishlist.ID] = cloneWishlist(wishlist)
	r.byUser[wishlist.UserID] = wishlist.ID
	return nil
}

// AddItem добавляет товар; ErrWishlistDuplicate, если он уже есть.
func (r *WishlistRepository) AddItem(_ context.Context, wishlistID string, item domain.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wishlist, ok := r.lists[wishlistID]
	if !ok {
		return fmt.Errorf("wishlist %s not found", wishlistID)
	}

	for _, existing := range wishlist.Items {
		if existing.ProductID == item.ProductID {
			return domain.ErrWishlistDuplicate
		}
	}

	wishlist.Items = append(wishlist.Items, item)
	r.lists[wishlistID] = wishlist
	return nil
}

// RemoveItem удаляет товар из избранного.
func (r *WishlistRepository) RemoveItem(_ context.Context, wishlistID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wishlist, ok := r.lists[wishlistID]
	if !ok {
		return false, nil
	}

	for i := range wishlist.Items {
		if wishlist.Items[i].ProductID == productID {
			wishlist.Items = append(wishlist.Items[:i], wishlist.Items[i+1:]...)
			r.lists[wishlistID] = wishlist
			return true, nil
		}
	}
	return false, nil
}

// Clear опустошает список избранного.
func (r *WishlistRepository) Clear(_ context.Context, wishlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wishlist, ok := r.lists[wishlistID]
	if !ok {
		return nil
	}
	wishlist.Items = nil
	r.lists[wishlistID] = wishlist
	return nil
}

func (r *WishlistRepository) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lists := make(map[string]domain.Wishlist, len(r.lists))
	for id, wishlist := range r.lists {
		lists[id] = cloneWishlist(wishlist)
	}
	byUser := make(map[string]string, len(r.byUser))
	for userID, listID := range r.byUser {
		byUser[userID] = listID
	}
	return &wishlistSnapshot{lists: lists, byUser: byUser}
}

func (r *WishlistRepository) restore(snap any) {
	s, ok := snap.(*wishlistSnapshot)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = s.lists
	r.byUser = s.byUser
}

type wishlistSnapshot struct {
	lists  map[string]domain.Wishlist
	byUser map[string]string
}

func cloneWishlist(wishlist domain.Wishlist) domain.Wishlist {
	clone := wishlist
	clone.Items = append([]domain.WishlistItem(nil), wishlist.Items...)
	return clone
}

var _ domain.WishlistRepository = (*WishlistRepository)(nil)
