package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
)

// Service описывает операции над списком избранного.
type Service interface {
	// Get возвращает избранное пользователя, создавая список при первом обращении.
	Get(ctx context.Context, userID string) (View, error)
	// Add добавляет товар; повторное добавление отклоняется.
	Add(ctx context.Context, userID, productID string) (View, error)
	// Remove удаляет товар из избранного.
	Remove(ctx context.Context, userID, productID string) (View, error)
	// Clear опустошает список.
	Clear(ctx context.Context, userID string) error
	// Contains сообщает, есть ли товар в избранном пользователя.
	Contains(ctx context.Context, userID, productID string) (bool, error)
}

// View — проекция списка избранного.
type View struct {
	WishlistID string
	UserID     string
	Items      []ItemView
}

// ItemView — товар в проекции избранного.
type ItemView struct {
	ProductID   string
	ProductName string
	AddedAt     time.Time
}

type service struct {
	wishlists domain.WishlistRepository
	products  domain.ProductRepository
	logger    *log.Entry
}

// NewService создаёт сервис избранного.
func NewService(wishlists domain.WishlistRepository, products domain.ProductRepository, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "wishlist-service")
	}
	return &service{wishlists: wishlists, products: products, logger: logger}
}

func (s *service) Get(ctx context.Context, userID string) (View, error) {
	wishlist, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.project(ctx, wishlist)
}

func (s *service) Add(ctx context.Context, userID, productID string) (View, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return View{}, err
	}

	wishlist, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	if err := s.wishlists.AddItem(ctx, wishlist.ID, domain.WishlistItem{
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return View{}, err
	}

	s.logger.WithFields(log.Fields{
		"user_id":    userID,
		"product_id": productID,
	}).Debug("wishlist item added")
	return s.refresh(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, productID string) (View, error) {
	wishlist, found, err := s.wishlists.GetByUser(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if !found {
		return View{}, domain.ErrProductNotFound
	}

	removed, err := s.wishlists.RemoveItem(ctx, wishlist.ID, productID)
	if err != nil {
		return View{}, fmt.Errorf("remove wishlist item: %w", err)
	}
	if !removed {
		return View{}, domain.ErrProductNotFound
	}
	return s.refresh(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	wishlist, found, err := s.wishlists.GetByUser(ctx, userID)
	if err != nil || !found {
		return err
	}
	return s.wishlists.Clear(ctx, wishlist.ID)
}

func (s *service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	wishlist, found, err := s.wishlists.GetByUser(ctx, userID)
	if err != nil || !found {
		return false, err
	}
	for _, item := range wishlist.Items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) getOrCreate(ctx context.Context, userID string) (domain.Wishlist, error) {
	wishlist, found, err := s.wishlists.GetByUser(ctx, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	if found {
		return wishlist, nil
	}

	fresh := domain.Wishlist{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.wishlists.Create(ctx, fresh); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			wishlist, _, err = s.wishlists.GetByUser(ctx, userID)
			return wishlist, err
		}
		return domain.Wishlist{}, fmt.Errorf("create wishlist: %w", err)
	}
	return fresh, nil
}

func (s *service) refresh(ctx context.Context, userID string) (View, error) {
	wishlist, _, err := s.wishlists.GetByUser(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.project(ctx, wishlist)
}

func (s *service) project(ctx context.Context, wishlist domain.Wishlist) (View, error) {
	view := View{
		WishlistID: wishlist.ID,
		UserID:     wishlist.UserID,
		Items:      make([]ItemView, 0, len(wishlist.Items)),
	}
	for _, item := range wishlist.Items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			// Товар могли удалить из каталога; показываем без названия.
			if errors.Is(err, domain.ErrProductNotFound) {
				view.Items = append(view.Items, ItemView{ProductID: item.ProductID, AddedAt: item.CreatedAt})
				continue
			}
			return View{}, err
		}
		view.Items = append(view.Items, ItemView{
			ProductID:   product.ID,
			ProductName: product.Name,
			AddedAt:     item.CreatedAt,
		})
	}
	return view, nil
}

var _ Service = (*service)(nil)
