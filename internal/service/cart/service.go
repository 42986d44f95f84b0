package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
)

// Service описывает операции над корзиной пользователя.
type Service interface {
	// GetCart возвращает корзину пользователя, создавая её при первом обращении.
	GetCart(ctx context.Context, userID string) (View, error)
	// AddItem добавляет товар в корзину либо увеличивает количество
	// существующей позиции; итоговое количество проверяется по остатку.
	AddItem(ctx context.Context, userID, productID string, qty int32) (View, error)
	// UpdateItem выставляет точное количество позиции.
	UpdateItem(ctx context.Context, userID, productID string, qty int32) (View, error)
	// RemoveItem удаляет позицию из корзины.
	RemoveItem(ctx context.Context, userID, productID string) (View, error)
	// Clear опустошает корзину.
	Clear(ctx context.Context, userID string) error
}

// View — проекция корзины для чтения: позиции с актуальными ценами
// каталога и общая сумма. Цены фиксируются только при оформлении заказа.
type View struct {
	CartID string
	UserID string
	Items  []LineView
	Total  decimal.Decimal
}

// LineView — одна позиция проекции корзины.
type LineView struct {
	ProductID   string
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

type service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис корзины.
func NewService(carts domain.CartRepository, products domain.ProductRepository, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart-service")
	}
	return &service{carts: carts, products: products, logger: logger}
}

func (s *service) GetCart(ctx context.Context, userID string) (View, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.project(ctx, cart)
}

func (s *service) AddItem(ctx context.Context, userID, productID string, qty int32) (View, error) {
	if qty <= 0 {
		return View{}, domain.ErrQuantityInvalid
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return View{}, err
	}

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	// Остаток проверяется по итоговому количеству в корзине, иначе
	// слияние позиций позволило бы набрать больше, чем есть на складе.
	requested := qty
	for _, item := range cart.Items {
		if item.ProductID == productID {
			requested += item.Quantity
		}
	}
	if requested > product.StockQuantity {
		return View{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   requested,
		}
	}

	if err := s.carts.AddItem(ctx, cart.ID, domain.CartItem{
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return View{}, fmt.Errorf("add cart item: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   qty,
	}).Debug("cart item added")
	return s.refresh(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, productID string, qty int32) (View, error) {
	if qty <= 0 {
		return View{}, domain.ErrQuantityInvalid
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return View{}, err
	}
	if qty > product.StockQuantity {
		return View{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   qty,
		}
	}

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	found, err := s.carts.SetItemQuantity(ctx, cart.ID, productID, qty)
	if err != nil {
		return View{}, fmt.Errorf("update cart item: %w", err)
	}
	if !found {
		return View{}, domain.ErrCartItemNotFound
	}
	return s.refresh(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID string) (View, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return View{}, domain.ErrCartItemNotFound
		}
		return View{}, err
	}

	found, err := s.carts.RemoveItem(ctx, cart.ID, productID)
	if err != nil {
		return View{}, fmt.Errorf("remove cart item: %w", err)
	}
	if !found {
		return View{}, domain.ErrCartItemNotFound
	}
	return s.refresh(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return err
	}
	return s.carts.Clear(ctx, cart.ID)
}

// getOrCreate возвращает корзину пользователя, заводя её при первом
// обращении. Гонка первого создания разрешается повторным чтением.
func (s *service) getOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{}, err
	}

	fresh := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.carts.Create(ctx, fresh); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.carts.GetByUser(ctx, userID)
		}
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return fresh, nil
}

func (s *service) refresh(ctx context.Context, userID string) (View, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.project(ctx, cart)
}

// project собирает проекцию корзины, подтягивая актуальные цены каталога.
func (s *service) project(ctx context.Context, cart domain.Cart) (View, error) {
	view := View{
		CartID: cart.ID,
		UserID: cart.UserID,
		Items:  make([]LineView, 0, len(cart.Items)),
		Total:  decimal.Zero,
	}
	for _, item := range cart.Items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			return View{}, fmt.Errorf("project cart item %s: %w", item.ProductID, err)
		}
		line := LineView{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   product.Price.Mul(decimal.NewFromInt32(item.Quantity)),
		}
		view.Items = append(view.Items, line)
		view.Total = view.Total.Add(line.LineTotal)
	}
	return view, nil
}

var _ Service = (*service)(nil)
