package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leathric/storefront/internal/domain"
)

// OrderRepository — in-memory реализация domain.OrderRepository
// для локальной разработки и тестов.
type OrderRepository struct {
	mu      sync.RWMutex
	items   map[string]domain.Order
	numbers map[string]string // order number -> order id
}

// NewOrderRepository возвращает пустой in-memory репозиторий заказов.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		items:   make(map[string]domain.Order),
		numbers: make(map[string]string),
	}
}

// Create сохраняет новый заказ, контролируя уникальность ID и номера.
func (r *OrderRepository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrAlreadyExists
	}
	if _, exists := r.numbers[order.Number]; exists {
		return domain.ErrAlreadyExists
	}
	// Сохраняем глубокую копию, чтобы избежать мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	r.numbers[order.Number] = order.ID
	return nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *OrderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// GetForUpdate эквивалентен Get: эксклюзивность мутаций обеспечивает
// сериализация транзакций в txManager.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.Get(ctx, id)
}

// ListByUser возвращает страницу заказов пользователя, новые первыми.
func (r *OrderRepository) ListByUser(_ context.Context, userID string, page, size int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	all := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		all = append(all, cloneOrder(order))
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	offset := (page - 1) * size
	if offset >= total {
		return []domain.Order{}, total, nil
	}
	end := offset + size
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
// Новая версия записывается обратно в order.Version.
func (r *OrderRepository) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrVersionConflict
	}
	order.Version++
	r.items[order.ID] = cloneOrder(*order)
	return nil
}

func (r *OrderRepository) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make(map[string]domain.Order, len(r.items))
	for id, order := range r.items {
		items[id] = cloneOrder(order)
	}
	numbers := make(map[string]string, len(r.numbers))
	for number, id := range r.numbers {
		numbers[number] = id
	}
	return &orderSnapshot{items: items, numbers: numbers}
}

func (r *OrderRepository) restore(snap any) {
	s, ok := snap.(*orderSnapshot)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = s.items
	r.numbers = s.numbers
}

type orderSnapshot struct {
	items   map[string]domain.Order
	numbers map[string]string
}

func cloneOrder(order domain.Order) domain.Order {
	clone := order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	clone.History = append([]domain.OrderStatusHistory(nil), order.History...)
	return clone
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
