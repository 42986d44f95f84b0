package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leathric/storefront/internal/domain"
)

// ProductRepository — in-memory каталог со встроенным складским журналом.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает пустой in-memory каталог.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		items: make(map[string]domain.Product),
	}
}

// Get возвращает товар или ErrProductNotFound.
func (r *ProductRepository) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает страницу каталога, отсортированную по имени.
func (r *ProductRepository) List(_ context.Context, page, size int) ([]domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	all := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		all = append(all, product)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	offset := (page - 1) * size
	if offset >= total {
		return []domain.Product{}, total, nil
	}
	end := offset + size
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}

// Create добавляет товар, если ID свободен.
func (r *ProductRepository) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrAlreadyExists
	}
	r.items[product.ID] = product
	return nil
}

// Reserve атомарно списывает остаток; проверка и декремент выполняются
// под одним мьютексом, поэтому конкурирующие списания сериализуются.
func (r *ProductRepository) Reserve(_ context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if product.StockQuantity < qty {
		return &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   qty,
		}
	}

	product.StockQuantity -= qty
	r.items[productID] = product
	return nil
}

// Release атомарно возвращает остаток на склад.
func (r *ProductRepository) Release(_ context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}

	product.StockQuantity += qty
	r.items[productID] = product
	return nil
}

func (r *ProductRepository) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make(map[string]domain.Product, len(r.items))
	for id, product := range r.items {
		items[id] = product
	}
	return items
}

func (r *ProductRepository) restore(snap any) {
	items, ok := snap.(map[string]domain.Product)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
}

var (
	_ domain.ProductRepository = (*ProductRepository)(nil)
	_ domain.InventoryLedger   = (*ProductRepository)(nil)
)
