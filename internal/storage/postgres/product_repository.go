package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leathric/storefront/internal/domain"
)

// productRepository реализует и каталог, и складской журнал:
// остаток хранится в той же строке, что и товар.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

// NewInventoryLedger создаёт PostgreSQL-реализацию InventoryLedger
// поверх таблицы products.
func NewInventoryLedger(store *Store) domain.InventoryLedger {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	ex := exec(ctx, r.db)

	var p domain.Product
	err := ex.QueryRowContext(ctx, `
		SELECT id, name, description, price, stock_quantity, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return p, nil
}

func (r *productRepository) List(ctx context.Context, page, size int) ([]domain.Product, int, error) {
	ex := exec(ctx, r.db)

	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int
	if err := ex.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT id, name, description, price, stock_quantity, image_url, created_at, updated_at
		FROM products
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2
	`, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
			&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock_quantity, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		product.ID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.ImageURL, product.CreatedAt, product.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Reserve выполняет проверку и списание одним условным UPDATE:
// конкурирующие оформления сериализуются блокировкой строки товара,
// и остаток никогда не уходит в минус.
func (r *productRepository) Reserve(ctx context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}

	ex := exec(ctx, r.db)

	res, err := ex.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock_quantity >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Либо товара нет, либо остатка не хватило — уточняем для ошибки.
	product, getErr := r.Get(ctx, productID)
	if getErr != nil {
		return getErr
	}
	return &domain.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.StockQuantity,
		Requested:   qty,
	}
}

// Release атомарно возвращает qty единиц на склад.
func (r *productRepository) Release(ctx context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}

	ex := exec(ctx, r.db)

	res, err := ex.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
		    updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

var (
	_ domain.ProductRepository = (*productRepository)(nil)
	_ domain.InventoryLedger   = (*productRepository)(nil)
)
