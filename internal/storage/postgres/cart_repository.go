package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leathric/storefront/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) GetByUser(ctx context.Context, userID string) (domain.Cart, error) {
	ex := exec(ctx, r.db)

	var cart domain.Cart
	err := ex.QueryRowContext(ctx, `
		SELECT id, user_id, created_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT product_id, quantity, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC, product_id ASC
	`, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}
	cart.Items = items

	return cart, nil
}

func (r *cartRepository) Create(ctx context.Context, cart domain.Cart) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1,$2,$3)
	`, cart.ID, cart.UserID, cart.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert cart: %w", err)
	}

	return nil
}

// AddItem сливает количество с существующей позицией через upsert.
func (r *cartRepository) AddItem(ctx context.Context, cartID string, item domain.CartItem) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, cartID, item.ProductID, item.Quantity, item.CreatedAt); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, productID string, qty int32) (bool, error) {
	ex := exec(ctx, r.db)

	res, err := ex.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID, qty)
	if err != nil {
		return false, fmt.Errorf("update cart item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID string) (bool, error) {
	ex := exec(ctx, r.db)

	res, err := ex.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID string) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1
	`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
