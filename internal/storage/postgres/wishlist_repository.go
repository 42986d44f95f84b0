package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leathric/storefront/internal/domain"
)

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository создаёт PostgreSQL-реализацию WishlistRepository.
func NewWishlistRepository(store *Store) domain.WishlistRepository {
	return &wishlistRepository{db: store.DB()}
}

func (r *wishlistRepository) GetByUser(ctx context.Context, userID string) (domain.Wishlist, bool, error) {
	ex := exec(ctx, r.db)

	var wishlist domain.Wishlist
	err := ex.QueryRowContext(ctx, `
		SELECT id, user_id, created_at
		FROM wishlists
		WHERE user_id = $1
	`, userID).Scan(&wishlist.ID, &wishlist.UserID, &wishlist.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Wishlist{}, false, nil
		}
		return domain.Wishlist{}, false, fmt.Errorf("select wishlist: %w", err)
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT product_id, created_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY created_at ASC, product_id ASC
	`, wishlist.ID)
	if err != nil {
		return domain.Wishlist{}, false, fmt.Errorf("load wishlist items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ProductID, &item.CreatedAt); err != nil {
			return domain.Wishlist{}, false, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Wishlist{}, false, fmt.Errorf("iterate wishlist items: %w", err)
	}
	wishlist.Items = items

	return wishlist, true, nil
}

func (r *wishlistRepository) Create(ctx context.Context, wishlist domain.Wishlist) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO wishlists (id, user_id, created_at)
		VALUES ($1,$2,$3)
	`, wishlist.ID, wishlist.UserID, wishlist.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert wishlist: %w", err)
	}

	return nil
}

func (r *wishlistRepository) AddItem(ctx context.Context, wishlistID string, item domain.WishlistItem) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO wishlist_items (wishlist_id, product_id, created_at)
		VALUES ($1,$2,$3)
	`, wishlistID, item.ProductID, item.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrWishlistDuplicate
		}
		return fmt.Errorf("insert wishlist item: %w", err)
	}

	return nil
}

func (r *wishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID string) (bool, error) {
	ex := exec(ctx, r.db)

	res, err := ex.ExecContext(ctx, `
		DELETE FROM wishlist_items
		WHERE wishlist_id = $1 AND product_id = $2
	`, wishlistID, productID)
	if err != nil {
		return false, fmt.Errorf("delete wishlist item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *wishlistRepository) Clear(ctx context.Context, wishlistID string) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE wishlist_id = $1
	`, wishlistID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}

	return nil
}

var _ domain.WishlistRepository = (*wishlistRepository)(nil)
