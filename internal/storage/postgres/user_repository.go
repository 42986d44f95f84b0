package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leathric/storefront/internal/domain"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

func (r *userRepository) Get(ctx context.Context, id string) (domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) getBy(ctx context.Context, column, value string) (domain.User, error) {
	ex := exec(ctx, r.db)

	var user domain.User
	err := ex.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, email, full_name, created_at
		FROM users
		WHERE %s = $1
	`, column), value).Scan(&user.ID, &user.Email, &user.FullName, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user domain.User) error {
	ex := exec(ctx, r.db)

	if _, err := ex.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, created_at)
		VALUES ($1,$2,$3,$4)
	`, user.ID, user.Email, user.FullName, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

var _ domain.UserRepository = (*userRepository)(nil)
