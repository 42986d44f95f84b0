package memory

import (
	"context"
	"sync"

	"github.com/leathric/storefront/internal/domain"
)

// UserRepository — in-memory реализация domain.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	items   map[string]domain.User
	byEmail map[string]string
}

// NewUserRepository возвращает пустое in-memory хранилище пользователей.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

// Get возвращает пользователя или ErrUserNotFound.
func (r *UserRepository) Get(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail возвращает пользователя по email или ErrUserNotFound.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return r.items[id], nil
}

// Create добавляет пользователя, контролируя уникальность ID и email.
func (r *UserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[user.ID]; exists {
		return domain.ErrAlreadyExists
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrAlreadyExists
	}
	r.items[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make(map[string]domain.User, len(r.items))
	for id, user := range r.items {
		items[id] = user
	}
	byEmail := make(map[string]string, len(r.byEmail))
	for email, id := range r.byEmail {
		byEmail[email] = id
	}
	return &userSnapshot{items: items, byEmail: byEmail}
}

func (r *UserRepository) restore(snap any) {
	s, ok := snap.(*userSnapshot)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = s.items
	r.byEmail = s.byEmail
}

type userSnapshot struct {
	items   map[string]domain.User
	byEmail map[string]string
}

var _ domain.UserRepository = (*UserRepository)(nil)
