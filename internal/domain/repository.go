package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями и начальной историей.
	// Возвращает ErrAlreadyExists при конфликте уникального номера заказа.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ с позициями и историей или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// GetForUpdate возвращает заказ, удерживая эксклюзивную блокировку
	// строки до конца текущей транзакции.
	GetForUpdate(ctx context.Context, id string) (Order, error)
	// ListByUser возвращает страницу заказов пользователя (новые первыми)
	// и общее число его заказов.
	ListByUser(ctx context.Context, userID string, page, size int) ([]Order, int, error)
	// Save применяет изменения статусов заказа с учётом optimistic locking
	// и дописывает новые записи истории. Позиции заказа неизменяемы.
	// Новая версия записывается обратно в order.Version.
	Save(ctx context.Context, order *Order) error
}
