package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leathric/storefront/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	ex := exec(ctx, r.db)

	_, err := ex.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status, payment_status,
			total_amount, note, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID, order.Number, order.UserID, string(order.Status), string(order.PaymentStatus),
		order.TotalAmount, order.Note, order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err := ex.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name, quantity, price, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			item.ID, order.ID, item.ProductID, item.ProductName,
			item.Quantity, item.Price, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	for _, entry := range order.History {
		if err := r.insertHistory(ctx, ex, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate блокирует строку заказа до конца текущей транзакции,
// исключая параллельные мутации статуса.
func (r *orderRepository) GetForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.get(ctx, id, true)
}

func (r *orderRepository) get(ctx context.Context, id string, forUpdate bool) (domain.Order, error) {
	ex := exec(ctx, r.db)

	query := `
		SELECT id, order_number, user_id, status, payment_status,
		       total_amount, note, version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	order, err := scanOrder(ex.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if err := r.loadChildren(ctx, ex, &order); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, page, size int) ([]domain.Order, int, error) {
	ex := exec(ctx, r.db)

	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int
	if err := ex.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT id, order_number, user_id, status, payment_status,
		       total_amount, note, version, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadChildren(ctx, ex, &orders[i]); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

// Save обновляет изменяемые поля заказа с проверкой версии и дописывает
// новые записи истории. Позиции заказа после создания не трогаются.
// После успешного обновления order.Version отражает сохранённую версию.
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	ex := exec(ctx, r.db)

	res, err := ex.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_status = $2,
		    note = $3,
		    version = version + 1,
		    updated_at = $4
		WHERE id = $5
		  AND version = $6
	`,
		string(order.Status), string(order.PaymentStatus), order.Note,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.orderExists(ctx, ex, order.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrVersionConflict
	}

	// Уже сохранённые записи пропускаются по первичному ключу,
	// новые (добавленные AppendStatus) вставляются.
	for _, entry := range order.History {
		if err := r.insertHistory(ctx, ex, entry); err != nil {
			return err
		}
	}

	order.Version++
	return nil
}

func (r *orderRepository) insertHistory(ctx context.Context, ex executor, entry domain.OrderStatusHistory) error {
	if _, err := ex.ExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, note, occurred_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, entry.OrderID, string(entry.Status), entry.Note, entry.OccurredAt); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *orderRepository) loadChildren(ctx context.Context, ex executor, order *domain.Order) error {
	items, err := r.loadItems(ctx, ex, order.ID)
	if err != nil {
		return err
	}
	order.Items = items

	history, err := r.loadHistory(ctx, ex, order.ID)
	if err != nil {
		return err
	}
	order.History = history

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, ex executor, orderID string) ([]domain.OrderItem, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) loadHistory(ctx context.Context, ex executor, orderID string) ([]domain.OrderStatusHistory, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, order_id, status, note, occurred_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY occurred_at ASC, seq ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.OrderStatusHistory, 0)
	for rows.Next() {
		var entry domain.OrderStatusHistory
		var status string
		if err := rows.Scan(&entry.ID, &entry.OrderID, &status, &entry.Note, &entry.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		entry.Status = domain.OrderStatus(status)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}

	return history, nil
}

func (r *orderRepository) orderExists(ctx context.Context, ex executor, orderID string) (bool, error) {
	var id string
	err := ex.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	var status, paymentStatus string
	if err := row.Scan(
		&order.ID, &order.Number, &order.UserID, &status, &paymentStatus,
		&order.TotalAmount, &order.Note, &order.Version, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	order.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return order, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
