package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leathric/storefront/internal/domain"
)

// txKey — ключ контекста для активной транзакции.
type txKey struct{}

// executor объединяет *sql.DB и *sql.Tx: репозитории работают через него,
// не зная, исполняются ли они внутри транзакции.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txManager реализует domain.TxManager поверх database/sql:
// транзакция кладётся в контекст, репозитории достают её через exec.
type txManager struct {
	db *sql.DB
}

// NewTxManager создаёт транзакционный менеджер поверх Store.
func NewTxManager(store *Store) domain.TxManager {
	return &txManager{db: store.DB()}
}

// WithinTx начинает транзакцию и исполняет fn с ctx, несущим её.
// Вложенный вызов переиспользует уже открытую транзакцию.
// Любая ошибка или паника откатывает все изменения.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// exec возвращает транзакцию из контекста либо пул соединений.
func exec(ctx context.Context, db *sql.DB) executor {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.TxManager = (*txManager)(nil)
