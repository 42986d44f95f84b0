package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leathric/storefront/internal/domain"
)

// Транзакция, завершившаяся ошибкой, должна откатить изменения
// во всех зарегистрированных хранилищах.
func TestTxManager_RollbackOnError(t *testing.T) {
	orders := NewOrderRepository()
	products := NewProductRepository()
	txm := NewTxManager(orders, products)
	ctx := context.Background()

	seedProduct(t, products, "prod-1", 5)

	boom := errors.New("boom")
	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := products.Reserve(ctx, "prod-1", 3); err != nil {
			return err
		}
		if err := orders.Create(ctx, makeOrder("order-1", "ORD-1-0001", "user-1", time.Now().UTC())); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	product, _ := products.Get(ctx, "prod-1")
	if product.StockQuantity != 5 {
		t.Fatalf("stock not rolled back: %d", product.StockQuantity)
	}
	if _, err := orders.Get(ctx, "order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("order not rolled back: %v", err)
	}
}

func TestTxManager_CommitOnSuccess(t *testing.T) {
	orders := NewOrderRepository()
	products := NewProductRepository()
	txm := NewTxManager(orders, products)
	ctx := context.Background()

	seedProduct(t, products, "prod-1", 5)

	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := products.Reserve(ctx, "prod-1", 3); err != nil {
			return err
		}
		return orders.Create(ctx, makeOrder("order-1", "ORD-1-0001", "user-1", time.Now().UTC()))
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	product, _ := products.Get(ctx, "prod-1")
	if product.StockQuantity != 2 {
		t.Fatalf("stock = %d, want 2", product.StockQuantity)
	}
	if _, err := orders.Get(ctx, "order-1"); err != nil {
		t.Fatalf("order not committed: %v", err)
	}
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	products := NewProductRepository()
	txm := NewTxManager(products)
	ctx := context.Background()

	seedProduct(t, products, "prod-1", 5)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = txm.WithinTx(ctx, func(ctx context.Context) error {
			_ = products.Reserve(ctx, "prod-1", 5)
			panic("unexpected")
		})
	}()

	product, _ := products.Get(ctx, "prod-1")
	if product.StockQuantity != 5 {
		t.Fatalf("stock not rolled back after panic: %d", product.StockQuantity)
	}
}
