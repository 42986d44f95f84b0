package memory

import (
	"context"
	"sync"

	"github.com/leathric/storefront/internal/domain"
)

// snapshotter реализуется каждым in-memory хранилищем, участвующим
// в транзакциях: снимок до fn, откат к снимку при ошибке.
type snapshotter interface {
	snapshot() any
	restore(snap any)
}

// txManager — in-memory domain.TxManager: транзакции сериализуются
// общим мьютексом, атомарность обеспечивается снимками хранилищ.
type txManager struct {
	mu     sync.Mutex
	stores []snapshotter
}

// NewTxManager создаёт транзакционный менеджер над набором in-memory
// хранилищ. Хранилище, не являющееся in-memory, игнорируется.
func NewTxManager(stores ...any) domain.TxManager {
	m := &txManager{}
	for _, store := range stores {
		if s, ok := store.(snapshotter); ok {
			m.stores = append(m.stores, s)
		}
	}
	return m
}

// WithinTx исполняет fn под общим мьютексом; при ошибке или панике
// все зарегистрированные хранилища откатываются к снимку.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps := make([]any, len(m.stores))
	for i, s := range m.stores {
		snaps[i] = s.snapshot()
	}

	defer func() {
		if p := recover(); p != nil {
			for i, s := range m.stores {
				s.restore(snaps[i])
			}
			panic(p)
		}
		if err != nil {
			for i, s := range m.stores {
				s.restore(snaps[i])
			}
		}
	}()

	return fn(ctx)
}

var _ domain.TxManager = (*txManager)(nil)
