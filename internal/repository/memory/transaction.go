package memory

import (
	"context"
	"sync"

	"dropzone/internal/domain/repositories"
)

type txContextKey struct{}

// TransactionManager serialises ExecTx calls over a Store and rolls the store
// back to its pre-transaction state when fn fails
type TransactionManager struct {
	store *Store
	mu    sync.Mutex
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn while holding the write lock. Nested calls join the
// outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn(ctx)
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	snap := tm.store.snapshot()
	txCtx := context.WithValue(ctx, txContextKey{}, true)

	if err := fn(txCtx); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}
