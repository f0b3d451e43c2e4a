package leveldb

import (
	"context"
	"fmt"

	"dropzone/internal/domain/repositories"
)

// TransactionManager runs ExecTx on a LevelDB transaction. LevelDB allows one
// open transaction at a time, so concurrent ExecTx calls are serialised.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn within a transaction. Nested calls join the outer one.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn(ctx)
	}

	txn, err := tm.store.ds.NewTransaction(ctx, false)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer txn.Discard(ctx)

	txCtx := context.WithValue(ctx, txContextKey{}, txn)
	if err := fn(txCtx); err != nil {
		return err
	}

	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
