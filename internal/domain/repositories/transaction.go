package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager groups repository calls into one atomic unit.
// Backends without native transactions serialise ExecTx calls instead.
type TransactionManager interface {
	// ExecTx executes a function within a transaction. If fn returns an error
	// the changes it made are discarded.
	ExecTx(ctx context.Context, fn TxFn) error
}
