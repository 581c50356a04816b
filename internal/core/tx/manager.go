// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on a concrete store; the
// implementations live in infrastructure/storage (postgres and memory).
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
//
// Every write path of the engine (movement recording, journal posting,
// fulfillment) runs inside RunInTransaction so that invariants are checked
// against the latest committed state and multi-step writes commit or roll
// back as one unit.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
