// Package ledger assembles the filtered views of a user's transaction
// collection: the running-balance table and the scatter plot.
package ledger

import (
	"context"

	"budgetledger/internal/core"
)

// Store is the durable transaction collection for one user.
type Store interface {
	// Add validates t, assigns the next ID and persists it.
	Add(ctx context.Context, t core.Transaction) (int64, error)

	// Remove deletes the transaction with the given ID. Returns
	// core.ErrNotFound, leaving the store unchanged, when the ID does not
	// exist.
	Remove(ctx context.Context, id int64) error

	// Query returns all matching transactions ordered by (date, id)
	// ascending. Repeated calls against unchanged contents return identical
	// results.
	Query(ctx context.Context, f core.Filter) ([]core.Transaction, error)

	// Aggregate returns the bounding date and amount values over the
	// matching set, or core.ErrEmptySet when nothing matches.
	Aggregate(ctx context.Context, f core.Filter) (core.Bounds, error)
}
