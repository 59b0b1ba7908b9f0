// Package adapters wires repository reads and event-publishing writes behind
// the ledger.Store interface so projections and handlers see one store.
package adapters

import (
	"context"

	"budgetledger/internal/core"
	"budgetledger/internal/ledger"
	"budgetledger/internal/services"
)

// StoreAdapter routes writes through the transaction service (durable write
// plus event) and reads straight to the underlying store.
type StoreAdapter struct {
	store   ledger.Store
	service *services.TransactionService
}

func NewStoreAdapter(store ledger.Store, service *services.TransactionService) *StoreAdapter {
	return &StoreAdapter{
		store:   store,
		service: service,
	}
}

func (a *StoreAdapter) Add(ctx context.Context, t core.Transaction) (int64, error) {
	return a.service.AddTransaction(ctx, t)
}

func (a *StoreAdapter) Remove(ctx context.Context, id int64) error {
	return a.service.RemoveTransaction(ctx, id)
}

func (a *StoreAdapter) Query(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	return a.store.Query(ctx, f)
}

func (a *StoreAdapter) Aggregate(ctx context.Context, f core.Filter) (core.Bounds, error) {
	return a.store.Aggregate(ctx, f)
}
