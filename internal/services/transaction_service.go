// Package services orchestrates ledger writes with the optional event
// stream.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"budgetledger/internal/amqp"
	"budgetledger/internal/core"
	"budgetledger/internal/ledger"
	applog "budgetledger/internal/log"
)

// TransactionService persists ledger writes and publishes change events.
// Event publishing is best-effort: the durable write is the source of truth
// and a broker failure never fails the user's operation.
type TransactionService struct {
	username string
	store    ledger.Store
	events   *amqp.Client
}

func NewTransactionService(username string, store ledger.Store, events *amqp.Client) *TransactionService {
	return &TransactionService{
		username: username,
		store:    store,
		events:   events,
	}
}

// AddTransaction saves the transaction and announces it on the event stream.
func (s *TransactionService) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.store.Add(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, id, amqp.ActionCreated)
	return id, nil
}

// RemoveTransaction deletes the transaction and announces the removal.
func (s *TransactionService) RemoveTransaction(ctx context.Context, id int64) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id int64, action string) {
	if s.events == nil {
		return
	}
	msg := amqp.NewTransactionEvent(s.username, id, action)
	if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentAMQP).
			WithOperation(action).
			WithError(err)
		fields[applog.FieldTransactionID] = id
		slog.ErrorContext(ctx, "Failed to publish transaction event", fields.ToSlice()...)
	}
}

// Close releases the store and the event client.
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
