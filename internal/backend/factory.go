package backend

import (
	"fmt"
	"log/slog"

	"budgetledger/internal/adapters"
	"budgetledger/internal/amqp"
	"budgetledger/internal/ledger/memory"
	"budgetledger/internal/services"
	"budgetledger/internal/storage"
)

// Factory creates ledger stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Open assembles the store for one user according to config.
func (f *Factory) Open(config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.openSQLite(config)
	default:
		return f.openMemory(config)
	}
}

func (f *Factory) openSQLite(config Config) (*Result, error) {
	store, err := storage.Open(config.DataDir, config.Username)
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}

	// Event stream is optional: a missing broker degrades to plain storage.
	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewTransactionService(config.Username, store, events)
	adapter := adapters.NewStoreAdapter(store, service)

	f.logger.Info("Opened SQLite ledger",
		"username", config.Username,
		"data_dir", config.DataDir,
		"events_enabled", events != nil)

	return &Result{
		Store:   adapter,
		Cleanup: service.Close,
	}, nil
}

func (f *Factory) openMemory(config Config) (*Result, error) {
	f.logger.Info("Opened in-memory ledger", "username", config.Username)
	return &Result{
		Store:   memory.New(),
		Cleanup: nil,
	}, nil
}
