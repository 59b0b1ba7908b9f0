package main

import (
	"context"
	"errors"
	"os"

	"budgetledger/internal/amqp"
	"budgetledger/internal/audit"
	"budgetledger/internal/cli"
	applog "budgetledger/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentAudit, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	trail, err := audit.OpenTrail(cfg.AuditLogPath)
	if err != nil {
		logger.Error("Failed to open audit trail", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer trail.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting audit worker",
		"queue", cfg.AMQPQueue,
		"trail", cfg.AuditLogPath)

	err = client.ConsumeTransactionEvents(ctx, func(msg *amqp.TransactionEventMessage) error {
		if err := trail.Record(msg); err != nil {
			return err
		}
		logger.Info("Recorded ledger event",
			"username", msg.Username,
			"transaction_id", msg.TransactionID,
			"action", msg.Action)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Audit worker stopped gracefully")
}
