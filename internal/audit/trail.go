// Package audit persists the transaction event stream as an append-only
// JSON-lines file.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"budgetledger/internal/amqp"
)

// Trail is an append-only record of ledger changes.
type Trail struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenTrail opens (or creates) the audit file, creating parent directories
// as needed.
func OpenTrail(path string) (*Trail, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}

	return &Trail{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record appends one event as a JSON line and syncs it to disk before
// returning.
func (t *Trail) Record(msg *amqp.TransactionEventMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.enc.Encode(msg); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	if err := t.file.Sync(); err != nil {
		return fmt.Errorf("sync audit file: %w", err)
	}
	return nil
}

func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
