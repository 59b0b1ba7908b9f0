// Package backend selects and assembles the ledger store for a user.
package backend

import (
	"budgetledger/internal/ledger"
)

// CleanupFunc releases the resources behind a store.
type CleanupFunc func() error

// Result contains the assembled store and its cleanup function (nil when
// nothing needs releasing).
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Config holds the settings needed to open one user's ledger.
type Config struct {
	Type BackendType

	// SQLite specific
	DataDir  string
	Username string

	// Event stream (optional, sqlite backend only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the kind of store backing a ledger.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
