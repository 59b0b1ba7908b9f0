package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried on the transaction stream.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEventMessage announces a ledger change. It carries only the
// identifiers; consumers that need the full record fetch it from the owning
// user's ledger.
type TransactionEventMessage struct {
	Username      string    `json:"username"`
	TransactionID int64     `json:"transaction_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event message stamped with the current time.
func NewTransactionEvent(username string, id int64, action string) *TransactionEventMessage {
	return &TransactionEventMessage{
		Username:      username,
		TransactionID: id,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates a message from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
