package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEvent is a lightweight notification that a transaction changed.
// It carries only the operation and the transaction ID; consumers fetch
// whatever detail they need from the store.
type LedgerEvent struct {
	Op            string    `json:"op"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(op, transactionID string) *LedgerEvent {
	return &LedgerEvent{
		Op:            op,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var evt LedgerEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
