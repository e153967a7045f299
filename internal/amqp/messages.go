package amqp

import (
	"encoding/json"
	"time"
)

// Event names carried by ledger messages.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// LedgerEvent is a compact change notification. Consumers fetch the full
// record from the store by id; deleted records carry only their ids.
type LedgerEvent struct {
	Event         string    `json:"event"`
	TransactionID int64     `json:"transaction_id"`
	OwnerID       int64     `json:"owner_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(event string, transactionID, ownerID int64) *LedgerEvent {
	return &LedgerEvent{
		Event:         event,
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
