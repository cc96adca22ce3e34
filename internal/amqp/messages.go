package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published after a successful ledger write. Deleting a
// category publishes transaction.deleted for every transaction it took
// with it, then category.deleted.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
	EventCategoryDeleted    = "category.deleted"
)

// LedgerEvent is a lightweight notification. Consumers fetch the row itself
// through the API if they need more than the id.
type LedgerEvent struct {
	Type      string    `json:"type"`
	ProfileID int64     `json:"profile_id"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time.
func NewLedgerEvent(kind string, profileID, id int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      kind,
		ProfileID: profileID,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
