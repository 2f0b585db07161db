package lotto

import "github.com/google/uuid"

// EventType identifies a ledger event
type EventType string

const (
	EventPoolCreated   EventType = "pool_created"
	EventPoolEntered   EventType = "pool_entered"
	EventPoolSettled   EventType = "pool_settled"
	EventPoolCancelled EventType = "pool_cancelled"
)

// Event is the envelope delivered to the registered event callback
type Event struct {
	ID   string      `json:"id"`
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

func newEvent(typ EventType, data interface{}) Event {
	return Event{
		ID:   uuid.New().String(),
		Type: typ,
		Data: data,
	}
}

// PoolCreatedData is the payload of a pool_created event
type PoolCreatedData struct {
	PoolID    uint64 `json:"pool_id"`
	Creator   string `json:"creator"`
	EntryFee  string `json:"entry_fee"`
	CloseTime string `json:"close_time"`
}

// PoolEnteredData is the payload of a pool_entered event
type PoolEnteredData struct {
	PoolID      uint64 `json:"pool_id"`
	Participant string `json:"participant"`
	Entries     int    `json:"entries"`
}

// PoolSettledData is the payload of a pool_settled event
type PoolSettledData struct {
	PoolID          uint64  `json:"pool_id"`
	Winner          *string `json:"winner,omitempty"`
	PrincipalPaid   string  `json:"principal_paid"`
	YieldAttributed string  `json:"yield_attributed"`
}

// PoolCancelledData is the payload of a pool_cancelled event
type PoolCancelledData struct {
	PoolID uint64 `json:"pool_id"`
}
