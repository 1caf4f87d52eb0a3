package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEvent описывает закоммиченное изменение журнала. События отправляются после
// коммита транзакции и нигде не хранятся.
type LedgerEvent struct {
	ID         uuid.UUID       `json:"id"`
	Type       LedgerEventType `json:"type"`
	GroupID    int64           `json:"group_id,omitempty"`
	EntityID   int64           `json:"entity_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type LedgerEventOption func(*LedgerEvent)

func WithGroup(groupID int64) LedgerEventOption {
	return func(e *LedgerEvent) {
		e.GroupID = groupID
	}
}

func NewLedgerEvent(eventType LedgerEventType, entityID int64, opts ...LedgerEventOption) LedgerEvent {
	e := LedgerEvent{
		ID:         uuid.New(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
