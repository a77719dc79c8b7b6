package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gagyebu/internal/core"
)

// EventType doubles as the routing key of a published event.
type EventType string

const (
	EntryCreated     EventType = "entry.created"
	EntryUpdated     EventType = "entry.updated"
	EntryConfirmed   EventType = "entry.confirmed"
	EntryDeleted     EventType = "entry.deleted"
	RecurringApplied EventType = "recurring.applied"
	RecurringExpired EventType = "recurring.expired"
)

// LedgerEvent is published after a unit of work commits. Entry events carry
// the entry as committed (or as it was, for deletions); recurring events
// carry the template id and the pass summary.
type LedgerEvent struct {
	MessageID  string             `json:"messageId"`
	Type       EventType          `json:"type"`
	OccurredAt time.Time          `json:"occurredAt"`
	Entry      *core.Entry        `json:"entry,omitempty"`
	TemplateID int64              `json:"templateId,omitempty"`
	Summary    *core.ApplySummary `json:"summary,omitempty"`
}

func NewEntryEvent(t EventType, e core.Entry) *LedgerEvent {
	return &LedgerEvent{
		MessageID:  uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Entry:      &e,
	}
}

// NewRecurringEvent builds a recurring.* event. templateID is zero for a
// bulk pass.
func NewRecurringEvent(t EventType, templateID int64, s core.ApplySummary) *LedgerEvent {
	return &LedgerEvent{
		MessageID:  uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		TemplateID: templateID,
		Summary:    &s,
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("ledger event %q has no type", msg.MessageID)
	}
	return &msg, nil
}
