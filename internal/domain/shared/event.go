package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate. Events are written to the
// outbox in the same transaction as the state change that raised them.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// EventHeader is embedded by every concrete event and serialized with its payload
type EventHeader struct {
	ID            uuid.UUID `json:"event_id"`
	Type          string    `json:"event_type"`
	At            time.Time `json:"occurred_at"`
	Aggregate     uuid.UUID `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	Tenant        uuid.UUID `json:"tenant_id"`
	SchemaVersion int       `json:"schema_version,omitempty"`
}

// NewEventHeader stamps a new event at schema version 1
func NewEventHeader(eventType, aggregateKind string, aggregateID, tenantID uuid.UUID) EventHeader {
	return EventHeader{
		ID:            uuid.New(),
		Type:          eventType,
		At:            time.Now().UTC(),
		Aggregate:     aggregateID,
		AggregateKind: aggregateKind,
		Tenant:        tenantID,
		SchemaVersion: 1,
	}
}

func (h *EventHeader) EventID() uuid.UUID     { return h.ID }
func (h *EventHeader) EventType() string      { return h.Type }
func (h *EventHeader) OccurredAt() time.Time  { return h.At }
func (h *EventHeader) AggregateID() uuid.UUID { return h.Aggregate }
func (h *EventHeader) AggregateType() string  { return h.AggregateKind }
func (h *EventHeader) TenantID() uuid.UUID    { return h.Tenant }
