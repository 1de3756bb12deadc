package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	EventHeader
}

func TestNewOutboxEntry(t *testing.T) {
	tenantID := uuid.New()
	aggregateID := uuid.New()
	event := &testEvent{EventHeader: NewEventHeader("TestEvent", "Invoice", aggregateID, tenantID)}

	entry := NewOutboxEntry(event, []byte(`{"ok":true}`))

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, tenantID, entry.TenantID)
	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "TestEvent", entry.EventType)
	assert.Equal(t, aggregateID, entry.AggregateID)
	assert.Equal(t, "Invoice", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, event.OccurredAt(), entry.CreatedAt)
}

func TestTenantAggregateRoot_Events(t *testing.T) {
	root := NewTenantAggregateRoot(uuid.New())
	assert.Equal(t, 1, root.Version)

	root.AddDomainEvent(&testEvent{EventHeader: NewEventHeader("A", "Invoice", root.ID, root.TenantID)})
	root.IncrementVersion()

	assert.Len(t, root.GetDomainEvents(), 1)
	assert.Equal(t, 2, root.Version)

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
