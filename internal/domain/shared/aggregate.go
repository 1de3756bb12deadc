package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and audit timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch sets UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// TenantAggregateRoot is a tenant-owned aggregate with an optimistic-locking
// version and the events raised since it was loaded.
// Version starts at 1 and grows by one per persisted state change.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID uuid.UUID
	Version  int

	domainEvents []DomainEvent
}

// NewTenantAggregateRoot creates an aggregate root at version 1 with a fresh ID
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	now := time.Now().UTC()
	return TenantAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   tenantID,
		Version:    1,
	}
}

// IncrementVersion bumps the version after a state change
func (a *TenantAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event to be written with the aggregate
func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the pending events
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the pending events once they are in the outbox
func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
