package event

import (
	"context"

	"github.com/erp/settlement/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox table.
// Bound to a transaction, the rows commit or roll back with the settlement.
type OutboxPublisher struct {
	serializer *EventSerializer
	repo       *GormOutboxRepository
}

// NewOutboxPublisher creates a publisher writing through db
func NewOutboxPublisher(serializer *EventSerializer, db *gorm.DB) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
		repo:       NewGormOutboxRepository(db),
	}
}

// WithTx returns a publisher bound to the given transaction
func (p *OutboxPublisher) WithTx(tx *gorm.DB) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: p.serializer,
		repo:       p.repo.WithTx(tx),
	}
}

// Append serializes the events and stores them as PENDING outbox entries,
// preserving their order
func (p *OutboxPublisher) Append(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return shared.WrapDomainError(shared.CodePersistence, "failed to serialize domain event", err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if err := p.repo.Save(ctx, entries...); err != nil {
		return shared.WrapDomainError(shared.CodePersistence, "failed to write outbox entries", err)
	}
	return nil
}

// Ensure OutboxPublisher implements shared.EventOutbox
var _ shared.EventOutbox = (*OutboxPublisher)(nil)
