package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// PostedBatch is a batch that has been appended to the ledger
type PostedBatch struct {
	BatchID uuid.UUID
	Entries []settlement.LedgerEntry
}

// EntryIDs returns the IDs of the posted rows in row order
func (b *PostedBatch) EntryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Entries))
	for i, e := range b.Entries {
		ids[i] = e.ID
	}
	return ids
}

// LedgerEngine validates and appends balanced batches of ledger entries.
// It must be built from stores bound to the caller's transaction so that the
// append commits or rolls back with the rest of the settlement.
type LedgerEngine struct {
	ledger   settlement.LedgerStore
	accounts settlement.AccountResolver
	now      func() time.Time
}

// NewLedgerEngine creates a LedgerEngine over the given stores
func NewLedgerEngine(ledger settlement.LedgerStore, accounts settlement.AccountResolver) *LedgerEngine {
	return &LedgerEngine{
		ledger:   ledger,
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PostBatch validates entries and appends them as one batch.
//
// The batch must be non-empty, reference one invoice, use only accounts that
// resolve for the tenant, and balance exactly. On success every row carries the
// new batch ID and a row number from 1 to N in input order. The engine does not
// deduplicate; posting at most once is the caller's concern.
func (e *LedgerEngine) PostBatch(ctx context.Context, tenantID uuid.UUID, entries []settlement.LedgerEntry) (*PostedBatch, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_engine", "post_batch")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrEntryCount, len(entries),
	)

	if err := settlement.ValidateBatch(entries); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoiceRef := entries[0].InvoiceRef
	for i, entry := range entries {
		if entry.InvoiceRef != invoiceRef {
			err := shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("entry %d references a different invoice than the rest of the batch", i+1))
			telemetry.RecordError(span, err)
			return nil, err
		}
		if entry.TenantID != uuid.Nil && entry.TenantID != tenantID {
			err := shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("entry %d belongs to a different tenant", i+1))
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	missing, err := e.accounts.ResolveAccounts(ctx, tenantID, settlement.DistinctAccounts(entries))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to resolve ledger accounts: %w", err)
	}
	if len(missing) > 0 {
		err := shared.NewDomainError(shared.CodeUnknownAccount,
			fmt.Sprintf("Ledger accounts not found: %s", joinIDs(missing)))
		telemetry.RecordError(span, err)
		return nil, err
	}

	// v7 IDs sort by creation time, which gives batches a stable posting order
	batchID, err := uuid.NewV7()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.WrapDomainError(shared.CodePosting, "Failed to allocate ledger batch ID", err)
	}
	now := e.now()
	rows := make([]settlement.LedgerEntry, len(entries))
	for i, entry := range entries {
		entry.ID = uuid.New()
		entry.BatchID = batchID
		entry.TenantID = tenantID
		entry.RowNum = i + 1
		entry.CreatedAt = now
		if entry.TransactionDate.IsZero() {
			entry.TransactionDate = now
		}
		rows[i] = entry
	}

	if err := e.ledger.AppendBatch(ctx, rows); err != nil {
		telemetry.RecordError(span, err)
		if shared.CodeOf(err) == shared.CodeConcurrencyConflict {
			return nil, err
		}
		return nil, shared.WrapDomainError(shared.CodePosting, "Failed to append ledger batch", err)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrBatchID, batchID.String())
	return &PostedBatch{BatchID: batchID, Entries: rows}, nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
