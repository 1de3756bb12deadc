package settlement

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceStore persists invoices
type InvoiceStore interface {
	// Create inserts a new invoice
	Create(ctx context.Context, inv *Invoice) error
	// Get loads an invoice, returning a NOT_FOUND error if it does not exist for the tenant
	Get(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// GetForUpdate loads an invoice and holds a row lock until the transaction ends
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// Update writes status and outstanding amount if the stored version still equals
	// expectedVersion, returning the new version or a CONCURRENCY_CONFLICT error
	Update(ctx context.Context, inv *Invoice, expectedVersion int) (int, error)
}

// LedgerStore is the durable append-only primitive behind the ledger engine
type LedgerStore interface {
	// AppendBatch inserts all entries or none
	AppendBatch(ctx context.Context, entries []LedgerEntry) error
	// FindByInvoice returns an invoice's rows ordered by posting time, batch and row number
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]LedgerEntry, error)
}

// AccountDirectory resolves a tenant's settlement accounts
type AccountDirectory interface {
	Lookup(ctx context.Context, tenantID uuid.UUID) (AccountMapping, error)
}

// AccountResolver checks that ledger accounts exist for a tenant
type AccountResolver interface {
	// ResolveAccounts returns the refs that do not resolve; empty means all resolved
	ResolveAccounts(ctx context.Context, tenantID uuid.UUID, refs []uuid.UUID) ([]uuid.UUID, error)
}
