package settlement

import (
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceInput is the request to create an invoice
type CreateInvoiceInput struct {
	CustomerRef   string
	InvoiceAmount decimal.Decimal
	Description   string
	InitialStatus settlement.InvoiceStatus
	IssueDate     time.Time // zero means today
}

// TransitionInput is the request to move an invoice to a new status
type TransitionInput struct {
	InvoiceID     uuid.UUID
	TargetStatus  settlement.InvoiceStatus
	PaymentAmount *decimal.Decimal // required only for PARTIALLY_PAID
}

// InvoiceResult is the invoice after an operation plus the ledger rows it posted
type InvoiceResult struct {
	Invoice        *settlement.Invoice
	BatchID        *uuid.UUID
	LedgerEntryIDs []uuid.UUID
	PaymentValue   decimal.Decimal
}

func newInvoiceResult(inv *settlement.Invoice, posted *PostedBatch) *InvoiceResult {
	result := &InvoiceResult{
		Invoice:        inv,
		LedgerEntryIDs: []uuid.UUID{},
		PaymentValue:   decimal.Zero,
	}
	if posted != nil {
		batchID := posted.BatchID
		result.BatchID = &batchID
		result.LedgerEntryIDs = posted.EntryIDs()
	}
	return result
}
