package settlement

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeLedgerBatchPosted    = "LedgerBatchPosted"
)

// InvoiceCreatedEvent is raised when an invoice is created
type InvoiceCreatedEvent struct {
	shared.EventHeader
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	CustomerRef       string          `json:"customer_ref"`
	InvoiceAmount     decimal.Decimal `json:"invoice_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            InvoiceStatus   `json:"status"`
	IssueDate         time.Time       `json:"issue_date"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		EventHeader:       shared.NewEventHeader(EventTypeInvoiceCreated, aggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:         inv.ID,
		CustomerRef:       inv.CustomerRef,
		InvoiceAmount:     inv.InvoiceAmount,
		OutstandingAmount: inv.OutstandingAmount,
		Status:            inv.Status,
		IssueDate:         inv.IssueDate,
	}
}

// InvoiceStatusChangedEvent is raised after a successful transition
type InvoiceStatusChangedEvent struct {
	shared.EventHeader
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	FromStatus        InvoiceStatus   `json:"from_status"`
	ToStatus          InvoiceStatus   `json:"to_status"`
	PaymentValue      decimal.Decimal `json:"payment_value"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Version           int             `json:"version"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, from InvoiceStatus, payment decimal.Decimal) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		EventHeader:       shared.NewEventHeader(EventTypeInvoiceStatusChanged, aggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:         inv.ID,
		FromStatus:        from,
		ToStatus:          inv.Status,
		PaymentValue:      payment,
		OutstandingAmount: inv.OutstandingAmount,
		Version:           inv.Version,
	}
}

// LedgerBatchPostedEvent is raised when a balanced batch has been appended
type LedgerBatchPostedEvent struct {
	shared.EventHeader
	BatchID     uuid.UUID       `json:"batch_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	EntryIDs    []uuid.UUID     `json:"entry_ids"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewLedgerBatchPostedEvent creates a new LedgerBatchPostedEvent from posted entries
func NewLedgerBatchPostedEvent(tenantID, batchID, invoiceID uuid.UUID, entries []LedgerEntry) *LedgerBatchPostedEvent {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	debit, _ := BatchTotals(entries)
	return &LedgerBatchPostedEvent{
		EventHeader: shared.NewEventHeader(EventTypeLedgerBatchPosted, "LedgerBatch", batchID, tenantID),
		BatchID:     batchID,
		InvoiceID:   invoiceID,
		EntryIDs:    ids,
		TotalAmount: debit,
	}
}
