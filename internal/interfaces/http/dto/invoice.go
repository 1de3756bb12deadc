package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueDateLayout is the wire format of invoice issue dates
const IssueDateLayout = "2006-01-02"

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	CustomerRef   string          `json:"customer_ref" binding:"required,max=100"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount" binding:"decimal_nonnegative"`
	Description   string          `json:"description" binding:"max=500"`
	InitialStatus string          `json:"initial_status" binding:"required,invoice_status"`
	IssueDate     string          `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
}

// TransitionRequest is the body of POST /invoices/transition.
// InvoiceID may instead come from the path. PaymentAmount is a JSON number or
// numeric string, read with Payment.
type TransitionRequest struct {
	InvoiceID     string          `json:"invoice_id" binding:"omitempty,uuid"`
	TargetStatus  string          `json:"target_status" binding:"required,invoice_status"`
	PaymentAmount json.RawMessage `json:"payment_amount"`
}

// Payment parses payment_amount. An absent, null or empty amount yields nil.
// Whether the amount is acceptable for the target is left to the settlement rules.
func (r TransitionRequest) Payment() (*decimal.Decimal, error) {
	raw := strings.TrimSpace(string(r.PaymentAmount))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "Payment amount is not a valid string")
		}
		raw = s
	}
	return settlement.ParsePaymentAmount(raw)
}

// InvoiceResponse is an invoice as returned by the API
type InvoiceResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	CustomerRef       string          `json:"customer_ref"`
	IssueDate         string          `json:"issue_date"`
	InvoiceAmount     decimal.Decimal `json:"invoice_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	Status            string          `json:"status"`
	Description       string          `json:"description,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SettlementResponse is an invoice after create or transition, with the ledger batch it posted.
// BatchID is null when nothing was posted.
type SettlementResponse struct {
	InvoiceResponse
	BatchID        *uuid.UUID      `json:"batch_id"`
	LedgerEntryIDs []uuid.UUID     `json:"ledger_entry_ids"`
	PaymentValue   decimal.Decimal `json:"payment_value"`
}

// LedgerEntryResponse is one ledger row
type LedgerEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	BatchID         uuid.UUID       `json:"batch_id"`
	RowNum          int             `json:"row_num"`
	TransactionDate time.Time       `json:"transaction_date"`
	AccountID       uuid.UUID       `json:"account_id"`
	Side            string          `json:"side"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	BillID          *uuid.UUID      `json:"bill_id,omitempty"`
	StatusSnapshot  string          `json:"status_snapshot"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewInvoiceResponse converts a domain invoice
func NewInvoiceResponse(inv *settlement.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID,
		TenantID:          inv.TenantID,
		CustomerRef:       inv.CustomerRef,
		IssueDate:         inv.IssueDate.Format(IssueDateLayout),
		InvoiceAmount:     inv.InvoiceAmount,
		OutstandingAmount: inv.OutstandingAmount,
		PaidAmount:        inv.PaidAmount(),
		Status:            inv.Status.String(),
		Description:       inv.Description,
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

// NewSettlementResponse builds the response for a settled invoice
func NewSettlementResponse(inv *settlement.Invoice, batchID *uuid.UUID, entryIDs []uuid.UUID, payment decimal.Decimal) SettlementResponse {
	if entryIDs == nil {
		entryIDs = []uuid.UUID{}
	}
	return SettlementResponse{
		InvoiceResponse: NewInvoiceResponse(inv),
		BatchID:         batchID,
		LedgerEntryIDs:  entryIDs,
		PaymentValue:    payment,
	}
}

// NewLedgerEntryResponses converts ledger rows
func NewLedgerEntryResponses(entries []settlement.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:              e.ID,
			BatchID:         e.BatchID,
			RowNum:          e.RowNum,
			TransactionDate: e.TransactionDate,
			AccountID:       e.AccountRef,
			Side:            e.Side.String(),
			DebitAmount:     e.DebitAmount(),
			CreditAmount:    e.CreditAmount(),
			InvoiceID:       e.InvoiceRef,
			BillID:          e.BillRef,
			StatusSnapshot:  e.StatusSnapshot.String(),
			Description:     e.Description,
			CreatedAt:       e.CreatedAt,
		})
	}
	return out
}
