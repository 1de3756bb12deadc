package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingContext carries everything a posting rule needs to build its batch
type PostingContext struct {
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	Mapping     AccountMapping
	Amount      decimal.Decimal
	Status      InvoiceStatus // snapshot written on every row
	Date        time.Time
	Description string
}

// Entries builds the ledger lines for this rule. It returns nil when the
// rule posts nothing or the amount is zero.
func (r PostingRule) Entries(pc PostingContext) []LedgerEntry {
	if !pc.Amount.IsPositive() {
		return nil
	}

	var lines []LedgerEntry
	switch r {
	case PostingRevenueRecognition:
		lines = []LedgerEntry{
			Debit(pc.Mapping.AccountsReceivable, pc.Amount),
			Credit(pc.Mapping.SalesRevenue, pc.Amount),
		}
	case PostingCashSale, PostingCashReceipt:
		lines = []LedgerEntry{
			Credit(pc.Mapping.AccountsReceivable, pc.Amount),
			Debit(pc.Mapping.Cash, pc.Amount),
		}
	default:
		return nil
	}

	for i := range lines {
		lines[i].TenantID = pc.TenantID
		lines[i].InvoiceRef = pc.InvoiceID
		lines[i].TransactionDate = pc.Date
		lines[i].StatusSnapshot = pc.Status
		lines[i].Description = pc.Description
	}
	return lines
}
