package settlement

import (
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntrySide tags a ledger entry as a debit or a credit
type EntrySide string

const (
	EntrySideDebit  EntrySide = "DEBIT"
	EntrySideCredit EntrySide = "CREDIT"
)

// IsValid checks if the side is DEBIT or CREDIT
func (s EntrySide) IsValid() bool {
	return s == EntrySideDebit || s == EntrySideCredit
}

// String returns the string representation of EntrySide
func (s EntrySide) String() string {
	return string(s)
}

// LedgerEntry is one append-only debit-or-credit row against an account.
// The amount is carried once together with its side, so a row can never
// hold both a debit and a credit.
type LedgerEntry struct {
	ID              uuid.UUID
	BatchID         uuid.UUID
	TenantID        uuid.UUID
	TransactionDate time.Time
	AccountRef      uuid.UUID
	Side            EntrySide
	Amount          decimal.Decimal
	InvoiceRef      uuid.UUID
	BillRef         *uuid.UUID
	RowNum          int
	StatusSnapshot  InvoiceStatus
	Description     string
	CreatedAt       time.Time
}

// Debit creates a debit line for account
func Debit(account uuid.UUID, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{AccountRef: account, Side: EntrySideDebit, Amount: amount}
}

// Credit creates a credit line for account
func Credit(account uuid.UUID, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{AccountRef: account, Side: EntrySideCredit, Amount: amount}
}

// DebitAmount returns the amount if this is a debit, zero otherwise
func (e LedgerEntry) DebitAmount() decimal.Decimal {
	if e.Side == EntrySideDebit {
		return e.Amount
	}
	return decimal.Zero
}

// CreditAmount returns the amount if this is a credit, zero otherwise
func (e LedgerEntry) CreditAmount() decimal.Decimal {
	if e.Side == EntrySideCredit {
		return e.Amount
	}
	return decimal.Zero
}

// Validate checks the entry in isolation
func (e LedgerEntry) Validate() error {
	if !e.Side.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Invalid ledger entry side %q", e.Side))
	}
	if e.AccountRef == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Ledger entry account cannot be empty")
	}
	if !e.Amount.IsPositive() {
		return shared.NewDomainError(shared.CodeValidation, "Ledger entry amount must be positive")
	}
	return nil
}

// BatchTotals sums the debit and credit sides of entries
func BatchTotals(entries []LedgerEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.DebitAmount())
		credit = credit.Add(e.CreditAmount())
	}
	return debit, credit
}

// ValidateBatch checks that entries form a postable batch: non-empty, every
// row individually valid, and debits equal to credits with no tolerance.
func ValidateBatch(entries []LedgerEntry) error {
	if len(entries) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Ledger batch must contain at least one entry")
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	debit, credit := BatchTotals(entries)
	if !debit.Equal(credit) {
		return shared.NewDomainError(shared.CodeUnbalancedBatch,
			fmt.Sprintf("Ledger batch is unbalanced: debits %s, credits %s", debit.String(), credit.String()))
	}
	return nil
}

// DistinctAccounts returns the account refs used by entries, in first-seen order
func DistinctAccounts(entries []LedgerEntry) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	refs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountRef]; ok {
			continue
		}
		seen[e.AccountRef] = struct{}{}
		refs = append(refs, e.AccountRef)
	}
	return refs
}
