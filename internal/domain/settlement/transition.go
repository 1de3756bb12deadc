package settlement

import (
	"fmt"

	"github.com/erp/settlement/internal/domain/shared"
)

// PostingRule names the ledger effect bound to a lifecycle step
type PostingRule string

const (
	// PostingNone changes status only
	PostingNone PostingRule = "NONE"
	// PostingCashReceipt credits AR and debits Cash by the payment value
	PostingCashReceipt PostingRule = "CASH_RECEIPT"
	// PostingRevenueRecognition debits AR and credits Sales Revenue by the invoice amount
	PostingRevenueRecognition PostingRule = "REVENUE_RECOGNITION"
	// PostingCashSale credits AR and debits Cash by the invoice amount.
	// Revenue is not recognized on this path.
	PostingCashSale PostingRule = "CASH_SALE"
)

// String returns the string representation of PostingRule
func (r PostingRule) String() string {
	return string(r)
}

// Transition is a (from, to) pair in the invoice lifecycle
type Transition struct {
	From InvoiceStatus
	To   InvoiceStatus
}

// String returns "FROM -> TO"
func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

// transitionTable is the complete set of legal transitions.
// Pairs absent from the table are illegal. PARTIALLY_PAID -> PARTIALLY_PAID is
// a further partial payment: the status stays and the balance goes down.
var transitionTable = map[Transition]PostingRule{
	{InvoiceStatusPending, InvoiceStatusPaid}:                PostingCashReceipt,
	{InvoiceStatusPending, InvoiceStatusPartiallyPaid}:       PostingCashReceipt,
	{InvoiceStatusPending, InvoiceStatusOverdue}:             PostingNone,
	{InvoiceStatusPending, InvoiceStatusCancelled}:           PostingNone,
	{InvoiceStatusPartiallyPaid, InvoiceStatusPartiallyPaid}: PostingCashReceipt,
	{InvoiceStatusPartiallyPaid, InvoiceStatusPaid}:          PostingCashReceipt,
	{InvoiceStatusPartiallyPaid, InvoiceStatusOverdue}:       PostingNone,
	{InvoiceStatusPartiallyPaid, InvoiceStatusCancelled}:     PostingNone,
	{InvoiceStatusOverdue, InvoiceStatusPaid}:                PostingCashReceipt,
}

// creationTable binds each legal initial status to its posting rule
var creationTable = map[InvoiceStatus]PostingRule{
	InvoiceStatusPending: PostingRevenueRecognition,
	InvoiceStatusPaid:    PostingCashSale,
}

// LookupTransition returns the posting rule for from -> to, or an
// IllegalTransition error when the pair is not in the table.
func LookupTransition(from, to InvoiceStatus) (PostingRule, error) {
	rule, ok := transitionTable[Transition{From: from, To: to}]
	if !ok {
		return "", illegalTransition(from, to)
	}
	return rule, nil
}

// CanTransition reports whether from -> to is legal
func CanTransition(from, to InvoiceStatus) bool {
	_, ok := transitionTable[Transition{From: from, To: to}]
	return ok
}

// AllowedTargets returns the legal targets from a status in lifecycle order
func AllowedTargets(from InvoiceStatus) []InvoiceStatus {
	targets := make([]InvoiceStatus, 0, len(AllInvoiceStatuses))
	for _, to := range AllInvoiceStatuses {
		if CanTransition(from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// CreationRule returns the posting rule for creating an invoice in the given status
func CreationRule(initial InvoiceStatus) (PostingRule, error) {
	rule, ok := creationTable[initial]
	if !ok {
		return "", shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Invoice cannot be created in %s status, use PENDING or PAID", initial))
	}
	return rule, nil
}

func illegalTransition(from, to InvoiceStatus) *shared.DomainError {
	if from.IsTerminal() {
		return shared.NewDomainError(shared.CodeIllegalTransition,
			fmt.Sprintf("Invoice in %s status cannot change status", from))
	}
	return shared.NewDomainError(shared.CodeIllegalTransition,
		fmt.Sprintf("Invoice cannot transition from %s to %s", from, to))
}
