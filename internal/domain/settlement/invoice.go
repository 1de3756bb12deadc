package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	aggregateTypeInvoice = "Invoice"

	maxCustomerRefLength = 100
	maxDescriptionLength = 500
)

// Invoice is a customer invoice whose status is kept in step with the ledger.
// InvoiceAmount is fixed at creation; OutstandingAmount stays within
// [0, InvoiceAmount] and only changes through ApplySettlement.
type Invoice struct {
	shared.TenantAggregateRoot
	CustomerRef       string
	IssueDate         time.Time
	InvoiceAmount     decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            InvoiceStatus
	Description       string
}

// NewInvoice creates an invoice in its initial status (PENDING or PAID).
// A PENDING invoice starts with the full amount outstanding; a PAID one with none.
func NewInvoice(
	tenantID uuid.UUID,
	customerRef string,
	amount decimal.Decimal,
	description string,
	initialStatus InvoiceStatus,
	issueDate time.Time,
) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Tenant ID cannot be empty")
	}
	customerRef = strings.TrimSpace(customerRef)
	if customerRef == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer reference cannot be empty")
	}
	if len(customerRef) > maxCustomerRefLength {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Customer reference cannot exceed %d characters", maxCustomerRefLength))
	}
	if len(description) > maxDescriptionLength {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLength))
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice amount cannot be negative")
	}
	if err := ValidateAmountPrecision("Invoice amount", amount); err != nil {
		return nil, err
	}
	if !initialStatus.IsInitial() {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Invoice cannot be created in %s status, use PENDING or PAID", initialStatus))
	}

	outstanding := amount
	if initialStatus == InvoiceStatusPaid {
		outstanding = decimal.Zero
	}
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerRef:         customerRef,
		IssueDate:           truncateToDate(issueDate),
		InvoiceAmount:       amount,
		OutstandingAmount:   outstanding,
		Status:              initialStatus,
		Description:         description,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// CheckTransition returns the posting rule for moving to target, or an
// IllegalTransition error when the lifecycle forbids it.
func (inv *Invoice) CheckTransition(target InvoiceStatus) (PostingRule, error) {
	return LookupTransition(inv.Status, target)
}

// SettlementPlan is a validated, not yet applied, status change
type SettlementPlan struct {
	From       InvoiceStatus
	Target     InvoiceStatus
	Rule       PostingRule
	Settlement Settlement
}

// PlanSettlement validates a requested transition and computes its settlement
// without mutating the invoice. The lifecycle guard runs first, so a target that
// is not reachable from the current status is an illegal transition whatever
// payment amount accompanies it.
func (inv *Invoice) PlanSettlement(calc *SettlementCalculator, target InvoiceStatus, requested *decimal.Decimal) (SettlementPlan, error) {
	rule, err := inv.CheckTransition(target)
	if err != nil {
		return SettlementPlan{}, err
	}
	s, err := calc.ComputeSettlement(SettlementInput{
		CurrentStatus:     inv.Status,
		TargetStatus:      target,
		OutstandingAmount: inv.OutstandingAmount,
		InvoiceAmount:     inv.InvoiceAmount,
		RequestedPayment:  requested,
	})
	if err != nil {
		return SettlementPlan{}, err
	}
	return SettlementPlan{From: inv.Status, Target: target, Rule: rule, Settlement: s}, nil
}

// PaidAmount returns how much of the invoice has been received
func (inv *Invoice) PaidAmount() decimal.Decimal {
	return inv.InvoiceAmount.Sub(inv.OutstandingAmount)
}

// ApplySettlement moves the invoice to target with the computed balance.
// A partial payment that clears the balance leaves the status PARTIALLY_PAID.
func (inv *Invoice) ApplySettlement(target InvoiceStatus, s Settlement) error {
	if _, err := inv.CheckTransition(target); err != nil {
		return err
	}
	if s.NewOutstandingAmount.IsNegative() || s.NewOutstandingAmount.GreaterThan(inv.InvoiceAmount) {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Outstanding amount %s is outside [0, %s]", s.NewOutstandingAmount.String(), inv.InvoiceAmount.String()))
	}
	if !inv.OutstandingAmount.Sub(s.PaymentValue).Equal(s.NewOutstandingAmount) {
		return shared.NewDomainError(shared.CodeValidation, "Settlement does not reconcile with outstanding amount")
	}

	from := inv.Status
	inv.Status = target
	inv.OutstandingAmount = s.NewOutstandingAmount
	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, from, s.PaymentValue))

	return nil
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
