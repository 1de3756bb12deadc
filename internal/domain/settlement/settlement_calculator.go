package settlement

import (
	"fmt"
	"strings"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettlementInput describes a requested status change against current balances
type SettlementInput struct {
	CurrentStatus     InvoiceStatus
	TargetStatus      InvoiceStatus
	OutstandingAmount decimal.Decimal
	InvoiceAmount     decimal.Decimal
	RequestedPayment  *decimal.Decimal
}

// Settlement is the cash to apply and the balance that results
type Settlement struct {
	PaymentValue         decimal.Decimal
	NewOutstandingAmount decimal.Decimal
}

// SettlementCalculator computes payment values for status transitions.
// It is stateless and performs no I/O.
type SettlementCalculator struct{}

// NewSettlementCalculator creates a new SettlementCalculator
func NewSettlementCalculator() *SettlementCalculator {
	return &SettlementCalculator{}
}

// ComputeSettlement applies the per-target settlement rules:
//   - PARTIALLY_PAID pays the requested amount, which must satisfy 0 < amount <= outstanding
//     and fit the ledger's DECIMAL(18,4) columns
//   - PAID pays the full outstanding balance, ignoring any requested amount
//   - OVERDUE and CANCELLED pay nothing and leave the balance unchanged
//   - PENDING is never a target
func (c *SettlementCalculator) ComputeSettlement(in SettlementInput) (Settlement, error) {
	switch in.TargetStatus {
	case InvoiceStatusPartiallyPaid:
		if in.RequestedPayment == nil {
			return Settlement{}, shared.NewDomainError(shared.CodeValidation,
				"Payment amount is required for a partial payment")
		}
		payment := *in.RequestedPayment
		if !payment.IsPositive() {
			return Settlement{}, shared.NewDomainError(shared.CodeValidation,
				"Payment amount must be positive")
		}
		if err := ValidateAmountPrecision("Payment amount", payment); err != nil {
			return Settlement{}, err
		}
		if payment.GreaterThan(in.OutstandingAmount) {
			return Settlement{}, shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("Payment amount %s exceeds outstanding amount %s", payment.String(), in.OutstandingAmount.String()))
		}
		return Settlement{
			PaymentValue:         payment,
			NewOutstandingAmount: in.OutstandingAmount.Sub(payment),
		}, nil

	case InvoiceStatusPaid:
		return Settlement{
			PaymentValue:         in.OutstandingAmount,
			NewOutstandingAmount: decimal.Zero,
		}, nil

	case InvoiceStatusOverdue, InvoiceStatusCancelled:
		return Settlement{
			PaymentValue:         decimal.Zero,
			NewOutstandingAmount: in.OutstandingAmount,
		}, nil

	case InvoiceStatusPending:
		return Settlement{}, shared.NewDomainError(shared.CodeIllegalTransition,
			"PENDING is only valid as an initial status")
	}

	return Settlement{}, shared.NewDomainError(shared.CodeValidation,
		fmt.Sprintf("Unknown target status %q", in.TargetStatus))
}

// ParsePaymentAmount parses a decimal payment amount. An empty string yields
// nil (no amount supplied); anything non-numeric is a validation error.
func ParsePaymentAmount(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Payment amount %q is not a number", raw))
	}
	return &amount, nil
}
