package settlement

import (
	"fmt"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Amounts are stored as DECIMAL(18,4)
const (
	AmountScale         = 4
	amountIntegerDigits = 14
)

var maxAmountExclusive = decimal.New(1, amountIntegerDigits)

// ValidateAmountPrecision rejects amounts the ledger columns cannot hold
// exactly: more than AmountScale decimal places, or 10^14 and above in magnitude.
// label names the amount in the error message.
func ValidateAmountPrecision(label string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("%s %s has more than %d decimal places", label, amount.String(), AmountScale))
	}
	if amount.Abs().GreaterThanOrEqual(maxAmountExclusive) {
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("%s %s exceeds the maximum of %s", label, amount.String(),
				maxAmountExclusive.Sub(decimal.New(1, -AmountScale)).StringFixed(AmountScale)))
	}
	return nil
}
