package dto

import (
	"reflect"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators adds the settlement validation tags to v:
//
//	invoice_status       a status name accepted by settlement.ParseInvoiceStatus
//	decimal_positive     a decimal amount > 0
//	decimal_nonnegative  a decimal amount >= 0
//
// Both decimal tags also require the amount to fit DECIMAL(18,4).
// decimal.Decimal fields are validated through their string form.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	if err := v.RegisterValidation("invoice_status", validateInvoiceStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("decimal_positive", validateDecimal(decimal.Decimal.IsPositive)); err != nil {
		return err
	}
	return v.RegisterValidation("decimal_nonnegative", validateDecimal(func(d decimal.Decimal) bool {
		return !d.IsNegative()
	}))
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateInvoiceStatus(fl validator.FieldLevel) bool {
	_, err := settlement.ParseInvoiceStatus(fl.Field().String())
	return err == nil
}

func validateDecimal(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return ok(d) && settlement.ValidateAmountPrecision("Amount", d) == nil
	}
}
