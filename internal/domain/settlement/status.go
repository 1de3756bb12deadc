package settlement

import (
	"fmt"
	"strings"

	"github.com/erp/settlement/internal/domain/shared"
)

// InvoiceStatus represents the lifecycle state of a customer invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"        // Issued, nothing received yet
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // At least one partial payment applied
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"        // Past due, awaiting full payment
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // Settled in full
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"      // Voided
)

// AllInvoiceStatuses lists every status in lifecycle order
var AllInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusOverdue,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no transition may leave this status
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsInitial returns true if an invoice may be created in this status
func (s InvoiceStatus) IsInitial() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// ParseInvoiceStatus accepts the canonical form ("PARTIALLY_PAID") as well as
// the camel-case form ("PartiallyPaid"), case-insensitively.
func ParseInvoiceStatus(raw string) (InvoiceStatus, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	for _, s := range AllInvoiceStatuses {
		if strings.ReplaceAll(string(s), "_", "") == key {
			return s, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown invoice status %q", raw))
}
