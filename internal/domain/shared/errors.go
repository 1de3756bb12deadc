package shared

import "errors"

// Error codes surfaced by the settlement engine
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeIllegalTransition   = "ILLEGAL_TRANSITION"
	CodeUnbalancedBatch     = "UNBALANCED_BATCH"
	CodeUnknownAccount      = "UNKNOWN_ACCOUNT"
	CodeNotFound            = "NOT_FOUND"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodePosting             = "POSTING_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError carrying the same code.
// This lets callers match kinds with errors.Is(err, shared.ErrNotFound)
// regardless of the message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps the underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error kinds
var (
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrIllegalTransition   = NewDomainError(CodeIllegalTransition, "Status transition is not allowed")
	ErrUnbalancedBatch     = NewDomainError(CodeUnbalancedBatch, "Ledger batch debits and credits differ")
	ErrUnknownAccount      = NewDomainError(CodeUnknownAccount, "Ledger account cannot be resolved")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrPersistence         = NewDomainError(CodePersistence, "Storage operation failed")
	ErrPosting             = NewDomainError(CodePosting, "Ledger batch could not be recorded")
)

// CodeOf extracts the domain error code from err, or "" when err carries none
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the operation that produced err may be retried.
// Retrying is safe because every settlement attempt re-reads invoice state.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeConcurrencyConflict, CodePersistence, CodePosting:
		return true
	}
	return false
}
