package dto

import (
	"net/http"

	"github.com/erp/settlement/internal/domain/shared"
)

// Domain error codes, passed through unchanged
const (
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeIllegalTransition   = shared.CodeIllegalTransition
	ErrCodeUnbalancedBatch     = shared.CodeUnbalancedBatch
	ErrCodeUnknownAccount      = shared.CodeUnknownAccount
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodePersistence         = shared.CodePersistence
	ErrCodePosting             = shared.CodePosting
)

// Transport error codes
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingTenant    = "MISSING_TENANT"
	ErrCodeInvalidTenant    = "INVALID_TENANT"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeIllegalTransition:   http.StatusUnprocessableEntity,
	ErrCodeUnbalancedBatch:     http.StatusInternalServerError,
	ErrCodeUnknownAccount:      http.StatusInternalServerError,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodePersistence:         http.StatusServiceUnavailable,
	ErrCodePosting:             http.StatusServiceUnavailable,

	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeMissingTenant:    http.StatusBadRequest,
	ErrCodeInvalidTenant:    http.StatusBadRequest,
	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryableCode reports whether a request that failed with code may succeed if repeated
func IsRetryableCode(code string) bool {
	switch code {
	case ErrCodeConcurrencyConflict, ErrCodePersistence, ErrCodePosting, ErrCodeUnavailable:
		return true
	}
	return false
}
