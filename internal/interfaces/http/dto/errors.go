package dto

import (
	"net/http"
	"strings"

	"github.com/erp/ledger/internal/domain/ledger"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeNotFound is used when a route or generic resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Input error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeInvalidStatus is used when a status filter is not OPEN or SETTLED
	ErrCodeInvalidStatus = "INVALID_STATUS"
)

// Conflict error codes
const (
	// ErrCodeConcurrencyConflict is used when the optimistic version check fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is the generic duplicate submission code
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:                   http.StatusBadRequest,
	ErrCodeBadRequest:                   http.StatusBadRequest,
	ErrCodeInvalidInput:                 http.StatusBadRequest,
	ErrCodeInvalidStatus:                http.StatusBadRequest,
	ledger.CodeInvalidAmount:            http.StatusBadRequest,
	ledger.CodeInvalidInstallmentCount:  http.StatusBadRequest,
	ledger.CodeInvalidIntervalDays:      http.StatusBadRequest,
	ledger.CodeInvalidDirection:         http.StatusBadRequest,
	ledger.CodeInvalidDate:              http.StatusBadRequest,
	ledger.CodeInvalidDescription:       http.StatusBadRequest,
	ledger.CodeInvalidDocumentNumber:    http.StatusBadRequest,
	ledger.CodeInvalidCounterparty:      http.StatusBadRequest,
	ledger.CodeInvalidAccount:           http.StatusBadRequest,
	ledger.CodeInvalidCreator:           http.StatusBadRequest,
	ledger.CodeInvalidSettlementRequest: http.StatusBadRequest,

	// Resource errors -> 404 Not Found
	ledger.CodeObligationNotFound:  http.StatusNotFound,
	ledger.CodeInstallmentNotFound: http.StatusNotFound,

	// Conflicts -> 409 Conflict
	ErrCodeConcurrencyConflict:     http.StatusConflict,
	ErrCodeDuplicateRequest:        http.StatusConflict,
	ledger.CodeInstallmentSettled:  http.StatusConflict,
	ledger.CodeDuplicateSettlement: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* codes are treated as input errors, anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorCodeAliases folds internal codes into the code a client should act on
var ErrorCodeAliases = map[string]string{
	// an installment of another obligation is not found from the caller's view
	ledger.CodeInstallmentMismatch: ledger.CodeInstallmentNotFound,
	ErrCodeDuplicateRequest:        ledger.CodeDuplicateSettlement,
}

// NormalizeErrorCode converts an aliased error code to its public form.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if alias, ok := ErrorCodeAliases[code]; ok {
		return alias
	}
	return code
}
