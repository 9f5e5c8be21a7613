// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Persistence errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeMalformedRow     Code = "MALFORMED_ROW"
	CodeStepFailure      Code = "STEP_FAILURE"
	CodeTransactionAbort Code = "TRANSACTION_ABORT"

	// Account errors
	CodeAuthFailed       Code = "AUTH_FAILED"
	CodePlayerDeleted    Code = "PLAYER_DELETED"
	CodeAccountNotLoaded Code = "ACCOUNT_NOT_LOADED"
)
