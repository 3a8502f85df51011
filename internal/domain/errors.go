package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable failure reason
type ErrorCode string

const (
	// ErrCodeAccessDenied means the caller lacks the required role, or a
	// network/sender is not allowlisted
	ErrCodeAccessDenied ErrorCode = "access_denied"
	// ErrCodeInvalidArgument means a zero/malformed address, approval mismatch,
	// or ownership mismatch
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	// ErrCodeInsufficientFee means the fee-token balance is below the quoted fee
	ErrCodeInsufficientFee ErrorCode = "insufficient_fee"
	// ErrCodeNotFound means the referenced token does not exist
	ErrCodeNotFound ErrorCode = "not_found"
)

// Error is a structured registry error carrying a taxonomy code
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAccessDeniedError creates an access-denied error
func NewAccessDeniedError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeAccessDenied, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidArgumentError creates an invalid-argument error
func NewInvalidArgumentError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFeeError creates an insufficient-fee error reporting the
// current balance and the quoted fee
func NewInsufficientFeeError(balance, fee uint64) *Error {
	return &Error{
		Code:    ErrCodeInsufficientFee,
		Message: fmt.Sprintf("fee token balance %d below quoted fee %d", balance, fee),
	}
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the taxonomy code from an error chain.
// Errors outside the taxonomy report as an empty code.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
