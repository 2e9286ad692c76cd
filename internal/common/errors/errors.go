package errors

import (
	"fmt"
	"time"
)

// ErrorCode is a machine-readable error classifier.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Users and profiles
	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeHandleTaken   ErrorCode = "HANDLE_TAKEN"
	ErrCodeInvalidLogin  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken    ErrorCode = "EMAIL_TAKEN"
	ErrCodeSessionStale  ErrorCode = "SESSION_EXPIRED"
	ErrCodeInvalidUser   ErrorCode = "INVALID_USER_DATA"

	// Wallet operations
	ErrCodeUnknownToken        ErrorCode = "UNKNOWN_TOKEN"
	ErrCodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeSameToken           ErrorCode = "SAME_TOKEN_TRADE"
	ErrCodeUnknownRecipient    ErrorCode = "UNKNOWN_RECIPIENT"

	// Document store
	ErrCodeStoreError       ErrorCode = "STORE_ERROR"
	ErrCodeStoreDenied      ErrorCode = "STORE_ACCESS_DENIED"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeBatchFailed      ErrorCode = "BATCH_FAILED"
)

// AppError is the typed application error carried through handlers,
// services and the global error channel.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeUserNotFound
}

func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeInvalidAmount ||
		e.Code == ErrCodeInvalidUser ||
		e.Code == ErrCodeUnknownToken ||
		e.Code == ErrCodeSameToken ||
		e.Code == ErrCodeUnknownRecipient
}

func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden ||
		e.Code == ErrCodeSessionStale || e.Code == ErrCodeInvalidLogin
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeStoreError ||
		e.Code == ErrCodeStoreUnavailable ||
		e.Code == ErrCodeBatchFailed
}

// WithDetail attaches structured context to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap attaches a cause to a new application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Constructors for the common cases.

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewUnknownTokenError(token string) *AppError {
	return New(ErrCodeUnknownToken, fmt.Sprintf("Token not in market catalog: %s", token)).
		WithDetail("token", token)
}

func NewUnknownRecipientError(handle string) *AppError {
	return New(ErrCodeUnknownRecipient, fmt.Sprintf("No account with handle %s", handle)).
		WithDetail("handle", handle)
}

func NewInvalidAmountError(amount string) *AppError {
	return New(ErrCodeInvalidAmount, "Amount must be a positive number").
		WithDetail("amount", amount)
}

func NewInsufficientBalanceError(token, available string) *AppError {
	return New(ErrCodeInsufficientBalance, fmt.Sprintf("Insufficient %s balance", token)).
		WithDetail("token", token).
		WithDetail("available", available)
}

// NewStoreError classifies a document store failure by operation and path.
func NewStoreError(operation, path string, err error) *AppError {
	return Wrap(err, ErrCodeStoreError, fmt.Sprintf("Store operation failed: %s %s", operation, path)).
		WithDetail("operation", operation).
		WithDetail("path", path)
}

// IsAppError reports whether err is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts err to an AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
