package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeStoreError, "Store operation failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORE_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetailAccumulates(t *testing.T) {
	err := New(ErrCodeValidation, "bad input").
		WithDetail("field", "amount").
		WithDetail("reason", "negative")

	assert.Equal(t, "amount", err.Details["field"])
	assert.Equal(t, "negative", err.Details["reason"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestClassifiers(t *testing.T) {
	assert.True(t, New(ErrCodeInvalidAmount, "").IsValidation())
	assert.True(t, New(ErrCodeSameToken, "").IsValidation())
	assert.True(t, New(ErrCodeUserNotFound, "").IsNotFound())
	assert.True(t, New(ErrCodeSessionStale, "").IsUnauthorized())
	assert.True(t, New(ErrCodeBatchFailed, "").IsInternal())
	assert.False(t, New(ErrCodeHandleTaken, "").IsInternal())
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(New(ErrCodeConflict, "taken"))
	require.True(t, ok)
	assert.Equal(t, ErrCodeConflict, appErr.Code)

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestConstructorDetails(t *testing.T) {
	err := NewInsufficientBalanceError("BTC", "3")
	assert.Equal(t, ErrCodeInsufficientBalance, err.Code)
	assert.Equal(t, "BTC", err.Details["token"])
	assert.Equal(t, "3", err.Details["available"])

	err = NewStoreError("set", "user_profiles/u1", stderrors.New("down"))
	assert.Equal(t, ErrCodeStoreError, err.Code)
	assert.Equal(t, "user_profiles/u1", err.Details["path"])
}
