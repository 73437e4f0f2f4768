package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetail_DoesNotMutateSentinel(t *testing.T) {
	err := ErrNotFound.WithDetail("id", "abc")

	assert.Equal(t, "abc", err.Details["id"])
	assert.Empty(t, ErrNotFound.Details)
}

func TestErrorsIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("loading toggle: %w", ErrNotFound.WithDetail("id", "x"))

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrConflict))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	conflict := ErrConflict.WithMessage("feature 'x' already exists")

	wrapped := Wrap(fmt.Errorf("insert: %w", conflict), ErrInternal)

	assert.True(t, IsConflict(wrapped))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(wrapped))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrValidation.WithDetail("field", "name"))
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, "name", resp.Details["field"])

	plain := ToErrorResponse(stderrors.New("db down"))
	assert.Equal(t, "INTERNAL_ERROR", plain.ErrorCode)
	assert.Nil(t, plain.Details)
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(stderrors.New("db down")))
}

func TestError_MessageDetailOverridesMessage(t *testing.T) {
	err := ErrConflict.WithMessage("name taken").WithCause(stderrors.New("pq: duplicate key"))
	assert.Equal(t, "CONFLICT: name taken (caused by: pq: duplicate key)", err.Error())
}

func TestIsFatal(t *testing.T) {
	assert.True(t, ErrValidation.IsFatal())
	assert.True(t, ErrNotFound.IsFatal())
	assert.False(t, ErrInternal.IsFatal())
	assert.True(t, ErrInternal.AsFatal().IsFatal())
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("boom")
	require.Error(t, err)

	var appErr *Error
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, appErr.IsFatal())
	assert.Equal(t, true, appErr.Details["panic"])
	assert.Contains(t, appErr.Cause.Error(), "boom")
}
