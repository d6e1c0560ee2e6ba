package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorError_Format(t *testing.T) {
	err := NewCoderError(DECODE_FAILED, "bad payload", nil)
	assert.Equal(t, "[coder] DECODE_FAILED: bad payload", err.Error())

	wrapped := NewProviderError(RPC_ERROR, "send transaction", fmt.Errorf("connection refused"))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAnchorError_UnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewProgramError(ACCOUNT_NOT_FOUND, "no such account", cause)

	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))

	// Is matches on code, not message.
	assert.True(t, stderrors.Is(err, NewProgramError(ACCOUNT_NOT_FOUND, "different text", nil)))
	assert.False(t, stderrors.Is(err, NewProgramError(IDL_NOT_FOUND, "no such account", nil)))
}

func TestAnchorError_WithContext(t *testing.T) {
	err := NewProviderError(CONFIRMATION_FAILED, "transaction failed", nil).
		WithContext("signature", "abc").
		WithContext("slot", 42)

	assert.Equal(t, "abc", err.Context["signature"])
	assert.Equal(t, 42, err.Context["slot"])
}

func TestAs(t *testing.T) {
	var target *AnchorError
	require.True(t, As(NewEventsError(STREAM_ERROR, "gone", nil), &target))
	assert.Equal(t, STREAM_ERROR, target.Code)
	assert.Equal(t, "events", target.Layer)

	assert.False(t, As(fmt.Errorf("plain"), &target))
	assert.False(t, As(nil, &target))
}

func TestLayerAssignment(t *testing.T) {
	assert.Equal(t, "coder", NewCoderError(IDL_INVALID, "", nil).Layer)
	assert.Equal(t, "program", NewProgramError(PROGRAM_ERROR, "", nil).Layer)
	assert.Equal(t, "provider", NewProviderError(RPC_ERROR, "", nil).Layer)
	assert.Equal(t, "events", NewEventsError(EVENT_UNKNOWN, "", nil).Layer)
}
