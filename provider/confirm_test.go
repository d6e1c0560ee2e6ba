package provider

import (
	stderrors "errors"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorgo/sdk-go/errors"
)

func TestValidateTransition_Forward(t *testing.T) {
	valid := []struct{ from, to TxStatus }{
		{StatusUnknown, StatusProcessed},
		{StatusUnknown, StatusConfirmed},
		{StatusUnknown, StatusFinalized},
		{StatusProcessed, StatusConfirmed},
		{StatusProcessed, StatusFinalized},
		{StatusConfirmed, StatusFinalized},
	}
	for _, tt := range valid {
		assert.NoError(t, ValidateTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestValidateTransition_RejectsRegression(t *testing.T) {
	invalid := []struct{ from, to TxStatus }{
		{StatusConfirmed, StatusProcessed},
		{StatusFinalized, StatusConfirmed},
		{StatusFinalized, StatusProcessed},
		{StatusProcessed, StatusUnknown},
		{StatusProcessed, StatusProcessed},
	}
	for _, tt := range invalid {
		err := ValidateTransition(tt.from, tt.to)
		require.Error(t, err, "%s -> %s", tt.from, tt.to)
		assert.True(t, stderrors.Is(err, errors.NewProviderError(errors.TRANSITION_INVALID, "", nil)))
	}
}

func TestValidateTransition_UnknownSource(t *testing.T) {
	require.Error(t, ValidateTransition(TxStatus("bogus"), StatusConfirmed))
}

func TestReached(t *testing.T) {
	assert.True(t, Reached(StatusFinalized, StatusConfirmed))
	assert.True(t, Reached(StatusConfirmed, StatusConfirmed))
	assert.False(t, Reached(StatusProcessed, StatusConfirmed))
	assert.False(t, Reached(StatusUnknown, StatusProcessed))
}

func TestFromConfirmationStatus(t *testing.T) {
	assert.Equal(t, StatusProcessed, FromConfirmationStatus(rpc.ConfirmationStatusProcessed))
	assert.Equal(t, StatusConfirmed, FromConfirmationStatus(rpc.ConfirmationStatusConfirmed))
	assert.Equal(t, StatusFinalized, FromConfirmationStatus(rpc.ConfirmationStatusFinalized))
	assert.Equal(t, StatusUnknown, FromConfirmationStatus(rpc.ConfirmationStatusType("")))
}

func TestFromCommitment_DefaultsToConfirmed(t *testing.T) {
	assert.Equal(t, StatusProcessed, FromCommitment(rpc.CommitmentProcessed))
	assert.Equal(t, StatusFinalized, FromCommitment(rpc.CommitmentFinalized))
	assert.Equal(t, StatusConfirmed, FromCommitment(rpc.CommitmentType("")))
}
