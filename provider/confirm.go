// Confirmation state machine for transactions in flight.
//
// A Solana transaction only ever moves forward through the cluster's
// commitment levels: processed, then confirmed, then finalized. The state
// machine below validates the statuses observed while polling so that a
// node reporting an impossible regression is surfaced as an error.
package provider

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/anchorgo/sdk-go/errors"
)

// TxStatus is the confirmation status of a transaction.
type TxStatus string

const (
	// StatusUnknown means the signature has not been observed by the
	// cluster yet.
	StatusUnknown TxStatus = "unknown"

	// StatusProcessed means the transaction landed in a block.
	StatusProcessed TxStatus = "processed"

	// StatusConfirmed means the block reached optimistic confirmation.
	StatusConfirmed TxStatus = "confirmed"

	// StatusFinalized is a terminal state: the block is rooted.
	StatusFinalized TxStatus = "finalized"
)

// legalTransitions defines the allowed status transitions. Each key is a
// "from" status, and the value is a set of valid "to" statuses.
//
// Finalized is terminal and has no outgoing transitions.
var legalTransitions = map[TxStatus]map[TxStatus]bool{
	StatusUnknown: {
		StatusProcessed: true,
		StatusConfirmed: true,
		StatusFinalized: true,
	},
	StatusProcessed: {
		StatusConfirmed: true,
		StatusFinalized: true,
	},
	StatusConfirmed: {
		StatusFinalized: true,
	},
	StatusFinalized: {},
}

// statusRank orders statuses for Reached comparisons.
var statusRank = map[TxStatus]int{
	StatusUnknown:   0,
	StatusProcessed: 1,
	StatusConfirmed: 2,
	StatusFinalized: 3,
}

// ValidateTransition checks if a status transition from "from" to "to" is
// legal. Returns nil if the transition is valid, or an error with code
// TRANSITION_INVALID if confirmation would regress.
func ValidateTransition(from, to TxStatus) error {
	validToStates, exists := legalTransitions[from]
	if !exists {
		return errors.NewProviderError(
			errors.TRANSITION_INVALID,
			fmt.Sprintf("unknown source status: %s", from),
			nil,
		)
	}

	if !validToStates[to] {
		return errors.NewProviderError(
			errors.TRANSITION_INVALID,
			fmt.Sprintf("illegal transition from %s to %s", from, to),
			nil,
		)
	}

	return nil
}

// Reached reports whether a status satisfies the target status.
func Reached(status, target TxStatus) bool {
	return statusRank[status] >= statusRank[target]
}

// FromConfirmationStatus maps the RPC signature status to a TxStatus.
func FromConfirmationStatus(s rpc.ConfirmationStatusType) TxStatus {
	switch s {
	case rpc.ConfirmationStatusProcessed:
		return StatusProcessed
	case rpc.ConfirmationStatusConfirmed:
		return StatusConfirmed
	case rpc.ConfirmationStatusFinalized:
		return StatusFinalized
	default:
		return StatusUnknown
	}
}

// FromCommitment maps a commitment level to the TxStatus that satisfies it.
func FromCommitment(c rpc.CommitmentType) TxStatus {
	switch c {
	case rpc.CommitmentProcessed:
		return StatusProcessed
	case rpc.CommitmentConfirmed:
		return StatusConfirmed
	case rpc.CommitmentFinalized:
		return StatusFinalized
	default:
		return StatusConfirmed
	}
}
