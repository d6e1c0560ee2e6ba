package program

import (
	"github.com/gagliardetto/solana-go"

	"github.com/anchorgo/sdk-go/provider"
)

// Context carries the per-call inputs for a method invocation: the
// instruction arguments, the account context required by the IDL, and the
// transaction plumbing around them.
type Context struct {
	// Args holds the instruction arguments keyed by the argument names
	// from the IDL.
	Args map[string]any

	// Accounts maps IDL account names to addresses. Accounts nested in
	// composite groups are keyed by their dotted path ("group.leaf").
	Accounts map[string]solana.PublicKey

	// RemainingAccounts are appended verbatim after the IDL accounts.
	RemainingAccounts []*solana.AccountMeta

	// Signers are additional keypairs (beyond the provider wallet) that
	// must sign the transaction, e.g. freshly created account keys.
	Signers []solana.PrivateKey

	// PreInstructions run before the method's instruction in the same
	// transaction; PostInstructions run after it.
	PreInstructions  []solana.Instruction
	PostInstructions []solana.Instruction

	// Options override the provider's send behavior for this call.
	Options *provider.SendOptions
}
