package signers

import (
	"context"

	"github.com/gagliardetto/solana-go"

	anchorgo "github.com/anchorgo/sdk-go"
)

// callbackWallet wraps a custom signing function for external signing services.
type callbackWallet struct {
	publicKey solana.PublicKey
	signFunc  func(context.Context, *solana.Transaction) error
}

// FromCallback creates a Wallet from a public key and an arbitrary signing
// function. Intended for wrapping HSMs, custodial APIs, or any external
// signing service. The callback receives the fully built transaction and is
// responsible for attaching the signature for publicKey.
func FromCallback(
	publicKey solana.PublicKey,
	signFunc func(context.Context, *solana.Transaction) error,
) anchorgo.Wallet {
	return &callbackWallet{
		publicKey: publicKey,
		signFunc:  signFunc,
	}
}

// PublicKey returns the Solana address for this wallet.
func (w *callbackWallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// SignTransaction signs the transaction by delegating to the callback function.
func (w *callbackWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	return w.signFunc(ctx, tx)
}

// SignAllTransactions signs a batch of transactions by delegating each one
// to the callback function.
func (w *callbackWallet) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error {
	for _, tx := range txs {
		if err := w.signFunc(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
