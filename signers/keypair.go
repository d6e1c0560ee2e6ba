package signers

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	anchorgo "github.com/anchorgo/sdk-go"
)

// keypairWallet wraps a solana-go private key for signing transactions.
type keypairWallet struct {
	key solana.PrivateKey
}

// FromPrivateKey creates a Wallet from a base58-encoded private key.
// Intended for server-side use (exchanges, backends, bots).
// Returns an error if the key is invalid.
func FromPrivateKey(base58Key string) (anchorgo.MessageSigner, error) {
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &keypairWallet{key: key}, nil
}

// FromKeypair wraps an in-memory private key, e.g. one freshly generated
// with solana.NewRandomPrivateKey for tests.
func FromKeypair(key solana.PrivateKey) anchorgo.MessageSigner {
	return &keypairWallet{key: key}
}

// FromKeypairFile loads a solana-keygen JSON keypair file (a 64-element
// byte array), the format written by `solana-keygen new` and used by the
// Anchor CLI's wallet setting.
func FromKeypairFile(path string) (anchorgo.MessageSigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair file %s: %w", path, err)
	}
	return &keypairWallet{key: key}, nil
}

// PublicKey returns the Solana address for this keypair.
func (w *keypairWallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

// SignTransaction fills in this keypair's signature slot on the
// transaction. Other required signers are left untouched so they can be
// signed elsewhere.
func (w *keypairWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// SignAllTransactions signs a batch of transactions in place.
func (w *keypairWallet) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error {
	for _, tx := range txs {
		if err := w.SignTransaction(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

// SignMessage signs an arbitrary off-chain message with the keypair.
func (w *keypairWallet) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	sig, err := w.key.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig[:], nil
}
