// Package anchorgo provides a Go SDK for interacting with Anchor programs
// deployed on the Solana blockchain. It consumes the Anchor IDL produced by
// the Anchor toolchain and exposes a dynamic runtime client (instruction
// building, transaction sending, account fetching, event parsing) as well as
// a static client generator, while delegating key custody, persistence, and
// business logic to the developer.
package anchorgo

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Wallet is the minimal contract for proving identity and authorizing
// transactions. The SDK does not manage keys, wallet connections, or signing
// infrastructure. The caller provides a Wallet; the SDK uses it.
type Wallet interface {
	// PublicKey returns the Solana address identifying this wallet. It is
	// used as the fee payer for transactions sent through the provider.
	PublicKey() solana.PublicKey

	// SignTransaction signs the given transaction in place with this
	// wallet's key. The transaction's message (including the recent
	// blockhash) must be final before signing.
	SignTransaction(ctx context.Context, tx *solana.Transaction) error

	// SignAllTransactions signs a batch of transactions in place.
	SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error
}

// MessageSigner is an optional extension for wallets that can sign arbitrary
// off-chain messages (e.g. for authentication challenges). If a Wallet also
// implements MessageSigner, callers may use it for message-based flows.
type MessageSigner interface {
	Wallet
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// IdlStore is the persistence interface for fetched IDLs. The SDK calls
// these methods when resolving a program's IDL from the chain so repeated
// lookups do not hit the network. The developer may implement this interface
// against their own database; an in-memory implementation is provided in
// store/memory.
type IdlStore interface {
	// Save persists the raw IDL JSON for a program.
	Save(ctx context.Context, programID solana.PublicKey, idlJSON []byte) error

	// Get retrieves the raw IDL JSON for a program. Returns (nil, nil) if
	// no IDL is stored for the program.
	Get(ctx context.Context, programID solana.PublicKey) ([]byte, error)

	// Delete removes the stored IDL for a program.
	Delete(ctx context.Context, programID solana.PublicKey) error
}

// Cluster identifies a Solana network and its default RPC endpoints.
type Cluster struct {
	Name string
	RPC  string
	WS   string
}

// Well-known clusters. Localnet matches the defaults of solana-test-validator.
var (
	MainnetBeta = Cluster{
		Name: "mainnet-beta",
		RPC:  "https://api.mainnet-beta.solana.com",
		WS:   "wss://api.mainnet-beta.solana.com",
	}
	Devnet = Cluster{
		Name: "devnet",
		RPC:  "https://api.devnet.solana.com",
		WS:   "wss://api.devnet.solana.com",
	}
	Testnet = Cluster{
		Name: "testnet",
		RPC:  "https://api.testnet.solana.com",
		WS:   "wss://api.testnet.solana.com",
	}
	Localnet = Cluster{
		Name: "localnet",
		RPC:  "http://127.0.0.1:8899",
		WS:   "ws://127.0.0.1:8900",
	}
)

// ClusterByName resolves a cluster moniker ("mainnet-beta", "devnet",
// "testnet", "localnet") to its Cluster. Unknown names are treated as a
// custom RPC URL with the websocket endpoint left empty.
func ClusterByName(name string) Cluster {
	switch name {
	case MainnetBeta.Name, "mainnet":
		return MainnetBeta
	case Devnet.Name:
		return Devnet
	case Testnet.Name:
		return Testnet
	case Localnet.Name, "localhost":
		return Localnet
	default:
		return Cluster{Name: name, RPC: name}
	}
}
