// Package signers provides convenience constructors for creating Wallet implementations.
//
// It offers three patterns:
//   - FromPrivateKey: Wraps a base58-encoded ed25519 private key.
//     Intended for server-side use (exchanges, backends, bots).
//   - FromKeypairFile: Loads a solana-keygen JSON keypair file, the format
//     used by the Solana and Anchor CLIs.
//   - FromCallback: Wraps a custom signing function (e.g., HSM, custodial API,
//     external service). Allows you to delegate signing to any external
//     infrastructure.
//
// All return implementations of the anchorgo.Wallet interface.
package signers
