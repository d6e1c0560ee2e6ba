// Package provider bundles the network and wallet context used by program
// clients: a Solana RPC connection, an optional websocket connection, and
// the wallet that pays for and signs transactions.
package provider

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"

	anchorgo "github.com/anchorgo/sdk-go"
	"github.com/anchorgo/sdk-go/core/net"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/signers"
)

// Environment variables honored by Env, matching the Anchor CLI.
const (
	EnvProviderURL = "ANCHOR_PROVIDER_URL"
	EnvWallet      = "ANCHOR_WALLET"
)

// Provider is the network and wallet context for a program client.
type Provider struct {
	rpcClient  *rpc.Client
	wsClient   *ws.Client
	wsURL      string
	wallet     anchorgo.Wallet
	commitment rpc.CommitmentType
	hooks      *HookRegistry
	log        *logrus.Entry
	transport  *net.Transport
}

// Option configures a Provider.
type Option func(*Provider)

// WithCommitment sets the default commitment level for queries and
// confirmation (default: confirmed).
func WithCommitment(c rpc.CommitmentType) Option {
	return func(p *Provider) {
		p.commitment = c
	}
}

// WithTransport sets the HTTP transport underneath the RPC client.
func WithTransport(t *net.Transport) Option {
	return func(p *Provider) {
		p.transport = t
	}
}

// WithRPCClient overrides the RPC client entirely. Mainly useful for tests.
func WithRPCClient(c *rpc.Client) Option {
	return func(p *Provider) {
		p.rpcClient = c
	}
}

// WithLogger sets the logger used for send and confirmation tracing.
func WithLogger(log *logrus.Entry) Option {
	return func(p *Provider) {
		p.log = log
	}
}

// New creates a Provider for a cluster and wallet.
func New(cluster anchorgo.Cluster, wallet anchorgo.Wallet, opts ...Option) *Provider {
	p := &Provider{
		wsURL:      cluster.WS,
		wallet:     wallet,
		commitment: rpc.CommitmentConfirmed,
		hooks:      NewHookRegistry(),
		log:        logrus.WithField("component", "provider"),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.rpcClient == nil {
		if p.transport == nil {
			p.transport = net.NewTransport()
		}
		p.rpcClient = rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(
			cluster.RPC,
			&jsonrpc.RPCClientOpts{HTTPClient: p.transport.HTTPClient()},
		))
	}

	return p
}

// Local creates a Provider against the local test validator, using the
// default solana-keygen wallet path.
func Local(opts ...Option) (*Provider, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID, "resolve home directory", err)
	}
	wallet, err := signers.FromKeypairFile(filepath.Join(home, ".config", "solana", "id.json"))
	if err != nil {
		return nil, err
	}
	return New(anchorgo.Localnet, wallet, opts...), nil
}

// Env creates a Provider from the ANCHOR_PROVIDER_URL and ANCHOR_WALLET
// environment variables, the convention used by the Anchor test harness.
func Env(opts ...Option) (*Provider, error) {
	url := os.Getenv(EnvProviderURL)
	if url == "" {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID, EnvProviderURL+" is not set", nil)
	}
	walletPath := os.Getenv(EnvWallet)
	if walletPath == "" {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID, EnvWallet+" is not set", nil)
	}
	wallet, err := signers.FromKeypairFile(walletPath)
	if err != nil {
		return nil, err
	}
	return New(anchorgo.ClusterByName(url), wallet, opts...), nil
}

// Client returns the underlying RPC client.
func (p *Provider) Client() *rpc.Client { return p.rpcClient }

// Wallet returns the provider's wallet.
func (p *Provider) Wallet() anchorgo.Wallet { return p.wallet }

// Commitment returns the default commitment level.
func (p *Provider) Commitment() rpc.CommitmentType { return p.commitment }

// Hooks returns the lifecycle hook registry for transactions sent through
// this provider.
func (p *Provider) Hooks() *HookRegistry { return p.hooks }

// WS returns a websocket connection to the cluster, dialing on first use.
func (p *Provider) WS(ctx context.Context) (*ws.Client, error) {
	if p.wsClient != nil {
		return p.wsClient, nil
	}
	if p.wsURL == "" {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID, "cluster has no websocket endpoint", nil)
	}
	c, err := ws.Connect(ctx, p.wsURL)
	if err != nil {
		return nil, errors.NewProviderError(errors.RPC_ERROR, "websocket connect", err)
	}
	p.wsClient = c
	return c, nil
}

// Close releases the websocket connection, if one was opened.
func (p *Provider) Close() error {
	if p.wsClient != nil {
		p.wsClient.Close()
		p.wsClient = nil
	}
	return nil
}

// SendOptions control how Send submits and confirms a transaction.
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
	MaxRetries          *uint
	SkipConfirmation    bool
}

// Send finalizes, signs, and submits a transaction. The recent blockhash is
// fetched here so builders do not need network access; the wallet signs
// first and extraSigners (e.g. fresh account keypairs) partial-sign after.
// Unless SkipConfirmation is set, Send blocks until the provider's
// commitment level is reached.
func (p *Provider) Send(ctx context.Context, tx *solana.Transaction, extraSigners []solana.PrivateKey, opts *SendOptions) (solana.Signature, error) {
	if opts == nil {
		opts = &SendOptions{}
	}

	recent, err := p.rpcClient.GetLatestBlockhash(ctx, p.commitment)
	if err != nil {
		return solana.Signature{}, errors.NewProviderError(errors.BLOCKHASH_FAILED, "get latest blockhash", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash

	if err := p.wallet.SignTransaction(ctx, tx); err != nil {
		return solana.Signature{}, errors.NewProviderError(errors.SIGNER_ERROR, "wallet signing failed", err)
	}
	if len(extraSigners) > 0 {
		byKey := make(map[solana.PublicKey]*solana.PrivateKey, len(extraSigners))
		for i := range extraSigners {
			byKey[extraSigners[i].PublicKey()] = &extraSigners[i]
		}
		if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
			return byKey[key]
		}); err != nil {
			return solana.Signature{}, errors.NewProviderError(errors.SIGNER_ERROR, "partial signing failed", err)
		}
	}

	p.hooks.Trigger(HookBeforeSend, &TxEvent{Tx: tx})

	preflight := opts.PreflightCommitment
	if preflight == "" {
		preflight = p.commitment
	}
	sig, err := p.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: preflight,
		MaxRetries:          opts.MaxRetries,
	})
	if err != nil {
		return solana.Signature{}, errors.NewProviderError(errors.RPC_ERROR, "send transaction", err)
	}

	p.log.WithField("signature", sig.String()).Debug("transaction sent")
	p.hooks.Trigger(HookAfterSend, &TxEvent{Tx: tx, Signature: sig})

	if !opts.SkipConfirmation {
		if err := p.WaitForConfirmation(ctx, sig, p.commitment); err != nil {
			return sig, err
		}
		p.hooks.Trigger(HookConfirmed, &TxEvent{Tx: tx, Signature: sig})
	}
	return sig, nil
}

// Simulate runs a transaction through simulateTransaction without signing
// it, letting the node substitute a valid blockhash.
func (p *Provider) Simulate(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResult, error) {
	resp, err := p.rpcClient.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		Commitment:             p.commitment,
		ReplaceRecentBlockhash: true,
	})
	if err != nil {
		return nil, errors.NewProviderError(errors.RPC_ERROR, "simulate transaction", err)
	}
	return resp.Value, nil
}

// confirmPollInterval is how often WaitForConfirmation polls signature
// statuses.
const confirmPollInterval = 500 * time.Millisecond

// WaitForConfirmation polls the signature status until it reaches the target
// commitment, the transaction fails, or ctx ends. Observed statuses are
// validated against the confirmation state machine so a regressing node
// response surfaces as an error instead of silently resetting progress.
func (p *Provider) WaitForConfirmation(ctx context.Context, sig solana.Signature, target rpc.CommitmentType) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	current := StatusUnknown
	for {
		select {
		case <-ctx.Done():
			return errors.NewProviderError(errors.CONFIRMATION_FAILED, "confirmation cancelled", ctx.Err()).
				WithContext("signature", sig.String())
		case <-ticker.C:
		}

		res, err := p.rpcClient.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return errors.NewProviderError(errors.RPC_ERROR, "get signature statuses", err)
		}
		if len(res.Value) == 0 || res.Value[0] == nil {
			continue
		}
		status := res.Value[0]
		if status.Err != nil {
			// A custom program error keeps its code so the program layer
			// can translate it through the IDL error table.
			if code, ok := errors.CustomCodeFromTxErr(status.Err); ok {
				return errors.TranslateCode(code, nil, nil)
			}
			return errors.NewProviderError(errors.CONFIRMATION_FAILED, "transaction failed", nil).
				WithContext("signature", sig.String()).
				WithContext("err", status.Err)
		}

		observed := FromConfirmationStatus(status.ConfirmationStatus)
		if observed != current {
			if err := ValidateTransition(current, observed); err != nil {
				return err
			}
			current = observed
			p.log.WithFields(logrus.Fields{
				"signature": sig.String(),
				"status":    observed,
			}).Debug("confirmation progressed")
		}
		if Reached(observed, FromCommitment(target)) {
			return nil
		}
	}
}
