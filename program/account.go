package program

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
)

// AccountClient provides methods for fetching and creating accounts of one
// IDL-described layout.
type AccountClient struct {
	program *Program
	def     *idl.TypeDef

	// size is the full serialized size including the discriminator, or 0
	// when the layout contains variable-length fields.
	size int
}

// ProgramAccount is a deserialized account owned by the program, paired
// with its address.
type ProgramAccount struct {
	PublicKey solana.PublicKey
	Account   map[string]any
}

// Name returns the account layout name as written in the IDL.
func (a *AccountClient) Name() string { return a.def.Name }

// Size returns the serialized size of this account in bytes, including the
// 8-byte discriminator. It is 0 for layouts with variable-length fields.
func (a *AccountClient) Size() int { return a.size }

// Discriminator returns the layout's 8-byte account discriminator.
func (a *AccountClient) Discriminator() coder.Discriminator {
	return coder.AccountDiscriminator(a.def.Name)
}

// Fetch returns the deserialized account at the given address. It fails
// with ACCOUNT_NOT_FOUND if the account does not exist and with
// DISCRIMINATOR_MISMATCH if the account is not of this layout.
func (a *AccountClient) Fetch(ctx context.Context, address solana.PublicKey) (map[string]any, error) {
	data, err := a.fetchRaw(ctx, address)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.NewProgramError(errors.ACCOUNT_NOT_FOUND,
			fmt.Sprintf("account %s does not exist", address), nil)
	}
	return a.program.Coder.Accounts.Decode(a.def.Name, data)
}

// FetchNullable is Fetch, except a missing account yields (nil, nil)
// instead of an error.
func (a *AccountClient) FetchNullable(ctx context.Context, address solana.PublicKey) (map[string]any, error) {
	data, err := a.fetchRaw(ctx, address)
	if err != nil || data == nil {
		return nil, err
	}
	return a.program.Coder.Accounts.Decode(a.def.Name, data)
}

func (a *AccountClient) fetchRaw(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	res, err := a.program.Provider.Client().GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: a.program.Provider.Commitment(),
	})
	if err == rpc.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewProviderError(errors.RPC_ERROR, "get account info", err)
	}
	if res.Value == nil {
		return nil, nil
	}
	return res.Value.Data.GetBinary(), nil
}

// AllOption narrows which accounts All returns.
type AllOption func(*allQuery)

type allQuery struct {
	buffer   []byte
	memcmp   []rpc.RPCFilter
	dataSize uint64
}

// WithBuffer appends bytes after the discriminator in the base memcmp
// filter, matching accounts whose data starts with discriminator ++ buffer.
func WithBuffer(buffer []byte) AllOption {
	return func(q *allQuery) {
		q.buffer = buffer
	}
}

// WithMemcmp adds an extra memcmp filter comparing bytes at a byte offset
// into the account data.
func WithMemcmp(offset uint64, data []byte) AllOption {
	return func(q *allQuery) {
		q.memcmp = append(q.memcmp, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{Offset: offset, Bytes: solana.Base58(data)},
		})
	}
}

// WithDataSize adds a filter on the exact account data length.
func WithDataSize(size uint64) AllOption {
	return func(q *allQuery) {
		q.dataSize = size
	}
}

// All returns every account of this layout owned by the program. The
// discriminator memcmp filter at offset 0 is always applied, so accounts of
// other layouts never appear in the result.
func (a *AccountClient) All(ctx context.Context, opts ...AllOption) ([]ProgramAccount, error) {
	var q allQuery
	for _, opt := range opts {
		opt(&q)
	}

	disc := a.Discriminator()
	prefix := append(disc[:], q.buffer...)
	filters := []rpc.RPCFilter{
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(prefix)}},
	}
	filters = append(filters, q.memcmp...)
	if q.dataSize > 0 {
		filters = append(filters, rpc.RPCFilter{DataSize: q.dataSize})
	}

	res, err := a.program.Provider.Client().GetProgramAccountsWithOpts(ctx, a.program.ProgramID,
		&rpc.GetProgramAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: a.program.Provider.Commitment(),
			Filters:    filters,
		})
	if err != nil {
		return nil, errors.NewProviderError(errors.RPC_ERROR, "get program accounts", err)
	}

	out := make([]ProgramAccount, 0, len(res))
	for _, keyed := range res {
		decoded, err := a.program.Coder.Accounts.Decode(a.def.Name, keyed.Account.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", keyed.Pubkey, err)
		}
		out = append(out, ProgramAccount{PublicKey: keyed.Pubkey, Account: decoded})
	}
	return out, nil
}

// CreateInstruction returns a system-program instruction allocating an
// account of this layout, owned by the program and funded to rent
// exemption. The new account must sign the transaction. sizeOverride
// replaces the IDL-derived size when non-zero; layouts with variable-length
// fields require it.
func (a *AccountClient) CreateInstruction(ctx context.Context, newAccount solana.PublicKey, sizeOverride uint64) (solana.Instruction, error) {
	space := sizeOverride
	if space == 0 {
		if a.size == 0 {
			return nil, errors.NewProgramError(errors.ACCOUNT_SIZE_UNKNOWN,
				fmt.Sprintf("account layout %q has no fixed size; pass a size override", a.def.Name), nil)
		}
		space = uint64(a.size)
	}

	lamports, err := a.program.Provider.Client().GetMinimumBalanceForRentExemption(ctx, space, a.program.Provider.Commitment())
	if err != nil {
		return nil, errors.NewProviderError(errors.RPC_ERROR, "get minimum balance for rent exemption", err)
	}

	return system.NewCreateAccountInstruction(
		lamports,
		space,
		a.program.ProgramID,
		a.program.Provider.Wallet().PublicKey(),
		newAccount,
	).Build(), nil
}
