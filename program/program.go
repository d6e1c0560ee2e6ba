// Package program provides the IDL-driven dynamic client for an Anchor
// program: instruction building, transaction assembly, sending with error
// translation, simulation, and typed account access.
package program

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	anchorgo "github.com/anchorgo/sdk-go"
	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
	"github.com/anchorgo/sdk-go/provider"
)

// Program is the IDL-deserialized client representation of an Anchor
// program. It is the one stop shop for communicating with on-chain
// programs: building instructions, sending transactions, fetching
// deserialized accounts, simulating calls, and decoding events.
//
// Methods and accounts are exposed as namespaces built from the IDL at
// construction time and looked up by name.
type Program struct {
	Idl       *idl.Idl
	ProgramID solana.PublicKey
	Provider  *provider.Provider
	Coder     *coder.Coder

	idlErrors map[int]string
	methods   map[string]*Method
	accounts  map[string]*AccountClient
}

// New builds a Program client from a parsed IDL.
func New(def *idl.Idl, programID solana.PublicKey, prov *provider.Provider) *Program {
	p := &Program{
		Idl:       def,
		ProgramID: programID,
		Provider:  prov,
		Coder:     coder.New(def),
		idlErrors: def.ErrorMap(),
	}

	p.methods = make(map[string]*Method, len(def.Instructions))
	for i := range def.Instructions {
		ix := &def.Instructions[i]
		p.methods[ix.Name] = &Method{program: p, def: ix}
	}

	p.accounts = make(map[string]*AccountClient, len(def.Accounts))
	for i := range def.Accounts {
		acc := &def.Accounts[i]
		size, err := coder.AccountSize(def, acc)
		if err != nil {
			// Variable-size layout; allocation requires an explicit
			// size override.
			size = 0
		}
		p.accounts[acc.Name] = &AccountClient{program: p, def: acc, size: size}
	}

	return p
}

// FromJSON builds a Program client straight from IDL JSON, e.g. a file
// under target/idl/.
func FromJSON(data []byte, programID solana.PublicKey, prov *provider.Provider) (*Program, error) {
	def, err := idl.Parse(data)
	if err != nil {
		return nil, err
	}
	return New(def, programID, prov), nil
}

// Method returns the client for one of the program's instructions.
func (p *Program) Method(name string) (*Method, error) {
	m, ok := p.methods[name]
	if !ok {
		return nil, errors.NewProgramError(errors.INSTRUCTION_UNKNOWN,
			fmt.Sprintf("instruction %q is not in the IDL", name), nil)
	}
	return m, nil
}

// Account returns the client for one of the program's account layouts.
func (p *Program) Account(name string) (*AccountClient, error) {
	a, ok := p.accounts[name]
	if !ok {
		return nil, errors.NewProgramError(errors.ACCOUNT_NOT_FOUND,
			fmt.Sprintf("account layout %q is not in the IDL", name), nil)
	}
	return a, nil
}

// ErrorTable returns the program's IDL error table keyed by numeric code.
func (p *Program) ErrorTable() map[int]string { return p.idlErrors }

// FetchIDL fetches a program's IDL from its on-chain IDL account, as
// initialized by `anchor idl init`. It returns the parsed IDL and the raw
// inflated JSON.
func FetchIDL(ctx context.Context, programID solana.PublicKey, prov *provider.Provider) (*idl.Idl, []byte, error) {
	addr, err := idl.Address(programID)
	if err != nil {
		return nil, nil, err
	}

	res, err := prov.Client().GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: prov.Commitment(),
	})
	if err == rpc.ErrNotFound || (err == nil && res.Value == nil) {
		return nil, nil, errors.NewProgramError(errors.IDL_NOT_FOUND,
			fmt.Sprintf("IDL not found for program %s", programID), nil)
	}
	if err != nil {
		return nil, nil, errors.NewProviderError(errors.RPC_ERROR, "get IDL account", err)
	}

	raw := res.Value.Data.GetBinary()
	if len(raw) < idl.DiscriminatorSize {
		return nil, nil, errors.NewProgramError(errors.IDL_NOT_FOUND,
			fmt.Sprintf("IDL account for %s is too short", programID), nil)
	}

	acc, err := idl.DecodeProgramAccount(raw[idl.DiscriminatorSize:])
	if err != nil {
		return nil, nil, err
	}
	inflated, err := idl.Inflate(acc.Data)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := idl.Parse(inflated)
	if err != nil {
		return nil, nil, err
	}
	return parsed, inflated, nil
}

// At builds a Program client by resolving the IDL, consulting the store
// first and falling back to the chain. Fetched IDLs are written back to the
// store. A nil store always fetches.
func At(ctx context.Context, programID solana.PublicKey, prov *provider.Provider, store anchorgo.IdlStore) (*Program, error) {
	if store != nil {
		cached, err := store.Get(ctx, programID)
		if err != nil {
			return nil, errors.NewProgramError(errors.STORE_ERROR, "read IDL store", err)
		}
		if cached != nil {
			def, err := idl.Parse(cached)
			if err != nil {
				return nil, err
			}
			return New(def, programID, prov), nil
		}
	}

	def, raw, err := FetchIDL(ctx, programID, prov)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.Save(ctx, programID, raw); err != nil {
			return nil, errors.NewProgramError(errors.STORE_ERROR, "write IDL store", err)
		}
	}
	return New(def, programID, prov), nil
}
