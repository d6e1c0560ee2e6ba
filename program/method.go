package program

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/events"
	"github.com/anchorgo/sdk-go/idl"
)

// Method is the client for a single program instruction. It exposes the
// namespaces Anchor clients conventionally provide: Build (raw
// instruction), Transaction (unsigned transaction), RPC (sign, send,
// confirm), and Simulate.
type Method struct {
	program *Program
	def     *idl.Instruction
}

// Name returns the instruction name as written in the IDL.
func (m *Method) Name() string { return m.def.Name }

// Discriminator returns the instruction's 8-byte sighash.
func (m *Method) Discriminator() coder.Discriminator {
	return coder.InstructionDiscriminator(m.def.Name)
}

// Build encodes the instruction data and resolves the account metas from
// the call context, returning a ready-to-submit instruction.
func (m *Method) Build(c *Context) (solana.Instruction, error) {
	data, err := m.program.Coder.Instruction.Encode(m.def.Name, c.Args)
	if err != nil {
		return nil, err
	}

	flat := idl.FlattenAccounts(m.def.Accounts)
	metas := make(solana.AccountMetaSlice, 0, len(flat)+len(c.RemainingAccounts))
	for _, acc := range flat {
		addr, ok := c.Accounts[acc.Path]
		if !ok {
			if acc.IsOptional {
				continue
			}
			return nil, errors.NewProgramError(errors.CONTEXT_INVALID,
				fmt.Sprintf("instruction %q is missing account %q", m.def.Name, acc.Path), nil)
		}
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  addr,
			IsWritable: acc.IsMut,
			IsSigner:   acc.IsSigner,
		})
	}
	metas = append(metas, c.RemainingAccounts...)

	return solana.NewInstruction(m.program.ProgramID, metas, data), nil
}

// Transaction assembles an unsigned transaction containing the method's
// instruction, bracketed by the context's pre and post instructions. The
// recent blockhash is left zeroed; the provider fills it at send time.
func (m *Method) Transaction(c *Context) (*solana.Transaction, error) {
	ix, err := m.Build(c)
	if err != nil {
		return nil, err
	}

	ixs := make([]solana.Instruction, 0, len(c.PreInstructions)+1+len(c.PostInstructions))
	ixs = append(ixs, c.PreInstructions...)
	ixs = append(ixs, ix)
	ixs = append(ixs, c.PostInstructions...)

	tx, err := solana.NewTransaction(
		ixs,
		solana.Hash{},
		solana.TransactionPayer(m.program.Provider.Wallet().PublicKey()),
	)
	if err != nil {
		return nil, errors.NewProgramError(errors.CONTEXT_INVALID, "assemble transaction", err)
	}
	return tx, nil
}

// RPC builds, signs, sends, and confirms the transaction. On-chain failures
// are translated through the program's IDL error table, so a custom program
// error surfaces as *errors.ProgramFailure with the program's own message.
func (m *Method) RPC(ctx context.Context, c *Context) (solana.Signature, error) {
	tx, err := m.Transaction(c)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := m.program.Provider.Send(ctx, tx, c.Signers, c.Options)
	if err != nil {
		return sig, errors.ParseProgramError(err, m.program.idlErrors)
	}
	return sig, nil
}

// SimulateResult is the outcome of a simulated method call.
type SimulateResult struct {
	Logs          []string
	Events        []events.Event
	UnitsConsumed uint64
}

// Simulate runs the transaction through simulateTransaction and decodes any
// events the program emitted during execution.
func (m *Method) Simulate(ctx context.Context, c *Context) (*SimulateResult, error) {
	tx, err := m.Transaction(c)
	if err != nil {
		return nil, err
	}

	res, err := m.program.Provider.Simulate(ctx, tx)
	if err != nil {
		return nil, err
	}

	if res.Err != nil {
		if code, ok := errors.CustomCodeFromTxErr(res.Err); ok {
			return nil, errors.TranslateCode(code, m.program.idlErrors, nil)
		}
		return nil, errors.NewProgramError(errors.SIMULATION_FAILED,
			fmt.Sprintf("simulation failed: %v", res.Err), nil).
			WithContext("logs", res.Logs)
	}

	out := &SimulateResult{Logs: res.Logs}
	if res.UnitsConsumed != nil {
		out.UnitsConsumed = *res.UnitsConsumed
	}
	evts, err := events.ParseLogs(m.program.Coder.Events, m.program.ProgramID, res.Logs)
	if err != nil {
		return nil, err
	}
	out.Events = evts
	return out, nil
}
