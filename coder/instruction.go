package coder

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
)

// InstructionCoder encodes and decodes instruction data: the 8-byte sighash
// followed by the borsh-serialized arguments in declaration order.
type InstructionCoder struct {
	idl   *idl.Idl
	types *TypesCoder

	// sighash -> instruction, for decoding.
	byDiscriminator map[Discriminator]*idl.Instruction
}

// NewInstructionCoder builds an InstructionCoder for the given IDL.
func NewInstructionCoder(def *idl.Idl, types *TypesCoder) *InstructionCoder {
	byDisc := make(map[Discriminator]*idl.Instruction, len(def.Instructions))
	for i := range def.Instructions {
		ix := &def.Instructions[i]
		byDisc[InstructionDiscriminator(ix.Name)] = ix
	}
	return &InstructionCoder{idl: def, types: types, byDiscriminator: byDisc}
}

// Encode serializes the named instruction with the given arguments, keyed by
// the argument names from the IDL.
func (c *InstructionCoder) Encode(name string, args map[string]any) ([]byte, error) {
	ix, ok := c.idl.InstructionByName(name)
	if !ok {
		return nil, errors.NewProgramError(errors.INSTRUCTION_UNKNOWN,
			fmt.Sprintf("instruction %q is not in the IDL", name), nil)
	}

	buf := new(bytes.Buffer)
	disc := InstructionDiscriminator(name)
	buf.Write(disc[:])

	enc := bin.NewBorshEncoder(buf)
	for _, arg := range ix.Args {
		val, present := args[arg.Name]
		if !present && arg.Type.Option == nil && arg.Type.COption == nil {
			return nil, errors.NewCoderError(errors.ENCODE_FAILED,
				fmt.Sprintf("instruction %q is missing argument %q", name, arg.Name), nil)
		}
		if err := c.types.encode(enc, arg.Type, val); err != nil {
			return nil, fmt.Errorf("instruction %s arg %s: %w", name, arg.Name, err)
		}
	}
	return buf.Bytes(), nil
}

// Decode parses raw instruction data back into the instruction name and its
// arguments. The data must begin with a sighash known to this IDL.
func (c *InstructionCoder) Decode(data []byte) (string, map[string]any, error) {
	if len(data) < DiscriminatorSize {
		return "", nil, errors.NewCoderError(errors.DECODE_FAILED,
			fmt.Sprintf("instruction data too short: %d bytes", len(data)), nil)
	}
	var disc Discriminator
	copy(disc[:], data[:DiscriminatorSize])

	ix, ok := c.byDiscriminator[disc]
	if !ok {
		return "", nil, errors.NewCoderError(errors.DISCRIMINATOR_MISMATCH,
			fmt.Sprintf("no instruction matches discriminator %x", disc[:]), nil)
	}

	dec := bin.NewBorshDecoder(data[DiscriminatorSize:])
	args := make(map[string]any, len(ix.Args))
	for _, arg := range ix.Args {
		val, err := c.types.decode(dec, arg.Type)
		if err != nil {
			return "", nil, fmt.Errorf("instruction %s arg %s: %w", ix.Name, arg.Name, err)
		}
		args[arg.Name] = val
	}
	return ix.Name, args, nil
}
