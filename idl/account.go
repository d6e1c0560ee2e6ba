package idl

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Seed used when deriving the on-chain IDL account with createWithSeed.
const idlSeed = "anchor:idl"

// DiscriminatorSize is the length of the discriminator prefixing every
// Anchor account, including the IDL account itself.
const DiscriminatorSize = 8

// Address derives the deterministic IDL account address for a program:
// the program's empty-seed PDA, extended with the "anchor:idl" seed.
func Address(programID solana.PublicKey) (solana.PublicKey, error) {
	base, _, err := solana.FindProgramAddress([][]byte{}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("idl: derive base address: %w", err)
	}
	addr, err := solana.CreateWithSeed(base, idlSeed, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("idl: create with seed: %w", err)
	}
	return addr, nil
}

// ProgramAccount is the decoded layout of the on-chain IDL account, minus
// its 8-byte discriminator: the upgrade authority followed by the
// zlib-compressed IDL JSON.
type ProgramAccount struct {
	Authority solana.PublicKey
	Data      []byte
}

// DecodeProgramAccount parses the IDL account body. The caller must have
// already stripped the 8-byte account discriminator.
func DecodeProgramAccount(data []byte) (*ProgramAccount, error) {
	dec := bin.NewBorshDecoder(data)

	authority, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, fmt.Errorf("idl: read authority: %w", err)
	}

	dataLen, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("idl: read data length: %w", err)
	}
	body, err := dec.ReadNBytes(int(dataLen))
	if err != nil {
		return nil, fmt.Errorf("idl: read data: %w", err)
	}

	out := &ProgramAccount{Data: body}
	copy(out.Authority[:], authority)
	return out, nil
}

// Inflate decompresses the zlib-compressed IDL JSON stored in the on-chain
// IDL account.
func Inflate(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("idl: open zlib stream: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("idl: inflate: %w", err)
	}
	return out, nil
}
