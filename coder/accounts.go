package coder

import (
	"bytes"
	"fmt"

	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
)

// AccountsCoder encodes and decodes program account data: the 8-byte account
// discriminator followed by the borsh-serialized account layout.
type AccountsCoder struct {
	idl   *idl.Idl
	types *TypesCoder

	byDiscriminator map[Discriminator]*idl.TypeDef
}

// NewAccountsCoder builds an AccountsCoder for the given IDL.
func NewAccountsCoder(def *idl.Idl, types *TypesCoder) *AccountsCoder {
	byDisc := make(map[Discriminator]*idl.TypeDef, len(def.Accounts))
	for i := range def.Accounts {
		acc := &def.Accounts[i]
		byDisc[AccountDiscriminator(acc.Name)] = acc
	}
	return &AccountsCoder{idl: def, types: types, byDiscriminator: byDisc}
}

// Encode serializes an account value of the named layout, prefixed with its
// discriminator.
func (c *AccountsCoder) Encode(name string, val map[string]any) ([]byte, error) {
	def, ok := c.idl.TypeByName(name)
	if !ok || def.Type.Kind != idl.KindStruct {
		return nil, errors.NewCoderError(errors.IDL_INVALID,
			fmt.Sprintf("account layout %q is not defined in the IDL", name), nil)
	}

	body, err := c.types.Encode(idl.Type{Defined: name}, val)
	if err != nil {
		return nil, err
	}

	disc := AccountDiscriminator(name)
	out := make([]byte, 0, DiscriminatorSize+len(body))
	out = append(out, disc[:]...)
	return append(out, body...), nil
}

// Decode verifies the discriminator of the named layout and deserializes the
// account body.
func (c *AccountsCoder) Decode(name string, data []byte) (map[string]any, error) {
	disc := AccountDiscriminator(name)
	if len(data) < DiscriminatorSize || !bytes.Equal(data[:DiscriminatorSize], disc[:]) {
		return nil, errors.NewCoderError(errors.DISCRIMINATOR_MISMATCH,
			fmt.Sprintf("account data does not match layout %q", name), nil)
	}
	val, err := c.types.DecodeDefined(name, data[DiscriminatorSize:])
	if err != nil {
		return nil, err
	}
	fields, ok := val.(map[string]any)
	if !ok {
		return nil, errors.NewCoderError(errors.DECODE_FAILED,
			fmt.Sprintf("account layout %q is not a struct", name), nil)
	}
	return fields, nil
}

// DecodeAny identifies the account layout from the data's discriminator and
// deserializes it, returning the layout name alongside the fields.
func (c *AccountsCoder) DecodeAny(data []byte) (string, map[string]any, error) {
	if len(data) < DiscriminatorSize {
		return "", nil, errors.NewCoderError(errors.DECODE_FAILED,
			fmt.Sprintf("account data too short: %d bytes", len(data)), nil)
	}
	var disc Discriminator
	copy(disc[:], data[:DiscriminatorSize])
	def, ok := c.byDiscriminator[disc]
	if !ok {
		return "", nil, errors.NewCoderError(errors.DISCRIMINATOR_MISMATCH,
			fmt.Sprintf("no account layout matches discriminator %x", disc[:]), nil)
	}
	fields, err := c.Decode(def.Name, data)
	return def.Name, fields, err
}
