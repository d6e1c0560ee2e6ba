package coder

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
)

// TypesCoder serializes and deserializes values of IDL-described types.
//
// Decoded values use a fixed Go representation per IDL type:
//
//	bool        bool
//	u8/i8       uint8 / int8
//	u16..u64    uint16 / uint32 / uint64 (signed likewise)
//	u128/i128   bin.Uint128 / bin.Int128
//	f32/f64     float32 / float64
//	bytes       []byte
//	string      string
//	publicKey   solana.PublicKey
//	vec<T>      []any
//	option<T>   nil or the inner value
//	[T; N]      []any of length N
//	struct      map[string]any keyed by field name
//	enum        map[string]any with a single key: the variant name; the
//	            value is nil (unit), map[string]any (named fields), or
//	            []any (tuple fields)
//
// Encoding accepts the same shapes, with integer widths coerced from any Go
// integer type (and float64, for values that passed through encoding/json).
type TypesCoder struct {
	idl *idl.Idl
}

// NewTypesCoder creates a TypesCoder bound to an IDL, which it uses to
// resolve {"defined": name} references.
func NewTypesCoder(def *idl.Idl) *TypesCoder {
	return &TypesCoder{idl: def}
}

// Encode borsh-serializes a value of the given IDL type.
func (c *TypesCoder) Encode(ty idl.Type, val any) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := c.encode(enc, ty, val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode borsh-deserializes a value of the given IDL type.
func (c *TypesCoder) Decode(ty idl.Type, data []byte) (any, error) {
	dec := bin.NewBorshDecoder(data)
	return c.decode(dec, ty)
}

// DecodeDefined deserializes a value of a named user-defined type.
func (c *TypesCoder) DecodeDefined(name string, data []byte) (any, error) {
	return c.Decode(idl.Type{Defined: name}, data)
}

func (c *TypesCoder) encode(enc *bin.Encoder, ty idl.Type, val any) error {
	switch {
	case ty.Simple != "":
		return c.encodePrimitive(enc, ty.Simple, val)

	case ty.Vec != nil:
		items, err := asSlice(val)
		if err != nil {
			return errors.NewCoderError(errors.ENCODE_FAILED, fmt.Sprintf("vec value: %v", err), nil)
		}
		if err := enc.WriteUint32(uint32(len(items)), bin.LE); err != nil {
			return err
		}
		for _, item := range items {
			if err := c.encode(enc, *ty.Vec, item); err != nil {
				return err
			}
		}
		return nil

	case ty.Option != nil:
		if val == nil {
			return enc.WriteByte(0)
		}
		if err := enc.WriteByte(1); err != nil {
			return err
		}
		return c.encode(enc, *ty.Option, val)

	case ty.COption != nil:
		if val == nil {
			return enc.WriteUint32(0, bin.LE)
		}
		if err := enc.WriteUint32(1, bin.LE); err != nil {
			return err
		}
		return c.encode(enc, *ty.COption, val)

	case ty.Array != nil:
		items, err := asSlice(val)
		if err != nil {
			return errors.NewCoderError(errors.ENCODE_FAILED, fmt.Sprintf("array value: %v", err), nil)
		}
		if len(items) != ty.Array.Len {
			return errors.NewCoderError(errors.ENCODE_FAILED,
				fmt.Sprintf("array %s expects %d elements, got %d", ty.String(), ty.Array.Len, len(items)), nil)
		}
		for _, item := range items {
			if err := c.encode(enc, ty.Array.Elem, item); err != nil {
				return err
			}
		}
		return nil

	case ty.Defined != "":
		def, ok := c.idl.TypeByName(ty.Defined)
		if !ok {
			return errors.NewCoderError(errors.IDL_INVALID,
				fmt.Sprintf("type %q is not defined in the IDL", ty.Defined), nil)
		}
		return c.encodeDefined(enc, def, val)
	}
	return errors.NewCoderError(errors.TYPE_UNSUPPORTED, "empty IDL type", nil)
}

func (c *TypesCoder) encodeDefined(enc *bin.Encoder, def *idl.TypeDef, val any) error {
	switch def.Type.Kind {
	case idl.KindStruct:
		fields, ok := val.(map[string]any)
		if !ok {
			return errors.NewCoderError(errors.ENCODE_FAILED,
				fmt.Sprintf("struct %s expects map[string]any, got %T", def.Name, val), nil)
		}
		for _, f := range def.Type.Fields {
			fv, present := fields[f.Name]
			if !present && f.Type.Option == nil && f.Type.COption == nil {
				return errors.NewCoderError(errors.ENCODE_FAILED,
					fmt.Sprintf("struct %s is missing field %q", def.Name, f.Name), nil)
			}
			if err := c.encode(enc, f.Type, fv); err != nil {
				return fmt.Errorf("field %s.%s: %w", def.Name, f.Name, err)
			}
		}
		return nil

	case idl.KindEnum:
		name, payload, err := enumValue(val)
		if err != nil {
			return errors.NewCoderError(errors.ENCODE_FAILED,
				fmt.Sprintf("enum %s: %v", def.Name, err), nil)
		}
		for i, variant := range def.Type.Variants {
			if variant.Name != name {
				continue
			}
			if err := enc.WriteByte(byte(i)); err != nil {
				return err
			}
			return c.encodeVariantPayload(enc, def.Name, variant, payload)
		}
		return errors.NewCoderError(errors.ENCODE_FAILED,
			fmt.Sprintf("enum %s has no variant %q", def.Name, name), nil)
	}
	return errors.NewCoderError(errors.TYPE_UNSUPPORTED,
		fmt.Sprintf("type kind %q", def.Type.Kind), nil)
}

func (c *TypesCoder) encodeVariantPayload(enc *bin.Encoder, enumName string, variant idl.EnumVariant, payload any) error {
	if variant.Fields == nil {
		return nil
	}
	if variant.Fields.Named != nil {
		fields, ok := payload.(map[string]any)
		if !ok {
			return errors.NewCoderError(errors.ENCODE_FAILED,
				fmt.Sprintf("enum %s::%s expects named fields map, got %T", enumName, variant.Name, payload), nil)
		}
		for _, f := range variant.Fields.Named {
			if err := c.encode(enc, f.Type, fields[f.Name]); err != nil {
				return fmt.Errorf("variant %s::%s field %s: %w", enumName, variant.Name, f.Name, err)
			}
		}
		return nil
	}
	items, err := asSlice(payload)
	if err != nil {
		return errors.NewCoderError(errors.ENCODE_FAILED,
			fmt.Sprintf("enum %s::%s expects tuple slice: %v", enumName, variant.Name, err), nil)
	}
	if len(items) != len(variant.Fields.Tuple) {
		return errors.NewCoderError(errors.ENCODE_FAILED,
			fmt.Sprintf("enum %s::%s expects %d tuple elements, got %d",
				enumName, variant.Name, len(variant.Fields.Tuple), len(items)), nil)
	}
	for i, elemTy := range variant.Fields.Tuple {
		if err := c.encode(enc, elemTy, items[i]); err != nil {
			return fmt.Errorf("variant %s::%s[%d]: %w", enumName, variant.Name, i, err)
		}
	}
	return nil
}

func (c *TypesCoder) encodePrimitive(enc *bin.Encoder, name string, val any) error {
	switch name {
	case idl.TypeBool:
		b, ok := val.(bool)
		if !ok {
			return coercionErr(name, val)
		}
		return enc.WriteBool(b)
	case idl.TypeU8:
		v, err := asUint64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteByte(byte(v))
	case idl.TypeI8:
		v, err := asInt64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteByte(byte(int8(v)))
	case idl.TypeU16:
		v, err := asUint64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteUint16(uint16(v), bin.LE)
	case idl.TypeI16:
		v, err := asInt64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteInt16(int16(v), bin.LE)
	case idl.TypeU32:
		v, err := asUint64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteUint32(uint32(v), bin.LE)
	case idl.TypeI32:
		v, err := asInt64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteInt32(int32(v), bin.LE)
	case idl.TypeU64:
		v, err := asUint64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteUint64(v, bin.LE)
	case idl.TypeI64:
		v, err := asInt64(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteInt64(v, bin.LE)
	case idl.TypeU128:
		v, err := asUint128(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteUint128(v, bin.LE)
	case idl.TypeI128:
		v, err := asInt128(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteInt128(v, bin.LE)
	case idl.TypeF32:
		switch f := val.(type) {
		case float32:
			return enc.WriteFloat32(f, bin.LE)
		case float64:
			return enc.WriteFloat32(float32(f), bin.LE)
		}
		return coercionErr(name, val)
	case idl.TypeF64:
		f, ok := val.(float64)
		if !ok {
			return coercionErr(name, val)
		}
		return enc.WriteFloat64(f, bin.LE)
	case idl.TypeBytes:
		b, ok := val.([]byte)
		if !ok {
			return coercionErr(name, val)
		}
		return enc.WriteBytes(b, true)
	case idl.TypeString:
		s, ok := val.(string)
		if !ok {
			return coercionErr(name, val)
		}
		return enc.WriteRustString(s)
	case idl.TypePublicKey:
		pk, err := asPublicKey(val)
		if err != nil {
			return coercionErr(name, val)
		}
		return enc.WriteBytes(pk[:], false)
	}
	return errors.NewCoderError(errors.TYPE_UNSUPPORTED, fmt.Sprintf("primitive %q", name), nil)
}

func (c *TypesCoder) decode(dec *bin.Decoder, ty idl.Type) (any, error) {
	switch {
	case ty.Simple != "":
		return c.decodePrimitive(dec, ty.Simple)

	case ty.Vec != nil:
		n, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, n)
		for i := uint32(0); i < n; i++ {
			item, err := c.decode(dec, *ty.Vec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil

	case ty.Option != nil:
		flag, err := dec.ReadByte()
		if err != nil {
			return nil, err
		}
		if flag == 0 {
			return nil, nil
		}
		return c.decode(dec, *ty.Option)

	case ty.COption != nil:
		flag, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, err
		}
		if flag == 0 {
			return nil, nil
		}
		return c.decode(dec, *ty.COption)

	case ty.Array != nil:
		items := make([]any, 0, ty.Array.Len)
		for i := 0; i < ty.Array.Len; i++ {
			item, err := c.decode(dec, ty.Array.Elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil

	case ty.Defined != "":
		def, ok := c.idl.TypeByName(ty.Defined)
		if !ok {
			return nil, errors.NewCoderError(errors.IDL_INVALID,
				fmt.Sprintf("type %q is not defined in the IDL", ty.Defined), nil)
		}
		return c.decodeDefined(dec, def)
	}
	return nil, errors.NewCoderError(errors.TYPE_UNSUPPORTED, "empty IDL type", nil)
}

func (c *TypesCoder) decodeDefined(dec *bin.Decoder, def *idl.TypeDef) (any, error) {
	switch def.Type.Kind {
	case idl.KindStruct:
		out := make(map[string]any, len(def.Type.Fields))
		for _, f := range def.Type.Fields {
			fv, err := c.decode(dec, f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", def.Name, f.Name, err)
			}
			out[f.Name] = fv
		}
		return out, nil

	case idl.KindEnum:
		idx, err := dec.ReadByte()
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(def.Type.Variants) {
			return nil, errors.NewCoderError(errors.DECODE_FAILED,
				fmt.Sprintf("enum %s variant index %d out of range", def.Name, idx), nil)
		}
		variant := def.Type.Variants[idx]
		payload, err := c.decodeVariantPayload(dec, variant)
		if err != nil {
			return nil, fmt.Errorf("variant %s::%s: %w", def.Name, variant.Name, err)
		}
		return map[string]any{variant.Name: payload}, nil
	}
	return nil, errors.NewCoderError(errors.TYPE_UNSUPPORTED,
		fmt.Sprintf("type kind %q", def.Type.Kind), nil)
}

func (c *TypesCoder) decodeVariantPayload(dec *bin.Decoder, variant idl.EnumVariant) (any, error) {
	if variant.Fields == nil {
		return nil, nil
	}
	if variant.Fields.Named != nil {
		out := make(map[string]any, len(variant.Fields.Named))
		for _, f := range variant.Fields.Named {
			fv, err := c.decode(dec, f.Type)
			if err != nil {
				return nil, err
			}
			out[f.Name] = fv
		}
		return out, nil
	}
	out := make([]any, 0, len(variant.Fields.Tuple))
	for _, elemTy := range variant.Fields.Tuple {
		fv, err := c.decode(dec, elemTy)
		if err != nil {
			return nil, err
		}
		out = append(out, fv)
	}
	return out, nil
}

func (c *TypesCoder) decodePrimitive(dec *bin.Decoder, name string) (any, error) {
	switch name {
	case idl.TypeBool:
		return dec.ReadBool()
	case idl.TypeU8:
		b, err := dec.ReadByte()
		return uint8(b), err
	case idl.TypeI8:
		b, err := dec.ReadByte()
		return int8(b), err
	case idl.TypeU16:
		return dec.ReadUint16(bin.LE)
	case idl.TypeI16:
		return dec.ReadInt16(bin.LE)
	case idl.TypeU32:
		return dec.ReadUint32(bin.LE)
	case idl.TypeI32:
		return dec.ReadInt32(bin.LE)
	case idl.TypeU64:
		return dec.ReadUint64(bin.LE)
	case idl.TypeI64:
		return dec.ReadInt64(bin.LE)
	case idl.TypeU128:
		return dec.ReadUint128(bin.LE)
	case idl.TypeI128:
		return dec.ReadInt128(bin.LE)
	case idl.TypeF32:
		return dec.ReadFloat32(bin.LE)
	case idl.TypeF64:
		return dec.ReadFloat64(bin.LE)
	case idl.TypeBytes:
		n, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, err
		}
		return dec.ReadNBytes(int(n))
	case idl.TypeString:
		return dec.ReadRustString()
	case idl.TypePublicKey:
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, err
		}
		return solana.PublicKeyFromBytes(raw), nil
	}
	return nil, errors.NewCoderError(errors.TYPE_UNSUPPORTED, fmt.Sprintf("primitive %q", name), nil)
}

// enumValue normalizes the accepted enum encodings: a bare string for unit
// variants, or a single-key map {variant: payload}.
func enumValue(val any) (name string, payload any, err error) {
	switch v := val.(type) {
	case string:
		return v, nil, nil
	case map[string]any:
		if len(v) != 1 {
			return "", nil, fmt.Errorf("expected a single-key variant map, got %d keys", len(v))
		}
		for k, p := range v {
			return k, p, nil
		}
	}
	return "", nil, fmt.Errorf("expected string or map[string]any, got %T", val)
}

func coercionErr(ty string, val any) error {
	return errors.NewCoderError(errors.ENCODE_FAILED,
		fmt.Sprintf("cannot encode %T as %s", val, ty), nil)
}

func asSlice(val any) ([]any, error) {
	switch v := val.(type) {
	case []any:
		return v, nil
	case []byte:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = b
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("expected []any, got %T", val)
}

func asUint64(val any) (uint64, error) {
	switch v := val.(type) {
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	case int8:
		return nonNegative(int64(v))
	case int16:
		return nonNegative(int64(v))
	case int32:
		return nonNegative(int64(v))
	case int64:
		return nonNegative(v)
	case int:
		return nonNegative(int64(v))
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		if v < 0 {
			return 0, fmt.Errorf("negative value %v for an unsigned type", v)
		}
		return uint64(v), nil
	}
	return 0, fmt.Errorf("not an integer: %T", val)
}

func nonNegative(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative value %d for an unsigned type", v)
	}
	return uint64(v), nil
}

func asInt64(val any) (int64, error) {
	switch v := val.(type) {
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows a signed type", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("not an integer: %T", val)
}

func asUint128(val any) (bin.Uint128, error) {
	switch v := val.(type) {
	case bin.Uint128:
		return v, nil
	case *big.Int:
		var out bin.Uint128
		out.Lo = v.Uint64()
		out.Hi = new(big.Int).Rsh(v, 64).Uint64()
		return out, nil
	default:
		u, err := asUint64(val)
		if err != nil {
			return bin.Uint128{}, err
		}
		return bin.Uint128{Lo: u}, nil
	}
}

func asInt128(val any) (bin.Int128, error) {
	switch v := val.(type) {
	case bin.Int128:
		return v, nil
	case *big.Int:
		var out bin.Int128
		abs := new(big.Int).Abs(v)
		out.Lo = abs.Uint64()
		out.Hi = new(big.Int).Rsh(abs, 64).Uint64()
		if v.Sign() < 0 {
			// two's complement negate
			out.Lo = ^out.Lo + 1
			out.Hi = ^out.Hi
			if out.Lo == 0 {
				out.Hi++
			}
		}
		return out, nil
	default:
		i, err := asInt64(val)
		if err != nil {
			return bin.Int128{}, err
		}
		var out bin.Int128
		out.Lo = uint64(i)
		if i < 0 {
			out.Hi = ^uint64(0)
		}
		return out, nil
	}
}

func asPublicKey(val any) (solana.PublicKey, error) {
	switch v := val.(type) {
	case solana.PublicKey:
		return v, nil
	case string:
		return solana.PublicKeyFromBase58(v)
	case []byte:
		if len(v) != 32 {
			return solana.PublicKey{}, fmt.Errorf("public key must be 32 bytes, got %d", len(v))
		}
		return solana.PublicKeyFromBytes(v), nil
	}
	return solana.PublicKey{}, fmt.Errorf("not a public key: %T", val)
}
