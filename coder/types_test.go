package coder

import (
	"math/big"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/anchorgo/sdk-go/idl"
)

func typesCoder(t *testing.T) *TypesCoder {
	t.Helper()
	return NewTypesCoder(fixture(t))
}

func TestTypesCoder_PrimitiveEncodings(t *testing.T) {
	tc := typesCoder(t)

	tests := []struct {
		name string
		ty   idl.Type
		val  any
		want []byte
	}{
		{"bool true", idl.Type{Simple: idl.TypeBool}, true, []byte{1}},
		{"u8", idl.Type{Simple: idl.TypeU8}, uint8(0xff), []byte{0xff}},
		{"i8 negative", idl.Type{Simple: idl.TypeI8}, int8(-1), []byte{0xff}},
		{"u16 le", idl.Type{Simple: idl.TypeU16}, uint16(0x0201), []byte{1, 2}},
		{"u64 le", idl.Type{Simple: idl.TypeU64}, uint64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"string length prefixed", idl.Type{Simple: idl.TypeString}, "abc", []byte{3, 0, 0, 0, 'a', 'b', 'c'}},
		{"bytes length prefixed", idl.Type{Simple: idl.TypeBytes}, []byte{9, 8}, []byte{2, 0, 0, 0, 9, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tc.Encode(tt.ty, tt.val)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTypesCoder_PrimitiveRoundTrip(t *testing.T) {
	tc := typesCoder(t)
	pk := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	tests := []struct {
		ty  idl.Type
		val any
	}{
		{idl.Type{Simple: idl.TypeBool}, false},
		{idl.Type{Simple: idl.TypeI16}, int16(-2)},
		{idl.Type{Simple: idl.TypeU32}, uint32(1 << 30)},
		{idl.Type{Simple: idl.TypeI64}, int64(-5_000_000_000)},
		{idl.Type{Simple: idl.TypeF64}, 2.5},
		{idl.Type{Simple: idl.TypeU128}, bin.Uint128{Lo: 7, Hi: 1}},
		{idl.Type{Simple: idl.TypeString}, "hello"},
		{idl.Type{Simple: idl.TypePublicKey}, pk},
	}
	for _, tt := range tests {
		data, err := tc.Encode(tt.ty, tt.val)
		require.NoError(t, err)
		got, err := tc.Decode(tt.ty, data)
		require.NoError(t, err)
		require.Equal(t, tt.val, got, "type %s", tt.ty.String())
	}
}

func TestTypesCoder_Uint128FromBigInt(t *testing.T) {
	tc := typesCoder(t)

	v := new(big.Int).Lsh(big.NewInt(1), 64) // 2^64
	data, err := tc.Encode(idl.Type{Simple: idl.TypeU128}, v)
	require.NoError(t, err)

	got, err := tc.Decode(idl.Type{Simple: idl.TypeU128}, data)
	require.NoError(t, err)
	require.Equal(t, bin.Uint128{Lo: 0, Hi: 1}, got)
}

func TestTypesCoder_Option(t *testing.T) {
	tc := typesCoder(t)
	u8 := idl.Type{Simple: idl.TypeU8}
	opt := idl.Type{Option: &u8}

	absent, err := tc.Encode(opt, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, absent)

	present, err := tc.Encode(opt, uint8(5))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 5}, present)

	got, err := tc.Decode(opt, absent)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = tc.Decode(opt, present)
	require.NoError(t, err)
	require.Equal(t, uint8(5), got)
}

func TestTypesCoder_COptionUsesFourByteFlag(t *testing.T) {
	tc := typesCoder(t)
	u64 := idl.Type{Simple: idl.TypeU64}
	copt := idl.Type{COption: &u64}

	absent, err := tc.Encode(copt, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, absent)

	present, err := tc.Encode(copt, uint64(1))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}, present)
}

func TestTypesCoder_VecAndArray(t *testing.T) {
	tc := typesCoder(t)
	u16 := idl.Type{Simple: idl.TypeU16}

	vec := idl.Type{Vec: &u16}
	data, err := tc.Encode(vec, []any{uint16(1), uint16(2)})
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 0, 0, 1, 0, 2, 0}, data)

	got, err := tc.Decode(vec, data)
	require.NoError(t, err)
	require.Equal(t, []any{uint16(1), uint16(2)}, got)

	arr := idl.Type{Array: &idl.ArrayType{Elem: u16, Len: 2}}
	data, err = tc.Encode(arr, []any{uint16(3), uint16(4)})
	require.NoError(t, err)
	// No length prefix for fixed-size arrays.
	require.Equal(t, []byte{3, 0, 4, 0}, data)

	_, err = tc.Encode(arr, []any{uint16(3)})
	require.Error(t, err)
}

func TestTypesCoder_UnitEnum(t *testing.T) {
	tc := typesCoder(t)
	side := idl.Type{Defined: "Side"}

	// Bare string and single-key map are both accepted on encode.
	data, err := tc.Encode(side, "Sell")
	require.NoError(t, err)
	require.Equal(t, []byte{1}, data)

	data, err = tc.Encode(side, map[string]any{"Buy": nil})
	require.NoError(t, err)
	require.Equal(t, []byte{0}, data)

	got, err := tc.Decode(side, []byte{1})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Sell": nil}, got)
}

func TestTypesCoder_EnumPayloads(t *testing.T) {
	tc := typesCoder(t)
	kind := idl.Type{Defined: "OrderKind"}

	named, err := tc.Encode(kind, map[string]any{"Limit": map[string]any{"price": uint64(42)}})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 42, 0, 0, 0, 0, 0, 0, 0}, named)

	tuple, err := tc.Encode(kind, map[string]any{"Pair": []any{uint8(7), uint16(0x012c)}})
	require.NoError(t, err)
	require.Equal(t, []byte{2, 7, 0x2c, 1}, tuple)

	got, err := tc.Decode(kind, tuple)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Pair": []any{uint8(7), uint16(0x012c)}}, got)
}

func TestTypesCoder_EnumRejectsBadShapes(t *testing.T) {
	tc := typesCoder(t)
	kind := idl.Type{Defined: "OrderKind"}

	_, err := tc.Encode(kind, map[string]any{"Limit": nil, "Market": nil})
	require.Error(t, err)

	_, err = tc.Encode(kind, "NoSuchVariant")
	require.Error(t, err)

	// Variant index out of range on decode.
	_, err = tc.Decode(kind, []byte{9})
	require.Error(t, err)
}

func TestTypesCoder_StructRoundTrip(t *testing.T) {
	tc := typesCoder(t)
	pos := idl.Type{Defined: "Position"}

	val := map[string]any{
		"size": int64(-10),
		"side": "Buy",
		"bump": uint8(254),
	}
	data, err := tc.Encode(pos, val)
	require.NoError(t, err)

	got, err := tc.Decode(pos, data)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"size": int64(-10),
		"side": map[string]any{"Buy": nil},
		"bump": uint8(254),
	}, got)
}

func TestTypesCoder_JSONNumbersCoerce(t *testing.T) {
	// Values deserialized from JSON arrive as float64; integer fields
	// accept them.
	tc := typesCoder(t)

	data, err := tc.Encode(idl.Type{Simple: idl.TypeU64}, float64(12))
	require.NoError(t, err)
	require.Equal(t, []byte{12, 0, 0, 0, 0, 0, 0, 0}, data)
}

func TestTypesCoder_RejectsLossyCoercions(t *testing.T) {
	tc := typesCoder(t)

	tests := []struct {
		name string
		ty   idl.Type
		val  any
	}{
		{"negative int for u64", idl.Type{Simple: idl.TypeU64}, -1},
		{"negative float for u8", idl.Type{Simple: idl.TypeU8}, float64(-3)},
		{"non-integral float for u64", idl.Type{Simple: idl.TypeU64}, 1.9},
		{"non-integral float for i32", idl.Type{Simple: idl.TypeI32}, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tc.Encode(tt.ty, tt.val)
			require.Error(t, err)
		})
	}
}
