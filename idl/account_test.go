package idl

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_IsDeterministic(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")

	a, err := Address(programID)
	require.NoError(t, err)
	b, err := Address(programID)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())

	other, err := Address(solana.SystemProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestDecodeProgramAccount(t *testing.T) {
	authority := solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
	payload := []byte("compressed idl bytes")

	var raw bytes.Buffer
	raw.Write(authority[:])
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	raw.Write(lenBuf[:])
	raw.Write(payload)

	acc, err := DecodeProgramAccount(raw.Bytes())
	require.NoError(t, err)
	assert.Equal(t, authority, acc.Authority)
	assert.Equal(t, payload, acc.Data)
}

func TestDecodeProgramAccount_TruncatedData(t *testing.T) {
	_, err := DecodeProgramAccount([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestInflate(t *testing.T) {
	plain := []byte(`{"version":"0.1.0","name":"counter","instructions":[]}`)

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, err := w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := Inflate(compressed.Bytes())
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestInflate_RejectsGarbage(t *testing.T) {
	_, err := Inflate([]byte("definitely not zlib"))
	require.Error(t, err)
}
