package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idlErrors = map[int]string{
	6000: "amount must be positive",
	6001: "unauthorized",
}

func TestParseProgramError_HexCode(t *testing.T) {
	rpcErr := fmt.Errorf("Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1770")

	err := ParseProgramError(rpcErr, idlErrors)
	var failure *ProgramFailure
	require.True(t, stderrors.As(err, &failure))
	assert.Equal(t, 6000, failure.Code)
	assert.Equal(t, "amount must be positive", failure.Msg)
	assert.Equal(t, rpcErr, stderrors.Unwrap(failure))
}

func TestParseProgramError_DecimalCode(t *testing.T) {
	err := ParseProgramError(fmt.Errorf("custom program error: 6001"), idlErrors)
	var failure *ProgramFailure
	require.True(t, stderrors.As(err, &failure))
	assert.Equal(t, 6001, failure.Code)
	assert.Equal(t, "unauthorized", failure.Msg)
}

func TestParseProgramError_FrameworkCodeFallsBackToLangTable(t *testing.T) {
	// 0x7d1 = 2001: a constraint error owned by the framework, not the IDL.
	err := ParseProgramError(fmt.Errorf("custom program error: 0x7d1"), idlErrors)
	var failure *ProgramFailure
	require.True(t, stderrors.As(err, &failure))
	assert.Equal(t, 2001, failure.Code)

	langMsg, ok := LangErrorMessage(2001)
	require.True(t, ok)
	assert.Equal(t, langMsg, failure.Msg)
}

func TestParseProgramError_UnknownCode(t *testing.T) {
	err := ParseProgramError(fmt.Errorf("custom program error: 0xffff"), idlErrors)
	var failure *ProgramFailure
	require.True(t, stderrors.As(err, &failure))
	assert.Equal(t, "unknown custom program error", failure.Msg)
}

func TestParseProgramError_RetranslatesProgramFailure(t *testing.T) {
	// A provider-layer failure carries the code but not the IDL table; the
	// program layer re-translates so the IDL message wins.
	lower := TranslateCode(6000, nil, nil)
	assert.Equal(t, "unknown custom program error", lower.Msg)

	err := ParseProgramError(lower, idlErrors)
	var failure *ProgramFailure
	require.True(t, stderrors.As(err, &failure))
	assert.Equal(t, 6000, failure.Code)
	assert.Equal(t, "amount must be positive", failure.Msg)
}

func TestParseProgramError_PassesThroughOtherErrors(t *testing.T) {
	transport := fmt.Errorf("dial tcp: connection refused")
	assert.Equal(t, transport, ParseProgramError(transport, idlErrors))
	assert.NoError(t, ParseProgramError(nil, idlErrors))
}

func TestTranslateCode_IDLTableWins(t *testing.T) {
	failure := TranslateCode(6000, idlErrors, nil)
	assert.Equal(t, "amount must be positive", failure.Msg)
	assert.Equal(t, "custom program error (6000): amount must be positive", failure.Error())
}

func TestCustomCodeFromTxErr(t *testing.T) {
	tests := []struct {
		name  string
		txErr any
		code  int
		ok    bool
	}{
		{
			"float64 code from JSON",
			map[string]any{"InstructionError": []any{float64(0), map[string]any{"Custom": float64(6000)}}},
			6000, true,
		},
		{
			"int code",
			map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 7}}},
			7, true,
		},
		{
			"non-custom instruction error",
			map[string]any{"InstructionError": []any{float64(0), "InvalidArgument"}},
			0, false,
		},
		{
			"not an instruction error",
			map[string]any{"InsufficientFundsForFee": true},
			0, false,
		},
		{"not a map", "AccountInUse", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CustomCodeFromTxErr(tt.txErr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestLangErrorMessage_Ranges(t *testing.T) {
	for _, code := range []int{100, 1000, 2000, 3000} {
		_, ok := LangErrorMessage(code)
		assert.True(t, ok, "expected a framework message for code %d", code)
	}
	_, ok := LangErrorMessage(59)
	assert.False(t, ok)
}
