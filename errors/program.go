package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProgramFailure is an on-chain failure reported by the RPC node, translated
// back into the program's own error table (or Anchor's framework table when
// the code falls in a reserved range).
type ProgramFailure struct {
	// Code is the custom program error code.
	Code int

	// Msg is the resolved message: the IDL error message if the program
	// defines one, the Anchor framework message for reserved codes, or a
	// generic fallback.
	Msg string

	// Logs holds the program log lines attached to the failure, when the
	// RPC response included them.
	Logs []string

	cause error
}

// Error formats the failure like the Anchor TypeScript client does.
func (e *ProgramFailure) Error() string {
	return fmt.Sprintf("custom program error (%d): %s", e.Code, e.Msg)
}

// Unwrap returns the raw RPC error.
func (e *ProgramFailure) Unwrap() error { return e.cause }

// Runtime error messages match "custom program error: 0x1770" (hex, emitted
// by the BPF loader) or "custom program error: 6000" (decimal).
var customErrRe = regexp.MustCompile(`custom program error: (0x[0-9a-fA-F]+|\d+)`)

// ParseProgramError inspects an error returned by the RPC layer. If it
// carries a custom program error code, the code is translated through
// idlErrors first and Anchor's framework table second, and a
// *ProgramFailure is returned. Otherwise the original error is returned
// unchanged so transport failures keep their identity.
//
// A *ProgramFailure produced below the program layer (the provider sees
// the code but not the IDL table) is re-translated here so the program's
// own message wins over the generic fallback.
func ParseProgramError(err error, idlErrors map[int]string) error {
	if err == nil {
		return nil
	}

	var pf *ProgramFailure
	if stderrors.As(err, &pf) {
		out := TranslateCode(pf.Code, idlErrors, pf.cause)
		out.Logs = pf.Logs
		return out
	}

	code, ok := extractCustomCode(err.Error())
	if !ok {
		return err
	}
	return TranslateCode(code, idlErrors, err)
}

// TranslateCode resolves a custom program error code against the program's
// IDL error table and Anchor's reserved table.
func TranslateCode(code int, idlErrors map[int]string, cause error) *ProgramFailure {
	msg, ok := idlErrors[code]
	if !ok {
		msg, ok = LangErrorMessage(code)
	}
	if !ok {
		msg = "unknown custom program error"
	}
	return &ProgramFailure{Code: code, Msg: msg, cause: cause}
}

// CustomCodeFromTxErr extracts the custom error code from a structured
// transaction error as returned by simulateTransaction or
// getSignatureStatuses, e.g. {"InstructionError":[0,{"Custom":6000}]}.
func CustomCodeFromTxErr(txErr any) (int, bool) {
	m, ok := txErr.(map[string]any)
	if !ok {
		return 0, false
	}
	ie, ok := m["InstructionError"]
	if !ok {
		return 0, false
	}
	parts, ok := ie.([]any)
	if !ok || len(parts) != 2 {
		return 0, false
	}
	detail, ok := parts[1].(map[string]any)
	if !ok {
		return 0, false
	}
	custom, ok := detail["Custom"]
	if !ok {
		return 0, false
	}
	switch v := custom.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case uint64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func extractCustomCode(s string) (int, bool) {
	m := customErrRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		v, err := strconv.ParseInt(raw[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return int(v), true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
