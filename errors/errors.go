// Package errors defines the error taxonomy for the anchorgo SDK.
//
// All SDK errors are represented as AnchorError, which provides:
//   - Code: Machine-readable error identifier
//   - Message: Human-readable error description
//   - Layer: Which component layer produced the error (coder, program, provider, events)
//   - Cause: Underlying error, if any
//   - Context: Additional error details (account address, instruction name, etc.)
//
// Use the provided constructor functions (NewCoderError, NewProgramError,
// etc.) to create properly typed errors with automatic layer assignment.
// On-chain failures reported by the RPC node are translated separately; see
// ParseProgramError.
package errors

import "fmt"

// Code is a machine-readable error identifier.
type Code string

// Error codes - Coder Layer
const (
	IDL_INVALID            Code = "IDL_INVALID"
	TYPE_UNSUPPORTED       Code = "TYPE_UNSUPPORTED"
	ENCODE_FAILED          Code = "ENCODE_FAILED"
	DECODE_FAILED          Code = "DECODE_FAILED"
	DISCRIMINATOR_MISMATCH Code = "DISCRIMINATOR_MISMATCH"
)

// Error codes - Program Layer
const (
	IDL_NOT_FOUND        Code = "IDL_NOT_FOUND"
	ACCOUNT_NOT_FOUND    Code = "ACCOUNT_NOT_FOUND"
	INSTRUCTION_UNKNOWN  Code = "INSTRUCTION_UNKNOWN"
	CONTEXT_INVALID      Code = "CONTEXT_INVALID"
	PROGRAM_ERROR        Code = "PROGRAM_ERROR"
	SIMULATION_FAILED    Code = "SIMULATION_FAILED"
	ACCOUNT_SIZE_UNKNOWN Code = "ACCOUNT_SIZE_UNKNOWN"
	STORE_ERROR          Code = "STORE_ERROR"
)

// Error codes - Provider Layer
const (
	RPC_ERROR           Code = "RPC_ERROR"
	SIGNER_ERROR        Code = "SIGNER_ERROR"
	BLOCKHASH_FAILED    Code = "BLOCKHASH_FAILED"
	CONFIRMATION_FAILED Code = "CONFIRMATION_FAILED"
	TRANSITION_INVALID  Code = "TRANSITION_INVALID"
	CONFIG_INVALID      Code = "CONFIG_INVALID"
)

// Error codes - Events Layer
const (
	STREAM_ERROR        Code = "STREAM_ERROR"
	STREAM_DISCONNECTED Code = "STREAM_DISCONNECTED"
	LOG_PARSE_FAILED    Code = "LOG_PARSE_FAILED"
	EVENT_UNKNOWN       Code = "EVENT_UNKNOWN"
)

// AnchorError is the base error type for all SDK errors.
type AnchorError struct {
	Code    Code
	Message string
	Layer   string // "coder", "program", "provider", "events"
	Cause   error
	Context map[string]any
}

// Error returns a formatted error string.
func (e *AnchorError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Layer, e.Code, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error, enabling error chain inspection.
func (e *AnchorError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error is an AnchorError with the same code.
func (e *AnchorError) Is(target error) bool {
	if target == nil {
		return false
	}
	other, ok := target.(*AnchorError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// WithContext attaches a key/value detail to the error and returns it.
func (e *AnchorError) WithContext(key string, value any) *AnchorError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewCoderError creates a coder layer error.
func NewCoderError(code Code, message string, cause error) *AnchorError {
	return &AnchorError{
		Code:    code,
		Message: message,
		Layer:   "coder",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewProgramError creates a program layer error.
func NewProgramError(code Code, message string, cause error) *AnchorError {
	return &AnchorError{
		Code:    code,
		Message: message,
		Layer:   "program",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewProviderError creates a provider layer error.
func NewProviderError(code Code, message string, cause error) *AnchorError {
	return &AnchorError{
		Code:    code,
		Message: message,
		Layer:   "provider",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewEventsError creates an events layer error.
func NewEventsError(code Code, message string, cause error) *AnchorError {
	return &AnchorError{
		Code:    code,
		Message: message,
		Layer:   "events",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// As checks if err is an AnchorError and assigns it.
func As(err error, target **AnchorError) bool {
	if err == nil {
		return false
	}
	if v, ok := err.(*AnchorError); ok {
		*target = v
		return true
	}
	return false
}
