package coder

import "github.com/anchorgo/sdk-go/idl"

// Coder bundles the per-concern coders for one program, all driven by the
// same IDL.
type Coder struct {
	Instruction *InstructionCoder
	Accounts    *AccountsCoder
	Events      *EventCoder
	Types       *TypesCoder
}

// New builds the full coder set for an IDL.
func New(def *idl.Idl) *Coder {
	types := NewTypesCoder(def)
	return &Coder{
		Instruction: NewInstructionCoder(def, types),
		Accounts:    NewAccountsCoder(def, types),
		Events:      NewEventCoder(def, types),
		Types:       types,
	}
}
