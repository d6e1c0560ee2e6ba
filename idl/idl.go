// Package idl defines the Anchor IDL data model and its JSON parsing.
//
// The IDL (Interface Description Language) is a schema produced by the
// Anchor toolchain describing a program's instructions, accounts, types,
// events, errors, and constants. This package owns no semantics of its own:
// it mirrors the JSON layout emitted by `anchor build` so the rest of the
// SDK (coder, program, generator) can consume it.
package idl

import (
	"encoding/json"
	"fmt"
)

// Idl is the parsed representation of an Anchor IDL file.
type Idl struct {
	Version      string        `json:"version"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
	Accounts     []TypeDef     `json:"accounts,omitempty"`
	Types        []TypeDef     `json:"types,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Errors       []ErrorCode   `json:"errors,omitempty"`
	Constants    []Constant    `json:"constants,omitempty"`
	Metadata     *Metadata     `json:"metadata,omitempty"`
}

// Metadata carries deployment information appended by the Anchor CLI.
type Metadata struct {
	Address string `json:"address,omitempty"`
}

// Instruction describes one program instruction: its account context and
// its borsh-serialized arguments.
type Instruction struct {
	Name     string        `json:"name"`
	Accounts []AccountItem `json:"accounts"`
	Args     []Field       `json:"args"`
}

// AccountItem is one entry in an instruction's account context. It is either
// a single account (Accounts is nil) or a named group of nested accounts
// (composite accounts, e.g. CPI contexts).
type AccountItem struct {
	Name       string        `json:"name"`
	IsMut      bool          `json:"isMut,omitempty"`
	IsSigner   bool          `json:"isSigner,omitempty"`
	IsOptional bool          `json:"isOptional,omitempty"`
	Accounts   []AccountItem `json:"accounts,omitempty"`
}

// Flatten returns the leaf accounts under this item in declaration order.
// Leaves inside nested groups are keyed by their dotted path ("group.leaf").
func (a AccountItem) Flatten(prefix string) []FlatAccount {
	name := a.Name
	if prefix != "" {
		name = prefix + "." + a.Name
	}
	if a.Accounts == nil {
		return []FlatAccount{{Path: name, IsMut: a.IsMut, IsSigner: a.IsSigner, IsOptional: a.IsOptional}}
	}
	var out []FlatAccount
	for _, sub := range a.Accounts {
		out = append(out, sub.Flatten(name)...)
	}
	return out
}

// FlatAccount is a leaf account with its dotted path through nested groups.
type FlatAccount struct {
	Path       string
	IsMut      bool
	IsSigner   bool
	IsOptional bool
}

// FlattenAccounts flattens an instruction's account context into leaf
// accounts in declaration order.
func FlattenAccounts(items []AccountItem) []FlatAccount {
	var out []FlatAccount
	for _, item := range items {
		out = append(out, item.Flatten("")...)
	}
	return out
}

// Field is a named, typed value: an instruction argument, a struct field, or
// an event field.
type Field struct {
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Index bool   `json:"index,omitempty"`
}

// TypeDef is a named type definition: an account layout or a user-defined
// type referenced via {"defined": name}.
type TypeDef struct {
	Name string    `json:"name"`
	Type TypeDefTy `json:"type"`
}

// TypeDefTy is the body of a type definition: a borsh struct or enum.
type TypeDefTy struct {
	Kind     TypeDefKind   `json:"kind"`
	Fields   []Field       `json:"fields,omitempty"`
	Variants []EnumVariant `json:"variants,omitempty"`
}

// TypeDefKind discriminates struct and enum definitions.
type TypeDefKind string

const (
	KindStruct TypeDefKind = "struct"
	KindEnum   TypeDefKind = "enum"
)

// EnumVariant is one variant of a borsh enum. Fields is nil for unit
// variants, otherwise it holds named or tuple fields.
type EnumVariant struct {
	Name   string      `json:"name"`
	Fields *EnumFields `json:"fields,omitempty"`
}

// EnumFields holds a variant's payload. Exactly one of Named or Tuple is
// set, matching the two JSON encodings Anchor emits.
type EnumFields struct {
	Named []Field
	Tuple []Type
}

// UnmarshalJSON accepts either [{"name":..,"type":..}, ...] (named) or
// [type, type, ...] (tuple).
func (f *EnumFields) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw[0], &probe); err == nil {
		if _, ok := probe["name"]; ok {
			return json.Unmarshal(data, &f.Named)
		}
	}
	return json.Unmarshal(data, &f.Tuple)
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (f EnumFields) MarshalJSON() ([]byte, error) {
	if f.Named != nil {
		return json.Marshal(f.Named)
	}
	return json.Marshal(f.Tuple)
}

// Event describes an emitted program event and its borsh layout.
type Event struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// ErrorCode is one entry of the program's error table. Msg may be empty, in
// which case Name is the human-readable fallback.
type ErrorCode struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg,omitempty"`
}

// Constant is a program-level constant exported through the IDL.
type Constant struct {
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

// ErrorMap returns the program's error table keyed by numeric code, using
// Msg when present and falling back to Name.
func (i *Idl) ErrorMap() map[int]string {
	out := make(map[int]string, len(i.Errors))
	for _, e := range i.Errors {
		msg := e.Msg
		if msg == "" {
			msg = e.Name
		}
		out[e.Code] = msg
	}
	return out
}

// TypeByName resolves a user-defined type referenced via {"defined": name},
// searching types first and then account layouts.
func (i *Idl) TypeByName(name string) (*TypeDef, bool) {
	for idx := range i.Types {
		if i.Types[idx].Name == name {
			return &i.Types[idx], true
		}
	}
	for idx := range i.Accounts {
		if i.Accounts[idx].Name == name {
			return &i.Accounts[idx], true
		}
	}
	return nil, false
}

// InstructionByName resolves an instruction definition.
func (i *Idl) InstructionByName(name string) (*Instruction, bool) {
	for idx := range i.Instructions {
		if i.Instructions[idx].Name == name {
			return &i.Instructions[idx], true
		}
	}
	return nil, false
}

// Parse decodes IDL JSON. It fails on structurally invalid documents and on
// documents with no instructions, which almost always indicates a file that
// is not an Anchor IDL.
func Parse(data []byte) (*Idl, error) {
	var out Idl
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("idl: invalid JSON: %w", err)
	}
	if len(out.Instructions) == 0 {
		return nil, fmt.Errorf("idl: document %q has no instructions", out.Name)
	}
	return &out, nil
}
