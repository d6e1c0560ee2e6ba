package idl

import (
	"encoding/json"
	"fmt"
)

// Type is the recursive IDL type union. Exactly one of the fields is set:
// Simple for primitives, or one of the compound forms.
type Type struct {
	Simple  string
	Vec     *Type
	Option  *Type
	COption *Type
	Array   *ArrayType
	Defined string
}

// ArrayType is a fixed-length array [elem; len].
type ArrayType struct {
	Elem Type
	Len  int
}

// Primitive type names as they appear in IDL JSON.
const (
	TypeBool      = "bool"
	TypeU8        = "u8"
	TypeI8        = "i8"
	TypeU16       = "u16"
	TypeI16       = "i16"
	TypeU32       = "u32"
	TypeI32       = "i32"
	TypeU64       = "u64"
	TypeI64       = "i64"
	TypeU128      = "u128"
	TypeI128      = "i128"
	TypeF32       = "f32"
	TypeF64       = "f64"
	TypeBytes     = "bytes"
	TypeString    = "string"
	TypePublicKey = "publicKey"
)

// IsPrimitive reports whether t is a simple (non-compound) type.
func (t Type) IsPrimitive() bool { return t.Simple != "" }

// String renders the type in IDL notation, e.g. "vec<u64>" or "MyStruct".
func (t Type) String() string {
	switch {
	case t.Simple != "":
		return t.Simple
	case t.Vec != nil:
		return "vec<" + t.Vec.String() + ">"
	case t.Option != nil:
		return "option<" + t.Option.String() + ">"
	case t.COption != nil:
		return "coption<" + t.COption.String() + ">"
	case t.Array != nil:
		return fmt.Sprintf("[%s; %d]", t.Array.Elem.String(), t.Array.Len)
	case t.Defined != "":
		return t.Defined
	}
	return "<invalid>"
}

// UnmarshalJSON accepts the two encodings Anchor emits: a bare string for
// primitives, or a single-key object for compound types:
//
//	"u64"
//	{"vec": "u8"}
//	{"option": {"defined": "Inner"}}
//	{"array": ["u8", 32]}
//	{"defined": "MyStruct"}
func (t *Type) UnmarshalJSON(data []byte) error {
	var simple string
	if err := json.Unmarshal(data, &simple); err == nil {
		*t = Type{Simple: simple}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("idl: type must be a string or object: %w", err)
	}

	if raw, ok := obj["vec"]; ok {
		t.Vec = new(Type)
		return json.Unmarshal(raw, t.Vec)
	}
	if raw, ok := obj["option"]; ok {
		t.Option = new(Type)
		return json.Unmarshal(raw, t.Option)
	}
	if raw, ok := obj["coption"]; ok {
		t.COption = new(Type)
		return json.Unmarshal(raw, t.COption)
	}
	if raw, ok := obj["array"]; ok {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("idl: array type must be [elem, len], got %d elements", len(pair))
		}
		t.Array = new(ArrayType)
		if err := json.Unmarshal(pair[0], &t.Array.Elem); err != nil {
			return err
		}
		return json.Unmarshal(pair[1], &t.Array.Len)
	}
	if raw, ok := obj["defined"]; ok {
		return json.Unmarshal(raw, &t.Defined)
	}
	return fmt.Errorf("idl: unrecognized type object %s", string(data))
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (t Type) MarshalJSON() ([]byte, error) {
	switch {
	case t.Simple != "":
		return json.Marshal(t.Simple)
	case t.Vec != nil:
		return json.Marshal(map[string]*Type{"vec": t.Vec})
	case t.Option != nil:
		return json.Marshal(map[string]*Type{"option": t.Option})
	case t.COption != nil:
		return json.Marshal(map[string]*Type{"coption": t.COption})
	case t.Array != nil:
		return json.Marshal(map[string][2]any{"array": {t.Array.Elem, t.Array.Len}})
	case t.Defined != "":
		return json.Marshal(map[string]string{"defined": t.Defined})
	}
	return nil, fmt.Errorf("idl: cannot marshal empty type")
}
