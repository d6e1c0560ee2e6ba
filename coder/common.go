package coder

import (
	"fmt"

	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
)

// AccountSize returns the serialized size in bytes of an account layout,
// including the 8-byte discriminator. Layouts containing variable-length
// types (vec, bytes, string) have no fixed size and yield an
// ACCOUNT_SIZE_UNKNOWN error; such accounts must be allocated with an
// explicit size override.
func AccountSize(def *idl.Idl, account *idl.TypeDef) (int, error) {
	body, err := typeDefSize(def, account)
	if err != nil {
		return 0, err
	}
	return DiscriminatorSize + body, nil
}

// TypeSize returns the serialized size of a fixed-size IDL type.
func TypeSize(def *idl.Idl, ty idl.Type) (int, error) {
	switch {
	case ty.Simple != "":
		return primitiveSize(ty.Simple)
	case ty.Option != nil:
		inner, err := TypeSize(def, *ty.Option)
		if err != nil {
			return 0, err
		}
		return 1 + inner, nil
	case ty.COption != nil:
		inner, err := TypeSize(def, *ty.COption)
		if err != nil {
			return 0, err
		}
		return 4 + inner, nil
	case ty.Array != nil:
		elem, err := TypeSize(def, ty.Array.Elem)
		if err != nil {
			return 0, err
		}
		return ty.Array.Len * elem, nil
	case ty.Vec != nil:
		return 0, errors.NewProgramError(errors.ACCOUNT_SIZE_UNKNOWN,
			fmt.Sprintf("%s has no fixed size", ty.String()), nil)
	case ty.Defined != "":
		td, ok := def.TypeByName(ty.Defined)
		if !ok {
			return 0, errors.NewCoderError(errors.IDL_INVALID,
				fmt.Sprintf("type %q is not defined in the IDL", ty.Defined), nil)
		}
		return typeDefSize(def, td)
	}
	return 0, errors.NewCoderError(errors.TYPE_UNSUPPORTED, "empty IDL type", nil)
}

func typeDefSize(def *idl.Idl, td *idl.TypeDef) (int, error) {
	switch td.Type.Kind {
	case idl.KindStruct:
		total := 0
		for _, f := range td.Type.Fields {
			n, err := TypeSize(def, f.Type)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil

	case idl.KindEnum:
		// 1 tag byte plus the largest variant payload.
		max := 0
		for _, v := range td.Type.Variants {
			n, err := variantSize(def, v)
			if err != nil {
				return 0, err
			}
			if n > max {
				max = n
			}
		}
		return 1 + max, nil
	}
	return 0, errors.NewCoderError(errors.TYPE_UNSUPPORTED,
		fmt.Sprintf("type kind %q", td.Type.Kind), nil)
}

func variantSize(def *idl.Idl, v idl.EnumVariant) (int, error) {
	if v.Fields == nil {
		return 0, nil
	}
	total := 0
	if v.Fields.Named != nil {
		for _, f := range v.Fields.Named {
			n, err := TypeSize(def, f.Type)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	}
	for _, ty := range v.Fields.Tuple {
		n, err := TypeSize(def, ty)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func primitiveSize(name string) (int, error) {
	switch name {
	case idl.TypeBool, idl.TypeU8, idl.TypeI8:
		return 1, nil
	case idl.TypeU16, idl.TypeI16:
		return 2, nil
	case idl.TypeU32, idl.TypeI32, idl.TypeF32:
		return 4, nil
	case idl.TypeU64, idl.TypeI64, idl.TypeF64:
		return 8, nil
	case idl.TypeU128, idl.TypeI128:
		return 16, nil
	case idl.TypePublicKey:
		return 32, nil
	case idl.TypeBytes, idl.TypeString:
		return 0, errors.NewProgramError(errors.ACCOUNT_SIZE_UNKNOWN,
			fmt.Sprintf("%s has no fixed size", name), nil)
	}
	return 0, errors.NewCoderError(errors.TYPE_UNSUPPORTED, fmt.Sprintf("primitive %q", name), nil)
}
