package generator

import (
	"fmt"
	"strings"

	"github.com/anchorgo/sdk-go/idl"
)

// goType maps an IDL type to its generated Go representation. Options and
// COptions become pointers, defined types keep their exported names, and
// 128-bit integers use the binary package's Uint128/Int128.
func (g *Generator) goType(t idl.Type, sf *sourceFile) (string, error) {
	switch {
	case t.Vec != nil:
		elem, err := g.goType(*t.Vec, sf)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case t.Option != nil:
		elem, err := g.goType(*t.Option, sf)
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case t.COption != nil:
		elem, err := g.goType(*t.COption, sf)
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case t.Array != nil:
		elem, err := g.goType(t.Array.Elem, sf)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", t.Array.Len, elem), nil
	case t.Defined != "":
		if _, ok := g.def.TypeByName(t.Defined); !ok {
			return "", fmt.Errorf("type %q is not defined in the IDL", t.Defined)
		}
		return exported(t.Defined), nil
	}

	switch t.Simple {
	case idl.TypeBool:
		return "bool", nil
	case idl.TypeU8:
		return "uint8", nil
	case idl.TypeI8:
		return "int8", nil
	case idl.TypeU16:
		return "uint16", nil
	case idl.TypeI16:
		return "int16", nil
	case idl.TypeU32:
		return "uint32", nil
	case idl.TypeI32:
		return "int32", nil
	case idl.TypeU64:
		return "uint64", nil
	case idl.TypeI64:
		return "int64", nil
	case idl.TypeU128:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		return "bin.Uint128", nil
	case idl.TypeI128:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		return "bin.Int128", nil
	case idl.TypeF32:
		return "float32", nil
	case idl.TypeF64:
		return "float64", nil
	case idl.TypeBytes:
		return "[]byte", nil
	case idl.TypeString:
		return "string", nil
	case idl.TypePublicKey:
		sf.importPkg("github.com/gagliardetto/solana-go", "")
		return "solana.PublicKey", nil
	}
	return "", fmt.Errorf("unsupported IDL type %q", t.String())
}

// encodeStmts renders statements that borsh-encode expr (of the Go type
// produced by goType for t) onto an encoder named enc. depth disambiguates
// loop variables in nested containers.
func (g *Generator) encodeStmts(t idl.Type, expr string, depth int, sf *sourceFile) (string, error) {
	var b strings.Builder

	check := func(call string) {
		fmt.Fprintf(&b, "if err := %s; err != nil {\nreturn err\n}\n", call)
	}

	switch {
	case t.Vec != nil:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteUint32(uint32(len(%s)), bin.LE)", expr))
		iv := fmt.Sprintf("i%d", depth)
		inner, err := g.encodeStmts(*t.Vec, fmt.Sprintf("%s[%s]", expr, iv), depth+1, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "for %s := range %s {\n%s}\n", iv, expr, inner)
		return b.String(), nil

	case t.Option != nil:
		inner, err := g.encodeStmts(*t.Option, "(*"+expr+")", depth, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "if %s == nil {\nif err := enc.WriteBool(false); err != nil {\nreturn err\n}\n} else {\nif err := enc.WriteBool(true); err != nil {\nreturn err\n}\n%s}\n", expr, inner)
		return b.String(), nil

	case t.COption != nil:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		inner, err := g.encodeStmts(*t.COption, "(*"+expr+")", depth, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "if %s == nil {\nif err := enc.WriteUint32(0, bin.LE); err != nil {\nreturn err\n}\n} else {\nif err := enc.WriteUint32(1, bin.LE); err != nil {\nreturn err\n}\n%s}\n", expr, inner)
		return b.String(), nil

	case t.Array != nil:
		iv := fmt.Sprintf("i%d", depth)
		inner, err := g.encodeStmts(t.Array.Elem, fmt.Sprintf("%s[%s]", expr, iv), depth+1, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "for %s := range %s {\n%s}\n", iv, expr, inner)
		return b.String(), nil

	case t.Defined != "":
		check(fmt.Sprintf("%s.MarshalWithEncoder(enc)", expr))
		return b.String(), nil
	}

	switch t.Simple {
	case idl.TypeBool:
		check(fmt.Sprintf("enc.WriteBool(%s)", expr))
	case idl.TypeU8:
		check(fmt.Sprintf("enc.WriteByte(%s)", expr))
	case idl.TypeI8:
		check(fmt.Sprintf("enc.WriteByte(byte(%s))", expr))
	case idl.TypeU16:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteUint16(%s, bin.LE)", expr))
	case idl.TypeI16:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteInt16(%s, bin.LE)", expr))
	case idl.TypeU32:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteUint32(%s, bin.LE)", expr))
	case idl.TypeI32:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteInt32(%s, bin.LE)", expr))
	case idl.TypeU64:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteUint64(%s, bin.LE)", expr))
	case idl.TypeI64:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteInt64(%s, bin.LE)", expr))
	case idl.TypeU128:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteUint128(%s, bin.LE)", expr))
	case idl.TypeI128:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteInt128(%s, bin.LE)", expr))
	case idl.TypeF32:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteFloat32(%s, bin.LE)", expr))
	case idl.TypeF64:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		check(fmt.Sprintf("enc.WriteFloat64(%s, bin.LE)", expr))
	case idl.TypeBytes:
		check(fmt.Sprintf("enc.WriteBytes(%s, true)", expr))
	case idl.TypeString:
		check(fmt.Sprintf("enc.WriteRustString(%s)", expr))
	case idl.TypePublicKey:
		check(fmt.Sprintf("enc.WriteBytes(%s[:], false)", expr))
	default:
		return "", fmt.Errorf("unsupported IDL type %q", t.String())
	}
	return b.String(), nil
}

// decodeStmts renders statements that borsh-decode from a decoder named dec
// into target, which must be an addressable expression of the Go type
// produced by goType for t.
func (g *Generator) decodeStmts(t idl.Type, target string, depth int, sf *sourceFile) (string, error) {
	var b strings.Builder

	tmp := fmt.Sprintf("tmp%d", depth)
	read := func(call string) {
		fmt.Fprintf(&b, "{\n%s, err := %s\nif err != nil {\nreturn err\n}\n%s = %s\n}\n", tmp, call, target, tmp)
	}

	switch {
	case t.Vec != nil:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		elemType, err := g.goType(*t.Vec, sf)
		if err != nil {
			return "", err
		}
		iv := fmt.Sprintf("i%d", depth)
		inner, err := g.decodeStmts(*t.Vec, fmt.Sprintf("%s[%s]", target, iv), depth+1, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "{\nl, err := dec.ReadUint32(bin.LE)\nif err != nil {\nreturn err\n}\n%s = make([]%s, l)\nfor %s := range %s {\n%s}\n}\n",
			target, elemType, iv, target, inner)
		return b.String(), nil

	case t.Option != nil:
		elemType, err := g.goType(*t.Option, sf)
		if err != nil {
			return "", err
		}
		ev := fmt.Sprintf("opt%d", depth)
		inner, err := g.decodeStmts(*t.Option, ev, depth+1, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "{\nok, err := dec.ReadBool()\nif err != nil {\nreturn err\n}\nif ok {\nvar %s %s\n%s%s = &%s\n}\n}\n", ev, elemType, inner, target, ev)
		return b.String(), nil

	case t.COption != nil:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		elemType, err := g.goType(*t.COption, sf)
		if err != nil {
			return "", err
		}
		ev := fmt.Sprintf("opt%d", depth)
		inner, err := g.decodeStmts(*t.COption, ev, depth+1, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "{\nflag, err := dec.ReadUint32(bin.LE)\nif err != nil {\nreturn err\n}\nif flag != 0 {\nvar %s %s\n%s%s = &%s\n}\n}\n", ev, elemType, inner, target, ev)
		return b.String(), nil

	case t.Array != nil:
		iv := fmt.Sprintf("i%d", depth)
		inner, err := g.decodeStmts(t.Array.Elem, fmt.Sprintf("%s[%s]", target, iv), depth+1, sf)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "for %s := range %s {\n%s}\n", iv, target, inner)
		return b.String(), nil

	case t.Defined != "":
		if g.mixedEnums[t.Defined] {
			read(fmt.Sprintf("Unmarshal%s(dec)", exported(t.Defined)))
			return b.String(), nil
		}
		fmt.Fprintf(&b, "if err := %s.UnmarshalWithDecoder(dec); err != nil {\nreturn err\n}\n", target)
		return b.String(), nil
	}

	switch t.Simple {
	case idl.TypeBool:
		read("dec.ReadBool()")
	case idl.TypeU8:
		read("dec.ReadByte()")
	case idl.TypeI8:
		fmt.Fprintf(&b, "{\nv, err := dec.ReadByte()\nif err != nil {\nreturn err\n}\n%s = int8(v)\n}\n", target)
	case idl.TypeU16:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadUint16(bin.LE)")
	case idl.TypeI16:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadInt16(bin.LE)")
	case idl.TypeU32:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadUint32(bin.LE)")
	case idl.TypeI32:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadInt32(bin.LE)")
	case idl.TypeU64:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadUint64(bin.LE)")
	case idl.TypeI64:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadInt64(bin.LE)")
	case idl.TypeU128:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadUint128(bin.LE)")
	case idl.TypeI128:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadInt128(bin.LE)")
	case idl.TypeF32:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadFloat32(bin.LE)")
	case idl.TypeF64:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		read("dec.ReadFloat64(bin.LE)")
	case idl.TypeBytes:
		sf.importPkg("github.com/gagliardetto/binary", "bin")
		fmt.Fprintf(&b, "{\nl, err := dec.ReadUint32(bin.LE)\nif err != nil {\nreturn err\n}\nv, err := dec.ReadNBytes(int(l))\nif err != nil {\nreturn err\n}\n%s = v\n}\n", target)
	case idl.TypeString:
		read("dec.ReadRustString()")
	case idl.TypePublicKey:
		sf.importPkg("github.com/gagliardetto/solana-go", "")
		fmt.Fprintf(&b, "{\nv, err := dec.ReadNBytes(32)\nif err != nil {\nreturn err\n}\n%s = solana.PublicKeyFromBytes(v)\n}\n", target)
	default:
		return "", fmt.Errorf("unsupported IDL type %q", t.String())
	}
	return b.String(), nil
}
