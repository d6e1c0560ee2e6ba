package generator

import (
	"fmt"
	"strings"

	"github.com/anchorgo/sdk-go/idl"
)

// renderTypes emits the IDL's user-defined types: structs with explicit
// borsh marshalling, uint8-backed constants for unit-only enums, and an
// interface plus variant structs for enums with payloads.
func (g *Generator) renderTypes() (*sourceFile, error) {
	if len(g.def.Types) == 0 {
		return nil, nil
	}
	sf := newSourceFile()
	for _, td := range g.def.Types {
		switch td.Type.Kind {
		case idl.KindStruct:
			if err := g.renderStruct(sf, exported(td.Name), td.Type.Fields); err != nil {
				return nil, fmt.Errorf("type %q: %w", td.Name, err)
			}
		case idl.KindEnum:
			if err := g.renderEnum(sf, td); err != nil {
				return nil, fmt.Errorf("enum %q: %w", td.Name, err)
			}
		default:
			return nil, fmt.Errorf("type %q: unknown kind %q", td.Name, td.Type.Kind)
		}
	}
	return sf, nil
}

// renderAccounts emits the program's account layouts: one struct per layout,
// its discriminator, and a Decode helper that verifies the discriminator
// before deserializing.
func (g *Generator) renderAccounts() (*sourceFile, error) {
	if len(g.def.Accounts) == 0 {
		return nil, nil
	}
	sf := newSourceFile()
	sf.importPkg("github.com/gagliardetto/binary", "bin")
	sf.importPkg("bytes", "")
	sf.importPkg("fmt", "")

	for _, td := range g.def.Accounts {
		if td.Type.Kind != idl.KindStruct {
			return nil, fmt.Errorf("account %q: only struct layouts are supported", td.Name)
		}
		name := exported(td.Name)
		disc := accountDiscriminator(td.Name)

		sf.printf("// %sDiscriminator is the 8-byte prefix of every %s account.\n", name, name)
		sf.printf("var %sDiscriminator = [8]byte%s\n\n", name, disc)

		if err := g.renderStruct(sf, name, td.Type.Fields); err != nil {
			return nil, fmt.Errorf("account %q: %w", td.Name, err)
		}

		sf.printf("// Decode%s deserializes a %s account from raw account data,\n", name, name)
		sf.printf("// verifying the discriminator prefix.\n")
		sf.printf("func Decode%s(data []byte) (*%s, error) {\n", name, name)
		sf.printf("if len(data) < 8 || !bytes.Equal(data[:8], %sDiscriminator[:]) {\n", name)
		sf.printf("return nil, fmt.Errorf(\"data does not hold a %s account\")\n", name)
		sf.printf("}\n")
		sf.printf("obj := new(%s)\n", name)
		sf.printf("if err := obj.UnmarshalWithDecoder(bin.NewBorshDecoder(data[8:])); err != nil {\nreturn nil, err\n}\n")
		sf.printf("return obj, nil\n}\n\n")
	}
	return sf, nil
}

// renderStruct emits a struct type and its MarshalWithEncoder /
// UnmarshalWithDecoder methods covering the given borsh fields in order.
func (g *Generator) renderStruct(sf *sourceFile, name string, fields []idl.Field) error {
	sf.printf("type %s struct {\n", name)
	for _, f := range fields {
		ty, err := g.goType(f.Type, sf)
		if err != nil {
			return err
		}
		sf.printf("%s %s\n", exported(f.Name), ty)
	}
	sf.printf("}\n\n")

	if err := g.renderMarshal(sf, name, fields, nil); err != nil {
		return err
	}
	return g.renderUnmarshal(sf, name, fields)
}

// renderMarshal emits MarshalWithEncoder. A non-nil prefix (an instruction or
// variant discriminator) is written before the fields.
func (g *Generator) renderMarshal(sf *sourceFile, name string, fields []idl.Field, prefix []byte) error {
	sf.importPkg("github.com/gagliardetto/binary", "bin")
	sf.printf("func (obj %s) MarshalWithEncoder(enc *bin.Encoder) error {\n", name)
	if prefix != nil {
		sf.printf("if err := enc.WriteBytes(%s, false); err != nil {\nreturn err\n}\n", byteSliceLiteral(prefix))
	}
	for _, f := range fields {
		stmts, err := g.encodeStmts(f.Type, "obj."+exported(f.Name), 0, sf)
		if err != nil {
			return err
		}
		sf.printf("%s", stmts)
	}
	sf.printf("return nil\n}\n\n")
	return nil
}

func (g *Generator) renderUnmarshal(sf *sourceFile, name string, fields []idl.Field) error {
	sf.importPkg("github.com/gagliardetto/binary", "bin")
	sf.printf("func (obj *%s) UnmarshalWithDecoder(dec *bin.Decoder) error {\n", name)
	for _, f := range fields {
		stmts, err := g.decodeStmts(f.Type, "obj."+exported(f.Name), 0, sf)
		if err != nil {
			return err
		}
		sf.printf("%s", stmts)
	}
	sf.printf("return nil\n}\n\n")
	return nil
}

func (g *Generator) renderEnum(sf *sourceFile, td idl.TypeDef) error {
	name := exported(td.Name)
	if !g.mixedEnums[td.Name] {
		return g.renderUnitEnum(sf, name, td.Type.Variants)
	}

	sf.importPkg("fmt", "")
	sf.printf("// %s is a borsh enum. Its variants implement the interface and\n", name)
	sf.printf("// serialize as a one-byte variant index followed by the payload.\n")
	sf.printf("type %s interface {\n", name)
	sf.printf("is%s()\n", name)
	sf.printf("MarshalWithEncoder(enc *bin.Encoder) error\n")
	sf.printf("}\n\n")
	sf.importPkg("github.com/gagliardetto/binary", "bin")

	for i, variant := range td.Type.Variants {
		vname := name + exported(variant.Name)
		fields := variantFields(variant)

		sf.printf("type %s struct {\n", vname)
		for _, f := range fields {
			ty, err := g.goType(f.Type, sf)
			if err != nil {
				return err
			}
			sf.printf("%s %s\n", exported(f.Name), ty)
		}
		sf.printf("}\n\n")
		sf.printf("func (%s) is%s() {}\n\n", vname, name)

		if err := g.renderMarshal(sf, vname, fields, []byte{byte(i)}); err != nil {
			return err
		}
		if err := g.renderUnmarshal(sf, vname, fields); err != nil {
			return err
		}
	}

	sf.printf("// Unmarshal%s reads a variant index and decodes the matching payload.\n", name)
	sf.printf("func Unmarshal%s(dec *bin.Decoder) (%s, error) {\n", name, name)
	sf.printf("idx, err := dec.ReadByte()\nif err != nil {\nreturn nil, err\n}\n")
	sf.printf("switch idx {\n")
	for i, variant := range td.Type.Variants {
		vname := name + exported(variant.Name)
		sf.printf("case %d:\n", i)
		sf.printf("var obj %s\n", vname)
		sf.printf("if err := obj.UnmarshalWithDecoder(dec); err != nil {\nreturn nil, err\n}\n")
		sf.printf("return obj, nil\n")
	}
	sf.printf("default:\nreturn nil, fmt.Errorf(\"unknown %s variant %%d\", idx)\n}\n}\n\n", name)
	return nil
}

func (g *Generator) renderUnitEnum(sf *sourceFile, name string, variants []idl.EnumVariant) error {
	sf.importPkg("github.com/gagliardetto/binary", "bin")
	sf.printf("// %s is a borsh enum with unit variants only.\n", name)
	sf.printf("type %s uint8\n\n", name)
	sf.printf("const (\n")
	for i, v := range variants {
		if i == 0 {
			sf.printf("%s%s %s = iota\n", name, exported(v.Name), name)
		} else {
			sf.printf("%s%s\n", name, exported(v.Name))
		}
	}
	sf.printf(")\n\n")
	sf.printf("func (obj %s) MarshalWithEncoder(enc *bin.Encoder) error {\nreturn enc.WriteByte(byte(obj))\n}\n\n", name)
	sf.printf("func (obj *%s) UnmarshalWithDecoder(dec *bin.Decoder) error {\n", name)
	sf.printf("v, err := dec.ReadByte()\nif err != nil {\nreturn err\n}\n")
	sf.printf("if int(v) >= %d {\nreturn fmt.Errorf(\"unknown %s variant %%d\", v)\n}\n", len(variants), name)
	sf.importPkg("fmt", "")
	sf.printf("*obj = %s(v)\nreturn nil\n}\n\n", name)
	return nil
}

func variantFields(v idl.EnumVariant) []idl.Field {
	if v.Fields == nil {
		return nil
	}
	if v.Fields.Named != nil {
		return v.Fields.Named
	}
	fields := make([]idl.Field, len(v.Fields.Tuple))
	for i, ty := range v.Fields.Tuple {
		fields[i] = idl.Field{Name: fmt.Sprintf("elem%d", i), Type: ty}
	}
	return fields
}

func byteSliceLiteral(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[]byte{" + strings.Join(parts, ", ") + "}"
}
