package generator

import (
	"fmt"
	"strings"

	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/idl"
)

// renderInstructions emits the program address, one discriminator per
// instruction, args and accounts structs, and the instruction builders.
func (g *Generator) renderInstructions() (*sourceFile, error) {
	sf := newSourceFile()
	sf.importPkg("github.com/gagliardetto/solana-go", "")

	sf.printf("// ProgramID is the address instruction builders target.\n")
	if g.opts.ProgramID != "" {
		sf.printf("var ProgramID = solana.MustPublicKeyFromBase58(%q)\n\n", g.opts.ProgramID)
	} else {
		sf.printf("var ProgramID solana.PublicKey\n\n")
	}
	sf.printf("// SetProgramID points the instruction builders at a different deployment.\n")
	sf.printf("func SetProgramID(id solana.PublicKey) { ProgramID = id }\n\n")

	for _, ix := range g.def.Instructions {
		if err := g.renderInstruction(sf, ix); err != nil {
			return nil, fmt.Errorf("instruction %q: %w", ix.Name, err)
		}
	}
	return sf, nil
}

func (g *Generator) renderInstruction(sf *sourceFile, ix idl.Instruction) error {
	name := exported(ix.Name)
	disc := coder.InstructionDiscriminator(ix.Name)

	sf.printf("// %sDiscriminator identifies the %s instruction.\n", name, ix.Name)
	sf.printf("var %sDiscriminator = [8]byte%s\n\n", name, discLiteral(disc[:]))

	hasArgs := len(ix.Args) > 0
	if hasArgs {
		sf.printf("// %sArgs holds the borsh-encoded arguments of %s.\n", name, ix.Name)
		if err := g.renderStruct(sf, name+"Args", ix.Args); err != nil {
			return err
		}
	}

	flat := idl.FlattenAccounts(ix.Accounts)
	sf.printf("// %sAccounts is the account context of %s.\n", name, ix.Name)
	sf.printf("type %sAccounts struct {\n", name)
	for _, acc := range flat {
		var attrs []string
		if acc.IsMut {
			attrs = append(attrs, "writable")
		}
		if acc.IsSigner {
			attrs = append(attrs, "signer")
		}
		if acc.IsOptional {
			attrs = append(attrs, "optional")
		}
		if len(attrs) > 0 {
			sf.printf("%s solana.PublicKey // %s\n", pathName(acc.Path), strings.Join(attrs, ", "))
		} else {
			sf.printf("%s solana.PublicKey\n", pathName(acc.Path))
		}
	}
	sf.printf("}\n\n")

	sf.importPkg("bytes", "")
	sf.importPkg("github.com/gagliardetto/binary", "bin")

	sf.printf("// New%sInstruction builds a %s instruction.\n", name, ix.Name)
	if hasArgs {
		sf.printf("func New%sInstruction(args %sArgs, accounts %sAccounts) (solana.Instruction, error) {\n", name, name, name)
	} else {
		sf.printf("func New%sInstruction(accounts %sAccounts) (solana.Instruction, error) {\n", name, name)
	}
	sf.printf("buf := new(bytes.Buffer)\n")
	sf.printf("enc := bin.NewBorshEncoder(buf)\n")
	sf.printf("if err := enc.WriteBytes(%sDiscriminator[:], false); err != nil {\nreturn nil, err\n}\n", name)
	if hasArgs {
		sf.printf("if err := args.MarshalWithEncoder(enc); err != nil {\nreturn nil, err\n}\n")
	}
	sf.printf("metas := make(solana.AccountMetaSlice, 0, %d)\n", len(flat))
	for _, acc := range flat {
		field := pathName(acc.Path)
		if acc.IsOptional {
			// A zero key means the optional account was not provided.
			sf.printf("if !accounts.%s.IsZero() {\n", field)
			sf.printf("metas = append(metas, solana.NewAccountMeta(accounts.%s, %t, %t))\n", field, acc.IsMut, acc.IsSigner)
			sf.printf("}\n")
		} else {
			sf.printf("metas = append(metas, solana.NewAccountMeta(accounts.%s, %t, %t))\n", field, acc.IsMut, acc.IsSigner)
		}
	}
	sf.printf("return solana.NewInstruction(ProgramID, metas, buf.Bytes()), nil\n}\n\n")
	return nil
}

// renderErrors emits the IDL error table as constants and a lookup helper.
func (g *Generator) renderErrors() (*sourceFile, error) {
	if len(g.def.Errors) == 0 {
		return nil, nil
	}
	sf := newSourceFile()

	sf.printf("// Error codes declared by the program.\n")
	sf.printf("const (\n")
	for _, e := range g.def.Errors {
		sf.printf("ErrCode%s = %d\n", exported(e.Name), e.Code)
	}
	sf.printf(")\n\n")

	sf.printf("var errorMessages = map[int]string{\n")
	for _, e := range g.def.Errors {
		msg := e.Msg
		if msg == "" {
			msg = e.Name
		}
		sf.printf("%d: %q,\n", e.Code, msg)
	}
	sf.printf("}\n\n")

	sf.printf("// ErrorMessage resolves a custom program error code declared by this\n")
	sf.printf("// program to its message.\n")
	sf.printf("func ErrorMessage(code int) (string, bool) {\n")
	sf.printf("msg, ok := errorMessages[code]\nreturn msg, ok\n}\n")
	return sf, nil
}

// pathName turns a flattened account path like "vaultGroup.authority" into an
// exported field name.
func pathName(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = exported(p)
	}
	return strings.Join(parts, "")
}

func accountDiscriminator(name string) string {
	d := coder.AccountDiscriminator(name)
	return discLiteral(d[:])
}

func discLiteral(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
