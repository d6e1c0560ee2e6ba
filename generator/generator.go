// Package generator turns a parsed Anchor IDL into a standalone, typed Go
// client package. The generated code depends only on gagliardetto/solana-go
// and gagliardetto/binary: typed structs with explicit borsh marshalling,
// account discriminator checks, and instruction builders. Unlike the dynamic
// client in package program, generated clients catch type errors at compile
// time.
package generator

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"

	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/idl"
)

// Options controls code generation.
type Options struct {
	// PackageName is the package clause of the generated files. Defaults to
	// the IDL's program name with separators stripped.
	PackageName string

	// ProgramID seeds the generated ProgramID variable. When empty the
	// IDL's metadata address is used; when that is also absent the
	// generated package exposes only SetProgramID.
	ProgramID string
}

// File is one generated source file.
type File struct {
	Name    string
	Content []byte
}

// Generator renders a typed client for one IDL.
type Generator struct {
	def  *idl.Idl
	opts Options

	// mixedEnums names the enum types that need an interface representation
	// because at least one variant carries a payload.
	mixedEnums map[string]bool
}

// New prepares a generator for the given IDL.
func New(def *idl.Idl, opts Options) *Generator {
	if opts.PackageName == "" {
		opts.PackageName = packageName(def.Name)
	}
	if opts.ProgramID == "" && def.Metadata != nil {
		opts.ProgramID = def.Metadata.Address
	}

	mixed := make(map[string]bool)
	for _, td := range def.Types {
		if td.Type.Kind == idl.KindEnum && !unitOnly(td.Type.Variants) {
			mixed[td.Name] = true
		}
	}
	return &Generator{def: def, opts: opts, mixedEnums: mixed}
}

// Generate renders all client files, gofmt-formatted.
func (g *Generator) Generate() ([]File, error) {
	renderers := []struct {
		name   string
		render func() (*sourceFile, error)
	}{
		{"instructions.go", g.renderInstructions},
		{"types.go", g.renderTypes},
		{"accounts.go", g.renderAccounts},
		{"errors.go", g.renderErrors},
	}

	var out []File
	for _, r := range renderers {
		sf, err := r.render()
		if err != nil {
			return nil, fmt.Errorf("generator: render %s: %w", r.name, err)
		}
		if sf == nil {
			continue
		}
		formatted, err := format.Source(sf.assemble(g.opts.PackageName))
		if err != nil {
			return nil, fmt.Errorf("generator: format %s: %w", r.name, err)
		}
		out = append(out, File{Name: r.name, Content: formatted})
	}
	return out, nil
}

// WriteFiles generates the client and writes it under dir, creating the
// directory if needed.
func (g *Generator) WriteFiles(dir string) error {
	files, err := g.Generate()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generator: create %s: %w", dir, err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Content, 0o644); err != nil {
			return fmt.Errorf("generator: write %s: %w", f.Name, err)
		}
	}
	return nil
}

// sourceFile accumulates a file body and the imports it turned out to need.
// Imports are collected during rendering so gofmt never sees an unused one.
type sourceFile struct {
	body    []byte
	imports map[string]string // path -> alias ("" for none)
}

func newSourceFile() *sourceFile {
	return &sourceFile{imports: make(map[string]string)}
}

func (sf *sourceFile) importPkg(path, alias string) {
	sf.imports[path] = alias
}

func (sf *sourceFile) printf(format string, args ...any) {
	sf.body = append(sf.body, fmt.Sprintf(format, args...)...)
}

func (sf *sourceFile) assemble(pkg string) []byte {
	var out []byte
	out = append(out, "// Code generated by anchorgo. DO NOT EDIT.\n\n"...)
	out = append(out, fmt.Sprintf("package %s\n\n", pkg)...)
	if len(sf.imports) > 0 {
		paths := make([]string, 0, len(sf.imports))
		for p := range sf.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out = append(out, "import (\n"...)
		for _, p := range paths {
			if alias := sf.imports[p]; alias != "" {
				out = append(out, fmt.Sprintf("\t%s %q\n", alias, p)...)
			} else {
				out = append(out, fmt.Sprintf("\t%q\n", p)...)
			}
		}
		out = append(out, ")\n\n"...)
	}
	out = append(out, sf.body...)
	return out
}

func unitOnly(variants []idl.EnumVariant) bool {
	for _, v := range variants {
		if v.Fields != nil && (len(v.Fields.Named) > 0 || len(v.Fields.Tuple) > 0) {
			return false
		}
	}
	return true
}

func packageName(idlName string) string {
	var out []byte
	for _, r := range idlName {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, byte(r))
		case r >= 'A' && r <= 'Z':
			out = append(out, byte(r-'A'+'a'))
		}
	}
	if len(out) == 0 {
		return "client"
	}
	return string(out)
}

func exported(name string) string { return coder.ToPascal(name) }
func param(name string) string {
	p := coder.ToCamel(name)
	switch p {
	// Avoid shadowing identifiers the generated bodies use.
	case "data", "buf", "enc", "dec", "err", "metas":
		return p + "Arg"
	}
	return p
}
