// Package coder implements the borsh (de)serialization layer driven by an
// Anchor IDL: instruction data, account data, user-defined types, and
// emitted events. It performs no I/O; the program package wires it to the
// network.
package coder

import (
	"crypto/sha256"
	"strings"
	"unicode"
)

// Discriminator is the 8-byte namespace prefix Anchor places in front of
// instruction data, account data, and event payloads.
type Discriminator [8]byte

// DiscriminatorSize is the length of a discriminator in bytes.
const DiscriminatorSize = 8

// Sighash computes the discriminator for a name within a namespace:
// sha256("<namespace>:<name>")[:8].
func Sighash(namespace, name string) Discriminator {
	h := sha256.Sum256([]byte(namespace + ":" + name))
	var out Discriminator
	copy(out[:], h[:DiscriminatorSize])
	return out
}

// InstructionDiscriminator computes the sighash of an instruction. Anchor
// hashes the snake_case method name in the "global" namespace.
func InstructionDiscriminator(name string) Discriminator {
	return Sighash("global", ToSnake(name))
}

// AccountDiscriminator computes the discriminator of an account layout.
// Anchor hashes the PascalCase type name in the "account" namespace.
func AccountDiscriminator(name string) Discriminator {
	return Sighash("account", ToPascal(name))
}

// EventDiscriminator computes the discriminator of an event. The event name
// is hashed as written in the IDL.
func EventDiscriminator(name string) Discriminator {
	return Sighash("event", name)
}

// ToSnake converts camelCase or PascalCase to snake_case, the form Anchor's
// Rust macros see for method names.
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToPascal converts camelCase or snake_case to PascalCase.
func ToPascal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upperNext := true
	for _, r := range s {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts snake_case or PascalCase to camelCase.
func ToCamel(s string) string {
	p := ToPascal(s)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}
