// Package decl parses Java-like declaration stubs and loads the declared
// types into a symbol table.
package decl

import (
	"fmt"
	"strings"

	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

// Position is a location in a source file
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// File is a parsed compilation unit
type File struct {
	Name    string
	Package string
	Imports []Import
	Types   []*TypeDecl
}

// Import is a single import declaration
type Import struct {
	Path     string
	Static   bool
	OnDemand bool
	Pos      Position
}

// LastSegment returns the simple name imported by a single-type import.
func (i Import) LastSegment() string {
	return i.Path[strings.LastIndexByte(i.Path, '.')+1:]
}

func (i Import) String() string {
	var b strings.Builder
	b.WriteString("import ")
	if i.Static {
		b.WriteString("static ")
	}
	b.WriteString(i.Path)
	if i.OnDemand {
		b.WriteString(".*")
	}
	return b.String()
}

// TypeDecl is a type declaration with its nested type declarations.
// Supertype names are kept as written.
type TypeDecl struct {
	Name       string
	Kind       symtab.DefinitionKind
	Modifiers  scope.Modifiers
	Extends    []string
	Implements []string
	Permits    []string
	Nested     []*TypeDecl
	Pos        Position
}

// Walk calls fn for d and every type nested in it, outer types first.
func (d *TypeDecl) Walk(fn func(d *TypeDecl, enclosing []*TypeDecl)) {
	d.walk(nil, fn)
}

func (d *TypeDecl) walk(enclosing []*TypeDecl, fn func(*TypeDecl, []*TypeDecl)) {
	fn(d, enclosing)
	chain := append(enclosing[:len(enclosing):len(enclosing)], d)
	for _, nested := range d.Nested {
		nested.walk(chain, fn)
	}
}
