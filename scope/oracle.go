package scope

import (
	"github.com/pkg/errors"

	"github.com/ifabos/typescope/qname"
)

var (
	// ErrTypeNotFound is returned by an Oracle that has no declaration for a name.
	ErrTypeNotFound = errors.New("type not found")
	// ErrInvariant signals a broken engine precondition, such as asking for
	// the visibility of a type that is neither generated nor known.
	ErrInvariant = errors.New("scope invariant violated")
)

// Oracle is the source of truth for types that already exist.
type Oracle interface {
	// LookupType returns the declaration of the type with the given
	// canonical name, or ErrTypeNotFound.
	LookupType(name string) (*TypeDecl, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(name string) (*TypeDecl, error)

// LookupType calls f(name).
func (f OracleFunc) LookupType(name string) (*TypeDecl, error) {
	return f(name)
}

// RefKind tags a TypeRef.
type RefKind int

const (
	// RefNone is the absent supertype of interfaces and the root type.
	RefNone RefKind = iota
	// RefDeclared refers to a class or interface declaration.
	RefDeclared
	// RefOther covers every other type: primitives, type variables and
	// references that could not be resolved.
	RefOther
)

// TypeRef is a supertype reference as seen by the oracle.
type TypeRef struct {
	Kind RefKind
	Name qname.Name
}

// Declared returns a reference to a declared type.
func Declared(name qname.Name) TypeRef {
	return TypeRef{Kind: RefDeclared, Name: name}
}

// TypeDecl is the declaration record of a type.
type TypeDecl struct {
	Name       qname.Name
	Modifiers  Modifiers
	Superclass TypeRef
	Interfaces []TypeRef
	Nested     []qname.Name
}

// IsNotFound reports whether err means the oracle has no such type.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTypeNotFound)
}
