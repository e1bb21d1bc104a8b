// Package symtab provides an in-memory symbol table of declared types that
// serves as the oracle for the scope engine.
package symtab

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ifabos/typescope/scope"
)

// Common symbol table errors
var (
	ErrTypeNotFound          = scope.ErrTypeNotFound
	ErrPackageNotFound       = errors.New("package not found")
	ErrDuplicateDefinition   = errors.New("duplicate definition")
	ErrInvalidDefinitionKind = errors.New("invalid definition kind")
	ErrInvalidName           = errors.New("invalid name")
	ErrInheritanceCycle      = errors.New("cyclic inheritance")
)

// DefinitionKind defines the type of a symbol table object
type DefinitionKind int

const (
	DK_NONE DefinitionKind = iota
	DK_ALL
	DK_REPOSITORY
	DK_PACKAGE
	DK_CLASS
	DK_INTERFACE
	DK_ENUM
	DK_ANNOTATION
	DK_RECORD
)

// String returns the string representation of the DefinitionKind
func (dk DefinitionKind) String() string {
	switch dk {
	case DK_NONE:
		return "NONE"
	case DK_ALL:
		return "ALL"
	case DK_REPOSITORY:
		return "REPOSITORY"
	case DK_PACKAGE:
		return "PACKAGE"
	case DK_CLASS:
		return "CLASS"
	case DK_INTERFACE:
		return "INTERFACE"
	case DK_ENUM:
		return "ENUM"
	case DK_ANNOTATION:
		return "ANNOTATION"
	case DK_RECORD:
		return "RECORD"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(dk))
	}
}

// Keyword returns the declaration keyword for type kinds.
func (dk DefinitionKind) Keyword() string {
	switch dk {
	case DK_CLASS:
		return "class"
	case DK_INTERFACE:
		return "interface"
	case DK_ENUM:
		return "enum"
	case DK_ANNOTATION:
		return "@interface"
	case DK_RECORD:
		return "record"
	default:
		return ""
	}
}

// IsType reports whether dk is one of the type kinds.
func (dk DefinitionKind) IsType() bool {
	return dk >= DK_CLASS && dk <= DK_RECORD
}

// IsInterface reports whether types of this kind are interfaces.
func (dk DefinitionKind) IsInterface() bool {
	return dk == DK_INTERFACE || dk == DK_ANNOTATION
}

// ParseKind parses a declaration keyword or a kind name.
func ParseKind(s string) (DefinitionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return DK_CLASS, nil
	case "interface":
		return DK_INTERFACE, nil
	case "enum":
		return DK_ENUM, nil
	case "@interface", "annotation":
		return DK_ANNOTATION, nil
	case "record":
		return DK_RECORD, nil
	}
	return DK_NONE, errors.Wrapf(ErrInvalidDefinitionKind, "%q", s)
}

// Object is the base interface for all symbol table objects
type Object interface {
	// Get the DefinitionKind of this Object
	DefKind() DefinitionKind

	// Get the canonical id of this Object
	Id() string

	// Get the simple name of this Object
	Name() string

	// Get the container of this Object
	Container() Container

	// Get a description of this Object
	Describe() string
}

// Container is an interface for Objects that can contain other Objects
type Container interface {
	Object

	// Get the list of contained objects
	Contents(limit DefinitionKind) []Object

	// Lookup an object by name
	Lookup(name string) (Object, error)

	// Get the list of contained objects that match the specified name
	LookupName(searchName string, levels int, limit DefinitionKind) []Object
}
