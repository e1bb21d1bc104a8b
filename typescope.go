// Package typescope is the root package of the type scope resolver.
// It decides whether a type name is in scope, hidden or importable at a
// given place in Java-like source code.
package typescope

import (
	"github.com/ifabos/typescope/qname"
	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

// New creates a scope handler answering from oracle
func New(oracle scope.Oracle, opts ...scope.Option) *Handler {
	return scope.NewHandler(oracle, opts...)
}

// NewRepository creates an empty symbol table usable as an oracle
func NewRepository() *Repository {
	return symtab.NewRepository()
}

// ParseName parses a canonical type name by naming convention
func ParseName(s string) (Name, error) {
	return qname.Parse(s)
}

// Re-export important types
type (
	// Name is a qualified type name
	Name = qname.Name

	// Handler resolves visibility queries
	Handler = scope.Handler

	// Oracle supplies declarations of existing types
	Oracle = scope.Oracle

	// TypeDecl is a declaration returned by an Oracle
	TypeDecl = scope.TypeDecl

	// State is the answer to a visibility query
	State = scope.State

	// Visibility is a declared access level
	Visibility = scope.Visibility

	// Repository is the bundled in-memory oracle
	Repository = symtab.Repository
)

// Re-export enumerations
const (
	InScope    = scope.InScope
	Hidden     = scope.Hidden
	Importable = scope.Importable

	Public    = scope.Public
	Protected = scope.Protected
	Package   = scope.Package
	Private   = scope.Private
	Unknown   = scope.Unknown
)

// Re-export options
var (
	WithUniversalPackage = scope.WithUniversalPackage
	WithLogger           = scope.WithLogger
	WithMetrics          = scope.WithMetrics
)
