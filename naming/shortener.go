package naming

import (
	"github.com/pkg/errors"

	"github.com/ifabos/typescope/qname"
	"github.com/ifabos/typescope/scope"
)

// Shortener spells type references for code emitted in one package,
// either at package level or inside a type body.
type Shortener struct {
	handler *scope.Handler
	pkg     string
	scope   qname.Name
	imports *Imports
}

// NewShortener creates a package-level shortener. Imports it decides on
// are added to imports.
func NewShortener(h *scope.Handler, pkg string, imports *Imports) *Shortener {
	return &Shortener{handler: h, pkg: pkg, imports: imports}
}

// In returns a shortener for code inside the body of the type s, sharing
// the import set.
func (sh *Shortener) In(s qname.Name) *Shortener {
	return &Shortener{handler: sh.handler, pkg: sh.pkg, scope: s, imports: sh.imports}
}

// Imports returns the import set.
func (sh *Shortener) Imports() *Imports {
	return sh.imports
}

// Reference returns the spelling of t valid at the shortener's location.
func (sh *Shortener) Reference(t qname.Name) (string, error) {
	var (
		st  scope.State
		err error
	)
	if sh.scope.IsZero() {
		st, err = sh.handler.VisibilityInPackage(sh.pkg, t)
	} else {
		st, err = sh.handler.VisibilityIn(sh.scope, t)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to reference %s", t)
	}

	switch st {
	case scope.InScope:
		return t.SimpleName(), nil
	case scope.Importable:
		if sh.implicitlyImported(t) || sh.imports.Add(t) {
			return t.SimpleName(), nil
		}
	}
	return sh.qualified(t)
}

// implicitlyImported reports whether t is a top-level type of the current
// or the universal package.
func (sh *Shortener) implicitlyImported(t qname.Name) bool {
	if !t.IsTopLevel() {
		return false
	}
	return t.Package() == sh.pkg || t.Package() == sh.handler.UniversalPackage()
}

func (sh *Shortener) qualified(t qname.Name) (string, error) {
	if t.IsTopLevel() {
		return t.String(), nil
	}
	outer, err := sh.Reference(t.EnclosingType())
	if err != nil {
		return "", err
	}
	return outer + "." + t.SimpleName(), nil
}
