package naming

import (
	"bytes"
	"io"
	"text/template"

	"github.com/pkg/errors"

	"github.com/ifabos/typescope/scope"
)

const headerTemplate = `{{- with .Package}}package {{.}};
{{end}}
{{- if and .Package .Imports}}
{{end}}
{{- range .Imports}}import {{.}};
{{end}}`

var header = template.Must(template.New("header").Parse(headerTemplate))

// Unit is the header of a generated compilation unit
type Unit struct {
	Package string
	Imports *Imports
}

// NewUnit creates a unit with an empty import set.
func NewUnit(pkg string) *Unit {
	return &Unit{Package: pkg, Imports: NewImports()}
}

// Shortener returns a package-level shortener feeding the unit's imports.
func (u *Unit) Shortener(h *scope.Handler) *Shortener {
	return NewShortener(h, u.Package, u.Imports)
}

// WriteHeader writes the package declaration and the sorted imports.
func (u *Unit) WriteHeader(w io.Writer) error {
	data := struct {
		Package string
		Imports []string
	}{Package: u.Package}
	if u.Imports != nil {
		data.Imports = u.Imports.Paths()
	}
	if err := header.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render unit header")
	}
	return nil
}

// Header returns the rendered header.
func (u *Unit) Header() (string, error) {
	var buf bytes.Buffer
	if err := u.WriteHeader(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
