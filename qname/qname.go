// Package qname provides the immutable qualified type name used as the
// identity of every type the scope engine reasons about.
package qname

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Handle is an external type handle that knows its own package, simple name
// and immediately enclosing type (nil for top-level types).
type Handle interface {
	PackageName() string
	Name() string
	EnclosingHandle() Handle
}

// Name is a qualified type name: package path, chain of enclosing simple
// names and simple name. The zero value is not a valid name.
type Name struct {
	pkg       string
	enclosing []string
	simple    string
}

// New creates a name from its components. The enclosing slice is copied.
func New(pkg string, enclosing []string, simple string) Name {
	var chain []string
	if len(enclosing) > 0 {
		chain = make([]string, len(enclosing))
		copy(chain, enclosing)
	}
	return Name{pkg: pkg, enclosing: chain, simple: simple}
}

// TopLevel creates the name of a top-level type.
func TopLevel(pkg, simple string) Name {
	return Name{pkg: pkg, simple: simple}
}

// FromHandle builds a name by walking the handle's enclosing chain.
func FromHandle(h Handle) Name {
	var chain []string
	pkg := h.PackageName()
	for outer := h.EnclosingHandle(); outer != nil; outer = outer.EnclosingHandle() {
		chain = append(chain, outer.Name())
		pkg = outer.PackageName()
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return Name{pkg: pkg, enclosing: chain, simple: h.Name()}
}

// Parse splits a dotted name using the conventional casing rule: leading
// segments starting with a lower-case letter form the package, the first
// segment starting with an upper-case letter is the outermost type.
func Parse(s string) (Name, error) {
	if s == "" {
		return Name{}, errors.Errorf("empty type name")
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return Name{}, errors.Errorf("malformed type name %q", s)
		}
	}
	first := len(parts) - 1
	for i, p := range parts {
		r, _ := utf8.DecodeRuneInString(p)
		if unicode.IsUpper(r) {
			first = i
			break
		}
	}
	return New(strings.Join(parts[:first], "."), parts[first:len(parts)-1], parts[len(parts)-1]), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Package returns the package path; empty for the unnamed package.
func (n Name) Package() string {
	return n.pkg
}

// SimpleName returns the innermost simple name.
func (n Name) SimpleName() string {
	return n.simple
}

// EnclosingNames returns a copy of the enclosing simple names, outermost first.
func (n Name) EnclosingNames() []string {
	if len(n.enclosing) == 0 {
		return nil
	}
	out := make([]string, len(n.enclosing))
	copy(out, n.enclosing)
	return out
}

// IsTopLevel reports whether the type has no enclosing type.
func (n Name) IsTopLevel() bool {
	return len(n.enclosing) == 0
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.simple == "" && n.pkg == "" && len(n.enclosing) == 0
}

// EnclosingType returns the immediately enclosing type.
// It panics if n is top-level; check IsTopLevel first.
func (n Name) EnclosingType() Name {
	if n.IsTopLevel() {
		panic(fmt.Sprintf("qname: %s is a top-level type", n))
	}
	last := len(n.enclosing) - 1
	var chain []string
	if last > 0 {
		chain = n.enclosing[:last:last]
	}
	return Name{pkg: n.pkg, enclosing: chain, simple: n.enclosing[last]}
}

// Outermost returns the top-level type that (transitively) encloses n, or n itself.
func (n Name) Outermost() Name {
	if n.IsTopLevel() {
		return n
	}
	return Name{pkg: n.pkg, simple: n.enclosing[0]}
}

// Nested returns the name of a type called simple declared inside n.
func (n Name) Nested(simple string) Name {
	chain := make([]string, len(n.enclosing)+1)
	copy(chain, n.enclosing)
	chain[len(n.enclosing)] = n.simple
	return Name{pkg: n.pkg, enclosing: chain, simple: simple}
}

// Equal reports whether both names have the same package, enclosing chain
// and simple name.
func (n Name) Equal(other Name) bool {
	if n.pkg != other.pkg || n.simple != other.simple || len(n.enclosing) != len(other.enclosing) {
		return false
	}
	for i := range n.enclosing {
		if n.enclosing[i] != other.enclosing[i] {
			return false
		}
	}
	return true
}

// String returns the canonical dotted form, e.g. "com.foo.Outer.Inner".
func (n Name) String() string {
	var b strings.Builder
	if n.pkg != "" {
		b.WriteString(n.pkg)
		b.WriteByte('.')
	}
	for _, e := range n.enclosing {
		b.WriteString(e)
		b.WriteByte('.')
	}
	b.WriteString(n.simple)
	return b.String()
}
