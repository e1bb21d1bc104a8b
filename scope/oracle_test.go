package scope_test

import (
	"github.com/stretchr/testify/mock"

	"github.com/ifabos/typescope/qname"
	"github.com/ifabos/typescope/scope"
)

// fakeOracle is a map-backed oracle. Declaring a nested type also lists it
// in its enclosing type's declaration.
type fakeOracle map[string]*scope.TypeDecl

func newFakeOracle() fakeOracle {
	o := fakeOracle{}
	o.declare(scope.ModPublic, "java.lang.Object", "")
	o.declare(scope.ModPublic|scope.ModFinal, "java.lang.String", "java.lang.Object")
	return o
}

func (o fakeOracle) LookupType(name string) (*scope.TypeDecl, error) {
	if d, ok := o[name]; ok {
		return d, nil
	}
	return nil, scope.ErrTypeNotFound
}

// declare adds a type. The first supertype is the superclass ("" for none),
// the rest are interfaces.
func (o fakeOracle) declare(mods scope.Modifiers, name string, supers ...string) *scope.TypeDecl {
	n := qname.MustParse(name)
	d := &scope.TypeDecl{Name: n, Modifiers: mods}
	for i, s := range supers {
		ref := scope.TypeRef{Kind: scope.RefNone}
		if s != "" {
			ref = scope.Declared(qname.MustParse(s))
		}
		if i == 0 {
			d.Superclass = ref
		} else {
			d.Interfaces = append(d.Interfaces, ref)
		}
	}
	o[n.String()] = d
	if !n.IsTopLevel() {
		if outer, ok := o[n.EnclosingType().String()]; ok {
			outer.Nested = append(outer.Nested, n)
		}
	}
	return d
}

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) LookupType(name string) (*scope.TypeDecl, error) {
	args := m.Called(name)
	decl, _ := args.Get(0).(*scope.TypeDecl)
	return decl, args.Error(1)
}
