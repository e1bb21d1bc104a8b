package symtab

import (
	"github.com/ifabos/typescope/scope"
)

var _ scope.Oracle = (*Repository)(nil)

// LookupType implements scope.Oracle. Supertypes unknown to the repository
// are reported as scope.RefOther.
func (r *Repository) LookupType(name string) (*scope.TypeDecl, error) {
	t, err := r.LookupTypeDef(name)
	if err != nil {
		return nil, err
	}

	decl := &scope.TypeDecl{
		Name:       t.QualifiedName(),
		Modifiers:  t.Modifiers(),
		Superclass: r.ref(t.Superclass()),
	}
	for _, iface := range t.Interfaces() {
		decl.Interfaces = append(decl.Interfaces, r.ref(iface))
	}
	for _, nested := range t.NestedTypes() {
		decl.Nested = append(decl.Nested, nested.QualifiedName())
	}
	return decl, nil
}

func (r *Repository) ref(name string) scope.TypeRef {
	if name == "" {
		return scope.TypeRef{Kind: scope.RefNone}
	}
	t, err := r.LookupTypeDef(name)
	if err != nil {
		return scope.TypeRef{Kind: scope.RefOther}
	}
	return scope.Declared(t.QualifiedName())
}
