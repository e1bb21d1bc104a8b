// Package naming turns visibility answers into the shortest correct
// spelling of type references for generated source files.
package naming

import (
	"sort"

	"github.com/ifabos/typescope/qname"
)

// Imports is the set of single-type imports of one compilation unit.
// At most one type per simple name can be imported.
type Imports struct {
	byName map[string]qname.Name
}

// NewImports creates an empty import set.
func NewImports() *Imports {
	return &Imports{byName: make(map[string]qname.Name)}
}

// Add imports t. It reports false when a different type with the same
// simple name is already imported.
func (i *Imports) Add(t qname.Name) bool {
	if existing, ok := i.byName[t.SimpleName()]; ok {
		return existing.Equal(t)
	}
	i.byName[t.SimpleName()] = t
	return true
}

// Lookup returns the imported type with the given simple name.
func (i *Imports) Lookup(simple string) (qname.Name, bool) {
	t, ok := i.byName[simple]
	return t, ok
}

// Contains reports whether t itself is imported.
func (i *Imports) Contains(t qname.Name) bool {
	existing, ok := i.byName[t.SimpleName()]
	return ok && existing.Equal(t)
}

// Len returns the number of imports.
func (i *Imports) Len() int {
	return len(i.byName)
}

// Paths returns the canonical names of the imported types, sorted.
func (i *Imports) Paths() []string {
	paths := make([]string, 0, len(i.byName))
	for _, t := range i.byName {
		paths = append(paths, t.String())
	}
	sort.Strings(paths)
	return paths
}

// Lines returns the import statements, sorted.
func (i *Imports) Lines() []string {
	paths := i.Paths()
	lines := make([]string, len(paths))
	for n, p := range paths {
		lines[n] = "import " + p + ";"
	}
	return lines
}
