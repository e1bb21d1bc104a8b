package symtab

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ifabos/typescope/qname"
	"github.com/ifabos/typescope/scope"
)

// objectBase implements the common attributes and methods for all objects
type objectBase struct {
	id             string
	name           string
	container      Container
	definitionKind DefinitionKind
}

func (obj *objectBase) Id() string {
	return obj.id
}

func (obj *objectBase) Name() string {
	return obj.name
}

func (obj *objectBase) Container() Container {
	return obj.container
}

func (obj *objectBase) DefKind() DefinitionKind {
	return obj.definitionKind
}

func (obj *objectBase) Describe() string {
	return fmt.Sprintf("%s %s (ID: %s)", obj.definitionKind, obj.name, obj.id)
}

// containerBase implements the Container interface. Contents keep their
// insertion order.
type containerBase struct {
	objectBase
	mu       sync.RWMutex
	contents map[string]Object
	order    []string
}

func (c *containerBase) init(id, name string, kind DefinitionKind, container Container) {
	c.objectBase = objectBase{
		id:             id,
		name:           name,
		container:      container,
		definitionKind: kind,
	}
	c.contents = make(map[string]Object)
}

func (c *containerBase) Contents(limit DefinitionKind) []Object {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := []Object{}
	for _, name := range c.order {
		obj := c.contents[name]
		if limit == DK_ALL || obj.DefKind() == limit {
			results = append(results, obj)
		}
	}
	return results
}

func (c *containerBase) Lookup(name string) (Object, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if obj, ok := c.contents[name]; ok {
		return obj, nil
	}
	return nil, errors.Wrapf(ErrTypeNotFound, "%s in %s", name, c.id)
}

func (c *containerBase) LookupName(searchName string, levels int, limit DefinitionKind) []Object {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := []Object{}
	if obj, ok := c.contents[searchName]; ok {
		if limit == DK_ALL || obj.DefKind() == limit {
			results = append(results, obj)
		}
	}

	// Search in nested containers if levels > 0; negative means unlimited
	if levels != 0 {
		nextLevel := levels
		if levels > 0 {
			nextLevel--
		}
		for _, name := range c.order {
			if container, ok := c.contents[name].(Container); ok {
				results = append(results, container.LookupName(searchName, nextLevel, limit)...)
			}
		}
	}
	return results
}

func (c *containerBase) add(obj Object) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.contents[obj.Name()]; exists {
		return errors.Wrapf(ErrDuplicateDefinition, "%s", obj.Id())
	}
	c.contents[obj.Name()] = obj
	c.order = append(c.order, obj.Name())
	return nil
}

// Repository is the root of the symbol table. It is safe for concurrent use.
type Repository struct {
	containerBase
	indexMu sync.RWMutex
	index   map[string]*TypeDef
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	r := &Repository{
		index: make(map[string]*TypeDef),
	}
	r.init(uuid.New().URN(), "Repository", DK_REPOSITORY, nil)
	return r
}

// Package returns the package with the given dotted name, creating it if needed.
func (r *Repository) Package(name string) *PackageDef {
	r.mu.Lock()
	defer r.mu.Unlock()

	if obj, ok := r.contents[name]; ok {
		return obj.(*PackageDef)
	}
	pkg := &PackageDef{repo: r}
	pkg.init(name, name, DK_PACKAGE, r)
	r.contents[name] = pkg
	r.order = append(r.order, name)
	return pkg
}

// CreatePackage creates a new package; it fails if it already exists.
func (r *Repository) CreatePackage(name string) (*PackageDef, error) {
	pkg := &PackageDef{repo: r}
	pkg.init(name, name, DK_PACKAGE, r)
	if err := r.add(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Packages returns all packages in creation order.
func (r *Repository) Packages() []*PackageDef {
	objs := r.Contents(DK_PACKAGE)
	pkgs := make([]*PackageDef, 0, len(objs))
	for _, obj := range objs {
		pkgs = append(pkgs, obj.(*PackageDef))
	}
	return pkgs
}

// LookupId returns the package or type with the given canonical name.
func (r *Repository) LookupId(id string) (Object, error) {
	if t, err := r.LookupTypeDef(id); err == nil {
		return t, nil
	}
	obj, err := r.Lookup(id)
	if err != nil {
		return nil, errors.Wrapf(ErrTypeNotFound, "%s", id)
	}
	return obj, nil
}

// LookupTypeDef returns the type with the given canonical name.
func (r *Repository) LookupTypeDef(name string) (*TypeDef, error) {
	r.indexMu.RLock()
	defer r.indexMu.RUnlock()

	if t, ok := r.index[name]; ok {
		return t, nil
	}
	return nil, errors.Wrapf(ErrTypeNotFound, "%s", name)
}

// Types returns every type sorted by canonical name.
func (r *Repository) Types() []*TypeDef {
	r.indexMu.RLock()
	defer r.indexMu.RUnlock()

	types := make([]*TypeDef, 0, len(r.index))
	for _, t := range r.index {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].id < types[j].id })
	return types
}

// Len returns the number of types.
func (r *Repository) Len() int {
	r.indexMu.RLock()
	defer r.indexMu.RUnlock()
	return len(r.index)
}

// Describe returns a one-line summary of the repository.
func (r *Repository) Describe() string {
	return fmt.Sprintf("%s %s (%d packages, %d types)", r.definitionKind, r.id, len(r.Packages()), r.Len())
}

func (r *Repository) register(t *TypeDef) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	if _, exists := r.index[t.id]; exists {
		return errors.Wrapf(ErrDuplicateDefinition, "%s", t.id)
	}
	r.index[t.id] = t
	return nil
}

// Ancestors returns the canonical names of all transitive supertypes of
// name, depth first. Supertypes unknown to the repository are listed but
// not expanded.
func (r *Repository) Ancestors(name string) ([]string, error) {
	if _, err := r.LookupTypeDef(name); err != nil {
		return nil, err
	}

	var result []string
	visited := map[string]bool{name: true}

	var collect func(id string)
	collect = func(id string) {
		t, err := r.LookupTypeDef(id)
		if err != nil {
			return
		}
		for _, super := range t.Supertypes() {
			if visited[super] {
				continue
			}
			visited[super] = true
			result = append(result, super)
			collect(super)
		}
	}
	collect(name)
	return result, nil
}

// CheckAcyclic verifies that no type is its own supertype.
func (r *Repository) CheckAcyclic() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int)
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case inProgress:
			return errors.Wrapf(ErrInheritanceCycle, "%s -> %s", strings.Join(path, " -> "), id)
		case done:
			return nil
		}
		t, err := r.LookupTypeDef(id)
		if err != nil {
			state[id] = done
			return nil
		}
		state[id] = inProgress
		path = append(path, id)
		for _, super := range t.Supertypes() {
			if err := visit(super); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, t := range r.Types() {
		if err := visit(t.id); err != nil {
			return err
		}
	}
	return nil
}

// PackageDef is a package holding top-level types.
type PackageDef struct {
	containerBase
	repo *Repository
}

// CreateType declares a top-level type in this package.
func (p *PackageDef) CreateType(name string, kind DefinitionKind, mods scope.Modifiers) (*TypeDef, error) {
	id := name
	if p.id != "" {
		id = p.id + "." + name
	}
	return newTypeDef(p.repo, p, nil, id, name, kind, mods)
}

// Types returns the top-level types of the package.
func (p *PackageDef) Types() []*TypeDef {
	return typeDefs(p.Contents(DK_ALL))
}

// TypeDef is a class, interface, enum, annotation or record declaration.
// It contains its nested types.
type TypeDef struct {
	containerBase
	repo       *Repository
	pkg        *PackageDef
	outer      *TypeDef
	mods       scope.Modifiers
	superclass string
	interfaces []string
}

func newTypeDef(repo *Repository, pkg *PackageDef, outer *TypeDef, id, name string, kind DefinitionKind, mods scope.Modifiers) (*TypeDef, error) {
	if !kind.IsType() {
		return nil, errors.Wrapf(ErrInvalidDefinitionKind, "%s for %s", kind, id)
	}
	if name == "" || strings.Contains(name, ".") {
		return nil, errors.Wrapf(ErrInvalidName, "%q", name)
	}
	var container Container = pkg
	if outer != nil {
		container = outer
	}
	t := &TypeDef{
		repo:  repo,
		pkg:   pkg,
		outer: outer,
		mods:  mods,
	}
	t.init(id, name, kind, container)
	if err := repo.register(t); err != nil {
		return nil, err
	}
	var err error
	if outer != nil {
		err = outer.add(t)
	} else {
		err = pkg.add(t)
	}
	if err != nil {
		repo.indexMu.Lock()
		delete(repo.index, id)
		repo.indexMu.Unlock()
		return nil, err
	}
	return t, nil
}

// CreateNested declares a type nested in t.
func (t *TypeDef) CreateNested(name string, kind DefinitionKind, mods scope.Modifiers) (*TypeDef, error) {
	return newTypeDef(t.repo, t.pkg, t, t.id+"."+name, name, kind, mods)
}

// Kind returns the declaration kind.
func (t *TypeDef) Kind() DefinitionKind {
	return t.definitionKind
}

// Modifiers returns the declared modifiers.
func (t *TypeDef) Modifiers() scope.Modifiers {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mods
}

// AddModifiers sets additional modifiers.
func (t *TypeDef) AddModifiers(mods scope.Modifiers) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mods |= mods
}

// PackageName returns the name of the package declaring t.
func (t *TypeDef) PackageName() string {
	return t.pkg.id
}

// Package returns the package declaring t.
func (t *TypeDef) Package() *PackageDef {
	return t.pkg
}

// Enclosing returns the enclosing type, or nil for top-level types.
func (t *TypeDef) Enclosing() *TypeDef {
	return t.outer
}

// EnclosingHandle implements qname.Handle.
func (t *TypeDef) EnclosingHandle() qname.Handle {
	if t.outer == nil {
		return nil
	}
	return t.outer
}

// QualifiedName returns the qualified name of t.
func (t *TypeDef) QualifiedName() qname.Name {
	return qname.FromHandle(t)
}

// SetSuperclass sets the canonical name of the superclass; empty for none.
func (t *TypeDef) SetSuperclass(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.superclass = name
}

// Superclass returns the canonical name of the superclass, or "".
func (t *TypeDef) Superclass() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.superclass
}

// AddInterface appends an implemented (or, for interfaces, extended) interface.
func (t *TypeDef) AddInterface(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interfaces = append(t.interfaces, name)
}

// SetInterfaces replaces the interface list.
func (t *TypeDef) SetInterfaces(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interfaces = append([]string(nil), names...)
}

// Interfaces returns the canonical names of the declared interfaces.
func (t *TypeDef) Interfaces() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.interfaces...)
}

// Supertypes returns the superclass (if any) followed by the interfaces.
func (t *TypeDef) Supertypes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	supers := make([]string, 0, 1+len(t.interfaces))
	if t.superclass != "" {
		supers = append(supers, t.superclass)
	}
	return append(supers, t.interfaces...)
}

// NestedTypes returns the directly nested types in declaration order.
func (t *TypeDef) NestedTypes() []*TypeDef {
	return typeDefs(t.Contents(DK_ALL))
}

func (t *TypeDef) Describe() string {
	var b strings.Builder
	if mods := t.Modifiers(); mods != 0 {
		b.WriteString(mods.String())
		b.WriteByte(' ')
	}
	b.WriteString(t.definitionKind.Keyword())
	b.WriteByte(' ')
	b.WriteString(t.id)
	if super := t.Superclass(); super != "" {
		b.WriteString(" extends ")
		b.WriteString(super)
	}
	if ifaces := t.Interfaces(); len(ifaces) > 0 {
		if t.definitionKind.IsInterface() {
			b.WriteString(" extends ")
		} else {
			b.WriteString(" implements ")
		}
		b.WriteString(strings.Join(ifaces, ", "))
	}
	return b.String()
}

func typeDefs(objs []Object) []*TypeDef {
	types := make([]*TypeDef, 0, len(objs))
	for _, obj := range objs {
		if t, ok := obj.(*TypeDef); ok {
			types = append(types, t)
		}
	}
	return types
}
