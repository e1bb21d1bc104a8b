// Package scope decides whether a type can be referred to by its simple name
// inside a package or a type body, following Java's nesting, inheritance and
// shadowing rules.
package scope

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ifabos/typescope/qname"
)

// DefaultUniversalPackage is the package every compilation unit sees without imports.
const DefaultUniversalPackage = "java.lang"

// Option configures a Handler.
type Option func(*Handler)

// WithUniversalPackage overrides DefaultUniversalPackage.
func WithUniversalPackage(pkg string) Option {
	return func(h *Handler) {
		h.universal = pkg
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.log = logger
	}
}

// WithMetrics enables engine counters.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// Handler answers visibility queries for one generation run.
//
// Results are memoized and caches are never invalidated, so the oracle must
// not change while the Handler is in use. A Handler is not safe for
// concurrent use.
type Handler struct {
	oracle    Oracle
	universal string
	log       zerolog.Logger
	metrics   *Metrics

	// type ↦ visibility in parent scope
	visibility map[string]Visibility
	// scope ↦ simple name ↦ types
	visible map[string]*typeSet
	// canonical name ↦ generated type
	generated map[string]qname.Name
}

// NewHandler creates a Handler backed by oracle.
func NewHandler(oracle Oracle, opts ...Option) *Handler {
	h := &Handler{
		oracle:     oracle,
		universal:  DefaultUniversalPackage,
		log:        zerolog.Nop(),
		visibility: make(map[string]Visibility),
		visible:    make(map[string]*typeSet),
		generated:  make(map[string]qname.Name),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// UniversalPackage returns the implicitly imported package.
func (h *Handler) UniversalPackage() string {
	return h.universal
}

// VisibilityInPackage reports whether t is visible in, or can be imported
// into, a compilation unit in pkg.
func (h *Handler) VisibilityInPackage(pkg string, t qname.Name) (State, error) {
	state, err := h.visibilityInPackage(pkg, t)
	if err != nil {
		return 0, err
	}
	h.metrics.query(state)
	h.log.Debug().Str("package", pkg).Stringer("type", t).Stringer("state", state).Msg("visibility in package")
	return state, nil
}

// VisibilityIn reports whether t is visible in, or can be imported into,
// the body of the type scope.
func (h *Handler) VisibilityIn(scope, t qname.Name) (State, error) {
	state, err := h.visibilityIn(scope, t)
	if err != nil {
		return 0, err
	}
	h.metrics.query(state)
	h.log.Debug().Stringer("scope", scope).Stringer("type", t).Stringer("state", state).Msg("visibility in scope")
	return state, nil
}

func (h *Handler) visibilityInPackage(pkg string, t qname.Name) (State, error) {
	for {
		exists, err := h.isTopLevelType(pkg, t.SimpleName())
		if err != nil {
			return 0, err
		}
		switch {
		case exists:
			if t.IsTopLevel() && t.Package() == pkg {
				return InScope, nil
			}
			return Hidden, nil
		case pkg != h.universal:
			pkg = h.universal
		default:
			return Importable, nil
		}
	}
}

func (h *Handler) visibilityIn(scope, t qname.Name) (State, error) {
	for {
		types, err := h.typesInScope(scope)
		if err != nil {
			return 0, err
		}
		// A single entry that is t itself is the only unambiguous case;
		// any other non-empty set shadows t, even when it includes t.
		conflicts := types.get(t.SimpleName())
		switch {
		case len(conflicts) == 1 && conflicts[0].Equal(t):
			return InScope, nil
		case len(conflicts) > 0:
			return Hidden, nil
		case !scope.IsTopLevel():
			scope = scope.EnclosingType()
		default:
			return h.visibilityInPackage(scope.Package(), t)
		}
	}
}

// DeclareGeneratedType registers a type that is about to be generated, so
// that later queries see it as if it already existed. supertypes holds the
// canonical names of its superclass and interfaces; names that resolve to
// nothing are skipped.
//
// Declaring the same name twice overwrites the registered visibility.
// If the enclosing type cannot be looked up, nothing is registered; an
// error while inheriting from a supertype leaves t registered with the
// members inherited so far.
func (h *Handler) DeclareGeneratedType(v Visibility, t qname.Name, supertypes []string) error {
	key := t.String()
	var enclosing *typeSet
	if !t.IsTopLevel() {
		var err error
		if enclosing, err = h.typesInScope(t.EnclosingType()); err != nil {
			return errors.Wrapf(err, "failed to declare %s", key)
		}
	}

	h.generated[key] = t
	h.visibility[key] = v
	h.metrics.declaration()
	if enclosing != nil {
		enclosing.add(t)
	}

	own, ok := h.visible[key]
	if !ok {
		own = newTypeSet()
		h.visible[key] = own
	}
	for _, name := range supertypes {
		super, found, err := h.resolve(name)
		if err != nil {
			return errors.Wrapf(err, "failed to declare %s", key)
		}
		if !found {
			h.log.Debug().Str("type", key).Str("supertype", name).Msg("skipping unresolved supertype")
			continue
		}
		inherited, err := h.typesInScope(super)
		if err != nil {
			return errors.Wrapf(err, "failed to declare %s", key)
		}
		if err := h.inherit(own, t, inherited); err != nil {
			return errors.Wrapf(err, "failed to declare %s", key)
		}
	}
	h.log.Debug().Str("type", key).Stringer("visibility", v).Int("visible", own.len()).Msg("declared generated type")
	return nil
}

// IsGenerated reports whether name was declared with DeclareGeneratedType.
func (h *Handler) IsGenerated(name string) bool {
	_, ok := h.generated[name]
	return ok
}

// VisibleTypes returns the types reachable by simple name in the body of scope.
func (h *Handler) VisibleTypes(scope qname.Name) (map[string][]qname.Name, error) {
	types, err := h.typesInScope(scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]qname.Name, len(types.bySimple))
	for simple, names := range types.bySimple {
		out[simple] = append([]qname.Name(nil), names...)
	}
	return out, nil
}

// resolve looks a canonical name up among generated types first, then in the oracle.
func (h *Handler) resolve(name string) (qname.Name, bool, error) {
	if t, ok := h.generated[name]; ok {
		return t, true, nil
	}
	decl, found, err := h.lookup(name)
	if err != nil || !found {
		return qname.Name{}, false, err
	}
	return decl.Name, true, nil
}

func (h *Handler) lookup(name string) (*TypeDecl, bool, error) {
	h.metrics.oracleCall()
	decl, err := h.oracle.LookupType(name)
	switch {
	case IsNotFound(err):
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Wrapf(err, "oracle lookup of %s failed", name)
	case decl == nil:
		return nil, false, nil
	}
	return decl, true, nil
}

func (h *Handler) isTopLevelType(pkg, simple string) (bool, error) {
	name := simple
	if pkg != "" {
		name = pkg + "." + simple
	}
	if _, ok := h.generated[name]; ok {
		return true, nil
	}
	_, found, err := h.lookup(name)
	return found, err
}

func (h *Handler) typesInScope(scope qname.Name) (*typeSet, error) {
	key := scope.String()
	if types, ok := h.visible[key]; ok {
		h.metrics.scopeLookup(true)
		return types, nil
	}
	h.metrics.scopeLookup(false)
	decl, found, err := h.lookup(key)
	if err != nil {
		return nil, err
	}
	if !found {
		types := newTypeSet()
		h.visible[key] = types
		return types, nil
	}
	return h.cacheTypesInScope(scope, decl)
}

func (h *Handler) cacheTypesInScope(scope qname.Name, decl *TypeDecl) (*typeSet, error) {
	types := newTypeSet()
	supers := make([]TypeRef, 0, 1+len(decl.Interfaces))
	supers = append(supers, decl.Superclass)
	supers = append(supers, decl.Interfaces...)
	for _, ref := range supers {
		if ref.Kind != RefDeclared {
			continue
		}
		inherited, err := h.typesInScope(ref.Name)
		if err != nil {
			return nil, err
		}
		if err := h.inherit(types, scope, inherited); err != nil {
			return nil, err
		}
	}
	for _, nested := range decl.Nested {
		types.add(nested)
	}
	h.visible[scope.String()] = types
	h.log.Debug().Stringer("scope", scope).Int("visible", types.len()).Msg("cached visible types")
	return types, nil
}

// inherit copies the members of a supertype's scope that scope can see.
func (h *Handler) inherit(dst *typeSet, scope qname.Name, inherited *typeSet) error {
	for _, t := range inherited.all() {
		ok, err := h.potentiallyVisible(scope, t)
		if err != nil {
			return err
		}
		if ok {
			dst.add(t)
		}
	}
	return nil
}

func (h *Handler) potentiallyVisible(scope, t qname.Name) (bool, error) {
	v, err := h.visibilityOf(t)
	if err != nil {
		return false, err
	}
	switch v {
	case Public, Protected:
		// t is nested in scope or in one of its supertypes.
		return true, nil
	case Package:
		return scope.Package() == t.Package(), nil
	case Private:
		// Only the declaring type sees a private type; subtypes do not.
		return !t.IsTopLevel() && t.EnclosingType().Equal(scope), nil
	case Unknown:
		return true, nil
	}
	return false, errors.Wrapf(ErrInvariant, "unknown visibility %s of %s", v, t)
}

func (h *Handler) visibilityOf(t qname.Name) (Visibility, error) {
	key := t.String()
	if v, ok := h.visibility[key]; ok {
		return v, nil
	}
	decl, found, err := h.lookup(key)
	if err != nil {
		return Unknown, err
	}
	if !found {
		return Unknown, errors.Wrapf(ErrInvariant, "visibility of %s requested, but it is neither generated nor known", key)
	}
	v := decl.Modifiers.Visibility()
	h.visibility[key] = v
	return v, nil
}
