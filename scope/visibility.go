package scope

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State is the result of a visibility query.
type State int

const (
	// InScope means the type is already visible due to scoping rules.
	InScope State = iota
	// Hidden means the type is hidden by another type of the same name.
	Hidden
	// Importable means the type can safely be imported.
	Importable
)

// String returns the string representation of the State
func (s State) String() string {
	switch s {
	case InScope:
		return "IN_SCOPE"
	case Hidden:
		return "HIDDEN"
	case Importable:
		return "IMPORTABLE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Visibility is the declared access level of a type.
type Visibility int

const (
	// Public types are visible everywhere.
	Public Visibility = iota
	// Protected types are visible in their package and to subtypes.
	Protected
	// Package types are visible in their own package only.
	Package
	// Private types are visible inside their enclosing type only.
	Private
	// Unknown is treated as visible everywhere.
	Unknown
)

// String returns the string representation of the Visibility
func (v Visibility) String() string {
	switch v {
	case Public:
		return "PUBLIC"
	case Protected:
		return "PROTECTED"
	case Package:
		return "PACKAGE"
	case Private:
		return "PRIVATE"
	case Unknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(v))
	}
}

// ParseVisibility parses the lower- or upper-case spelling of a visibility.
// "package-private" and "default" are accepted for Package.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "protected":
		return Protected, nil
	case "package", "package-private", "default", "":
		return Package, nil
	case "private":
		return Private, nil
	case "unknown":
		return Unknown, nil
	}
	return Unknown, errors.Errorf("unknown visibility %q", s)
}

// Modifiers is the set of declaration modifiers reported by an oracle.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModSealed
	ModNonSealed
	ModStrictfp
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModStatic, "static"},
	{ModAbstract, "abstract"},
	{ModFinal, "final"},
	{ModSealed, "sealed"},
	{ModNonSealed, "non-sealed"},
	{ModStrictfp, "strictfp"},
}

// Has reports whether all modifiers in m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// HasAccess reports whether any access modifier is set.
func (m Modifiers) HasAccess() bool {
	return m&(ModPublic|ModProtected|ModPrivate) != 0
}

// Visibility maps modifiers to a visibility; no access modifier means Package.
func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(ModPublic):
		return Public
	case m.Has(ModProtected):
		return Protected
	case m.Has(ModPrivate):
		return Private
	default:
		return Package
	}
}

// Words returns the modifier keywords in declaration order.
func (m Modifiers) Words() []string {
	var names []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			names = append(names, mn.name)
		}
	}
	return names
}

// String returns the modifiers in declaration order, space separated.
func (m Modifiers) String() string {
	return strings.Join(m.Words(), " ")
}

// ParseModifier returns the modifier spelled by word.
func ParseModifier(word string) (Modifiers, bool) {
	for _, mn := range modifierNames {
		if mn.name == word {
			return mn.mod, true
		}
	}
	return 0, false
}
