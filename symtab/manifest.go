package symtab

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ifabos/typescope/scope"
)

// Manifest is the YAML form of a repository.
//
//	packages:
//	  - name: com.foo
//	    types:
//	      - name: Base
//	        kind: class
//	        modifiers: [public, abstract]
//	        extends: java.lang.Object
//	        implements: [java.io.Serializable]
//	        types:
//	          - name: Part
//	            modifiers: [public, static]
type Manifest struct {
	Packages []ManifestPackage `yaml:"packages"`
}

// ManifestPackage lists the top-level types of one package.
type ManifestPackage struct {
	Name  string         `yaml:"name"`
	Types []ManifestType `yaml:"types,omitempty"`
}

// ManifestType describes one type and its nested types.
type ManifestType struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind,omitempty"`
	Modifiers  []string       `yaml:"modifiers,omitempty,flow"`
	Extends    string         `yaml:"extends,omitempty"`
	Implements []string       `yaml:"implements,omitempty,flow"`
	Types      []ManifestType `yaml:"types,omitempty"`
}

// ReadManifest decodes a manifest, rejecting unknown keys.
func ReadManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return &m, nil
		}
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	return &m, nil
}

// WriteManifest encodes a manifest.
func WriteManifest(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	return enc.Close()
}

// LoadManifest declares every type of m in the repository. Supertype names
// are taken as canonical names.
func (r *Repository) LoadManifest(m *Manifest) error {
	for _, mp := range m.Packages {
		pkg := r.Package(mp.Name)
		for _, mt := range mp.Types {
			if err := loadManifestType(mt, func(name string, kind DefinitionKind, mods scope.Modifiers) (*TypeDef, error) {
				return pkg.CreateType(name, kind, mods)
			}); err != nil {
				return errors.Wrapf(err, "package %s", mp.Name)
			}
		}
	}
	return nil
}

func loadManifestType(mt ManifestType, create func(string, DefinitionKind, scope.Modifiers) (*TypeDef, error)) error {
	kind, err := ParseKind(mt.Kind)
	if err != nil {
		return errors.Wrapf(err, "type %s", mt.Name)
	}
	var mods scope.Modifiers
	for _, word := range mt.Modifiers {
		mod, ok := scope.ParseModifier(word)
		if !ok {
			return errors.Errorf("type %s: unknown modifier %q", mt.Name, word)
		}
		mods |= mod
	}

	t, err := create(mt.Name, kind, mods)
	if err != nil {
		return err
	}
	t.SetSuperclass(mt.Extends)
	t.SetInterfaces(mt.Implements)

	for _, nested := range mt.Types {
		if err := loadManifestType(nested, t.CreateNested); err != nil {
			return err
		}
	}
	return nil
}

// Manifest exports the repository contents.
func (r *Repository) Manifest() *Manifest {
	m := &Manifest{}
	for _, pkg := range r.Packages() {
		mp := ManifestPackage{Name: pkg.Name()}
		for _, t := range pkg.Types() {
			mp.Types = append(mp.Types, manifestType(t))
		}
		m.Packages = append(m.Packages, mp)
	}
	return m
}

func manifestType(t *TypeDef) ManifestType {
	mt := ManifestType{
		Name:       t.Name(),
		Extends:    t.Superclass(),
		Implements: t.Interfaces(),
	}
	if t.Kind() != DK_CLASS {
		mt.Kind = t.Kind().Keyword()
	}
	if mods := t.Modifiers(); mods != 0 {
		mt.Modifiers = mods.Words()
	}
	for _, nested := range t.NestedTypes() {
		mt.Types = append(mt.Types, manifestType(nested))
	}
	return mt
}
