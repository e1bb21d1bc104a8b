package decl

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/tools/txtar"

	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

// Extensions recognized when loading paths
const (
	SourceExt  = ".java"
	ArchiveExt = ".txtar"
)

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithUniversalPackage sets the package whose types are implicitly visible
// and which provides the implicit superclasses.
func WithUniversalPackage(pkg string) LoaderOption {
	return func(l *Loader) {
		l.universal = pkg
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// Loader registers parsed stub files in a symbol table. Types are declared
// as files are added; supertype names are resolved by Resolve once all
// files are known.
type Loader struct {
	repo      *symtab.Repository
	universal string
	log       zerolog.Logger
	pending   []*unit
}

type unit struct {
	file  *File
	types map[*TypeDecl]*symtab.TypeDef
}

// NewLoader creates a loader that fills repo.
func NewLoader(repo *symtab.Repository, opts ...LoaderOption) *Loader {
	l := &Loader{
		repo:      repo,
		universal: scope.DefaultUniversalPackage,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add declares every type of f.
func (l *Loader) Add(f *File) error {
	u := &unit{file: f, types: make(map[*TypeDecl]*symtab.TypeDef)}
	pkg := l.repo.Package(f.Package)

	for _, top := range f.Types {
		var err error
		top.Walk(func(d *TypeDecl, enclosing []*TypeDecl) {
			if err != nil {
				return
			}
			var td *symtab.TypeDef
			if len(enclosing) == 0 {
				td, err = pkg.CreateType(d.Name, d.Kind, d.Modifiers)
			} else {
				outer := enclosing[len(enclosing)-1]
				if td, err = u.types[outer].CreateNested(d.Name, d.Kind, d.Modifiers); err == nil {
					td.AddModifiers(impliedModifiers(outer, d))
				}
			}
			if err != nil {
				err = errors.Wrapf(err, "%s:%s", f.Name, d.Pos)
				return
			}
			u.types[d] = td
		})
		if err != nil {
			return err
		}
	}

	l.log.Debug().Str("file", f.Name).Str("package", f.Package).Int("types", len(u.types)).Msg("declared stub types")
	l.pending = append(l.pending, u)
	return nil
}

// impliedModifiers returns the modifiers a nested type d gets from its
// context without declaring them.
func impliedModifiers(outer, d *TypeDecl) scope.Modifiers {
	var mods scope.Modifiers
	if outer.Kind.IsInterface() {
		if !d.Modifiers.HasAccess() {
			mods |= scope.ModPublic
		}
		mods |= scope.ModStatic
	}
	if d.Kind != symtab.DK_CLASS {
		mods |= scope.ModStatic
	}
	return mods
}

// AddSource parses and declares one source file.
func (l *Loader) AddSource(name string, r io.Reader) error {
	f, err := ParseFile(name, r)
	if err != nil {
		return err
	}
	return l.Add(f)
}

// AddArchive parses and declares every .java member of an archive.
func (l *Loader) AddArchive(ar *txtar.Archive) error {
	for _, member := range ar.Files {
		if !strings.HasSuffix(member.Name, SourceExt) {
			continue
		}
		if err := l.AddSource(member.Name, bytes.NewReader(member.Data)); err != nil {
			return err
		}
	}
	return nil
}

// AddPath declares the stubs at path: a source file, an archive, or a
// directory searched recursively for both.
func (l *Loader) AddPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to load stubs")
	}
	if !info.IsDir() {
		return l.addFile(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext != SourceExt && ext != ArchiveExt {
			return nil
		}
		return l.addFile(p)
	})
}

func (l *Loader) addFile(path string) error {
	if filepath.Ext(path) == ArchiveExt {
		ar, err := txtar.ParseFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read archive %s", path)
		}
		return l.AddArchive(ar)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return l.AddSource(path, f)
}

// Resolve resolves the supertype names of every added file and checks the
// resulting inheritance graph for cycles.
func (l *Loader) Resolve() error {
	for _, u := range l.pending {
		for _, top := range u.file.Types {
			top.Walk(func(d *TypeDecl, enclosing []*TypeDecl) {
				l.resolveSupertypes(u, d, enclosing)
			})
		}
	}
	l.pending = nil
	return l.repo.CheckAcyclic()
}

func (l *Loader) resolveSupertypes(u *unit, d *TypeDecl, enclosing []*TypeDecl) {
	td := u.types[d]
	outer := make([]*symtab.TypeDef, 0, len(enclosing))
	for i := len(enclosing) - 1; i >= 0; i-- {
		outer = append(outer, u.types[enclosing[i]])
	}

	resolve := func(name string) string {
		resolved, ok := l.resolveName(u.file, outer, name)
		if !ok {
			l.log.Debug().Str("type", td.Id()).Str("name", name).Msg("unresolved supertype")
		}
		return resolved
	}

	var interfaces []string
	switch {
	case d.Kind.IsInterface():
		for _, name := range d.Extends {
			interfaces = append(interfaces, resolve(name))
		}
	default:
		if len(d.Extends) > 0 {
			td.SetSuperclass(resolve(d.Extends[0]))
		} else {
			td.SetSuperclass(l.implicitSuperclass(td))
		}
		for _, name := range d.Implements {
			interfaces = append(interfaces, resolve(name))
		}
	}
	td.SetInterfaces(interfaces)
}

func (l *Loader) implicitSuperclass(td *symtab.TypeDef) string {
	var name string
	switch td.Kind() {
	case symtab.DK_ENUM:
		name = "Enum"
	case symtab.DK_RECORD:
		name = "Record"
	default:
		name = "Object"
	}
	super := l.qualify(l.universal, name)
	if super == td.Id() {
		return ""
	}
	return super
}

// resolveName resolves a supertype name as written in file, from within
// the enclosing types outer (innermost first). Names that cannot be
// resolved are returned unchanged.
func (l *Loader) resolveName(file *File, outer []*symtab.TypeDef, name string) (string, bool) {
	first, rest := name, ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		first, rest = name[:i], name[i:]
	}
	if r, _ := utf8.DecodeRuneInString(first); rest != "" && unicode.IsLower(r) {
		return name, true
	}

	if id, ok := l.resolveSimple(file, outer, first); ok {
		return id + rest, true
	}
	return name, false
}

func (l *Loader) resolveSimple(file *File, outer []*symtab.TypeDef, simple string) (string, bool) {
	for _, t := range outer {
		if id, ok := l.memberType(t.Id(), simple, map[string]bool{}); ok {
			return id, true
		}
	}

	for _, imp := range file.Imports {
		if !imp.OnDemand && imp.LastSegment() == simple {
			return imp.Path, true
		}
	}

	if l.exists(l.qualify(file.Package, simple)) {
		return l.qualify(file.Package, simple), true
	}

	for _, imp := range file.Imports {
		if imp.OnDemand && l.exists(imp.Path+"."+simple) {
			return imp.Path + "." + simple, true
		}
	}

	if l.exists(l.qualify(l.universal, simple)) {
		return l.qualify(l.universal, simple), true
	}
	return "", false
}

// memberType finds a member type named simple declared in or inherited by
// the type id.
func (l *Loader) memberType(id, simple string, visited map[string]bool) (string, bool) {
	if visited[id] {
		return "", false
	}
	visited[id] = true

	t, err := l.repo.LookupTypeDef(id)
	if err != nil {
		return "", false
	}
	if _, err := t.Lookup(simple); err == nil {
		return id + "." + simple, true
	}
	for _, super := range t.Supertypes() {
		if found, ok := l.memberType(super, simple, visited); ok {
			return found, true
		}
	}
	return "", false
}

func (l *Loader) exists(id string) bool {
	_, err := l.repo.LookupTypeDef(id)
	return err == nil
}

func (l *Loader) qualify(pkg, simple string) string {
	if pkg == "" {
		return simple
	}
	return pkg + "." + simple
}

// Load parses, declares and resolves the stubs at the given paths.
func Load(repo *symtab.Repository, paths []string, opts ...LoaderOption) error {
	l := NewLoader(repo, opts...)
	for _, path := range paths {
		if err := l.AddPath(path); err != nil {
			return err
		}
	}
	return l.Resolve()
}

// LoadArchive parses, declares and resolves the .java members of ar.
func LoadArchive(repo *symtab.Repository, ar *txtar.Archive, opts ...LoaderOption) error {
	l := NewLoader(repo, opts...)
	if err := l.AddArchive(ar); err != nil {
		return err
	}
	return l.Resolve()
}
