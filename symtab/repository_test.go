package symtab_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifabos/typescope/qname"
	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

func TestRepositoryPackages(t *testing.T) {
	repo := symtab.NewRepository()
	assert.True(t, strings.HasPrefix(repo.Id(), "urn:uuid:"))
	assert.Equal(t, symtab.DK_REPOSITORY, repo.DefKind())

	foo := repo.Package("com.foo")
	assert.Same(t, foo, repo.Package("com.foo"))
	assert.Equal(t, symtab.DK_PACKAGE, foo.DefKind())
	assert.Equal(t, "com.foo", foo.Id())

	_, err := repo.CreatePackage("com.foo")
	assert.True(t, errors.Is(err, symtab.ErrDuplicateDefinition))

	bar, err := repo.CreatePackage("com.bar")
	require.NoError(t, err)
	assert.Equal(t, []*symtab.PackageDef{foo, bar}, repo.Packages())

	obj, err := repo.Lookup("com.bar")
	require.NoError(t, err)
	assert.Same(t, bar, obj)
}

func TestCreateTypes(t *testing.T) {
	repo := symtab.NewRepository()
	pkg := repo.Package("com.foo")

	outer, err := pkg.CreateType("Outer", symtab.DK_CLASS, scope.ModPublic)
	require.NoError(t, err)
	inner, err := outer.CreateNested("Inner", symtab.DK_INTERFACE, scope.ModStatic)
	require.NoError(t, err)
	deep, err := inner.CreateNested("Deep", symtab.DK_ENUM, 0)
	require.NoError(t, err)

	assert.Equal(t, "com.foo.Outer.Inner.Deep", deep.Id())
	assert.Equal(t, qname.New("com.foo", []string{"Outer", "Inner"}, "Deep"), deep.QualifiedName())
	assert.Equal(t, "com.foo", deep.PackageName())
	assert.Same(t, inner, deep.Enclosing())
	assert.Same(t, inner, deep.Container())
	assert.Same(t, pkg, outer.Container())
	assert.Nil(t, outer.Enclosing())
	assert.Nil(t, outer.EnclosingHandle())

	assert.Equal(t, []*symtab.TypeDef{outer}, pkg.Types())
	assert.Equal(t, []*symtab.TypeDef{inner}, outer.NestedTypes())
	assert.Equal(t, 3, repo.Len())

	_, err = pkg.CreateType("Outer", symtab.DK_CLASS, 0)
	assert.True(t, errors.Is(err, symtab.ErrDuplicateDefinition))
	assert.Equal(t, 3, repo.Len())

	_, err = pkg.CreateType("Bad", symtab.DK_PACKAGE, 0)
	assert.True(t, errors.Is(err, symtab.ErrInvalidDefinitionKind))
	_, err = pkg.CreateType("a.B", symtab.DK_CLASS, 0)
	assert.True(t, errors.Is(err, symtab.ErrInvalidName))
}

func TestDefaultPackage(t *testing.T) {
	repo := symtab.NewRepository()
	top, err := repo.Package("").CreateType("Main", symtab.DK_CLASS, 0)
	require.NoError(t, err)
	assert.Equal(t, "Main", top.Id())
	assert.Equal(t, qname.TopLevel("", "Main"), top.QualifiedName())
}

func TestLookup(t *testing.T) {
	repo := symtab.NewRepository()
	outer, err := repo.Package("com.foo").CreateType("Outer", symtab.DK_CLASS, 0)
	require.NoError(t, err)
	inner, err := outer.CreateNested("Inner", symtab.DK_CLASS, 0)
	require.NoError(t, err)

	obj, err := repo.LookupId("com.foo.Outer.Inner")
	require.NoError(t, err)
	assert.Same(t, inner, obj)

	obj, err = repo.LookupId("com.foo")
	require.NoError(t, err)
	assert.Equal(t, symtab.DK_PACKAGE, obj.DefKind())

	_, err = repo.LookupId("com.foo.Missing")
	assert.True(t, errors.Is(err, symtab.ErrTypeNotFound))
	assert.True(t, scope.IsNotFound(err))

	obj, err = outer.Lookup("Inner")
	require.NoError(t, err)
	assert.Same(t, inner, obj)

	found := repo.LookupName("Inner", -1, symtab.DK_ALL)
	require.Len(t, found, 1)
	assert.Same(t, inner, found[0])
	assert.Empty(t, repo.LookupName("Inner", 1, symtab.DK_ALL))
	assert.Empty(t, repo.LookupName("Inner", -1, symtab.DK_INTERFACE))
}

func TestDescribe(t *testing.T) {
	repo := symtab.NewRepository()
	pkg := repo.Package("com.foo")
	base, err := pkg.CreateType("Base", symtab.DK_CLASS, scope.ModPublic|scope.ModAbstract)
	require.NoError(t, err)
	base.SetSuperclass("java.lang.Object")
	base.AddInterface("java.io.Serializable")
	base.AddInterface("java.lang.Comparable")

	assert.Equal(t,
		"public abstract class com.foo.Base extends java.lang.Object implements java.io.Serializable, java.lang.Comparable",
		base.Describe())

	iface, err := pkg.CreateType("Api", symtab.DK_INTERFACE, 0)
	require.NoError(t, err)
	iface.AddInterface("java.lang.AutoCloseable")
	assert.Equal(t, "interface com.foo.Api extends java.lang.AutoCloseable", iface.Describe())

	assert.Contains(t, repo.Describe(), "1 packages, 2 types")
}

func TestAncestors(t *testing.T) {
	repo := symtab.NewRepository()
	pkg := repo.Package("p")
	a, _ := pkg.CreateType("A", symtab.DK_CLASS, 0)
	b, _ := pkg.CreateType("B", symtab.DK_CLASS, 0)
	i, _ := pkg.CreateType("I", symtab.DK_INTERFACE, 0)
	j, _ := pkg.CreateType("J", symtab.DK_INTERFACE, 0)

	a.SetSuperclass("p.B")
	a.AddInterface("p.I")
	b.AddInterface("p.I")
	b.SetSuperclass("q.External")
	i.AddInterface("p.J")
	_ = j

	got, err := repo.Ancestors("p.A")
	require.NoError(t, err)
	assert.Equal(t, []string{"p.B", "q.External", "p.I", "p.J"}, got)

	_, err = repo.Ancestors("p.Missing")
	assert.True(t, errors.Is(err, symtab.ErrTypeNotFound))

	require.NoError(t, repo.CheckAcyclic())
}

func TestCheckAcyclic(t *testing.T) {
	repo := symtab.NewRepository()
	pkg := repo.Package("p")
	a, _ := pkg.CreateType("A", symtab.DK_CLASS, 0)
	b, _ := pkg.CreateType("B", symtab.DK_CLASS, 0)
	c, _ := a.CreateNested("C", symtab.DK_CLASS, 0)

	a.SetSuperclass("p.B")
	b.SetSuperclass("p.A.C")
	require.NoError(t, repo.CheckAcyclic())

	c.SetSuperclass("p.A")
	err := repo.CheckAcyclic()
	require.Error(t, err)
	assert.True(t, errors.Is(err, symtab.ErrInheritanceCycle))
	assert.Contains(t, err.Error(), "p.A -> p.B -> p.A.C -> p.A")

	// Ancestors stays finite on cyclic input.
	got, err := repo.Ancestors("p.A")
	require.NoError(t, err)
	assert.Equal(t, []string{"p.B", "p.A.C"}, got)
}

func TestConcurrentAccess(t *testing.T) {
	repo := symtab.NewRepository()
	pkg := repo.Package("p")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('A' + i))
			td, err := pkg.CreateType(name, symtab.DK_CLASS, 0)
			if err != nil {
				return
			}
			td.SetSuperclass("java.lang.Object")
			_, _ = repo.LookupType(td.Id())
			_ = repo.Types()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, repo.Len())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]symtab.DefinitionKind{
		"":           symtab.DK_CLASS,
		"class":      symtab.DK_CLASS,
		"Interface":  symtab.DK_INTERFACE,
		"enum":       symtab.DK_ENUM,
		"@interface": symtab.DK_ANNOTATION,
		"annotation": symtab.DK_ANNOTATION,
		"record":     symtab.DK_RECORD,
	} {
		got, err := symtab.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := symtab.ParseKind("struct")
	assert.True(t, errors.Is(err, symtab.ErrInvalidDefinitionKind))

	assert.True(t, symtab.DK_ANNOTATION.IsInterface())
	assert.False(t, symtab.DK_RECORD.IsInterface())
	assert.Equal(t, "UNKNOWN(42)", symtab.DefinitionKind(42).String())
}
