package symtab_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

const manifestYAML = `
packages:
  - name: java.lang
    types:
      - name: Object
        modifiers: [public]
      - name: String
        modifiers: [public, final]
        extends: java.lang.Object
  - name: com.foo
    types:
      - name: Base
        modifiers: [public, abstract]
        extends: java.lang.Object
        types:
          - name: Part
            modifiers: [public, static]
          - name: Secret
            kind: interface
            modifiers: [private]
      - name: Item
        kind: annotation
`

func TestLoadManifest(t *testing.T) {
	m, err := symtab.ReadManifest(strings.NewReader(manifestYAML))
	require.NoError(t, err)

	repo := symtab.NewRepository()
	require.NoError(t, repo.LoadManifest(m))
	assert.Equal(t, 6, repo.Len())

	base, err := repo.LookupTypeDef("com.foo.Base")
	require.NoError(t, err)
	assert.Equal(t, scope.ModPublic|scope.ModAbstract, base.Modifiers())
	assert.Equal(t, "java.lang.Object", base.Superclass())

	secret, err := repo.LookupTypeDef("com.foo.Base.Secret")
	require.NoError(t, err)
	assert.Equal(t, symtab.DK_INTERFACE, secret.Kind())
	assert.Equal(t, scope.Private, secret.Modifiers().Visibility())

	item, err := repo.LookupTypeDef("com.foo.Item")
	require.NoError(t, err)
	assert.Equal(t, symtab.DK_ANNOTATION, item.Kind())
}

func TestReadManifestErrors(t *testing.T) {
	_, err := symtab.ReadManifest(strings.NewReader("packages:\n  - name: a\n    bogus: 1\n"))
	assert.Error(t, err)

	m, err := symtab.ReadManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Packages)

	bad := &symtab.Manifest{Packages: []symtab.ManifestPackage{{
		Name:  "p",
		Types: []symtab.ManifestType{{Name: "A", Modifiers: []string{"volatile"}}},
	}}}
	err = symtab.NewRepository().LoadManifest(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown modifier "volatile"`)

	dup := &symtab.Manifest{Packages: []symtab.ManifestPackage{{
		Name:  "p",
		Types: []symtab.ManifestType{{Name: "A"}, {Name: "A"}},
	}}}
	err = symtab.NewRepository().LoadManifest(dup)
	assert.ErrorIs(t, err, symtab.ErrDuplicateDefinition)
}

func TestManifestExport(t *testing.T) {
	m, err := symtab.ReadManifest(strings.NewReader(manifestYAML))
	require.NoError(t, err)
	repo := symtab.NewRepository()
	require.NoError(t, repo.LoadManifest(m))

	var buf bytes.Buffer
	require.NoError(t, symtab.WriteManifest(&buf, repo.Manifest()))

	reloaded := symtab.NewRepository()
	m2, err := symtab.ReadManifest(&buf)
	require.NoError(t, err)
	require.NoError(t, reloaded.LoadManifest(m2))

	for _, td := range repo.Types() {
		other, err := reloaded.LookupTypeDef(td.Id())
		require.NoError(t, err, td.Id())
		assert.Equal(t, td.Describe(), other.Describe())
		assert.Equal(t, td.Kind(), other.Kind())
	}
}
