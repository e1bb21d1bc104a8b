package typescope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifabos/typescope"
	"github.com/ifabos/typescope/scope"
	"github.com/ifabos/typescope/symtab"
)

func TestNew(t *testing.T) {
	repo := typescope.NewRepository()
	pkg := repo.Package("com.foo")
	_, err := pkg.CreateType("Bar", symtab.DK_CLASS, scope.ModPublic)
	require.NoError(t, err)

	h := typescope.New(repo, typescope.WithUniversalPackage("java.lang"))
	bar, err := typescope.ParseName("com.foo.Bar")
	require.NoError(t, err)

	st, err := h.VisibilityInPackage("com.foo", bar)
	require.NoError(t, err)
	assert.Equal(t, typescope.InScope, st)

	st, err = h.VisibilityInPackage("com.other", bar)
	require.NoError(t, err)
	assert.Equal(t, typescope.Importable, st)
}
