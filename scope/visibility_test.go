package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifabos/typescope/scope"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "IN_SCOPE", scope.InScope.String())
	assert.Equal(t, "HIDDEN", scope.Hidden.String())
	assert.Equal(t, "IMPORTABLE", scope.Importable.String())
	assert.Equal(t, "UNKNOWN(7)", scope.State(7).String())
}

func TestParseVisibility(t *testing.T) {
	for in, want := range map[string]scope.Visibility{
		"public":          scope.Public,
		"PROTECTED":       scope.Protected,
		"package-private": scope.Package,
		"":                scope.Package,
		"private":         scope.Private,
		"unknown":         scope.Unknown,
	} {
		got, err := scope.ParseVisibility(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := scope.ParseVisibility("friend")
	assert.Error(t, err)
}

func TestModifiersVisibility(t *testing.T) {
	assert.Equal(t, scope.Public, (scope.ModPublic | scope.ModStatic).Visibility())
	assert.Equal(t, scope.Protected, scope.ModProtected.Visibility())
	assert.Equal(t, scope.Private, (scope.ModPrivate | scope.ModFinal).Visibility())
	assert.Equal(t, scope.Package, scope.ModAbstract.Visibility())
	assert.Equal(t, scope.Package, scope.Modifiers(0).Visibility())

	mods := scope.ModPublic | scope.ModStatic | scope.ModFinal
	assert.Equal(t, "public static final", mods.String())
	assert.True(t, mods.HasAccess())
	assert.False(t, scope.ModStatic.HasAccess())

	m, ok := scope.ParseModifier("non-sealed")
	assert.True(t, ok)
	assert.Equal(t, scope.ModNonSealed, m)
	_, ok = scope.ParseModifier("volatile")
	assert.False(t, ok)
}
