package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersion(t *testing.T) {
	t.Run("Should create valid version from string", func(t *testing.T) {
		version, err := NewVersion("1.2.3")
		require.NoError(t, err)
		assert.NotNil(t, version)
		assert.Equal(t, "v1.2.3", version.String())
	})
	t.Run("Should return invalid input error for malformed string", func(t *testing.T) {
		version, err := NewVersion("not-a-version")
		assert.Error(t, err)
		assert.Nil(t, version)
		assert.True(t, IsKind(err, KindInvalidInput))
	})
	t.Run("Should handle version with v prefix", func(t *testing.T) {
		version, err := NewVersion("v1.2.3")
		require.NoError(t, err)
		assert.Equal(t, "v1.2.3", version.String())
	})
	t.Run("Should handle prerelease versions", func(t *testing.T) {
		version, err := NewVersion("1.2.3-rc.1")
		require.NoError(t, err)
		assert.Equal(t, "v1.2.3-rc.1", version.String())
	})
}

func TestVersion_Bump(t *testing.T) {
	t.Run("Should bump major and reset minor and patch", func(t *testing.T) {
		version, err := NewVersion("1.5.8")
		require.NoError(t, err)
		assert.Equal(t, "v2.0.0", version.Bump(BumpMajor).String())
	})
	t.Run("Should bump minor and reset patch", func(t *testing.T) {
		version, err := NewVersion("1.2.5")
		require.NoError(t, err)
		assert.Equal(t, "v1.3.0", version.Bump(BumpMinor).String())
	})
	t.Run("Should bump patch", func(t *testing.T) {
		version, err := NewVersion("2.5.0")
		require.NoError(t, err)
		assert.Equal(t, "v2.5.1", version.Bump(BumpPatch).String())
	})
	t.Run("Should drop prerelease suffix when bumping", func(t *testing.T) {
		version, err := NewVersion("1.2.3-rc.1")
		require.NoError(t, err)
		assert.Equal(t, "v1.2.4", version.Bump(BumpPatch).String())
	})
}

func TestParseBumpKind(t *testing.T) {
	t.Run("Should default to patch when unspecified", func(t *testing.T) {
		kind, err := ParseBumpKind("")
		require.NoError(t, err)
		assert.Equal(t, BumpPatch, kind)
	})
	t.Run("Should accept the three component names", func(t *testing.T) {
		for _, s := range []string{"major", "minor", "patch"} {
			kind, err := ParseBumpKind(s)
			require.NoError(t, err)
			assert.Equal(t, BumpKind(s), kind)
		}
	})
	t.Run("Should reject unknown kinds", func(t *testing.T) {
		_, err := ParseBumpKind("micro")
		assert.True(t, IsKind(err, KindInvalidInput))
	})
}

func TestVersion_Compare(t *testing.T) {
	t.Run("Should compare versions numerically not lexicographically", func(t *testing.T) {
		v9, err := NewVersion("v1.9.0")
		require.NoError(t, err)
		v10, err := NewVersion("v1.10.0")
		require.NoError(t, err)
		assert.Equal(t, -1, v9.Compare(v10))
		assert.Equal(t, 1, v10.Compare(v9))
	})
	t.Run("Should rank release above prerelease of same triple", func(t *testing.T) {
		rel, err := NewVersion("v2.0.0")
		require.NoError(t, err)
		pre, err := NewVersion("v2.0.0-rc.1")
		require.NoError(t, err)
		assert.Equal(t, 1, rel.Compare(pre))
	})
}
