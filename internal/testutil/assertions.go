package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/variantgrid/internal/variant"
)

// AssertAllVariants checks that every variant of the source with the given
// base name exists in <root>/output/<rel>, and that no transient source was
// left behind.
func AssertAllVariants(t *testing.T, result *HarnessResult, rel, baseName string) {
	t.Helper()

	dir := result.Path("output", rel)
	for _, tag := range variant.All() {
		require.FileExists(t, filepath.Join(dir, variant.ArtifactName(baseName, tag)))
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, baseName+"_*_temp*"))
	require.NoError(t, err)
	require.Empty(t, leftovers, "transient sources left in %s", dir)
}

// AssertNoOutput checks that the run left no output tree at all.
func AssertNoOutput(t *testing.T, result *HarnessResult) {
	t.Helper()
	require.NoDirExists(t, result.Path("output"))
}
