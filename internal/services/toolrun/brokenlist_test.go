package toolrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/outcome"
)

func TestLoadBrokenListMissingFileYieldsEmptyList(t *testing.T) {
	list, err := LoadBrokenList(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	_, ok := list.IsBroken("anything")
	assert.False(t, ok)
}

func TestLoadBrokenListParsesReasonsAndDefaultsEmptyToUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	writeFile(t, path, `{"left-pad": "bad-manifest", "no-repo": "missing-git-repo", "mystery": ""}`)

	list, err := LoadBrokenList(path)
	require.NoError(t, err)

	reason, ok := list.IsBroken("left-pad")
	require.True(t, ok)
	assert.Equal(t, outcome.BrokenBadManifest, reason)

	reason, ok = list.IsBroken("no-repo")
	require.True(t, ok)
	assert.Equal(t, outcome.BrokenMissingGitRepo, reason)

	reason, ok = list.IsBroken("mystery")
	require.True(t, ok)
	assert.Equal(t, outcome.BrokenUnknown, reason)

	_, ok = list.IsBroken("not-listed")
	assert.False(t, ok)
}

func TestLoadBrokenListRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	writeFile(t, path, `not json`)

	_, err := LoadBrokenList(path)
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}
