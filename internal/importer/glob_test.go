package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# x\n"), 0o644))
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "specs", "b.md")
	c := filepath.Join(dir, "specs", "deep", "c.md")
	touch(t, a)
	touch(t, b)
	touch(t, c)
	touch(t, filepath.Join(dir, "specs", "notes.txt"))

	got, err := ExpandGlobs([]string{filepath.Join(dir, "**", "*.md"), a})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, c}, got, "duplicates are dropped")

	got, err = ExpandGlobs([]string{b})
	require.NoError(t, err)
	assert.Equal(t, []string{b}, got)
}

func TestExpandGlobs_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ExpandGlobs([]string{filepath.Join(dir, "*.md")})
	assert.ErrorContains(t, err, "matched no files")

	_, err = ExpandGlobs([]string{dir})
	assert.ErrorContains(t, err, "is a directory")

	_, err = ExpandGlobs([]string{filepath.Join(dir, "[.md")})
	assert.Error(t, err)
}
