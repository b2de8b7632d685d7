package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestDiscovery_FindInputs(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	touch(t, filepath.Join(dir, "b.xlsx"), base)
	touch(t, filepath.Join(dir, "a.CSV"), base.Add(time.Minute))
	touch(t, filepath.Join(dir, "a-appended.CSV"), base)
	touch(t, filepath.Join(dir, "a-summary.txt"), base)
	touch(t, filepath.Join(dir, "~$b.xlsx"), base)
	touch(t, filepath.Join(dir, "notes.md"), base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	found, err := NewDiscovery("", ".csv", ".xlsx").FindInputs(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range found {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"b.xlsx", "a.CSV"}, names)

	_, err = NewDiscovery("", ".csv").FindInputs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestDerivedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "in-appended.csv"), DerivedPath(filepath.Join("data", "in.csv"), AppendedSuffix, ""))
	assert.Equal(t, filepath.Join("data", "in-summary.txt"), DerivedPath(filepath.Join("data", "in.csv"), SummarySuffix, ".txt"))
	assert.Equal(t, "in-appended", DerivedPath("in", AppendedSuffix, ""))
}

func TestCopyFileAndSamePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.xlsx")
	dst := filepath.Join(dir, "out", "dst.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))

	require.NoError(t, CopyFile(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))

	assert.True(t, FileExists(dst))
	assert.False(t, FileExists(dir))
	assert.True(t, SamePath(src, filepath.Join(dir, ".", "src.xlsx")))
	assert.False(t, SamePath(src, dst))
	assert.True(t, SamePath(filepath.Join(dir, "new.csv"), filepath.Join(dir, "x", "..", "new.csv")))
}
