package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	base := filepath.Join(t.TempDir(), "exports")
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	path, err := s.Save("nested/colleges.csv", []byte("ID,College\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "nested", "colleges.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,College\n", string(raw))

	_, err = s.Save("nested/colleges.csv", []byte("replaced"))
	require.NoError(t, err)
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(raw))

	entries, err := os.ReadDir(filepath.Join(base, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStorageAbsolutePath(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "out.pdf")
	assert.Equal(t, target, s.Path(target))
	path, err := s.Save(target, []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, target, path)
}
