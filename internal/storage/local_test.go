package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSave(t *testing.T) {
	store := NewLocal(t.TempDir())

	path, err := store.Save("posters", "cover.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/posters/"), "public path points under /uploads")
	assert.True(t, strings.HasSuffix(path, ".jpg"), "extension is kept, lowercased")

	onDisk := filepath.Join(store.BaseDir, strings.TrimPrefix(path, "/uploads/"))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocalSaveFlattensFolder(t *testing.T) {
	store := NewLocal(t.TempDir())

	path, err := store.Save("../../etc", "x.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/etc/"), "folder is flattened to its base name")

	_, err = os.Stat(filepath.Join(store.BaseDir, "etc"))
	assert.NoError(t, err)
}

func TestLocalSaveEmptyFolder(t *testing.T) {
	store := NewLocal(t.TempDir())

	path, err := store.Save("", "x.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/default/"))
}

func TestLocalSaveUniqueNames(t *testing.T) {
	store := NewLocal(t.TempDir())

	first, err := store.Save("p", "same.png", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Save("p", "same.png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "same original name never collides")
}
