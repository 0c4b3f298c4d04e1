package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_ListFilesAndExists(t *testing.T) {
	dir := t.TempDir()
	fsys := OSFileSystem{}

	for _, name := range []string{"b.bin", "a.pcd", "c.txt"} {
		require.NoError(t, fsys.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "sub.pcd"), 0755))

	names, err := fsys.ListFiles(dir, ".bin", ".PCD")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pcd", "b.bin"}, names)

	all, err := fsys.ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pcd", "b.bin", "c.txt"}, all)

	assert.True(t, fsys.Exists(filepath.Join(dir, "c.txt")))
	assert.False(t, fsys.Exists(filepath.Join(dir, "missing")))

	data, err := fsys.ReadFile(filepath.Join(dir, "a.pcd"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestMemoryFileSystem_WriteRequiresDir(t *testing.T) {
	mfs := NewMemoryFileSystem()

	err := mfs.WriteFile("/out/labels/a.txt", []byte("0 0.5 0.5 0.1 0.1\n"), 0644)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, mfs.MkdirAll("/out/labels", 0755))
	require.NoError(t, mfs.WriteFile("/out/labels/a.txt", []byte("0 0.5 0.5 0.1 0.1\n"), 0644))

	assert.True(t, mfs.Exists("/out"))
	assert.True(t, mfs.Exists("/out/labels/a.txt"))
	assert.Equal(t, []string{"/out/labels/a.txt"}, mfs.Files())
}

func TestMemoryFileSystem_ReadCopies(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/d", 0755))

	src := []byte("abc")
	require.NoError(t, mfs.WriteFile("/d/f", src, 0644))
	src[0] = 'z'

	got, err := mfs.ReadFile("/d/f")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'q'
	again, _ := mfs.ReadFile("/d/f")
	assert.Equal(t, "abc", string(again))

	_, err = mfs.ReadFile("/d/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemoryFileSystem_OpenAndList(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/radar/RADAR_FRONT", 0755))
	require.NoError(t, mfs.WriteFile("/radar/RADAR_FRONT/b.pcd", []byte("bb"), 0644))
	require.NoError(t, mfs.WriteFile("/radar/RADAR_FRONT/a.pcd", []byte("a"), 0644))
	require.NoError(t, mfs.WriteFile("/radar/RADAR_FRONT/notes.md", []byte("n"), 0644))

	names, err := mfs.ListFiles("/radar/RADAR_FRONT", ".pcd")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pcd", "b.pcd"}, names)

	_, err = mfs.ListFiles("/radar/RADAR_BACK_LEFT")
	assert.ErrorIs(t, err, os.ErrNotExist)

	f, err := mfs.Open("/radar/RADAR_FRONT/b.pcd")
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "bb", string(body))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size())
	assert.Equal(t, "b.pcd", info.Name())
}
