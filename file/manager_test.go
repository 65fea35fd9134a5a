package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/blockdb/storage"
)

func TestManagerAppendWriteRead(t *testing.T) {
	dir := t.TempDir()
	fm, err := NewManager(dir, 64)
	require.NoError(t, err)

	block, err := fm.Append("data")
	require.NoError(t, err)
	require.Equal(t, 0, block.Number())

	page := storage.NewPage(64)
	page.SetString(0, "hello block")
	require.NoError(t, fm.Write(block, page))

	out := storage.NewPage(64)
	require.NoError(t, fm.Read(block, out))
	require.Equal(t, "hello block", out.GetString(0))
}

func TestManagerLengthGrowsOnAppend(t *testing.T) {
	dir := t.TempDir()
	fm, err := NewManager(dir, 32)
	require.NoError(t, err)

	n, err := fm.Length("grow")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	for i := 0; i < 3; i++ {
		_, err := fm.Append("grow")
		require.NoError(t, err)
	}

	n, err = fm.Length("grow")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestManagerReadBeyondEndOfFileFails(t *testing.T) {
	dir := t.TempDir()
	fm, err := NewManager(dir, 32)
	require.NoError(t, err)

	page := storage.NewPage(32)
	err = fm.Read(storage.NewBlockId("missing", 0), page)
	require.Error(t, err)
}

func TestNewManagerRemovesTempFiles(t *testing.T) {
	dir := t.TempDir()

	fm, err := NewManager(dir, 32)
	require.NoError(t, err)
	_, err = fm.Append("tempscratch")
	require.NoError(t, err)
	require.NoError(t, fm.Close())

	_, err = NewManager(dir, 32)
	require.NoError(t, err)

	require.NoFileExists(t, filepath.Join(dir, "tempscratch"))
}
