package wal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/storage"
)

func TestManagerAppendFlushAndIterate(t *testing.T) {
	dir := t.TempDir()
	fm, err := file.NewManager(dir, 20)
	require.NoError(t, err)

	lm, err := NewManager(fm, "wal")
	require.NoError(t, err)

	lsn, err := lm.Append([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 1, lsn)

	require.NoError(t, lm.Flush(1))

	raw := make([]byte, 20)
	copy(raw, []byte{0, 0, 0, 13})
	copy(raw[13:], []byte{0, 0, 0, 3})
	copy(raw[17:], []byte("abc"))
	require.Equal(t, raw, readRawBlock(t, dir, "wal", 0, 20))

	lsn, err = lm.Append([]byte("def"))
	require.NoError(t, err)
	require.Equal(t, 2, lsn)

	require.NoError(t, lm.Flush(2))

	raw2 := make([]byte, 20)
	copy(raw2, []byte{0, 0, 0, 6})
	copy(raw2[6:], []byte{0, 0, 0, 3})
	copy(raw2[10:], []byte("def"))
	copy(raw2[13:], []byte{0, 0, 0, 3})
	copy(raw2[17:], []byte("abc"))
	require.Equal(t, raw2, readRawBlock(t, dir, "wal", 0, 20))

	lsn, err = lm.Append([]byte("ghi"))
	require.NoError(t, err)
	require.Equal(t, 3, lsn)

	require.NoError(t, lm.Flush(3))

	it, err := lm.Iterator()
	require.NoError(t, err)

	var got []string
	for it.HasNext() {
		rec, err := it.Next()
		require.NoError(t, err)
		got = append(got, string(rec))
	}
	it.Close()

	require.Equal(t, []string{"ghi", "def", "abc"}, got)
}

func readRawBlock(t *testing.T, dir, name string, block, size int) []byte {
	t.Helper()
	fm, err := file.NewManager(dir, size)
	require.NoError(t, err)

	page := storage.NewPage(size)
	require.NoError(t, fm.Read(storage.NewBlockId(name, block), page))
	return page.Contents()
}
