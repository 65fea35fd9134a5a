package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/blockdb/storage"
)

func TestOpenCommitCloseReopenRecovers(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.BlockSize = 400
	cfg.BufferPoolSize = 8

	database, err := Open(cfg)
	require.NoError(t, err)

	txn, err := database.NewTx()
	require.NoError(t, err)
	block, err := txn.Append("data")
	require.NoError(t, err)
	require.NoError(t, txn.Pin(block))
	require.NoError(t, txn.SetInt(block, 0, 42, true))
	txn.Unpin(block)
	require.NoError(t, txn.Commit())

	require.NoError(t, database.Close())

	reopened, err := Open(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	reader, err := reopened.NewTx()
	require.NoError(t, err)
	require.NoError(t, reader.Pin(block))
	val, err := reader.GetInt(block, 0)
	require.NoError(t, err)
	require.EqualValues(t, 42, val)
	reader.Unpin(block)
	require.NoError(t, reader.Commit())
}

func TestCheckpointDrainsActiveTransaction(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.BlockSize = 400
	cfg.BufferPoolSize = 8

	database, err := Open(cfg)
	require.NoError(t, err)
	defer database.Close()

	txn, err := database.NewTx()
	require.NoError(t, err)

	committed := make(chan error, 1)
	go func() {
		time.Sleep(cfg.MaxWaitTime / 4)
		committed <- txn.Commit()
	}()

	require.NoError(t, database.Checkpoint())
	require.NoError(t, <-committed)
}

func TestNQCheckpointDoesNotBlockOnActiveTransaction(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.BlockSize = 400
	cfg.BufferPoolSize = 8

	database, err := Open(cfg)
	require.NoError(t, err)
	defer database.Close()

	txn, err := database.NewTx()
	require.NoError(t, err)

	require.NoError(t, database.NQCheckpoint())
	require.NoError(t, txn.Commit())
}

func TestAppendGrowsFileAcrossTransactions(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.BlockSize = 400
	cfg.BufferPoolSize = 8

	database, err := Open(cfg)
	require.NoError(t, err)
	defer database.Close()

	var blocks []storage.BlockId
	for i := 0; i < 3; i++ {
		txn, err := database.NewTx()
		require.NoError(t, err)
		b, err := txn.Append("data")
		require.NoError(t, err)
		blocks = append(blocks, b)
		require.NoError(t, txn.Commit())
	}

	for i, b := range blocks {
		require.Equal(t, i, b.Number())
	}
}
