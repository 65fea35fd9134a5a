package tx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCommitSurvivesRestartAndRecovery exercises a committed write
// surviving a simulated process restart: T1 writes and commits, the
// stack is rebuilt from scratch, Recover runs, and a fresh transaction
// must see the committed value.
func TestCommitSurvivesRestartAndRecovery(t *testing.T) {
	dir := t.TempDir()
	stack := newTestStack(t, dir, 400, 8)

	t1 := stack.newTx(t)
	block, err := t1.Append("data")
	require.NoError(t, err)
	require.NoError(t, t1.Pin(block))
	require.NoError(t, t1.SetInt(block, 0, 123, true))
	t1.Unpin(block)
	require.NoError(t, t1.Commit())

	restarted := stack.reopen(t)

	recoverTx := restarted.newTx(t)
	require.NoError(t, recoverTx.Recover())

	reader := restarted.newTx(t)
	require.NoError(t, reader.Pin(block))
	val, err := reader.GetInt(block, 0)
	require.NoError(t, err)
	require.EqualValues(t, 123, val)
	reader.Unpin(block)
	require.NoError(t, reader.Commit())
}

// TestRollbackUndoesUncommittedChange exercises T1 committing a baseline
// value, T2 overwriting it and rolling back, and T3 observing the
// baseline restored.
func TestRollbackUndoesUncommittedChange(t *testing.T) {
	dir := t.TempDir()
	stack := newTestStack(t, dir, 400, 8)

	t1 := stack.newTx(t)
	block, err := t1.Append("data")
	require.NoError(t, err)
	require.NoError(t, t1.Pin(block))
	require.NoError(t, t1.SetInt(block, 0, 123, true))
	t1.Unpin(block)
	require.NoError(t, t1.Commit())

	t2 := stack.newTx(t)
	require.NoError(t, t2.Pin(block))
	require.NoError(t, t2.SetInt(block, 0, 456, true))
	t2.Unpin(block)
	require.NoError(t, t2.Rollback())

	t3 := stack.newTx(t)
	require.NoError(t, t3.Pin(block))
	val, err := t3.GetInt(block, 0)
	require.NoError(t, err)
	require.EqualValues(t, 123, val)
	t3.Unpin(block)
	require.NoError(t, t3.Commit())
}

func TestQuiescentCheckpointWritesCheckpointRecord(t *testing.T) {
	dir := t.TempDir()
	stack := newTestStack(t, dir, 400, 8)

	t1 := stack.newTx(t)
	block, err := t1.Append("data")
	require.NoError(t, err)
	require.NoError(t, t1.Pin(block))
	require.NoError(t, t1.SetInt(block, 0, 7, true))
	t1.Unpin(block)
	require.NoError(t, t1.Commit())

	require.NoError(t, Checkpoint(stack.rg, stack.bm, stack.lm))

	it, err := stack.lm.Iterator()
	require.NoError(t, err)
	defer it.Close()
	require.True(t, it.HasNext())
	raw, err := it.Next()
	require.NoError(t, err)
	rec, err := createLogRecord(raw)
	require.NoError(t, err)
	require.Equal(t, CHECKPOINT, rec.Op())
}

// TestRecoveryStopsAtNQCheckpointSeededUnfinishedSet exercises recovery's
// refined scan: T1 commits before a non-quiescent checkpoint, T2 is still
// open when the NQCKPT is taken and never finishes before the crash. On
// restart, recovery must undo T2's uncommitted write but leave T1's
// committed write alone, and must not scan past T2's START record even
// though it sits before the NQCKPT in the log.
func TestRecoveryStopsAtNQCheckpointSeededUnfinishedSet(t *testing.T) {
	dir := t.TempDir()
	stack := newTestStack(t, dir, 400, 8)

	t1 := stack.newTx(t)
	block, err := t1.Append("data")
	require.NoError(t, err)
	require.NoError(t, t1.Pin(block))
	require.NoError(t, t1.SetInt(block, 0, 1, true))
	t1.Unpin(block)
	require.NoError(t, t1.Commit())

	t2 := stack.newTx(t)
	require.NoError(t, t2.Pin(block))
	require.NoError(t, t2.SetInt(block, 0, 999, true))
	t2.Unpin(block)

	require.NoError(t, NQCheckpoint(stack.rg, stack.bm, stack.lm))

	// t2 never commits or rolls back: the process "crashes" here.
	restarted := stack.reopen(t)
	recoverTx := restarted.newTx(t)
	require.NoError(t, recoverTx.Recover())

	reader := restarted.newTx(t)
	require.NoError(t, reader.Pin(block))
	val, err := reader.GetInt(block, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, val)
	reader.Unpin(block)
	require.NoError(t, reader.Commit())
}

func TestAppendAndSizeAgree(t *testing.T) {
	dir := t.TempDir()
	stack := newTestStack(t, dir, 400, 8)

	txn := stack.newTx(t)
	_, err := txn.Append("data")
	require.NoError(t, err)
	_, err = txn.Append("data")
	require.NoError(t, err)

	size, err := txn.Size("data")
	require.NoError(t, err)
	require.Equal(t, 2, size)
	require.NoError(t, txn.Commit())
}

func TestSetStringGetStringRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stack := newTestStack(t, dir, 400, 8)

	txn := stack.newTx(t)
	block, err := txn.Append("data")
	require.NoError(t, err)
	require.NoError(t, txn.Pin(block))
	require.NoError(t, txn.SetString(block, 0, "hello world", true))
	got, err := txn.GetString(block, 0)
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
	txn.Unpin(block)
	require.NoError(t, txn.Commit())
}
