package tx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/blockdb/buffer"
	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/wal"
)

// testStack bundles the subsystems a Transaction needs, all rooted at the
// same on-disk directory so a stack can be torn down and rebuilt against
// the same files to simulate a process restart.
type testStack struct {
	dir        string
	blockSize  int
	numBuffers int

	fm *file.Manager
	lm *wal.Manager
	bm *buffer.Manager
	lt *LockTable
	rg *Registry
}

func newTestStack(t *testing.T, dir string, blockSize, numBuffers int) *testStack {
	t.Helper()

	fm, err := file.NewManager(dir, blockSize)
	require.NoError(t, err)

	lm, err := wal.NewManager(fm, "wal")
	require.NoError(t, err)

	bm := buffer.NewManager(fm, lm, numBuffers)

	return &testStack{
		dir:        dir,
		blockSize:  blockSize,
		numBuffers: numBuffers,
		fm:         fm,
		lm:         lm,
		bm:         bm,
		lt:         NewLockTable(),
		rg:         NewRegistry(),
	}
}

// reopen simulates a process restart: it builds a fresh set of subsystems
// pointed at the same directory, as if the prior ones had never existed.
func (s *testStack) reopen(t *testing.T) *testStack {
	t.Helper()
	return newTestStack(t, s.dir, s.blockSize, s.numBuffers)
}

func (s *testStack) newTx(t *testing.T) *Transaction {
	t.Helper()
	txn, err := New(s.fm, s.lm, s.bm, s.lt, s.rg)
	require.NoError(t, err)
	return txn
}
