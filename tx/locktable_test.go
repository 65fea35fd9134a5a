package tx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/blockdb/dberr"
	"github.com/wrenfield/blockdb/storage"
)

func TestLockTableSharedLocksCoexist(t *testing.T) {
	lt := NewLockTable()
	block := storage.NewBlockId("data", 0)

	require.NoError(t, lt.SLock(block))
	require.NoError(t, lt.SLock(block))
	lt.Unlock(block)
	lt.Unlock(block)
}

func TestLockTableXLockTimesOutUnderConcurrentSLock(t *testing.T) {
	lt := NewLockTable()
	block := storage.NewBlockId("data", 0)

	require.NoError(t, lt.SLock(block))

	bHasLock := make(chan struct{})
	go func() {
		require.NoError(t, lt.SLock(block))
		close(bHasLock)
		time.Sleep(2 * MaxWaitTime)
		lt.Unlock(block)
	}()
	<-bHasLock

	start := time.Now()
	err := lt.XLock(block)
	elapsed := time.Since(start)

	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.Deadlock), "expected a deadlock timeout, got %v", err)
	require.GreaterOrEqual(t, elapsed, MaxWaitTime)
}

func TestConcurrencyManagerSLockThenXLockConversionTimesOut(t *testing.T) {
	lt := NewLockTable()
	block := storage.NewBlockId("data", 0)

	cmA := NewConcurrencyManager(lt)
	cmB := NewConcurrencyManager(lt)

	require.NoError(t, cmA.SLock(block))
	require.NoError(t, cmB.SLock(block))

	err := cmA.XLock(block)
	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.Deadlock))

	cmA.Release()
	cmB.Release()
}
