// Package tx implements the concurrency and recovery layer: block-level
// S/X locking with timeout-based deadlock detection, typed undo log
// records, transaction lifecycle, and checkpointing.
package tx

import (
	"sync"
	"time"

	"github.com/wrenfield/blockdb/dberr"
	"github.com/wrenfield/blockdb/storage"
)

// MaxWaitTime is the default bound on every blocking wait in the
// concurrency layer: lock acquisition, and (in the registry) the
// checkpoint barrier. NewLockTable/NewRegistry use this value unless a
// caller overrides it (via the *WithWaitTime constructors) from
// Config.max_wait_time_ms.
const MaxWaitTime = 100 * time.Millisecond

// LockTable holds one lock word per block: 0 means unlocked, a positive
// count n means n shared holders, -1 means a single exclusive holder.
// A single mutex and condition variable guard the whole map.
type LockTable struct {
	mu   sync.Mutex
	cond *sync.Cond

	locks       map[storage.BlockId]int
	maxWaitTime time.Duration
}

// NewLockTable returns an empty lock table that waits up to MaxWaitTime.
func NewLockTable() *LockTable {
	return NewLockTableWithWaitTime(MaxWaitTime)
}

// NewLockTableWithWaitTime is NewLockTable with the S/X lock wait bound
// taken from the caller (db.Config.MaxWaitTime) instead of the package
// default.
func NewLockTableWithWaitTime(maxWaitTime time.Duration) *LockTable {
	lt := &LockTable{locks: make(map[storage.BlockId]int), maxWaitTime: maxWaitTime}
	lt.cond = sync.NewCond(&lt.mu)
	return lt
}

// SLock acquires a shared lock on block, waiting out any exclusive holder
// up to this table's configured wait bound before failing with
// dberr.Deadlock.
func (lt *LockTable) SLock(block storage.BlockId) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	deadline := time.Now().Add(lt.maxWaitTime)
	for lt.locks[block] < 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return dberr.New(dberr.Deadlock, "timed out waiting for shared lock")
		}
		waitWithTimeout(lt.cond, remaining)
	}

	lt.locks[block]++
	return nil
}

// XLock acquires an exclusive lock on block. The caller is expected to
// already hold an S-lock (state == 1 is that lock, about to be upgraded);
// any additional shared holder (state > 1) is waited out.
func (lt *LockTable) XLock(block storage.BlockId) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	deadline := time.Now().Add(lt.maxWaitTime)
	for lt.locks[block] > 1 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return dberr.New(dberr.Deadlock, "timed out waiting for exclusive lock")
		}
		waitWithTimeout(lt.cond, remaining)
	}

	lt.locks[block] = -1
	return nil
}

// Unlock releases one holder's lock on block: decrements a shared count,
// or clears an exclusive lock and wakes any waiters.
func (lt *LockTable) Unlock(block storage.BlockId) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	val := lt.locks[block]
	if val > 1 {
		lt.locks[block] = val - 1
		return
	}

	delete(lt.locks, block)
	lt.cond.Broadcast()
}

// waitWithTimeout waits on cond for up to d, guaranteeing Wait returns
// (via a timer-driven Broadcast) even if nobody else signals.
func waitWithTimeout(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}
