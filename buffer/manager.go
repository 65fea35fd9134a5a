package buffer

import (
	"sync"
	"time"

	"github.com/wrenfield/blockdb/dberr"
	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/storage"
	"github.com/wrenfield/blockdb/wal"
)

// MaxWaitTime is the default bound on how long Pin waits for a frame to
// become available before failing with dberr.NoAvailableBuffer. A Manager
// built with NewManager uses this value; NewManagerWithWaitTime lets a
// caller override it from Config.max_wait_time_ms.
const MaxWaitTime = 100 * time.Millisecond

// Manager owns a fixed-size pool of frames and arbitrates pinning them to
// blocks. Replacement is any-unpinned, with ties broken by picking the
// smallest frame index, so outcomes are reproducible under test.
type Manager struct {
	mu   sync.Mutex
	cond *sync.Cond

	pool         []*Buffer
	numAvailable int
	maxWaitTime  time.Duration
}

// NewManager allocates numBuffers frames, each backed by fm for I/O and lm
// for write-ahead log flushing, waiting up to MaxWaitTime for a free frame.
func NewManager(fm *file.Manager, lm *wal.Manager, numBuffers int) *Manager {
	return NewManagerWithWaitTime(fm, lm, numBuffers, MaxWaitTime)
}

// NewManagerWithWaitTime is NewManager with the Pin wait bound taken from
// the caller (db.Config.MaxWaitTime) instead of the package default.
func NewManagerWithWaitTime(fm *file.Manager, lm *wal.Manager, numBuffers int, maxWaitTime time.Duration) *Manager {
	bm := &Manager{
		pool:         make([]*Buffer, numBuffers),
		numAvailable: numBuffers,
		maxWaitTime:  maxWaitTime,
	}
	bm.cond = sync.NewCond(&bm.mu)

	for i := range bm.pool {
		bm.pool[i] = newBuffer(fm, lm)
	}

	return bm
}

// Available returns the number of currently unpinned frames.
func (bm *Manager) Available() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.numAvailable
}

// FlushAll flushes every frame last modified by txnum. A txnum of -1 means
// "flush every dirty frame regardless of which transaction modified it",
// the behavior checkpointing relies on.
func (bm *Manager) FlushAll(txnum int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, b := range bm.pool {
		if txnum == -1 || b.ModifyingTx() == txnum {
			if err := b.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unpin releases one pin held on b. A frame whose pin count drops to zero
// wakes any goroutine waiting in Pin.
func (bm *Manager) Unpin(b *Buffer) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	b.unpin()
	if !b.IsPinned() {
		bm.numAvailable++
		bm.cond.Broadcast()
	}
}

// Pin assigns block to a frame and increments its pin count, waiting for a
// frame to free up if the pool is fully pinned. It fails with
// dberr.NoAvailableBuffer if no frame becomes available within this
// Manager's configured wait bound.
func (bm *Manager) Pin(block storage.BlockId) (*Buffer, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	deadline := time.Now().Add(bm.maxWaitTime)

	b, err := bm.tryPin(block)
	if err != nil {
		return nil, err
	}

	for b == nil {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, dberr.New(dberr.NoAvailableBuffer, "no available buffer")
		}
		waitWithTimeout(bm.cond, remaining)

		b, err = bm.tryPin(block)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// tryPin attempts a single pin without waiting. Caller must hold mu.
func (bm *Manager) tryPin(block storage.BlockId) (*Buffer, error) {
	b := bm.findExisting(block)
	if b == nil {
		b = bm.chooseUnpinned()
		if b == nil {
			return nil, nil
		}
		if err := b.assignToBlock(block); err != nil {
			return nil, err
		}
	}

	if !b.IsPinned() {
		bm.numAvailable--
	}
	b.pin()
	return b, nil
}

func (bm *Manager) findExisting(block storage.BlockId) *Buffer {
	for _, b := range bm.pool {
		if b.block == block {
			return b
		}
	}
	return nil
}

func (bm *Manager) chooseUnpinned() *Buffer {
	for _, b := range bm.pool {
		if !b.IsPinned() {
			return b
		}
	}
	return nil
}

// waitWithTimeout waits on cond for up to d, always re-acquiring cond's
// lock before returning as sync.Cond.Wait requires.
func waitWithTimeout(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}
