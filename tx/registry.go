package tx

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wrenfield/blockdb/buffer"
	"github.com/wrenfield/blockdb/dberr"
	"github.com/wrenfield/blockdb/wal"
)

// pollInterval is how often tryLockBarrier re-attempts the barrier's
// TryLock while QuiescentCheckpoint polls for exclusive access.
const pollInterval = 5 * time.Millisecond

// Registry holds the process-wide state that would otherwise be module
// globals: the next-transaction-number counter, the no-new-transactions
// checkpoint gate, and the active-transactions barrier together with the
// set of currently active transaction numbers it protects. One Registry is
// owned by a DB handle and shared by every Transaction it creates, so
// multiple independent DB instances can run in the same process without
// interfering.
type Registry struct {
	nextTxNum int64

	gate    sync.Mutex   // held by a checkpoint while it bars new transactions
	barrier sync.RWMutex // RLock held by each active transaction

	mu       sync.Mutex
	activeTx map[int]struct{}

	maxWaitTime time.Duration
}

// NewRegistry returns an empty registry with its transaction counter
// starting at 0 (the first transaction created will be numbered 1), whose
// quiescent checkpoints drain active transactions for up to MaxWaitTime.
func NewRegistry() *Registry {
	return NewRegistryWithWaitTime(MaxWaitTime)
}

// NewRegistryWithWaitTime is NewRegistry with the checkpoint-drain wait
// bound taken from the caller (db.Config.MaxWaitTime) instead of the
// package default.
func NewRegistryWithWaitTime(maxWaitTime time.Duration) *Registry {
	return &Registry{activeTx: make(map[int]struct{}), maxWaitTime: maxWaitTime}
}

// SetNextTxNumber primes the counter so the next transaction created gets
// n+1. Nothing in this module calls it: recovery does not look for the
// highest transaction number in the log, so a fresh Registry numbers
// transactions from 1 again.
func (r *Registry) SetNextTxNumber(n int) {
	atomic.StoreInt64(&r.nextTxNum, int64(n))
}

// beginTx blocks while a checkpoint holds the no-new-transactions gate,
// then takes a read lease on the active-transactions barrier and
// registers a freshly allocated transaction number. The caller must
// later call endTx with the same number.
func (r *Registry) beginTx() int {
	r.gate.Lock()
	r.gate.Unlock()

	r.barrier.RLock()

	num := int(atomic.AddInt64(&r.nextTxNum, 1))

	r.mu.Lock()
	r.activeTx[num] = struct{}{}
	r.mu.Unlock()

	return num
}

// endTx deregisters num and releases its barrier lease. Called exactly
// once, at commit or rollback.
func (r *Registry) endTx(num int) {
	r.mu.Lock()
	delete(r.activeTx, num)
	r.mu.Unlock()

	r.barrier.RUnlock()
}

// activeTxNumbers returns a snapshot of every currently active transaction
// number, for a non-quiescent checkpoint record.
func (r *Registry) activeTxNumbers() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	nums := make([]int, 0, len(r.activeTx))
	for n := range r.activeTx {
		nums = append(nums, n)
	}
	return nums
}

// QuiescentCheckpoint bars new transactions, drains the transactions
// already running (bounded by this Registry's configured wait time),
// flushes every dirty buffer and appends a CHECKPOINT record.
func (r *Registry) QuiescentCheckpoint(bm *buffer.Manager, lm *wal.Manager) error {
	r.gate.Lock()
	defer r.gate.Unlock()

	if !tryLockBarrier(&r.barrier, r.maxWaitTime) {
		return dberr.New(dberr.CheckpointTimeout, "quiescent checkpoint timed out draining active transactions")
	}
	defer r.barrier.Unlock()

	if err := bm.FlushAll(-1); err != nil {
		return err
	}
	lsn, err := logCheckpoint(lm)
	if err != nil {
		return err
	}
	return lm.Flush(lsn)
}

// NonQuiescentCheckpoint bars new transactions just long enough to flush
// dirty buffers and record which transactions are currently active; it
// does not wait for them to finish.
func (r *Registry) NonQuiescentCheckpoint(bm *buffer.Manager, lm *wal.Manager) error {
	r.gate.Lock()
	defer r.gate.Unlock()

	if err := bm.FlushAll(-1); err != nil {
		return err
	}

	lsn, err := logNQCkpt(lm, r.activeTxNumbers())
	if err != nil {
		return err
	}
	return lm.Flush(lsn)
}

// tryLockBarrier polls barrier.TryLock until it succeeds or d elapses.
func tryLockBarrier(barrier *sync.RWMutex, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		if barrier.TryLock() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}
