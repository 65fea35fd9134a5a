package tx

import "github.com/wrenfield/blockdb/storage"

type lockMode byte

const (
	modeShared lockMode = 'S'
	modeExclusive lockMode = 'X'
)

// ConcurrencyManager mediates one transaction's access to the shared
// LockTable, remembering the strongest mode already held per block so
// repeated requests are no-ops and an S-to-X request becomes a conversion.
// It carries no lock of its own: it is only ever used by its owning
// transaction, single-threaded.
type ConcurrencyManager struct {
	lt    *LockTable
	locks map[storage.BlockId]lockMode
}

// NewConcurrencyManager returns an empty per-transaction manager backed by
// the shared lock table lt.
func NewConcurrencyManager(lt *LockTable) *ConcurrencyManager {
	return &ConcurrencyManager{
		lt:    lt,
		locks: make(map[storage.BlockId]lockMode),
	}
}

// SLock acquires (or reuses) a shared lock on block.
func (cm *ConcurrencyManager) SLock(block storage.BlockId) error {
	if _, held := cm.locks[block]; held {
		return nil
	}
	if err := cm.lt.SLock(block); err != nil {
		return err
	}
	cm.locks[block] = modeShared
	return nil
}

// XLock acquires an exclusive lock on block, first taking a shared lock
// (a no-op if one is already held) so the LockTable sees the conversion.
func (cm *ConcurrencyManager) XLock(block storage.BlockId) error {
	if cm.locks[block] == modeExclusive {
		return nil
	}
	if err := cm.SLock(block); err != nil {
		return err
	}
	if err := cm.lt.XLock(block); err != nil {
		return err
	}
	cm.locks[block] = modeExclusive
	return nil
}

// Release unlocks every block this transaction holds and clears its
// bookkeeping. Called exactly once, at commit or rollback.
func (cm *ConcurrencyManager) Release() {
	for block := range cm.locks {
		cm.lt.Unlock(block)
	}
	cm.locks = make(map[storage.BlockId]lockMode)
}
