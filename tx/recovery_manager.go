package tx

import (
	"github.com/wrenfield/blockdb/buffer"
	"github.com/wrenfield/blockdb/wal"
)

// recoveryManager is the per-transaction half of the recovery subsystem:
// it writes this transaction's START record at construction, and drives
// commit/rollback by flushing buffers and appending the terminating
// record. Crash recovery itself (doRecover, below) is not per-transaction;
// it runs once at database open, riding a dedicated Transaction purely to
// reuse its Pin/Unpin/SetT(log=false) undo path.
type recoveryManager struct {
	lm    *wal.Manager
	bm    *buffer.Manager
	tx    *Transaction
	txnum int
}

func newRecoveryManager(tx *Transaction, txnum int, lm *wal.Manager, bm *buffer.Manager) (*recoveryManager, error) {
	rm := &recoveryManager{lm: lm, bm: bm, tx: tx, txnum: txnum}
	if _, err := logStart(lm, txnum); err != nil {
		return nil, err
	}
	return rm, nil
}

// commit flushes this transaction's dirty buffers, then appends and
// flushes a COMMIT record. Ordering matters: by the time the COMMIT
// record is durable, every page it describes is already on disk, so no
// redo is ever required.
func (rm *recoveryManager) commit() error {
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := logCommit(rm.lm, rm.txnum)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

// rollback undoes every change this transaction made, flushes the
// resulting buffers, and appends and flushes a ROLLBACK record.
func (rm *recoveryManager) rollback() error {
	if err := rm.doRollback(); err != nil {
		return err
	}
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := logRollback(rm.lm, rm.txnum)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

// doRollback scans the log newest-first, undoing every record belonging
// to this transaction until its START record is reached.
func (rm *recoveryManager) doRollback() error {
	it, err := rm.lm.Iterator()
	if err != nil {
		return err
	}
	defer it.Close()

	for it.HasNext() {
		raw, err := it.Next()
		if err != nil {
			return err
		}
		record, err := createLogRecord(raw)
		if err != nil {
			return err
		}
		if record.TxNumber() != rm.txnum {
			continue
		}
		if record.Op() == START {
			return nil
		}
		if err := record.Undo(rm.tx); err != nil {
			return err
		}
	}
	return nil
}

// doRecover implements the refined crash-recovery scan: it walks the log
// newest-first, tracking which transactions have already finished
// (committed or rolled back) and, once an NQCKPT record seeds it, which
// transactions were still unfinished at that checkpoint. It stops at a
// CHECKPOINT record, or once every transaction named by the seeding
// NQCKPT has been accounted for by its own START record - whichever comes
// first.
func doRecover(tx *Transaction, lm *wal.Manager) error {
	it, err := lm.Iterator()
	if err != nil {
		return err
	}
	defer it.Close()

	finished := make(map[int]struct{})
	var unfinished map[int]struct{}

	for it.HasNext() {
		raw, err := it.Next()
		if err != nil {
			return err
		}
		record, err := createLogRecord(raw)
		if err != nil {
			return err
		}

		switch record.Op() {
		case CHECKPOINT:
			return nil
		case NQCKPT:
			if unfinished == nil {
				rec := record.(nqCkptRecord)
				unfinished = make(map[int]struct{}, len(rec.txnums))
				for _, t := range rec.txnums {
					unfinished[t] = struct{}{}
				}
			}
		case START:
			if unfinished != nil {
				delete(unfinished, record.TxNumber())
				if len(unfinished) == 0 {
					return nil
				}
			}
		case COMMIT, ROLLBACK:
			finished[record.TxNumber()] = struct{}{}
		default:
			if _, done := finished[record.TxNumber()]; !done {
				if err := record.Undo(tx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
