package tx

import (
	"github.com/wrenfield/blockdb/buffer"
	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/storage"
	"github.com/wrenfield/blockdb/wal"
)

// Transaction coordinates locking, buffer pinning and undo logging for one
// unit of work. It is the sole entry point external callers use to read
// and write block-structured data: every accessor acquires the lock it
// needs before touching a pinned buffer.
type Transaction struct {
	fm       *file.Manager
	lm       *wal.Manager
	bm       *buffer.Manager
	registry *Registry

	cm      *ConcurrencyManager
	buffers *bufferList
	rm      *recoveryManager

	num int
}

// New starts a transaction: waits out any in-progress checkpoint, takes a
// read lease on the active-transactions barrier, allocates the next
// transaction number and writes its START record.
func New(fm *file.Manager, lm *wal.Manager, bm *buffer.Manager, lt *LockTable, registry *Registry) (*Transaction, error) {
	num := registry.beginTx()

	tx := &Transaction{
		fm:       fm,
		lm:       lm,
		bm:       bm,
		registry: registry,
		cm:       NewConcurrencyManager(lt),
		buffers:  newBufferList(bm),
		num:      num,
	}

	rm, err := newRecoveryManager(tx, num, lm, bm)
	if err != nil {
		registry.endTx(num)
		return nil, err
	}
	tx.rm = rm

	return tx, nil
}

// Number returns this transaction's number.
func (tx *Transaction) Number() int {
	return tx.num
}

// Pin pins block for the lifetime of this transaction (or until a
// matching Unpin). Pinning the same block twice requires two unpins.
func (tx *Transaction) Pin(block storage.BlockId) error {
	return tx.buffers.pin(block)
}

// Unpin releases one pin this transaction holds on block.
func (tx *Transaction) Unpin(block storage.BlockId) {
	tx.buffers.unpin(block)
}

// Commit flushes this transaction's dirty buffers, appends and flushes a
// COMMIT record, releases all locks, unpins every buffer and deregisters
// the transaction.
func (tx *Transaction) Commit() error {
	if err := tx.rm.commit(); err != nil {
		return err
	}
	tx.cm.Release()
	tx.buffers.unpinAll()
	tx.registry.endTx(tx.num)
	return nil
}

// Rollback undoes every change this transaction made, flushes the
// resulting buffers, appends and flushes a ROLLBACK record, releases all
// locks, unpins every buffer and deregisters the transaction.
func (tx *Transaction) Rollback() error {
	if err := tx.rm.rollback(); err != nil {
		return err
	}
	tx.cm.Release()
	tx.buffers.unpinAll()
	tx.registry.endTx(tx.num)
	return nil
}

// Recover runs crash recovery: it undoes every change made by
// transactions that were neither committed nor rolled back before the
// last crash, then writes a quiescent checkpoint. It is meant to be
// called once, at database startup, before any other transaction begins.
func (tx *Transaction) Recover() error {
	if err := doRecover(tx, tx.lm); err != nil {
		return err
	}
	if err := tx.bm.FlushAll(-1); err != nil {
		return err
	}
	lsn, err := logCheckpoint(tx.lm)
	if err != nil {
		return err
	}
	return tx.lm.Flush(lsn)
}

// BlockSize returns the database's configured block size.
func (tx *Transaction) BlockSize() int {
	return tx.fm.BlockSize()
}

// AvailableBuffers returns the number of currently unpinned frames.
func (tx *Transaction) AvailableBuffers() int {
	return tx.bm.Available()
}

// Size returns the number of blocks in file, under a shared lock on its
// end-of-file sentinel so a concurrent Append can't race a reader of the
// file's length.
func (tx *Transaction) Size(file string) (int, error) {
	eof := storage.NewBlockId(file, storage.EOF)
	if err := tx.cm.SLock(eof); err != nil {
		return 0, err
	}
	return tx.fm.Length(file)
}

// Append extends file by one block, under an exclusive lock on its
// end-of-file sentinel.
func (tx *Transaction) Append(file string) (storage.BlockId, error) {
	eof := storage.NewBlockId(file, storage.EOF)
	if err := tx.cm.XLock(eof); err != nil {
		return storage.BlockId{}, err
	}
	return tx.fm.Append(file)
}

func (tx *Transaction) buffer(block storage.BlockId) *buffer.Buffer {
	return tx.buffers.getBuffer(block)
}

// GetInt reads the int32 at offset in block, under a shared lock.
func (tx *Transaction) GetInt(block storage.BlockId, offset int) (int32, error) {
	if err := tx.cm.SLock(block); err != nil {
		return 0, err
	}
	return tx.buffer(block).Contents().Int(offset), nil
}

// SetInt writes val at offset in block, under an exclusive lock. If log is
// true, the pre-image is captured in a SETINT undo record first.
func (tx *Transaction) SetInt(block storage.BlockId, offset int, val int32, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().Int(offset)
		n, err := logSetInt(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetInt(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetBytes reads the length-prefixed byte string at offset in block,
// under a shared lock.
func (tx *Transaction) GetBytes(block storage.BlockId, offset int) ([]byte, error) {
	if err := tx.cm.SLock(block); err != nil {
		return nil, err
	}
	return tx.buffer(block).Contents().Bytes(offset), nil
}

// SetBytes writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetBytes(block storage.BlockId, offset int, val []byte, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().Bytes(offset)
		n, err := logSetBytes(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetBytes(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetString reads the UTF-8 string at offset in block, under a shared
// lock.
func (tx *Transaction) GetString(block storage.BlockId, offset int) (string, error) {
	if err := tx.cm.SLock(block); err != nil {
		return "", err
	}
	return tx.buffer(block).Contents().GetString(offset), nil
}

// SetString writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetString(block storage.BlockId, offset int, val string, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().GetString(offset)
		n, err := logSetString(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetString(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetBool reads the boolean at offset in block, under a shared lock.
func (tx *Transaction) GetBool(block storage.BlockId, offset int) (bool, error) {
	if err := tx.cm.SLock(block); err != nil {
		return false, err
	}
	return tx.buffer(block).Contents().Bool(offset), nil
}

// SetBool writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetBool(block storage.BlockId, offset int, val bool, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().Bool(offset)
		n, err := logSetBool(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetBool(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetFloat64 reads the float64 at offset in block, under a shared lock.
func (tx *Transaction) GetFloat64(block storage.BlockId, offset int) (float64, error) {
	if err := tx.cm.SLock(block); err != nil {
		return 0, err
	}
	return tx.buffer(block).Contents().Float64(offset), nil
}

// SetFloat64 writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetFloat64(block storage.BlockId, offset int, val float64, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().Float64(offset)
		n, err := logSetFloat64(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetFloat64(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetDate reads the calendar date at offset in block, under a shared
// lock.
func (tx *Transaction) GetDate(block storage.BlockId, offset int) (storage.Date, error) {
	if err := tx.cm.SLock(block); err != nil {
		return storage.Date{}, err
	}
	return tx.buffer(block).Contents().Date(offset), nil
}

// SetDate writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetDate(block storage.BlockId, offset int, val storage.Date, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().Date(offset)
		n, err := logSetDate(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetDate(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetTimeOfDay reads the time-of-day at offset in block, under a shared
// lock.
func (tx *Transaction) GetTimeOfDay(block storage.BlockId, offset int) (storage.TimeOfDay, error) {
	if err := tx.cm.SLock(block); err != nil {
		return storage.TimeOfDay{}, err
	}
	return tx.buffer(block).Contents().TimeOfDay(offset), nil
}

// SetTimeOfDay writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetTimeOfDay(block storage.BlockId, offset int, val storage.TimeOfDay, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().TimeOfDay(offset)
		n, err := logSetTimeOfDay(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetTimeOfDay(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetDateTime reads the date-time-with-offset at offset in block, under a
// shared lock.
func (tx *Transaction) GetDateTime(block storage.BlockId, offset int) (storage.DateTime, error) {
	if err := tx.cm.SLock(block); err != nil {
		return storage.DateTime{}, err
	}
	return tx.buffer(block).Contents().DateTime(offset), nil
}

// SetDateTime writes val at offset in block, under an exclusive lock.
func (tx *Transaction) SetDateTime(block storage.BlockId, offset int, val storage.DateTime, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().DateTime(offset)
		n, err := logSetDateTime(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetDateTime(offset, val)
	buf.SetModified(tx.num, lsn)
	return nil
}

// GetJSON reads the JSON value at offset in block into out, under a
// shared lock.
func (tx *Transaction) GetJSON(block storage.BlockId, offset int, out any) error {
	if err := tx.cm.SLock(block); err != nil {
		return err
	}
	return tx.buffer(block).Contents().JSON(offset, out)
}

// SetJSON marshals val and writes it at offset in block, under an
// exclusive lock.
func (tx *Transaction) SetJSON(block storage.BlockId, offset int, val any, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().RawJSON(offset)
		n, err := logSetJSON(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	if err := buf.Contents().SetJSON(offset, val); err != nil {
		return err
	}
	buf.SetModified(tx.num, lsn)
	return nil
}

// setJSONRaw writes already-encoded JSON bytes at offset, bypassing
// marshaling. Used only by undo and recovery to restore an exact
// pre-image.
func (tx *Transaction) setJSONRaw(block storage.BlockId, offset int, raw []byte, log bool) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buf := tx.buffer(block)
	lsn := -1
	if log {
		old := buf.Contents().RawJSON(offset)
		n, err := logSetJSON(tx.lm, tx.num, block, offset, old)
		if err != nil {
			return err
		}
		lsn = n
	}
	buf.Contents().SetBytes(offset, raw)
	buf.SetModified(tx.num, lsn)
	return nil
}

// Checkpoint performs a quiescent checkpoint: it bars new transactions,
// drains the ones already running, flushes every dirty buffer and
// appends a CHECKPOINT record.
func Checkpoint(registry *Registry, bm *buffer.Manager, lm *wal.Manager) error {
	return registry.QuiescentCheckpoint(bm, lm)
}

// NQCheckpoint performs a non-quiescent checkpoint: it flushes every dirty
// buffer and appends an NQCKPT record listing whichever transactions are
// still active, without waiting for them to finish.
func NQCheckpoint(registry *Registry, bm *buffer.Manager, lm *wal.Manager) error {
	return registry.NonQuiescentCheckpoint(bm, lm)
}
