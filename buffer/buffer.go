// Package buffer implements the pinned page pool: a fixed-size set of
// frames through which all block reads and writes are routed, so that the
// log's write-ahead rule can be enforced before a dirty page reaches disk.
package buffer

import (
	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/storage"
	"github.com/wrenfield/blockdb/wal"
)

// Buffer is one frame of the pool: a page holding the contents of some
// block, plus enough bookkeeping to know whether it is dirty, who last
// modified it, and how many pins are currently held against it.
type Buffer struct {
	fm *file.Manager
	lm *wal.Manager

	contents *storage.Page
	block    storage.BlockId
	pins     int
	txnum    int
	lsn      int
}

func newBuffer(fm *file.Manager, lm *wal.Manager) *Buffer {
	return &Buffer{
		fm:       fm,
		lm:       lm,
		contents: storage.NewPage(fm.BlockSize()),
		txnum:    -1,
		lsn:      -1,
	}
}

// Contents returns the page backing this frame, for direct read/write
// access by a transaction.
func (b *Buffer) Contents() *storage.Page {
	return b.contents
}

// Block returns the block currently assigned to this frame.
func (b *Buffer) Block() storage.BlockId {
	return b.block
}

// SetModified records that txnum modified this frame's contents, producing
// a log record with sequence number lsn. A negative lsn means the
// modification wrote no log record (a set with log=false, as undo does),
// and leaves the frame's recorded lsn unchanged.
func (b *Buffer) SetModified(txnum, lsn int) {
	b.txnum = txnum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

// ModifyingTx returns the transaction number that last modified this
// frame, or -1 if it is clean.
func (b *Buffer) ModifyingTx() int {
	return b.txnum
}

// IsPinned reports whether any transaction currently holds a pin on this
// frame.
func (b *Buffer) IsPinned() bool {
	return b.pins > 0
}

func (b *Buffer) pin() {
	b.pins++
}

func (b *Buffer) unpin() {
	b.pins--
}

// flush writes this frame's contents back to disk if it is dirty, first
// flushing the log up to this frame's lsn so the write-ahead rule holds.
func (b *Buffer) flush() error {
	if b.txnum < 0 {
		return nil
	}
	if err := b.lm.Flush(b.lsn); err != nil {
		return err
	}
	if err := b.fm.Write(b.block, b.contents); err != nil {
		return err
	}
	b.txnum = -1
	return nil
}

// assignToBlock reassigns this (unpinned) frame to hold block, flushing
// any previous dirty contents first.
func (b *Buffer) assignToBlock(block storage.BlockId) error {
	if err := b.flush(); err != nil {
		return err
	}
	b.block = block
	if err := b.fm.Read(block, b.contents); err != nil {
		return err
	}
	b.pins = 0
	return nil
}
