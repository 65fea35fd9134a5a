package wal

import (
	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/storage"
)

// Iterator walks the log newest-record-first: within a block left to right,
// starting at the boundary where the newest record sits, then on to the
// previous block once the current one is exhausted.
type Iterator struct {
	fm    *file.Manager
	block storage.BlockId
	page  *storage.Page

	currentPos int
	boundary   int
}

func newIterator(fm *file.Manager, start storage.BlockId) (*Iterator, error) {
	it := &Iterator{
		fm:   fm,
		page: storage.NewPage(fm.BlockSize()),
	}

	if err := it.moveToBlock(start); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *Iterator) moveToBlock(block storage.BlockId) error {
	if err := it.fm.Read(block, it.page); err != nil {
		return err
	}
	it.boundary = int(it.page.Int(0))
	it.currentPos = it.boundary
	it.block = block
	return nil
}

// HasNext reports whether there is at least one more record to read: either
// the current block has unread records, or an earlier block remains.
func (it *Iterator) HasNext() bool {
	return it.currentPos < it.fm.BlockSize() || it.block.Number() > 0
}

// Next returns the next record in newest-to-oldest order. Callers must
// check HasNext first.
func (it *Iterator) Next() ([]byte, error) {
	if it.currentPos == it.fm.BlockSize() {
		prev := storage.NewBlockId(it.block.FileName(), it.block.Number()-1)
		if err := it.moveToBlock(prev); err != nil {
			return nil, err
		}
	}

	record := it.page.Bytes(it.currentPos)
	it.currentPos += len(record) + storage.SizeOfInt32
	return record, nil
}

// Close releases the iterator's resources. It does not affect the
// underlying Manager.
func (it *Iterator) Close() {
	it.fm = nil
	it.page = nil
}
