package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setIntRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    int32
}

func newSetIntRecord(r *recordBuffer) setIntRecord {
	return setIntRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    int32(r.readInt()),
	}
}

func (rec setIntRecord) Op() txType    { return SETINT }
func (rec setIntRecord) TxNumber() int { return rec.txnum }

func (rec setIntRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetInt(rec.block, rec.offset, rec.val, false)
}

func (rec setIntRecord) String() string {
	return fmt.Sprintf("<SETINT %d %s %d %d>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetInt(lm logAppender, txnum int, block storage.BlockId, offset int, val int32) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.SizeOfInt32
	w := newRecordWriter(size)
	w.writeTag(SETINT)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeInt(int(val))
	return lm.Append(w.bytes())
}
