package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setDateRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    storage.Date
}

func newSetDateRecord(r *recordBuffer) setDateRecord {
	return setDateRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readDate(),
	}
}

func (rec setDateRecord) Op() txType    { return SETDATE }
func (rec setDateRecord) TxNumber() int { return rec.txnum }

func (rec setDateRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetDate(rec.block, rec.offset, rec.val, false)
}

func (rec setDateRecord) String() string {
	return fmt.Sprintf("<SETDATE %d %s %d %s>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetDate(lm logAppender, txnum int, block storage.BlockId, offset int, val storage.Date) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.SizeOfDate
	w := newRecordWriter(size)
	w.writeTag(SETDATE)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeDate(val)
	return lm.Append(w.bytes())
}
