package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setStringRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    string
}

func newSetStringRecord(r *recordBuffer) setStringRecord {
	return setStringRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readString(),
	}
}

func (rec setStringRecord) Op() txType    { return SETSTRING }
func (rec setStringRecord) TxNumber() int { return rec.txnum }

func (rec setStringRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetString(rec.block, rec.offset, rec.val, false)
}

func (rec setStringRecord) String() string {
	return fmt.Sprintf("<SETSTRING %d %s %d %q>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetString(lm logAppender, txnum int, block storage.BlockId, offset int, val string) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.MaxLengthForBytes(len(val))
	w := newRecordWriter(size)
	w.writeTag(SETSTRING)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeString(val)
	return lm.Append(w.bytes())
}
