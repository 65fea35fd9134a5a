package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setFloat64Record struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    float64
}

func newSetFloat64Record(r *recordBuffer) setFloat64Record {
	return setFloat64Record{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readFloat64(),
	}
}

func (rec setFloat64Record) Op() txType    { return SETDOUBLE }
func (rec setFloat64Record) TxNumber() int { return rec.txnum }

func (rec setFloat64Record) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetFloat64(rec.block, rec.offset, rec.val, false)
}

func (rec setFloat64Record) String() string {
	return fmt.Sprintf("<SETDOUBLE %d %s %d %v>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetFloat64(lm logAppender, txnum int, block storage.BlockId, offset int, val float64) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.SizeOfFloat64
	w := newRecordWriter(size)
	w.writeTag(SETDOUBLE)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeFloat64(val)
	return lm.Append(w.bytes())
}
