package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setBoolRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    bool
}

func newSetBoolRecord(r *recordBuffer) setBoolRecord {
	return setBoolRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readBool(),
	}
}

func (rec setBoolRecord) Op() txType    { return SETBOOL }
func (rec setBoolRecord) TxNumber() int { return rec.txnum }

func (rec setBoolRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetBool(rec.block, rec.offset, rec.val, false)
}

func (rec setBoolRecord) String() string {
	return fmt.Sprintf("<SETBOOL %d %s %d %t>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetBool(lm logAppender, txnum int, block storage.BlockId, offset int, val bool) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.SizeOfBool
	w := newRecordWriter(size)
	w.writeTag(SETBOOL)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeBool(val)
	return lm.Append(w.bytes())
}
