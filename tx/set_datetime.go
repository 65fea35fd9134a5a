package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setDateTimeRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    storage.DateTime
}

func newSetDateTimeRecord(r *recordBuffer) setDateTimeRecord {
	return setDateTimeRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readDateTime(),
	}
}

func (rec setDateTimeRecord) Op() txType    { return SETDATETIME }
func (rec setDateTimeRecord) TxNumber() int { return rec.txnum }

func (rec setDateTimeRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetDateTime(rec.block, rec.offset, rec.val, false)
}

func (rec setDateTimeRecord) String() string {
	return fmt.Sprintf("<SETDATETIME %d %s %d %s>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetDateTime(lm logAppender, txnum int, block storage.BlockId, offset int, val storage.DateTime) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.SizeOfDateTime
	w := newRecordWriter(size)
	w.writeTag(SETDATETIME)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeDateTime(val)
	return lm.Append(w.bytes())
}
