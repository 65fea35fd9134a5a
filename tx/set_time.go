package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setTimeOfDayRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    storage.TimeOfDay
}

func newSetTimeOfDayRecord(r *recordBuffer) setTimeOfDayRecord {
	return setTimeOfDayRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readTimeOfDay(),
	}
}

func (rec setTimeOfDayRecord) Op() txType    { return SETTIME }
func (rec setTimeOfDayRecord) TxNumber() int { return rec.txnum }

func (rec setTimeOfDayRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetTimeOfDay(rec.block, rec.offset, rec.val, false)
}

func (rec setTimeOfDayRecord) String() string {
	return fmt.Sprintf("<SETTIME %d %s %d %s>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetTimeOfDay(lm logAppender, txnum int, block storage.BlockId, offset int, val storage.TimeOfDay) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.SizeOfTimeOfDay
	w := newRecordWriter(size)
	w.writeTag(SETTIME)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeTimeOfDay(val)
	return lm.Append(w.bytes())
}
