package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

// setJSONRecord stores the pre-image as raw canonical JSON bytes, not a
// decoded value, so that undo restores exactly what was on the page
// without needing to know the original Go type.
type setJSONRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    []byte
}

func newSetJSONRecord(r *recordBuffer) setJSONRecord {
	return setJSONRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readBytes(),
	}
}

func (rec setJSONRecord) Op() txType    { return SETJSON }
func (rec setJSONRecord) TxNumber() int { return rec.txnum }

func (rec setJSONRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.setJSONRaw(rec.block, rec.offset, rec.val, false)
}

func (rec setJSONRecord) String() string {
	return fmt.Sprintf("<SETJSON %d %s %d %s>", rec.txnum, rec.block, rec.offset, rec.val)
}

func logSetJSON(lm logAppender, txnum int, block storage.BlockId, offset int, raw []byte) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.MaxLengthForBytes(len(raw))
	w := newRecordWriter(size)
	w.writeTag(SETJSON)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeJSON(raw)
	return lm.Append(w.bytes())
}
