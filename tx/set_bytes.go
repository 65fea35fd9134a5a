package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type setBytesRecord struct {
	txnum  int
	block  storage.BlockId
	offset int
	val    []byte
}

func newSetBytesRecord(r *recordBuffer) setBytesRecord {
	return setBytesRecord{
		txnum:  r.readInt(),
		block:  r.readBlock(),
		offset: r.readInt(),
		val:    r.readBytes(),
	}
}

func (rec setBytesRecord) Op() txType    { return SETBYTES }
func (rec setBytesRecord) TxNumber() int { return rec.txnum }

func (rec setBytesRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(rec.block); err != nil {
		return err
	}
	defer tx.Unpin(rec.block)
	return tx.SetBytes(rec.block, rec.offset, rec.val, false)
}

func (rec setBytesRecord) String() string {
	return fmt.Sprintf("<SETBYTES %d %s %d %d bytes>", rec.txnum, rec.block, rec.offset, len(rec.val))
}

func logSetBytes(lm logAppender, txnum int, block storage.BlockId, offset int, val []byte) (int, error) {
	size := storage.SizeOfInt32*4 + storage.MaxLengthForBytes(len(block.FileName())) + storage.MaxLengthForBytes(len(val))
	w := newRecordWriter(size)
	w.writeTag(SETBYTES)
	w.writeInt(txnum)
	w.writeBlock(block)
	w.writeInt(offset)
	w.writeBytes(val)
	return lm.Append(w.bytes())
}
