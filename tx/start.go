package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type startRecord struct {
	txnum int
}

func newStartRecord(r *recordBuffer) startRecord {
	return startRecord{txnum: r.readInt()}
}

func (rec startRecord) Op() txType     { return START }
func (rec startRecord) TxNumber() int  { return rec.txnum }
func (rec startRecord) Undo(*Transaction) error { return nil }

func (rec startRecord) String() string {
	return fmt.Sprintf("<START %d>", rec.txnum)
}

// logStart appends a START record, which every transaction writes exactly
// once, at construction.
func logStart(lm logAppender, txnum int) (int, error) {
	w := newRecordWriter(2 * storage.SizeOfInt32)
	w.writeTag(START)
	w.writeInt(txnum)
	return lm.Append(w.bytes())
}
