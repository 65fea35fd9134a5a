package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type rollbackRecord struct {
	txnum int
}

func newRollbackRecord(r *recordBuffer) rollbackRecord {
	return rollbackRecord{txnum: r.readInt()}
}

func (rec rollbackRecord) Op() txType     { return ROLLBACK }
func (rec rollbackRecord) TxNumber() int  { return rec.txnum }
func (rec rollbackRecord) Undo(*Transaction) error { return nil }

func (rec rollbackRecord) String() string {
	return fmt.Sprintf("<ROLLBACK %d>", rec.txnum)
}

func logRollback(lm logAppender, txnum int) (int, error) {
	w := newRecordWriter(2 * storage.SizeOfInt32)
	w.writeTag(ROLLBACK)
	w.writeInt(txnum)
	return lm.Append(w.bytes())
}
