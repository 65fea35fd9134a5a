package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/storage"
)

type commitRecord struct {
	txnum int
}

func newCommitRecord(r *recordBuffer) commitRecord {
	return commitRecord{txnum: r.readInt()}
}

func (rec commitRecord) Op() txType     { return COMMIT }
func (rec commitRecord) TxNumber() int  { return rec.txnum }
func (rec commitRecord) Undo(*Transaction) error { return nil }

func (rec commitRecord) String() string {
	return fmt.Sprintf("<COMMIT %d>", rec.txnum)
}

func logCommit(lm logAppender, txnum int) (int, error) {
	w := newRecordWriter(2 * storage.SizeOfInt32)
	w.writeTag(COMMIT)
	w.writeInt(txnum)
	return lm.Append(w.bytes())
}
