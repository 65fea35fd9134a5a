package tx

import (
	"fmt"
	"strings"

	"github.com/wrenfield/blockdb/storage"
)

// nqCkptRecord lists every transaction that was active at the moment a
// non-quiescent checkpoint was taken. Recovery seeds its "unfinished" set
// from this list.
type nqCkptRecord struct {
	txnums []int
}

func newNQCkptRecord(r *recordBuffer) nqCkptRecord {
	n := r.readInt()
	txnums := make([]int, n)
	for i := range txnums {
		txnums[i] = r.readInt()
	}
	return nqCkptRecord{txnums: txnums}
}

func (rec nqCkptRecord) Op() txType     { return NQCKPT }
func (rec nqCkptRecord) TxNumber() int  { return -1 }
func (rec nqCkptRecord) Undo(*Transaction) error { return nil }

func (rec nqCkptRecord) String() string {
	parts := make([]string, len(rec.txnums))
	for i, t := range rec.txnums {
		parts[i] = fmt.Sprintf("%d", t)
	}
	return fmt.Sprintf("<NQCKPT %s>", strings.Join(parts, " "))
}

func logNQCkpt(lm logAppender, txnums []int) (int, error) {
	size := storage.SizeOfInt32 + storage.SizeOfInt32 + len(txnums)*storage.SizeOfInt32
	w := newRecordWriter(size)
	w.writeTag(NQCKPT)
	w.writeInt(len(txnums))
	for _, t := range txnums {
		w.writeInt(t)
	}
	return lm.Append(w.bytes())
}
