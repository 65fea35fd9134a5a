package tx

import "github.com/wrenfield/blockdb/storage"

type checkpointRecord struct{}

func newCheckpointRecord(*recordBuffer) checkpointRecord {
	return checkpointRecord{}
}

func (rec checkpointRecord) Op() txType     { return CHECKPOINT }
func (rec checkpointRecord) TxNumber() int  { return -1 }
func (rec checkpointRecord) Undo(*Transaction) error { return nil }

func (rec checkpointRecord) String() string {
	return "<CHECKPOINT>"
}

func logCheckpoint(lm logAppender) (int, error) {
	w := newRecordWriter(storage.SizeOfInt32)
	w.writeTag(CHECKPOINT)
	return lm.Append(w.bytes())
}
