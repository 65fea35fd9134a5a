package tx

import (
	"fmt"

	"github.com/wrenfield/blockdb/dberr"
	"github.com/wrenfield/blockdb/storage"
)

// txType tags a log record's kind. Values match the wire encoding exactly:
// changing them breaks every log file already on disk.
type txType int32

const (
	CHECKPOINT txType = iota
	START
	COMMIT
	ROLLBACK
	SETINT
	SETBYTES
	SETSTRING
	SETBOOL
	SETDOUBLE
	SETDATE
	SETTIME
	SETDATETIME
	SETJSON
	NQCKPT
)

func (t txType) String() string {
	switch t {
	case CHECKPOINT:
		return "CHECKPOINT"
	case START:
		return "START"
	case COMMIT:
		return "COMMIT"
	case ROLLBACK:
		return "ROLLBACK"
	case SETINT:
		return "SETINT"
	case SETBYTES:
		return "SETBYTES"
	case SETSTRING:
		return "SETSTRING"
	case SETBOOL:
		return "SETBOOL"
	case SETDOUBLE:
		return "SETDOUBLE"
	case SETDATE:
		return "SETDATE"
	case SETTIME:
		return "SETTIME"
	case SETDATETIME:
		return "SETDATETIME"
	case SETJSON:
		return "SETJSON"
	case NQCKPT:
		return "NQCKPT"
	default:
		return fmt.Sprintf("txType(%d)", int32(t))
	}
}

// logAppender is the subset of wal.Manager the log-record constructors
// need, kept as an interface so record-encoding tests don't need a real
// log file.
type logAppender interface {
	Append(record []byte) (int, error)
}

// logRecord is implemented by every record kind stored in the write-ahead
// log. Undo restores the pre-image (or is a no-op for control records).
type logRecord interface {
	Op() txType
	TxNumber() int
	Undo(tx *Transaction) error
	String() string
}

// recordBuffer provides a sequential write/read cursor over a byte slice,
// using the same big-endian typed encoding as storage.Page. Log records
// are small, self-contained byte strings, so rather than allocate a full
// block-sized Page per record, a recordBuffer wraps a page sized to fit
// exactly.
type recordBuffer struct {
	page   *storage.Page
	offset int
}

func newRecordBuffer(buf []byte) *recordBuffer {
	return &recordBuffer{page: storage.WrapPage(buf)}
}

func newRecordWriter(size int) *recordBuffer {
	return &recordBuffer{page: storage.NewPage(size)}
}

func (r *recordBuffer) bytes() []byte {
	return r.page.Contents()[:r.offset]
}

func (r *recordBuffer) writeTag(t txType) {
	r.page.SetInt(r.offset, int32(t))
	r.offset += storage.SizeOfInt32
}

func (r *recordBuffer) writeInt(v int) {
	r.page.SetInt(r.offset, int32(v))
	r.offset += storage.SizeOfInt32
}

func (r *recordBuffer) writeString(v string) {
	r.page.SetString(r.offset, v)
	r.offset += storage.MaxLengthForBytes(len(v))
}

func (r *recordBuffer) writeBytes(v []byte) {
	r.page.SetBytes(r.offset, v)
	r.offset += storage.MaxLengthForBytes(len(v))
}

func (r *recordBuffer) writeBool(v bool) {
	r.page.SetBool(r.offset, v)
	r.offset += storage.SizeOfBool
}

func (r *recordBuffer) writeFloat64(v float64) {
	r.page.SetFloat64(r.offset, v)
	r.offset += storage.SizeOfFloat64
}

func (r *recordBuffer) writeDate(v storage.Date) {
	r.page.SetDate(r.offset, v)
	r.offset += storage.SizeOfDate
}

func (r *recordBuffer) writeTimeOfDay(v storage.TimeOfDay) {
	r.page.SetTimeOfDay(r.offset, v)
	r.offset += storage.SizeOfTimeOfDay
}

func (r *recordBuffer) writeDateTime(v storage.DateTime) {
	r.page.SetDateTime(r.offset, v)
	r.offset += storage.SizeOfDateTime
}

func (r *recordBuffer) writeJSON(v []byte) {
	// v is already-canonical JSON bytes (a pre-image read back with
	// page.RawJSON), so it is stored with the plain length-prefixed bytes
	// encoding rather than re-marshaling through SetJSON.
	r.writeBytes(v)
}

func (r *recordBuffer) writeBlock(block storage.BlockId) {
	r.writeString(block.FileName())
	r.writeInt(block.Number())
}

func (r *recordBuffer) readTag() txType {
	t := txType(r.page.Int(r.offset))
	r.offset += storage.SizeOfInt32
	return t
}

func (r *recordBuffer) readInt() int {
	v := int(r.page.Int(r.offset))
	r.offset += storage.SizeOfInt32
	return v
}

func (r *recordBuffer) readString() string {
	s := r.page.GetString(r.offset)
	r.offset += storage.MaxLengthForBytes(len(s))
	return s
}

func (r *recordBuffer) readBytes() []byte {
	b := r.page.Bytes(r.offset)
	r.offset += storage.MaxLengthForBytes(len(b))
	return b
}

func (r *recordBuffer) readBool() bool {
	v := r.page.Bool(r.offset)
	r.offset += storage.SizeOfBool
	return v
}

func (r *recordBuffer) readFloat64() float64 {
	v := r.page.Float64(r.offset)
	r.offset += storage.SizeOfFloat64
	return v
}

func (r *recordBuffer) readDate() storage.Date {
	v := r.page.Date(r.offset)
	r.offset += storage.SizeOfDate
	return v
}

func (r *recordBuffer) readTimeOfDay() storage.TimeOfDay {
	v := r.page.TimeOfDay(r.offset)
	r.offset += storage.SizeOfTimeOfDay
	return v
}

func (r *recordBuffer) readDateTime() storage.DateTime {
	v := r.page.DateTime(r.offset)
	r.offset += storage.SizeOfDateTime
	return v
}

func (r *recordBuffer) readBlock() storage.BlockId {
	name := r.readString()
	num := r.readInt()
	return storage.NewBlockId(name, num)
}

// createLogRecord decodes one record's wire bytes, dispatching on its
// leading tag.
func createLogRecord(raw []byte) (logRecord, error) {
	r := newRecordBuffer(raw)
	switch tag := r.readTag(); tag {
	case CHECKPOINT:
		return newCheckpointRecord(r), nil
	case NQCKPT:
		return newNQCkptRecord(r), nil
	case START:
		return newStartRecord(r), nil
	case COMMIT:
		return newCommitRecord(r), nil
	case ROLLBACK:
		return newRollbackRecord(r), nil
	case SETINT:
		return newSetIntRecord(r), nil
	case SETBYTES:
		return newSetBytesRecord(r), nil
	case SETSTRING:
		return newSetStringRecord(r), nil
	case SETBOOL:
		return newSetBoolRecord(r), nil
	case SETDOUBLE:
		return newSetFloat64Record(r), nil
	case SETDATE:
		return newSetDateRecord(r), nil
	case SETTIME:
		return newSetTimeOfDayRecord(r), nil
	case SETDATETIME:
		return newSetDateTimeRecord(r), nil
	case SETJSON:
		return newSetJSONRecord(r), nil
	default:
		return nil, dberr.New(dberr.RecordDecodeFailure, fmt.Sprintf("unknown log record tag %d", int32(tag)))
	}
}
