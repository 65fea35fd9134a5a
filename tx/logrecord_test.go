package tx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrenfield/blockdb/storage"
)

type captureAppender struct {
	last []byte
}

func (c *captureAppender) Append(record []byte) (int, error) {
	c.last = append([]byte(nil), record...)
	return 1, nil
}

func TestLogRecordRoundTrips(t *testing.T) {
	block := storage.NewBlockId("data", 7)
	var c captureAppender

	t.Run("start", func(t *testing.T) {
		_, err := logStart(&c, 5)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, START, rec.Op())
		require.Equal(t, 5, rec.TxNumber())
	})

	t.Run("commit", func(t *testing.T) {
		_, err := logCommit(&c, 6)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, COMMIT, rec.Op())
		require.Equal(t, 6, rec.TxNumber())
	})

	t.Run("rollback", func(t *testing.T) {
		_, err := logRollback(&c, 7)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, ROLLBACK, rec.Op())
		require.Equal(t, 7, rec.TxNumber())
	})

	t.Run("checkpoint", func(t *testing.T) {
		_, err := logCheckpoint(&c)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, CHECKPOINT, rec.Op())
	})

	t.Run("nqckpt", func(t *testing.T) {
		_, err := logNQCkpt(&c, []int{1, 2, 3})
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, NQCKPT, rec.Op())
		require.Equal(t, []int{1, 2, 3}, rec.(nqCkptRecord).txnums)
	})

	t.Run("setint", func(t *testing.T) {
		_, err := logSetInt(&c, 1, block, 4, 123)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, SETINT, rec.Op())
		typed := rec.(setIntRecord)
		require.Equal(t, 1, typed.txnum)
		require.True(t, typed.block.Equals(block))
		require.Equal(t, 4, typed.offset)
		require.EqualValues(t, 123, typed.val)
	})

	t.Run("setbytes", func(t *testing.T) {
		_, err := logSetBytes(&c, 1, block, 0, []byte("xyz"))
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, []byte("xyz"), rec.(setBytesRecord).val)
	})

	t.Run("setstring", func(t *testing.T) {
		_, err := logSetString(&c, 1, block, 0, "hello")
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, "hello", rec.(setStringRecord).val)
	})

	t.Run("setbool", func(t *testing.T) {
		_, err := logSetBool(&c, 1, block, 0, true)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.True(t, rec.(setBoolRecord).val)
	})

	t.Run("setdouble", func(t *testing.T) {
		_, err := logSetFloat64(&c, 1, block, 0, 2.5)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, 2.5, rec.(setFloat64Record).val)
	})

	t.Run("setdate", func(t *testing.T) {
		d := storage.Date{Year: 2020, Month: 1, Day: 2}
		_, err := logSetDate(&c, 1, block, 0, d)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, d, rec.(setDateRecord).val)
	})

	t.Run("settime", func(t *testing.T) {
		tm := storage.TimeOfDay{Hour: 1, Min: 2, Sec: 3, Nanos: 4}
		_, err := logSetTimeOfDay(&c, 1, block, 0, tm)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, tm, rec.(setTimeOfDayRecord).val)
	})

	t.Run("setdatetime", func(t *testing.T) {
		dt := storage.DateTime{Year: 2020, Month: 1, Day: 2, Hour: 3, Min: 4, Sec: 5, Nanos: 6, OffsetSeconds: -3600}
		_, err := logSetDateTime(&c, 1, block, 0, dt)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, dt, rec.(setDateTimeRecord).val)
	})

	t.Run("setjson", func(t *testing.T) {
		raw := []byte(`{"a":1}`)
		_, err := logSetJSON(&c, 1, block, 0, raw)
		require.NoError(t, err)
		rec, err := createLogRecord(c.last)
		require.NoError(t, err)
		require.Equal(t, raw, rec.(setJSONRecord).val)
	})
}

func TestCreateLogRecordUnknownTagFails(t *testing.T) {
	w := newRecordWriter(storage.SizeOfInt32)
	w.writeTag(txType(99))
	_, err := createLogRecord(w.bytes())
	require.Error(t, err)
}
