package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageIntRoundTrip(t *testing.T) {
	page := NewPage(64)

	page.SetInt(0, 123)
	page.SetInt(4, -99)

	require.EqualValues(t, 123, page.Int(0))
	require.EqualValues(t, -99, page.Int(4))
}

func TestPageBytesRoundTrip(t *testing.T) {
	page := NewPage(64)

	page.SetBytes(0, []byte("hello"))

	require.Equal(t, []byte("hello"), page.Bytes(0))
}

func TestPageStringRoundTrip(t *testing.T) {
	page := NewPage(64)

	page.SetString(10, "simpledb")

	require.Equal(t, "simpledb", page.GetString(10))
}

func TestPageBoolRoundTrip(t *testing.T) {
	page := NewPage(8)

	page.SetBool(0, true)
	page.SetBool(1, false)

	require.True(t, page.Bool(0))
	require.False(t, page.Bool(1))
}

func TestPageFloat64RoundTrip(t *testing.T) {
	page := NewPage(16)

	page.SetFloat64(0, 3.14159)
	require.Equal(t, 3.14159, page.Float64(0))

	page.SetFloat64(8, math.NaN())
	require.True(t, math.IsNaN(page.Float64(8)))
}

func TestPageDateRoundTrip(t *testing.T) {
	page := NewPage(16)
	d := Date{Year: 2024, Month: 3, Day: 17}

	page.SetDate(0, d)

	require.Equal(t, d, page.Date(0))
}

func TestPageTimeOfDayRoundTrip(t *testing.T) {
	page := NewPage(16)
	tm := TimeOfDay{Hour: 23, Min: 59, Sec: 1, Nanos: 123456789}

	page.SetTimeOfDay(0, tm)

	require.Equal(t, tm, page.TimeOfDay(0))
}

func TestPageDateTimeRoundTrip(t *testing.T) {
	page := NewPage(32)
	dt := DateTime{
		Year: 2024, Month: 3, Day: 17,
		Hour: 10, Min: 30, Sec: 0,
		Nanos:         42,
		OffsetSeconds: -18000,
	}

	page.SetDateTime(0, dt)

	require.Equal(t, dt, page.DateTime(0))
}

func TestPageJSONRoundTrip(t *testing.T) {
	page := NewPage(128)

	type payload struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	in := payload{Name: "abc", N: 7}
	require.NoError(t, page.SetJSON(0, in))

	var out payload
	require.NoError(t, page.JSON(0, &out))
	require.Equal(t, in, out)
}

func TestPageOutOfBoundsPanics(t *testing.T) {
	page := NewPage(4)

	require.Panics(t, func() {
		page.SetInt(2, 1)
	})
}
