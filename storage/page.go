package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

const (
	// SizeOfInt32 is the wire size of the integer accessors (SetInt, Int).
	SizeOfInt32 = 4
	// SizeOfLenPrefix is the wire size of the length prefix written ahead
	// of every length-prefixed byte string.
	SizeOfLenPrefix = 4
	// SizeOfBool is the wire size of a boolean value.
	SizeOfBool = 1
	// SizeOfFloat64 is the wire size of a 64-bit IEEE-754 float.
	SizeOfFloat64 = 8
	// SizeOfDate is the wire size of a Date value (4-byte year, month, day).
	SizeOfDate = 4 + 1 + 1
	// SizeOfTimeOfDay is the wire size of a TimeOfDay value.
	SizeOfTimeOfDay = 1 + 1 + 1 + 4
	// SizeOfDateTime is the wire size of a DateTime value.
	SizeOfDateTime = 2 + 1 + 1 + 1 + 1 + 1 + 4 + 4
)

// Page is a fixed-size mutable byte buffer representing one disk block's
// worth of memory. Every accessor reads or writes at an explicit byte
// offset; callers are responsible for laying out their own record formats
// on top of it. Accessing outside [0, len(buf)) panics, the same invariant
// violation a direct slice index would raise.
type Page struct {
	buf []byte
}

// NewPage allocates a zeroed page of the given size.
func NewPage(size int) *Page {
	return &Page{buf: make([]byte, size)}
}

// WrapPage builds a Page around an existing byte slice without copying it,
// used when a slice has already been sized and filled by a read.
func WrapPage(buf []byte) *Page {
	return &Page{buf: buf}
}

// Contents returns the page's raw backing buffer.
func (p *Page) Contents() []byte {
	return p.buf
}

// Size returns the page's fixed size in bytes.
func (p *Page) Size() int {
	return len(p.buf)
}

func (p *Page) bounds(offset, size int) {
	if offset < 0 || size < 0 || offset+size > len(p.buf) {
		panic(fmt.Sprintf("storage: offset %d size %d out of page bounds (page size %d)", offset, size, len(p.buf)))
	}
}

// SetInt sets a 32-bit big-endian signed integer at offset.
func (p *Page) SetInt(offset int, v int32) {
	p.bounds(offset, SizeOfInt32)
	binary.BigEndian.PutUint32(p.buf[offset:], uint32(v))
}

// Int reads a 32-bit big-endian signed integer at offset.
func (p *Page) Int(offset int) int32 {
	p.bounds(offset, SizeOfInt32)
	return int32(binary.BigEndian.Uint32(p.buf[offset:]))
}

// SetBytes writes a length-prefixed byte string at offset: a 4-byte
// big-endian length followed by the raw bytes.
func (p *Page) SetBytes(offset int, v []byte) {
	p.bounds(offset, SizeOfLenPrefix+len(v))
	binary.BigEndian.PutUint32(p.buf[offset:], uint32(len(v)))
	copy(p.buf[offset+SizeOfLenPrefix:], v)
}

// Bytes reads the length-prefixed byte string written by SetBytes at offset.
func (p *Page) Bytes(offset int) []byte {
	p.bounds(offset, SizeOfLenPrefix)
	n := int(binary.BigEndian.Uint32(p.buf[offset:]))
	p.bounds(offset+SizeOfLenPrefix, n)
	out := make([]byte, n)
	copy(out, p.buf[offset+SizeOfLenPrefix:offset+SizeOfLenPrefix+n])
	return out
}

// MaxLengthForBytes returns the wire size of a byte string (or UTF-8
// string) of n bytes: the length prefix plus the payload.
func MaxLengthForBytes(n int) int {
	return SizeOfLenPrefix + n
}

// SetString writes a UTF-8 string at offset using the same length-prefixed
// encoding as SetBytes.
func (p *Page) SetString(offset int, v string) {
	p.SetBytes(offset, []byte(v))
}

// GetString reads a UTF-8 string written by SetString at offset.
func (p *Page) GetString(offset int) string {
	return string(p.Bytes(offset))
}

// SetBool writes a single-byte boolean at offset.
func (p *Page) SetBool(offset int, v bool) {
	p.bounds(offset, SizeOfBool)
	if v {
		p.buf[offset] = 1
	} else {
		p.buf[offset] = 0
	}
}

// Bool reads a single-byte boolean at offset.
func (p *Page) Bool(offset int) bool {
	p.bounds(offset, SizeOfBool)
	return p.buf[offset] != 0
}

// SetFloat64 writes a 64-bit big-endian IEEE-754 float at offset.
func (p *Page) SetFloat64(offset int, v float64) {
	p.bounds(offset, SizeOfFloat64)
	binary.BigEndian.PutUint64(p.buf[offset:], math.Float64bits(v))
}

// Float64 reads a 64-bit big-endian IEEE-754 float at offset.
func (p *Page) Float64(offset int) float64 {
	p.bounds(offset, SizeOfFloat64)
	return math.Float64frombits(binary.BigEndian.Uint64(p.buf[offset:]))
}

// SetDate writes a calendar date at offset: a 4-byte year, a month byte
// and a day byte.
func (p *Page) SetDate(offset int, v Date) {
	p.bounds(offset, SizeOfDate)
	binary.BigEndian.PutUint32(p.buf[offset:], uint32(v.Year))
	p.buf[offset+4] = v.Month
	p.buf[offset+5] = v.Day
}

// Date reads the calendar date written by SetDate at offset.
func (p *Page) Date(offset int) Date {
	p.bounds(offset, SizeOfDate)
	return Date{
		Year:  int32(binary.BigEndian.Uint32(p.buf[offset:])),
		Month: p.buf[offset+4],
		Day:   p.buf[offset+5],
	}
}

// SetTimeOfDay writes a time-of-day value at offset: hour, minute, second
// bytes followed by a 4-byte nanosecond count.
func (p *Page) SetTimeOfDay(offset int, v TimeOfDay) {
	p.bounds(offset, SizeOfTimeOfDay)
	p.buf[offset] = v.Hour
	p.buf[offset+1] = v.Min
	p.buf[offset+2] = v.Sec
	binary.BigEndian.PutUint32(p.buf[offset+3:], uint32(v.Nanos))
}

// TimeOfDay reads the time-of-day value written by SetTimeOfDay at offset.
func (p *Page) TimeOfDay(offset int) TimeOfDay {
	p.bounds(offset, SizeOfTimeOfDay)
	return TimeOfDay{
		Hour:  p.buf[offset],
		Min:   p.buf[offset+1],
		Sec:   p.buf[offset+2],
		Nanos: int32(binary.BigEndian.Uint32(p.buf[offset+3:])),
	}
}

// SetDateTime writes a date-time-with-offset value at offset: a 2-byte
// year, month/day/hour/minute/second bytes, a 4-byte nanosecond count and
// a 4-byte signed UTC offset in seconds.
func (p *Page) SetDateTime(offset int, v DateTime) {
	p.bounds(offset, SizeOfDateTime)
	binary.BigEndian.PutUint16(p.buf[offset:], v.Year)
	p.buf[offset+2] = v.Month
	p.buf[offset+3] = v.Day
	p.buf[offset+4] = v.Hour
	p.buf[offset+5] = v.Min
	p.buf[offset+6] = v.Sec
	binary.BigEndian.PutUint32(p.buf[offset+7:], uint32(v.Nanos))
	binary.BigEndian.PutUint32(p.buf[offset+11:], uint32(v.OffsetSeconds))
}

// DateTime reads the date-time-with-offset value written by SetDateTime at
// offset.
func (p *Page) DateTime(offset int) DateTime {
	p.bounds(offset, SizeOfDateTime)
	return DateTime{
		Year:          binary.BigEndian.Uint16(p.buf[offset:]),
		Month:         p.buf[offset+2],
		Day:           p.buf[offset+3],
		Hour:          p.buf[offset+4],
		Min:           p.buf[offset+5],
		Sec:           p.buf[offset+6],
		Nanos:         int32(binary.BigEndian.Uint32(p.buf[offset+7:])),
		OffsetSeconds: int32(binary.BigEndian.Uint32(p.buf[offset+11:])),
	}
}

// SetJSON marshals v to its canonical JSON string encoding and writes it
// at offset using the length-prefixed string encoding.
func (p *Page) SetJSON(offset int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: marshal json: %w", err)
	}
	p.SetBytes(offset, b)
	return nil
}

// JSON reads the JSON value written by SetJSON at offset into out, which
// must be a pointer.
func (p *Page) JSON(offset int, out any) error {
	b := p.Bytes(offset)
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("storage: unmarshal json: %w", err)
	}
	return nil
}

// RawJSON returns the canonical JSON bytes written by SetJSON at offset,
// without unmarshaling them - used by the recovery layer, which stores and
// restores JSON pre-images verbatim.
func (p *Page) RawJSON(offset int) []byte {
	return p.Bytes(offset)
}

// MaxLengthForJSON returns the wire size JSON-encoding v would occupy.
func MaxLengthForJSON(v any) (int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("storage: marshal json: %w", err)
	}
	return MaxLengthForBytes(len(b)), nil
}
