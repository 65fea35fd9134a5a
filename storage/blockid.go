package storage

import "fmt"

// EOF is the sentinel block number used to address a whole file (rather than
// one of its blocks) when taking a lock that must serialize against
// concurrent appends to that file.
const EOF = -1

// BlockId identifies a disk block: a file name paired with a block number.
// It is a plain value type - two BlockIds are equal, and hash identically
// as map keys, iff both fields match.
type BlockId struct {
	file string
	num  int
}

// NewBlockId builds a BlockId for the given file and block number.
func NewBlockId(file string, num int) BlockId {
	return BlockId{file: file, num: num}
}

// FileName returns the name of the file this block belongs to.
func (b BlockId) FileName() string {
	return b.file
}

// Number returns the block's number within its file.
func (b BlockId) Number() int {
	return b.num
}

// Equals reports whether b and other address the same block.
func (b BlockId) Equals(other BlockId) bool {
	return b.file == other.file && b.num == other.num
}

func (b BlockId) String() string {
	return fmt.Sprintf("file %s, block %d", b.file, b.num)
}
