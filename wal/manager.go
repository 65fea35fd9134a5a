// Package wal implements the write-ahead log: records are appended
// right-to-left within fixed-size blocks, newest first, so that recovery
// can read them back in reverse order without a separate index.
package wal

import (
	"sync"

	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/storage"
)

// Manager appends byte records to a single log file and tracks which log
// sequence number has been durably flushed to disk.
//
// Layout of the current block's page:
//
//	offset 0            boundary                      block size
//	  |                     |                               |
//	  | boundary (4 bytes)  |  ...free...  | rec | rec | ... |
//
// "boundary" holds the offset of the newest (leftmost) record currently in
// the block. A new record is written just to the left of boundary, and
// boundary is updated to point at it - so records accumulate right to left
// and the most recently appended record is always the leftmost one.
type Manager struct {
	mu sync.Mutex

	fm      *file.Manager
	logFile string

	page         *storage.Page
	currentBlock storage.BlockId

	latestLSN    int
	lastSavedLSN int
}

// NewManager opens (or creates) logFile within fm's directory and
// positions the log at its last block, ready to append further records.
func NewManager(fm *file.Manager, logFile string) (*Manager, error) {
	size, err := fm.Length(logFile)
	if err != nil {
		return nil, err
	}

	page := storage.NewPage(fm.BlockSize())

	m := &Manager{
		fm:      fm,
		logFile: logFile,
		page:    page,
	}

	if size == 0 {
		block, err := m.appendNewBlock()
		if err != nil {
			return nil, err
		}
		m.currentBlock = block
	} else {
		m.currentBlock = storage.NewBlockId(logFile, size-1)
		if err := fm.Read(m.currentBlock, page); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// appendNewBlock extends the log file by one block, writes the boundary
// header pointing past the end of the block (meaning "empty"), and returns
// the new block. Caller must hold mu.
func (m *Manager) appendNewBlock() (storage.BlockId, error) {
	block, err := m.fm.Append(m.logFile)
	if err != nil {
		return storage.BlockId{}, err
	}

	m.page.SetInt(0, int32(m.fm.BlockSize()))
	if err := m.fm.Write(block, m.page); err != nil {
		return storage.BlockId{}, err
	}
	return block, nil
}

// flush writes the in-memory log page to its current block and records the
// LSN as durably saved. Caller must hold mu.
func (m *Manager) flush() error {
	if err := m.fm.Write(m.currentBlock, m.page); err != nil {
		return err
	}
	m.lastSavedLSN = m.latestLSN
	return nil
}

// Flush ensures that every record up to and including lsn has been written
// to disk. Transactions call this before their buffers holding the
// corresponding modified pages are flushed, honoring the write-ahead rule.
func (m *Manager) Flush(lsn int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lsn >= m.lastSavedLSN {
		return m.flush()
	}
	return nil
}

// Append writes record to the log and returns its assigned LSN. If the
// record does not fit in the space remaining in the current block, the
// current block is flushed and a new one is allocated first.
func (m *Manager) Append(record []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	boundary := m.page.Int(0)
	recSize := len(record)
	bytesNeeded := recSize + storage.SizeOfInt32

	if int(boundary)-bytesNeeded < storage.SizeOfInt32 {
		if err := m.flush(); err != nil {
			return 0, err
		}
		block, err := m.appendNewBlock()
		if err != nil {
			return 0, err
		}
		m.currentBlock = block
		boundary = m.page.Int(0)
	}

	recPos := int(boundary) - bytesNeeded
	m.page.SetBytes(recPos, record)
	m.page.SetInt(0, int32(recPos))

	m.latestLSN++
	return m.latestLSN, nil
}

// Iterator flushes any pending records and returns an Iterator positioned
// at the newest record in the log, walking backward toward the oldest.
func (m *Manager) Iterator() (*Iterator, error) {
	m.mu.Lock()
	if err := m.flush(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	start := m.currentBlock
	m.mu.Unlock()

	return newIterator(m.fm, start)
}

// LatestLSN returns the most recently assigned log sequence number.
func (m *Manager) LatestLSN() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestLSN
}
