// Package file implements block-addressed paged I/O over regular files: the
// lowest layer of the storage engine, on top of which the log and buffer
// managers operate.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wrenfield/blockdb/dberr"
	"github.com/wrenfield/blockdb/storage"
)

// tempFilePrefix marks scratch files deleted on startup.
const tempFilePrefix = "temp"

// handle guards one open file so that operations on distinct files can
// proceed in parallel while operations on the same file stay serialized.
type handle struct {
	mu sync.Mutex
	f  *os.File
}

// Manager implements read/write/append over named files within a single
// database directory. All block-level operations always move exactly
// blockSize bytes at a block boundary, so every Read/Write/Append incurs at
// most one disk access (ignoring the fsync that Write and Append perform).
type Manager struct {
	dir       string
	blockSize int

	mu    sync.Mutex // guards files
	files map[string]*handle
}

// NewManager opens (creating if necessary) the database directory at dir
// and returns a Manager that reads and writes blockSize-sized blocks within
// it. Any existing file whose name begins with "temp" - scratch state left
// behind by a prior process - is removed.
func NewManager(dir string, blockSize int) (*Manager, error) {
	if blockSize <= 0 {
		return nil, dberr.New(dberr.DomainViolation, "block size must be positive")
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dberr.Wrap(dberr.IoFailure, "create database directory", err)
		}
	} else if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "stat database directory", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, "read database directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), tempFilePrefix) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return nil, dberr.Wrap(dberr.IoFailure, fmt.Sprintf("remove scratch file %s", entry.Name()), err)
			}
		}
	}

	return &Manager{
		dir:       dir,
		blockSize: blockSize,
		files:     make(map[string]*handle),
	}, nil
}

// BlockSize returns the configured block size in bytes.
func (m *Manager) BlockSize() int {
	return m.blockSize
}

// Close releases every open file handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, h := range m.files {
		h.mu.Lock()
		err := h.f.Close()
		h.mu.Unlock()
		if err != nil {
			return dberr.Wrap(dberr.IoFailure, fmt.Sprintf("close %s", name), err)
		}
	}
	return nil
}

func (m *Manager) handleFor(name string) (*handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.files[name]; ok {
		return h, nil
	}

	f, err := os.OpenFile(filepath.Join(m.dir, name), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, dberr.Wrap(dberr.IoFailure, fmt.Sprintf("open %s", name), err)
	}

	h := &handle{f: f}
	m.files[name] = h
	return h, nil
}

// Read fills page's buffer with the contents of block. The file must
// already be at least as long as block requires; a short or missing file
// is an IoFailure, never silently zero-filled.
func (m *Manager) Read(block storage.BlockId, page *storage.Page) error {
	h, err := m.handleFor(block.FileName())
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	buf := page.Contents()
	n, err := h.f.ReadAt(buf, int64(block.Number())*int64(m.blockSize))
	if err != nil || n != len(buf) {
		if err == nil {
			err = fmt.Errorf("short read: got %d of %d bytes", n, len(buf))
		}
		return dberr.Wrap(dberr.IoFailure, fmt.Sprintf("read %s", block), err)
	}
	return nil
}

// Write persists page's buffer to block and fsyncs the file before
// returning. This is the durability primitive the log and buffer managers
// depend on to honor the write-ahead-log rule.
func (m *Manager) Write(block storage.BlockId, page *storage.Page) error {
	h, err := m.handleFor(block.FileName())
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	buf := page.Contents()
	if _, err := h.f.WriteAt(buf, int64(block.Number())*int64(m.blockSize)); err != nil {
		return dberr.Wrap(dberr.IoFailure, fmt.Sprintf("write %s", block), err)
	}
	if err := h.f.Sync(); err != nil {
		return dberr.Wrap(dberr.IoFailure, fmt.Sprintf("fsync %s", block.FileName()), err)
	}
	return nil
}

// Append extends file by one block and returns its BlockId. The length
// computation and the extending write happen under the same per-file lock,
// so concurrent appenders never observe the same new block number.
func (m *Manager) Append(file string) (storage.BlockId, error) {
	h, err := m.handleFor(file)
	if err != nil {
		return storage.BlockId{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	info, err := h.f.Stat()
	if err != nil {
		return storage.BlockId{}, dberr.Wrap(dberr.IoFailure, fmt.Sprintf("stat %s", file), err)
	}

	newNum := int(info.Size() / int64(m.blockSize))
	block := storage.NewBlockId(file, newNum)

	buf := make([]byte, m.blockSize)
	if _, err := h.f.WriteAt(buf, int64(newNum)*int64(m.blockSize)); err != nil {
		return storage.BlockId{}, dberr.Wrap(dberr.IoFailure, fmt.Sprintf("extend %s", file), err)
	}
	if err := h.f.Sync(); err != nil {
		return storage.BlockId{}, dberr.Wrap(dberr.IoFailure, fmt.Sprintf("fsync %s", file), err)
	}

	return block, nil
}

// Length returns the number of blocks currently in file.
func (m *Manager) Length(file string) (int, error) {
	h, err := m.handleFor(file)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	info, err := h.f.Stat()
	if err != nil {
		return 0, dberr.Wrap(dberr.IoFailure, fmt.Sprintf("stat %s", file), err)
	}
	return int(info.Size() / int64(m.blockSize)), nil
}
