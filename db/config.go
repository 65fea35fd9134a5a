package db

import (
	"time"

	"github.com/wrenfield/blockdb/tx"
)

// defaultBlockSize is the conventional page size when a caller doesn't
// need a specific one.
const defaultBlockSize = 4096

// Config names the five recognized options for opening a database.
type Config struct {
	Directory      string
	BlockSize      int
	BufferPoolSize int
	LogFileName    string
	MaxWaitTime    time.Duration
}

// DefaultConfig returns the conventional configuration for a database
// rooted at dir: a 4KB page size, a 500-frame buffer pool and a log file
// named "wal".
func DefaultConfig(dir string) Config {
	return Config{
		Directory:      dir,
		BlockSize:      defaultBlockSize,
		BufferPoolSize: 500,
		LogFileName:    "wal",
		MaxWaitTime:    tx.MaxWaitTime,
	}
}
