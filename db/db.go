// Package db wires the file, log, buffer and transaction subsystems
// together into one database handle, mirroring the teacher's top-level
// db.DB but scoped to the storage/transaction core: no catalog, planner
// or SQL layer sits above it here.
package db

import (
	"fmt"

	"github.com/wrenfield/blockdb/buffer"
	"github.com/wrenfield/blockdb/file"
	"github.com/wrenfield/blockdb/tx"
	"github.com/wrenfield/blockdb/wal"
)

// DB owns the five subsystems a transaction needs and the registry that
// replaces their global state.
type DB struct {
	fm *file.Manager
	lm *wal.Manager
	bm *buffer.Manager
	lt *tx.LockTable
	rg *tx.Registry
}

// Open builds a database rooted at cfg.Directory, then runs crash recovery
// before returning. Recovery runs unconditionally: on a brand-new
// directory the log is empty and it is a no-op beyond writing the initial
// checkpoint.
func Open(cfg Config) (*DB, error) {
	fm, err := file.NewManager(cfg.Directory, cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	lm, err := wal.NewManager(fm, cfg.LogFileName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	bm := buffer.NewManagerWithWaitTime(fm, lm, cfg.BufferPoolSize, cfg.MaxWaitTime)

	database := &DB{
		fm: fm,
		lm: lm,
		bm: bm,
		lt: tx.NewLockTableWithWaitTime(cfg.MaxWaitTime),
		rg: tx.NewRegistryWithWaitTime(cfg.MaxWaitTime),
	}

	fmt.Println("recovering database")
	recoverTx, err := tx.New(fm, lm, bm, database.lt, database.rg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := recoverTx.Recover(); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := recoverTx.Commit(); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return database, nil
}

// Close releases the database's open file handles.
func (db *DB) Close() error {
	return db.fm.Close()
}

// NewTx starts a new transaction against this database.
func (db *DB) NewTx() (*tx.Transaction, error) {
	return tx.New(db.fm, db.lm, db.bm, db.lt, db.rg)
}

// Checkpoint performs a quiescent checkpoint, blocking new transactions
// until every currently active one finishes or the wait budget expires.
func (db *DB) Checkpoint() error {
	fmt.Println("running quiescent checkpoint")
	return tx.Checkpoint(db.rg, db.bm, db.lm)
}

// NQCheckpoint performs a non-quiescent checkpoint, recording which
// transactions are still active without waiting for them.
func (db *DB) NQCheckpoint() error {
	fmt.Println("running non-quiescent checkpoint")
	return tx.NQCheckpoint(db.rg, db.bm, db.lm)
}

// BlockSize returns the database's configured block size.
func (db *DB) BlockSize() int {
	return db.fm.BlockSize()
}

// AvailableBuffers returns the number of currently unpinned frames.
func (db *DB) AvailableBuffers() int {
	return db.bm.Available()
}
