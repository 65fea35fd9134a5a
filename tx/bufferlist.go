package tx

import (
	"github.com/wrenfield/blockdb/buffer"
	"github.com/wrenfield/blockdb/storage"
)

// bufferList tracks, per transaction, which frames it currently has pinned
// and how many times. It is only ever touched by its owning transaction,
// so it needs no locking of its own.
type bufferList struct {
	bm      *buffer.Manager
	buffers map[storage.BlockId]*buffer.Buffer
	pins    map[storage.BlockId]int
}

func newBufferList(bm *buffer.Manager) *bufferList {
	return &bufferList{
		bm:      bm,
		buffers: make(map[storage.BlockId]*buffer.Buffer),
		pins:    make(map[storage.BlockId]int),
	}
}

// getBuffer returns the frame currently pinned for block, or nil if this
// transaction has not pinned it.
func (l *bufferList) getBuffer(block storage.BlockId) *buffer.Buffer {
	return l.buffers[block]
}

// pin pins block, recording one more pin against it. Pinning the same
// block twice is legal and requires two unpins to release.
func (l *bufferList) pin(block storage.BlockId) error {
	buf, err := l.bm.Pin(block)
	if err != nil {
		return err
	}
	l.buffers[block] = buf
	l.pins[block]++
	return nil
}

// unpin releases one pin on block.
func (l *bufferList) unpin(block storage.BlockId) {
	buf, ok := l.buffers[block]
	if !ok {
		return
	}
	l.bm.Unpin(buf)

	if l.pins[block] <= 1 {
		delete(l.pins, block)
		delete(l.buffers, block)
	} else {
		l.pins[block]--
	}
}

// unpinAll releases every pin this transaction holds, exactly once per
// pin recorded, and clears its bookkeeping.
func (l *bufferList) unpinAll() {
	for block, count := range l.pins {
		buf := l.buffers[block]
		for i := 0; i < count; i++ {
			l.bm.Unpin(buf)
		}
	}
	l.buffers = make(map[storage.BlockId]*buffer.Buffer)
	l.pins = make(map[storage.BlockId]int)
}
