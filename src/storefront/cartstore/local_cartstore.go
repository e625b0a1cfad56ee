package cartstore

import (
	"context"
	"sync"
)

// LocalSlot is an in-memory Slot. Its contents die with the process.
type LocalSlot struct {
	mu   sync.RWMutex
	data []byte
	set  bool
}

// NewLocalSlot constructor
func NewLocalSlot() *LocalSlot {
	return &LocalSlot{}
}

// Initialize does nothing in this implementation.
func (l *LocalSlot) Initialize(ctx context.Context) error {
	return nil
}

// Read returns a copy of the stored blob.
func (l *LocalSlot) Read(ctx context.Context) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.set {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(l.data))
	copy(out, l.data)
	return out, nil
}

// Write replaces the stored blob.
func (l *LocalSlot) Write(ctx context.Context, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.data = make([]byte, len(data))
	copy(l.data, data)
	l.set = true
	return nil
}

// Ping is a health check that always returns true.
func (l *LocalSlot) Ping(ctx context.Context) bool {
	return true
}
