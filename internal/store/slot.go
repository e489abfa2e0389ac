package store

import "sync"

// Slot is a single named value in a durable key-value store. The whole
// collection is serialized into one slot; every write replaces the prior
// content as a full snapshot.
type Slot interface {
	// Read returns the raw stored value and whether the slot exists.
	Read() (string, bool, error)
	// Write replaces the slot content.
	Write(value string) error
	// Clear removes the slot.
	Clear() error
}

// MemorySlot is an in-memory Slot for tests and ephemeral sessions.
type MemorySlot struct {
	mu    sync.Mutex
	value string
	set   bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Seed returns an in-memory slot pre-populated with raw content, useful for
// exercising the defensive load path.
func Seed(value string) *MemorySlot {
	return &MemorySlot{value: value, set: true}
}

func (s *MemorySlot) Read() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set, nil
}

func (s *MemorySlot) Write(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.set = true
	return nil
}

func (s *MemorySlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	s.set = false
	return nil
}
