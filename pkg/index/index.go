// Package index maps article titles to graph node ids.
//
// The index is filled while nodes are created and frozen before any
// relationship is resolved. After Freeze, Lookup may be called from any
// number of goroutines.
package index

import (
	"errors"
	"sync"
)

// ErrFrozen is returned by Register once the index has been frozen.
var ErrFrozen = errors.New("title index is frozen")

// TitleIndex is the title to node id mapping used by the linker.
type TitleIndex interface {
	// Register maps title to id. Registering a title again overwrites the
	// previous id.
	Register(title string, id int64) error
	// Lookup returns the id registered for title.
	Lookup(title string) (int64, bool, error)
	// Len returns the number of registered titles.
	Len() int
	// Freeze ends the registration phase and makes every registration
	// visible to Lookup.
	Freeze() error
	Close() error
}

// MemoryIndex keeps the whole mapping in a Go map.
type MemoryIndex struct {
	mu     sync.RWMutex
	ids    map[string]int64
	frozen bool
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{ids: make(map[string]int64)}
}

func (m *MemoryIndex) Register(title string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return ErrFrozen
	}
	m.ids[title] = id
	return nil
}

func (m *MemoryIndex) Lookup(title string) (int64, bool, error) {
	m.mu.RLock()
	id, ok := m.ids[title]
	m.mu.RUnlock()
	return id, ok, nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

func (m *MemoryIndex) Freeze() error {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Close() error {
	return nil
}
