// Package offline keeps full copies of teachings in device-local storage so
// they can be read without the backend.
//
// The mirror is independent of the query cache: nothing read from it is
// ever written into the cache, and cache invalidation never touches it.
package offline

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/localstore"
)

// Snapshot is a teaching as it was when downloaded.
type Snapshot struct {
	entities.Teaching
	DownloadedAt time.Time `json:"downloadedAt"`
}

// Mirror owns the offline teachings key. The stored value is a JSON array
// of snapshots with at most one entry per teaching id.
type Mirror struct {
	mu        sync.RWMutex
	storage   localstore.Storage
	now       func() time.Time
	snapshots []Snapshot
}

// NewMirror loads the stored snapshots. A corrupt value is logged and
// treated as empty.
func NewMirror(storage localstore.Storage, now func() time.Time) *Mirror {
	if now == nil {
		now = time.Now
	}
	m := &Mirror{storage: storage, now: now}
	m.snapshots = m.load()
	return m
}

func (m *Mirror) load() []Snapshot {
	raw, ok, err := m.storage.Get(localstore.KeyOfflineTeachings)
	if err != nil {
		log.Printf("Offline: failed to read local storage: %v", err)
		return []Snapshot{}
	}
	if !ok {
		return []Snapshot{}
	}

	var stored []Snapshot
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("Offline: stored teachings are corrupt, starting empty: %v", err)
		return []Snapshot{}
	}

	// Keep the last copy of any id that was stored twice.
	byID := make(map[string]int, len(stored))
	snapshots := make([]Snapshot, 0, len(stored))
	for _, s := range stored {
		if s.ID == "" {
			continue
		}
		if i, seen := byID[s.ID]; seen {
			snapshots[i] = s
			continue
		}
		byID[s.ID] = len(snapshots)
		snapshots = append(snapshots, s)
	}
	return snapshots
}

func (m *Mirror) persistLocked(next []Snapshot) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode offline teachings: %w", err)
	}
	if err := m.storage.Set(localstore.KeyOfflineTeachings, string(data)); err != nil {
		return fmt.Errorf("failed to persist offline teachings: %w", err)
	}
	m.snapshots = next
	return nil
}

func (m *Mirror) without(id string) []Snapshot {
	next := make([]Snapshot, 0, len(m.snapshots)+1)
	for _, s := range m.snapshots {
		if s.ID != id {
			next = append(next, s)
		}
	}
	return next
}

// Save stores a full copy of teaching, replacing any earlier copy, and
// returns the stored snapshot.
func (m *Mirror) Save(teaching entities.Teaching) (Snapshot, error) {
	if teaching.ID == "" {
		return Snapshot{}, fmt.Errorf("teaching has no id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{Teaching: teaching, DownloadedAt: m.now().UTC()}
	next := append(m.without(teaching.ID), snap)
	if err := m.persistLocked(next); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Remove drops the copy of id. Removing an id that is not stored does
// nothing.
func (m *Mirror) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.without(id)
	if len(next) == len(m.snapshots) {
		return nil
	}
	return m.persistLocked(next)
}

func (m *Mirror) IsAvailable(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Snapshot returns the stored copy of id, or nil.
func (m *Mirror) Snapshot(id string) *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			s := s
			return &s
		}
	}
	return nil
}

// List returns every snapshot in the order saved.
func (m *Mirror) List() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Snapshot{}, m.snapshots...)
}

func (m *Mirror) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// ClearAll removes every snapshot and the storage key itself.
func (m *Mirror) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Remove(localstore.KeyOfflineTeachings); err != nil {
		return fmt.Errorf("failed to clear offline teachings: %w", err)
	}
	m.snapshots = []Snapshot{}
	return nil
}
