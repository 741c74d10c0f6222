package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/nissaya/reader/internal/localstore"
)

// LocalStore holds anonymous bookmarks as an ordered set of teaching ids.
// The set is read from storage once; every change rewrites it whole.
type LocalStore struct {
	mu      sync.RWMutex
	storage localstore.Storage
	ids     []string
}

// NewLocalStore loads the bookmark set, falling back to the legacy key when
// the current one has never been written.
func NewLocalStore(storage localstore.Storage) *LocalStore {
	s := &LocalStore{storage: storage}
	s.ids = s.load()
	return s
}

func (s *LocalStore) load() []string {
	for _, key := range []string{localstore.KeyBookmarks, localstore.KeyLegacyBookmarks} {
		raw, ok, err := s.storage.Get(key)
		if err != nil {
			log.Printf("Bookmarks: failed to read %s: %v", key, err)
			continue
		}
		if !ok {
			continue
		}
		return decodeIDs(key, raw)
	}
	return []string{}
}

func decodeIDs(key, raw string) []string {
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("Bookmarks: %s is corrupt, starting empty: %v", key, err)
		return []string{}
	}

	seen := make(map[string]bool, len(stored))
	ids := make([]string, 0, len(stored))
	for _, id := range stored {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func (s *LocalStore) IsBookmarked(teachingID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.ids, teachingID) >= 0
}

// Toggle adds or removes teachingID and persists the whole set. When the
// write fails the set is left unchanged.
func (s *LocalStore) Toggle(_ context.Context, teachingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.ids)+1)
	added := true
	for _, id := range s.ids {
		if id == teachingID {
			added = false
			continue
		}
		next = append(next, id)
	}
	if added {
		next = append(next, teachingID)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return !added, err
	}
	if err := s.storage.Set(localstore.KeyBookmarks, string(data)); err != nil {
		return !added, fmt.Errorf("failed to persist bookmarks: %w", err)
	}

	s.ids = next
	return added, nil
}

// TeachingIDs returns the bookmarked ids in the order they were added.
func (s *LocalStore) TeachingIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.ids...)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
