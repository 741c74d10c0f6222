package bookmarks

import (
	"context"
	"sync"

	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/querycache"
)

// OpBookmarks is the query cache operation for a user's bookmark list.
const OpBookmarks = "bookmarks"

// Repository is the backend bookmark table.
type Repository interface {
	ListForUser(ctx context.Context, userID string) ([]entities.Bookmark, error)
	Add(ctx context.Context, userID, teachingID string) error
	Remove(ctx context.Context, userID, teachingID string) error
}

type snapshot struct {
	ids     []string // newest first
	version uint64
	loaded  bool
}

// Server is the shared state behind every ServerStore: the backend
// repository, the query cache and the last-known bookmark ids per user.
type Server struct {
	repo  Repository
	cache *querycache.Cache

	mu        sync.Mutex
	snapshots map[string]*snapshot

	toggleMu sync.Mutex
}

func NewServer(repo Repository, cache *querycache.Cache) *Server {
	return &Server{
		repo:      repo,
		cache:     cache,
		snapshots: make(map[string]*snapshot),
	}
}

// For returns the store of whoever identity names at call time.
func (s *Server) For(identity auth.Identity) *ServerStore {
	return &ServerStore{server: s, identity: identity}
}

func (s *Server) snapshotLocked(userID string) *snapshot {
	snap, ok := s.snapshots[userID]
	if !ok {
		snap = &snapshot{}
		s.snapshots[userID] = snap
	}
	return snap
}

// ServerStore is the bookmark store of one signed-in identity.
type ServerStore struct {
	server   *Server
	identity auth.Identity
}

func cacheKey(userID string) querycache.Key {
	return querycache.Key{Op: OpBookmarks, Param: userID}
}

// List returns the user's bookmarks newest first with their teachings and
// categories. Anonymous identities get an empty list without a backend call.
func (s *ServerStore) List(ctx context.Context) ([]entities.Bookmark, error) {
	userID, ok := s.identity.UserID()
	if !ok {
		return []entities.Bookmark{}, nil
	}

	s.server.mu.Lock()
	version := s.server.snapshotLocked(userID).version
	s.server.mu.Unlock()

	list, err := querycache.Fetch(ctx, s.server.cache, cacheKey(userID),
		func(ctx context.Context) ([]entities.Bookmark, error) {
			return s.server.repo.ListForUser(ctx, userID)
		})
	if err != nil {
		return nil, err
	}

	s.server.mu.Lock()
	snap := s.server.snapshotLocked(userID)
	// A toggle confirmed while the list was loading is newer than the list.
	if snap.version == version {
		ids := make([]string, 0, len(list))
		for _, b := range list {
			ids = append(ids, b.TeachingID)
		}
		snap.ids = ids
		snap.loaded = true
	}
	s.server.mu.Unlock()

	if list == nil {
		list = []entities.Bookmark{}
	}
	return list, nil
}

// IsBookmarked answers from the last loaded list. Before the first List
// every teaching reads as not bookmarked.
func (s *ServerStore) IsBookmarked(teachingID string) bool {
	userID, ok := s.identity.UserID()
	if !ok {
		return false
	}
	s.server.mu.Lock()
	defer s.server.mu.Unlock()
	snap, exists := s.server.snapshots[userID]
	return exists && indexOf(snap.ids, teachingID) >= 0
}

func (s *ServerStore) TeachingIDs() []string {
	userID, ok := s.identity.UserID()
	if !ok {
		return []string{}
	}
	s.server.mu.Lock()
	defer s.server.mu.Unlock()
	if snap, exists := s.server.snapshots[userID]; exists {
		return append([]string{}, snap.ids...)
	}
	return []string{}
}

// Toggle deletes the bookmark when it exists and inserts it otherwise, as
// one backend write keyed on (user, teaching). On success the user's cached
// list is invalidated. Backend errors are returned unmodified.
func (s *ServerStore) Toggle(ctx context.Context, teachingID string) (bool, error) {
	userID, ok := s.identity.UserID()
	if !ok {
		return false, ErrUnauthenticated
	}

	s.server.toggleMu.Lock()
	defer s.server.toggleMu.Unlock()

	s.server.mu.Lock()
	loaded := s.server.snapshotLocked(userID).loaded
	s.server.mu.Unlock()
	if !loaded {
		if _, err := s.List(ctx); err != nil {
			return false, err
		}
	}

	bookmarked := s.IsBookmarked(teachingID)
	var err error
	if bookmarked {
		err = s.server.repo.Remove(ctx, userID, teachingID)
	} else {
		err = s.server.repo.Add(ctx, userID, teachingID)
	}
	if err != nil {
		return bookmarked, err
	}

	s.server.cache.Invalidate(cacheKey(userID))

	s.server.mu.Lock()
	snap := s.server.snapshotLocked(userID)
	snap.version++
	if bookmarked {
		if i := indexOf(snap.ids, teachingID); i >= 0 {
			snap.ids = append(snap.ids[:i:i], snap.ids[i+1:]...)
		}
	} else {
		snap.ids = append([]string{teachingID}, snap.ids...)
	}
	s.server.mu.Unlock()

	return !bookmarked, nil
}
