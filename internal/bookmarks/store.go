// Package bookmarks keeps the reader's bookmarked teachings.
//
// There are two independent stores. Anonymous visitors bookmark into
// device-local storage (LocalStore); signed-in users bookmark into the
// backend (ServerStore). The two are never merged: signing in switches
// which store is active, and the local bookmarks stay where they were.
package bookmarks

import (
	"context"
	"errors"

	"github.com/nissaya/reader/internal/auth"
)

var ErrUnauthenticated = errors.New("must be signed in to change server bookmarks")

// Store is the capability shared by both bookmark variants.
type Store interface {
	IsBookmarked(teachingID string) bool
	// Toggle flips membership and reports whether teachingID is bookmarked
	// afterwards.
	Toggle(ctx context.Context, teachingID string) (bool, error)
	TeachingIDs() []string
}

// Selector picks the active store for an identity at read time.
type Selector struct {
	Local  *LocalStore
	Server *Server
}

// Active returns the server store for a signed-in identity and the local
// store otherwise. The identity is checked on every call, so signing in or
// out switches stores on the next request.
func (s Selector) Active(identity auth.Identity) Store {
	if _, ok := identity.UserID(); ok && s.Server != nil {
		return s.Server.For(identity)
	}
	return s.Local
}
