package reading

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/nissaya/reader/internal/localstore"
)

var ErrInvalidFontSize = errors.New("invalid font size")

// Store owns the reading settings key in local storage. Every mutation is
// persisted before it returns; when the write fails the previous settings
// stay in effect.
type Store struct {
	// commitMu orders whole commits, theme and listeners included.
	commitMu  sync.Mutex
	mu        sync.Mutex
	storage   localstore.Storage
	theme     Theme
	settings  Settings
	listeners []func(Settings)
}

// NewStore loads persisted settings and applies night mode to theme.
// theme may be nil.
func NewStore(storage localstore.Storage, theme Theme) *Store {
	s := &Store{storage: storage, theme: theme}
	s.settings = s.load()
	s.applyTheme(s.settings)
	return s
}

func (s *Store) load() Settings {
	raw, ok, err := s.storage.Get(localstore.KeyReadingSettings)
	if err != nil {
		log.Printf("Reading settings: failed to read local storage, using defaults: %v", err)
		return DefaultSettings()
	}
	if !ok {
		return DefaultSettings()
	}
	settings, err := decodeSettings(raw)
	if err != nil {
		log.Printf("Reading settings: stored value is corrupt, using defaults: %v", err)
	}
	return settings
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// OnChange registers fn to be called synchronously after every committed
// change, in commit order. fn may read Settings but must not mutate the
// store.
func (s *Store) OnChange(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Update merges patch into the settings.
func (s *Store) Update(patch SettingsPatch) (Settings, error) {
	return s.mutate(func(cur Settings) (Settings, error) {
		return patch.Apply(cur)
	})
}

// IncreaseFontSize moves one step up the scale, stopping at 2xl.
func (s *Store) IncreaseFontSize() (Settings, error) {
	return s.mutate(func(cur Settings) (Settings, error) {
		cur.FontSize = cur.FontSize.Larger()
		return cur, nil
	})
}

// DecreaseFontSize moves one step down the scale, stopping at sm.
func (s *Store) DecreaseFontSize() (Settings, error) {
	return s.mutate(func(cur Settings) (Settings, error) {
		cur.FontSize = cur.FontSize.Smaller()
		return cur, nil
	})
}

func (s *Store) ToggleNightMode() (Settings, error) {
	return s.mutate(func(cur Settings) (Settings, error) {
		cur.NightMode = !cur.NightMode
		return cur, nil
	})
}

func (s *Store) mutate(change func(Settings) (Settings, error)) (Settings, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	prev := s.settings
	next, err := change(prev)
	if err != nil {
		s.mu.Unlock()
		return prev, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return prev, fmt.Errorf("failed to encode reading settings: %w", err)
	}
	if err := s.storage.Set(localstore.KeyReadingSettings, string(data)); err != nil {
		s.mu.Unlock()
		return prev, fmt.Errorf("failed to persist reading settings: %w", err)
	}

	s.settings = next
	listeners := append([]func(Settings){}, s.listeners...)
	s.mu.Unlock()

	s.applyTheme(next)
	for _, fn := range listeners {
		fn(next)
	}
	return next, nil
}

func (s *Store) applyTheme(settings Settings) {
	if s.theme != nil {
		s.theme.SetNightMode(settings.NightMode)
	}
}
