package reading

import "sync"

// Theme is the presentation flag driven by night mode. SetNightMode must be
// idempotent.
type Theme interface {
	SetNightMode(on bool)
}

// DocumentTheme tracks the document-level dark class.
type DocumentTheme struct {
	mu      sync.RWMutex
	dark    bool
	changes int
}

func (d *DocumentTheme) SetNightMode(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dark != on {
		d.dark = on
		d.changes++
	}
}

// Dark reports whether the dark class is applied.
func (d *DocumentTheme) Dark() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dark
}

// Changes counts actual flips of the dark class.
func (d *DocumentTheme) Changes() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.changes
}
