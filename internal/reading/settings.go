// Package reading holds the reader's display preferences: font size,
// which text layers are visible and night mode. Preferences persist in
// device-local storage and are never synced to the backend.
package reading

import (
	"encoding/json"
	"fmt"
)

// FontSize is one step of the reader's type scale.
type FontSize string

const (
	FontSizeSmall   FontSize = "sm"
	FontSizeBase    FontSize = "base"
	FontSizeLarge   FontSize = "lg"
	FontSizeXLarge  FontSize = "xl"
	FontSize2XLarge FontSize = "2xl"
)

// FontSizes lists the scale from smallest to largest.
var FontSizes = []FontSize{FontSizeSmall, FontSizeBase, FontSizeLarge, FontSizeXLarge, FontSize2XLarge}

func (f FontSize) index() int {
	for i, s := range FontSizes {
		if s == f {
			return i
		}
	}
	return -1
}

// Valid reports whether f is on the scale.
func (f FontSize) Valid() bool {
	return f.index() >= 0
}

// Larger returns the next size up, or f itself at the top of the scale.
func (f FontSize) Larger() FontSize {
	i := f.index()
	if i < 0 || i == len(FontSizes)-1 {
		return f
	}
	return FontSizes[i+1]
}

// Smaller returns the next size down, or f itself at the bottom.
func (f FontSize) Smaller() FontSize {
	i := f.index()
	if i <= 0 {
		return f
	}
	return FontSizes[i-1]
}

type Settings struct {
	FontSize        FontSize `json:"fontSize"`
	ShowPali        bool     `json:"showPali"`
	ShowTranslation bool     `json:"showTranslation"`
	ShowExplanation bool     `json:"showExplanation"`
	NightMode       bool     `json:"nightMode"`
}

func DefaultSettings() Settings {
	return Settings{
		FontSize:        FontSizeBase,
		ShowPali:        true,
		ShowTranslation: true,
		ShowExplanation: true,
		NightMode:       false,
	}
}

// SettingsPatch is a partial update. Nil fields keep their current value.
type SettingsPatch struct {
	FontSize        *FontSize `json:"fontSize,omitempty"`
	ShowPali        *bool     `json:"showPali,omitempty"`
	ShowTranslation *bool     `json:"showTranslation,omitempty"`
	ShowExplanation *bool     `json:"showExplanation,omitempty"`
	NightMode       *bool     `json:"nightMode,omitempty"`
}

// Apply returns s with the patch merged over it.
func (p SettingsPatch) Apply(s Settings) (Settings, error) {
	if p.FontSize != nil {
		if !p.FontSize.Valid() {
			return s, fmt.Errorf("%w: %q", ErrInvalidFontSize, *p.FontSize)
		}
		s.FontSize = *p.FontSize
	}
	if p.ShowPali != nil {
		s.ShowPali = *p.ShowPali
	}
	if p.ShowTranslation != nil {
		s.ShowTranslation = *p.ShowTranslation
	}
	if p.ShowExplanation != nil {
		s.ShowExplanation = *p.ShowExplanation
	}
	if p.NightMode != nil {
		s.NightMode = *p.NightMode
	}
	return s, nil
}

// decodeSettings merges persisted JSON over the defaults field by field.
// Unknown keys are ignored; a key whose value has the wrong type or an
// unknown font size keeps its default.
func decodeSettings(raw string) (Settings, error) {
	s := DefaultSettings()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return s, err
	}

	if v, ok := fields["fontSize"]; ok {
		var size FontSize
		if json.Unmarshal(v, &size) == nil && size.Valid() {
			s.FontSize = size
		}
	}
	for key, dst := range map[string]*bool{
		"showPali":        &s.ShowPali,
		"showTranslation": &s.ShowTranslation,
		"showExplanation": &s.ShowExplanation,
		"nightMode":       &s.NightMode,
	} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		var b bool
		if json.Unmarshal(v, &b) == nil {
			*dst = b
		}
	}
	return s, nil
}
