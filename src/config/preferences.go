package config

import (
	"encoding/json"
	"fmt"
)

// Theme is the color scheme a user picked.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Preferences are per-user interface settings. They are loaded and saved
// explicitly through storage rather than held in process-wide state.
type Preferences struct {
	Theme            Theme `json:"theme" validate:"theme"`
	SidebarCollapsed bool  `json:"sidebar_collapsed"`
}

// DefaultPreferences is what a user starts with.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeSystem}
}

// Validate checks the preference values.
func (p Preferences) Validate() error {
	return NewValidator().Struct(p)
}

// ParsePreferences decodes a stored preferences document over the defaults.
// An empty document yields the defaults.
func ParsePreferences(raw string) (Preferences, error) {
	prefs := DefaultPreferences()
	if raw == "" {
		return prefs, nil
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("failed to parse preferences: %w", err)
	}
	if prefs.Theme == "" {
		prefs.Theme = ThemeSystem
	}
	if err := prefs.Validate(); err != nil {
		return DefaultPreferences(), err
	}
	return prefs, nil
}

// Encode returns the stored form of the preferences.
func (p Preferences) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
