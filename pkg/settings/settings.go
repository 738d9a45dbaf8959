// Package settings implements the per-user roaming settings of the delay-send
// add-in on top of a pluggable key/value Backend.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/kezhenxu94/after-hours/pkg/config"
	"github.com/kezhenxu94/after-hours/pkg/schedule"
)

// Roaming settings keys shared with the add-in.
const (
	KeyDelaySendEnabled  = "delaySendEnabled"
	KeyBusinessStartHour = "businessStartHour"
	KeyBusinessEndHour   = "businessEndHour"
)

// Settings is the user-facing configuration of the delay-send feature.
type Settings struct {
	DelaySendEnabled  bool `json:"delaySendEnabled"`
	BusinessStartHour int  `json:"businessStartHour"`
	BusinessEndHour   int  `json:"businessEndHour"`
}

// BusinessHours returns the configured business-hours window.
func (s Settings) BusinessHours() schedule.BusinessHours {
	return schedule.BusinessHours{StartHour: s.BusinessStartHour, EndHour: s.BusinessEndHour}
}

// Defaults returns the built-in settings: enabled, 7 AM to 6 PM.
func Defaults() Settings {
	return Settings{
		DelaySendEnabled:  true,
		BusinessStartHour: 7,
		BusinessEndHour:   18,
	}
}

// DefaultsFromConfig converts the configured defaults, falling back to Defaults for unset values.
func DefaultsFromConfig(cfg config.DefaultsConfig) Settings {
	s := Defaults()
	if cfg.DelaySendEnabled != nil {
		s.DelaySendEnabled = *cfg.DelaySendEnabled
	}
	if cfg.BusinessStartHour != nil {
		s.BusinessStartHour = *cfg.BusinessStartHour
	}
	if cfg.BusinessEndHour != nil {
		s.BusinessEndHour = *cfg.BusinessEndHour
	}
	return s
}

// ValidateBusinessHours checks that both hours are within 0-23 and start < end.
func ValidateBusinessHours(start, end int) error {
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return fmt.Errorf("%w: hours must be between 0 and 23, got %d-%d", ErrInvalidBusinessHours, start, end)
	}
	if start >= end {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidBusinessHours, start, end)
	}
	return nil
}

// Manager reads and writes Settings through a Backend. Missing or malformed
// keys fall back to the defaults. Writes are serialized so that concurrent
// updates of different keys do not overwrite each other.
type Manager struct {
	backend Backend

	mu       sync.Mutex
	defaults Settings
}

// NewManager creates a settings manager.
func NewManager(backend Backend, defaults Settings) *Manager {
	return &Manager{
		backend:  backend,
		defaults: defaults,
	}
}

// SetDefaults replaces the values used for keys that were never saved.
func (m *Manager) SetDefaults(defaults Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = defaults
}

// Load reads the current settings.
func (m *Manager) Load(ctx context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, _, err := m.load(ctx)
	return s, err
}

// Save validates and persists s.
func (m *Manager) Save(ctx context.Context, s Settings) error {
	if err := ValidateBusinessHours(s.BusinessStartHour, s.BusinessEndHour); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, raw, err := m.load(ctx)
	if err != nil {
		return err
	}
	return m.save(ctx, raw, s)
}

// Toggle sets the delay-send flag to *enabled, or flips it when enabled is nil.
// It returns the new state.
func (m *Manager) Toggle(ctx context.Context, enabled *bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, raw, err := m.load(ctx)
	if err != nil {
		return false, err
	}

	if enabled != nil {
		s.DelaySendEnabled = *enabled
	} else {
		s.DelaySendEnabled = !s.DelaySendEnabled
	}
	slog.Debug("Delay send toggled", "enabled", s.DelaySendEnabled)

	if err := m.save(ctx, raw, s); err != nil {
		return s.DelaySendEnabled, err
	}
	return s.DelaySendEnabled, nil
}

// SetBusinessHours validates and persists a new business-hours window.
func (m *Manager) SetBusinessHours(ctx context.Context, start, end int) (Settings, error) {
	if err := ValidateBusinessHours(start, end); err != nil {
		return Settings{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, raw, err := m.load(ctx)
	if err != nil {
		return Settings{}, err
	}

	s.BusinessStartHour = start
	s.BusinessEndHour = end
	if err := m.save(ctx, raw, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (m *Manager) load(ctx context.Context) (Settings, map[string]string, error) {
	raw, err := m.backend.Load(ctx)
	if err != nil {
		return Settings{}, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if raw == nil {
		raw = map[string]string{}
	}

	s := m.defaults
	if v, ok := raw[KeyDelaySendEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.DelaySendEnabled = b
		} else {
			slog.Warn("Ignoring malformed setting", "key", KeyDelaySendEnabled, "value", v)
		}
	}
	s.BusinessStartHour = parseHour(raw, KeyBusinessStartHour, s.BusinessStartHour)
	s.BusinessEndHour = parseHour(raw, KeyBusinessEndHour, s.BusinessEndHour)

	if err := ValidateBusinessHours(s.BusinessStartHour, s.BusinessEndHour); err != nil {
		slog.Warn("Stored business hours are invalid, using defaults",
			"start", s.BusinessStartHour,
			"end", s.BusinessEndHour,
		)
		s.BusinessStartHour = m.defaults.BusinessStartHour
		s.BusinessEndHour = m.defaults.BusinessEndHour
	}

	slog.Debug("Settings loaded",
		"delay_enabled", s.DelaySendEnabled,
		"business_start", s.BusinessStartHour,
		"business_end", s.BusinessEndHour,
	)
	return s, raw, nil
}

// save writes all three keys, keeping any other keys found in raw.
func (m *Manager) save(ctx context.Context, raw map[string]string, s Settings) error {
	values := make(map[string]string, len(raw)+3)
	for k, v := range raw {
		values[k] = v
	}
	values[KeyDelaySendEnabled] = strconv.FormatBool(s.DelaySendEnabled)
	values[KeyBusinessStartHour] = strconv.Itoa(s.BusinessStartHour)
	values[KeyBusinessEndHour] = strconv.Itoa(s.BusinessEndHour)

	if err := m.backend.Save(ctx, values); err != nil {
		slog.Error("Failed to save settings", "error", err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	slog.Info("Settings saved",
		"delay_enabled", s.DelaySendEnabled,
		"business_start", s.BusinessStartHour,
		"business_end", s.BusinessEndHour,
	)
	return nil
}

func parseHour(raw map[string]string, key string, fallback int) int {
	v, ok := raw[key]
	if !ok {
		return fallback
	}
	hour, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring malformed setting", "key", key, "value", v)
		return fallback
	}
	return hour
}
