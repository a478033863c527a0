package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ytget/mucache/internal/platform"
)

// QualityPreset selects the yt-dlp format fallback chain
type QualityPreset string

const (
	QualityReliable QualityPreset = "reliable"
	QualityMedium   QualityPreset = "medium"
	QualityHigh     QualityPreset = "high"
)

// Settings keys in settings.json
const (
	SettingsFileName = "settings.json"
	KeyQualityPreset = "quality_preference"
)

// Default values
const (
	DefaultQualityPreset = QualityReliable
)

// Valid reports whether p is one of the known presets
func (p QualityPreset) Valid() bool {
	switch p {
	case QualityReliable, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// Settings manages user preferences persisted in settings.json. Keys it does
// not know about are kept when the file is rewritten.
type Settings struct {
	path   string
	mu     sync.RWMutex
	values map[string]any
	logger *slog.Logger
}

// NewSettings loads the settings file at path. A missing or corrupt file
// yields defaults.
func NewSettings(path string, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Settings{path: path, values: map[string]any{}, logger: logger}

	if err := platform.ReadJSON(path, &s.values); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read settings, using defaults", "path", path, "error", err)
		}
		s.values = map[string]any{}
	}
	if s.values == nil {
		s.values = map[string]any{}
	}
	return s
}

// GetQualityPreset returns the configured quality preset. Unknown values fall
// back to the default.
func (s *Settings) GetQualityPreset() QualityPreset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, _ := s.values[KeyQualityPreset].(string)
	preset := QualityPreset(raw)
	if !preset.Valid() {
		return DefaultQualityPreset
	}
	return preset
}

// SetQualityPreset validates and persists the quality preset
func (s *Settings) SetQualityPreset(preset QualityPreset) error {
	if !preset.Valid() {
		return fmt.Errorf("unknown quality preset: %q", preset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[KeyQualityPreset] = string(preset)
	if err := platform.WriteJSONAtomic(s.path, s.values); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetQualityPresetOptions returns available quality preset options
func (s *Settings) GetQualityPresetOptions() []QualityPreset {
	return []QualityPreset{QualityReliable, QualityMedium, QualityHigh}
}

// QualityDescriptions describes each preset for the player's settings panel
func QualityDescriptions() map[QualityPreset]string {
	return map[QualityPreset]string{
		QualityReliable: "Always works - 360p quality using format 18",
		QualityMedium:   "Balanced - attempts 720p with reliable fallbacks",
		QualityHigh:     "Best quality - 1080p with FFmpeg merging (requires FFmpeg)",
	}
}
