/*
Package store persists the room configuration that must survive restarts:
the current admin identity and the shared appearance settings.

The backing format is a small JSON document on disk. A missing file is not an
error; it simply yields defaults with no admin assigned. In-memory room state
(user records and choices) is deliberately not persisted.
*/
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/CALEBPOTZ/battleroyal/internal/pkg/logx"
)

// Default values clients fall back to when a setting is unset.
const (
	// DefaultAvatarURL is the profile picture used until a user sets their own.
	DefaultAvatarURL = "https://picsum.photos/seed/default/50"

	// DefaultBgColor is the fallback page background color.
	DefaultBgColor = "#1a1a2e"

	// DefaultBgGradient is the fallback page background gradient.
	DefaultBgGradient = "linear-gradient(135deg, #1a1a2e 0%, #16213e 100%)"

	// DefaultLogoURL is the fallback logo image path.
	DefaultLogoURL = "/assets/logo.png"
)

// Appearance holds the shared visual settings every client applies.
// An empty BgImageURL means no background image is set.
type Appearance struct {
	BgColor    string `json:"bgColor"`
	BgImageURL string `json:"bgImageUrl,omitempty"`
	LogoURL    string `json:"logoUrl"`
}

// DefaultAppearance returns the appearance settings used when nothing has been customized.
func DefaultAppearance() Appearance {
	return Appearance{
		BgColor:    DefaultBgColor,
		BgImageURL: "",
		LogoURL:    DefaultLogoURL,
	}
}

// Normalized returns a copy with every empty field replaced by its default.
func (a Appearance) Normalized() Appearance {
	if a.BgColor == "" {
		a.BgColor = DefaultBgColor
	}
	if a.LogoURL == "" {
		a.LogoURL = DefaultLogoURL
	}
	return a
}

// Config is the persisted document. AdminUsername is empty when no admin is assigned.
type Config struct {
	AdminUsername string     `json:"adminUsername"`
	Appearance    Appearance `json:"appearance"`
}

// Store reads and writes the room config file.
type Store struct {
	path   string
	logger zerolog.Logger
}

// New creates a Store for the given file path.
func New(path string) *Store {
	storeLogger := logx.Logger().With().
		Str("component", "store").
		Str("config_file", path).
		Logger()

	return &Store{
		path:   path,
		logger: storeLogger,
	}
}

// Load reads the config file from disk. A missing file yields defaults with no
// admin assigned. A corrupt file is logged and also yields defaults, so a bad
// write can never keep the server from booting.
func (s *Store) Load() Config {
	defaults := Config{
		AdminUsername: "",
		Appearance:    DefaultAppearance(),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info().Msg("Config file not found. First registered user will become admin.")
		} else {
			s.logger.Error().Err(err).Msg("Failed to read config file. Using defaults.")
		}
		return defaults
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Error().Err(err).Msg("Config file is not valid JSON. Using defaults.")
		return defaults
	}

	cfg.Appearance = cfg.Appearance.Normalized()

	s.logger.Info().
		Str("admin_username", cfg.AdminUsername).
		Msg("Config loaded from disk.")

	return cfg
}

// Save writes the config file to disk, creating the parent directory if needed.
// The caller decides how to react to a failure; the running process keeps its
// in-memory state either way.
func (s *Store) Save(cfg Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("Failed to create config directory.")
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal config.")
		return err
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write config file.")
		return err
	}

	s.logger.Info().
		Str("admin_username", cfg.AdminUsername).
		Msg("Config saved to disk.")

	return nil
}
