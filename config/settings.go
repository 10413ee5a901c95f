// Package config holds the viper-backed settings store. The one gameplay
// value persisted here is the user-controlled difficulty factor; everything
// else is operational wiring for the session daemon.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"block-party/server/speed"
)

const (
	defaultTickRate    = 15
	defaultListenAddr  = ":8080"
	defaultCatalogPath = "config/powerups/definitions.json"
)

// Settings is the resolved configuration snapshot.
type Settings struct {
	TickRate         int
	ListenAddr       string
	CatalogPath      string
	DifficultyFactor float64
	LogSinks         []string
	LogJSONPath      string
}

// TickInterval converts the configured rate into a loop period.
func (s Settings) TickInterval() time.Duration {
	rate := s.TickRate
	if rate <= 0 {
		rate = defaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// Store wraps viper so the difficulty factor can be written back to the same
// file it was read from. Implements powerup.DifficultyStore.
type Store struct {
	v    *viper.Viper
	path string
}

// Load reads settings from path, falling back to defaults when the file does
// not exist. A malformed persisted difficulty factor is clamped on read, not
// rejected.
func Load(path string) (*Store, error) {
	v := viper.New()
	v.SetDefault("tickRate", defaultTickRate)
	v.SetDefault("listenAddr", defaultListenAddr)
	v.SetDefault("catalogPath", defaultCatalogPath)
	v.SetDefault("difficultyFactor", 1.0)
	v.SetDefault("log.sinks", []string{"console"})
	v.SetDefault("log.jsonPath", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, missing := err.(viper.ConfigFileNotFoundError); !missing && !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}
	return &Store{v: v, path: path}, nil
}

// Settings returns the resolved snapshot with the difficulty factor clamped
// into the speed model's safe range.
func (s *Store) Settings() Settings {
	if s == nil {
		return Settings{
			TickRate:         defaultTickRate,
			ListenAddr:       defaultListenAddr,
			CatalogPath:      defaultCatalogPath,
			DifficultyFactor: 1.0,
			LogSinks:         []string{"console"},
		}
	}
	difficulty := s.v.GetFloat64("difficultyFactor")
	if difficulty < speed.MinDifficultyFactor {
		difficulty = speed.MinDifficultyFactor
	}
	if difficulty > speed.MaxDifficultyFactor {
		difficulty = speed.MaxDifficultyFactor
	}
	return Settings{
		TickRate:         s.v.GetInt("tickRate"),
		ListenAddr:       s.v.GetString("listenAddr"),
		CatalogPath:      s.v.GetString("catalogPath"),
		DifficultyFactor: difficulty,
		LogSinks:         s.v.GetStringSlice("log.sinks"),
		LogJSONPath:      s.v.GetString("log.jsonPath"),
	}
}

// SaveDifficultyFactor writes the clamped factor back through to disk so it
// survives restarts.
func (s *Store) SaveDifficultyFactor(f float64) error {
	if s == nil {
		return nil
	}
	s.v.Set("difficultyFactor", f)
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("config: create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("config: write %s: %w", s.path, err)
	}
	return nil
}
