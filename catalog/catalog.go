// Package catalog loads designer-authored power-up tuning (color, icon,
// duration, drop weight) over the compiled-in defaults. Later sources
// override earlier ones to support local overlays during development.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"block-party/server/powerup"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// memorySource backs tests without touching disk.
type memorySource struct {
	name string
	data []byte
}

func (s memorySource) Load() ([]byte, error) {
	return s.data, nil
}

func (s memorySource) Path() string {
	return s.name
}

// EntryDocument models one catalog entry as it appears on disk. Exported so
// the schema generator can reflect over the configuration contract shared
// with designers.
type EntryDocument struct {
	Type       string   `json:"type" jsonschema:"title=Power-up type,pattern=^[a-z0-9\\-]+$,description=Identifier from the closed power-up type set"`
	Color      string   `json:"color,omitempty" jsonschema:"description=Display tint for the pickup sprite and timer bar"`
	Icon       string   `json:"icon,omitempty" jsonschema:"description=Icon key resolved by the presentation layer"`
	DurationMs *int64   `json:"durationMs,omitempty" jsonschema:"minimum=0,description=Active duration in milliseconds; 0 marks an instant effect"`
	DropWeight *float64 `json:"dropWeight,omitempty" jsonschema:"minimum=0,description=Relative weight in the drop pool; 0 removes the type from random drops"`
}

// FileDefinitions represents the contents of config/powerups/definitions.json.
type FileDefinitions []EntryDocument

// DefaultPath returns the canonical catalog location relative to the module
// root.
func DefaultPath() string {
	return filepath.Join("config", "powerups", "definitions.json")
}

// Load resolves the definition table from the given paths, overlaying each
// file onto the compiled-in defaults. Missing files are skipped; malformed
// files, unknown types, and negative weights are load errors.
func Load(paths ...string) (map[powerup.Type]powerup.Definition, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return resolve(sources...)
}

func resolve(sources ...source) (map[powerup.Type]powerup.Definition, error) {
	defs := powerup.DefaultDefinitions()
	known := make(map[powerup.Type]struct{}, len(defs))
	for t := range defs {
		known[t] = struct{}{}
	}

	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		entries, err := decodeEntries(data)
		if err != nil {
			return nil, fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		seen := make(map[powerup.Type]struct{}, len(entries))
		for _, entry := range entries {
			t := powerup.Type(strings.TrimSpace(entry.Type))
			if t == "" {
				return nil, fmt.Errorf("catalog: entry missing type in %s", src.Path())
			}
			if _, ok := known[t]; !ok {
				return nil, fmt.Errorf("catalog: unknown power-up type %q in %s", t, src.Path())
			}
			if _, dup := seen[t]; dup {
				return nil, fmt.Errorf("catalog: duplicate type %q in %s", t, src.Path())
			}
			seen[t] = struct{}{}

			def := defs[t]
			if entry.Color != "" {
				def.Color = entry.Color
			}
			if entry.Icon != "" {
				def.Icon = entry.Icon
			}
			if entry.DurationMs != nil {
				if *entry.DurationMs < 0 {
					return nil, fmt.Errorf("catalog: type %q has negative durationMs in %s", t, src.Path())
				}
				def.Duration = time.Duration(*entry.DurationMs) * time.Millisecond
			}
			if entry.DropWeight != nil {
				if *entry.DropWeight < 0 {
					return nil, fmt.Errorf("catalog: type %q has negative dropWeight in %s", t, src.Path())
				}
				def.DropWeight = *entry.DropWeight
			}
			defs[t] = def
		}
	}
	return defs, nil
}

func decodeEntries(data []byte) (FileDefinitions, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var entries FileDefinitions
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
