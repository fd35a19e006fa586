// Package config loads the optional .discovery.yaml settings file,
// which provides defaults for flags shared by every command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up from the working directory.
const FileName = ".discovery.yaml"

// Config holds per-workspace defaults. Flags given on the command line
// take precedence over every field here.
type Config struct {
	// Dir is the discovery directory to operate on.
	Dir string `yaml:"dir,omitempty"`
	// Format selects the default output format (text or json).
	Format string `yaml:"format,omitempty"`
	// Verbose enables progress logging on stderr.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Load reads .discovery.yaml from startDir or the nearest ancestor that
// has one. A missing file yields the zero Config, not an error.
func Load(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Config{}, err
	}
	for {
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if err == nil {
			var cfg Config
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
			if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
				cfg.Dir = filepath.Join(dir, cfg.Dir)
			}
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Config{}, nil
		}
		dir = parent
	}
}
