// Package config reads the gums.yaml workspace configuration. There is no
// process-wide singleton: commands load a Config once and pass it down.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const dateFormat = "2006-01-02"

// Config represents the top-level gums.yaml configuration.
type Config struct {
	Unit     UnitConfig     `yaml:"unit"`
	Term     TermConfig     `yaml:"term"`
	Database DatabaseConfig `yaml:"database"`
}

// UnitConfig identifies the unit the books belong to.
type UnitConfig struct {
	Name    string `yaml:"name"`
	Section string `yaml:"section,omitempty"`
}

// TermConfig is the current term's date window, used for dashboard and
// windowed reports. Dates are "YYYY-MM-DD".
type TermConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"GUMS_DB_PATH"`
}

// Window parses the term bounds.
func (t TermConfig) Window() (from, to time.Time, err error) {
	from, err = time.Parse(dateFormat, t.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing term start %q: %w", t.Start, err)
	}
	to, err = time.Parse(dateFormat, t.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing term end %q: %w", t.End, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("term end %s is before start %s", t.End, t.Start)
	}
	return from, to, nil
}

// Load reads a gums.yaml file and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace. The
// term defaults to the current calendar year.
func Default(unitName string) *Config {
	year := time.Now().Year()
	return &Config{
		Unit: UnitConfig{Name: unitName},
		Term: TermConfig{
			Start: fmt.Sprintf("%04d-01-01", year),
			End:   fmt.Sprintf("%04d-12-31", year),
		},
		Database: DatabaseConfig{Path: "gums.db"},
	}
}
