// Package config loads designmem settings from $DESIGNMEM_HOME/config.yaml
// and environment overrides.
//
// Precedence, lowest first: Default, the YAML file, then DESIGNMEM_*
// environment variables. A missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/designmem/internal/memory"
)

// Environment variables.
const (
	EnvHome      = "DESIGNMEM_HOME"
	EnvLogLevel  = "DESIGNMEM_LOG_LEVEL"
	EnvExportDir = "DESIGNMEM_EXPORT_DIR"
)

// FileName is the config file name inside the home directory.
const FileName = "config.yaml"

// Config is the full application configuration.
type Config struct {
	// Home holds the config file and the archive database.
	Home string `yaml:"-"`
	// ExportDir receives one JSON file per stopped session. Empty
	// disables file export.
	ExportDir string        `yaml:"export_dir"`
	Archive   ArchiveConfig `yaml:"archive"`
	Log       LogConfig     `yaml:"log"`
}

// ArchiveConfig tunes the SQLite archive.
type ArchiveConfig struct {
	Enabled           bool `yaml:"enabled"`
	MaxSearchResults  int  `yaml:"max_search_results"`
	MaxRecentSessions int  `yaml:"max_recent_sessions"`
	MaxChainDepth     int  `yaml:"max_chain_depth"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// DefaultHome returns ~/.designmem.
func DefaultHome() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".designmem")
}

// Default returns the built-in configuration rooted at home.
func Default(home string) Config {
	mc := memory.DefaultConfig()
	return Config{
		Home:      home,
		ExportDir: filepath.Join(home, "sessions"),
		Archive: ArchiveConfig{
			Enabled:           true,
			MaxSearchResults:  mc.MaxSearchResults,
			MaxRecentSessions: mc.MaxRecentSessions,
			MaxChainDepth:     mc.MaxChainDepth,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load resolves the home directory, reads its config file if present, and
// applies environment overrides.
func Load() (Config, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		home = DefaultHome()
	}
	return LoadFile(filepath.Join(home, FileName), home)
}

// LoadFile is Load with an explicit file path and home directory.
func LoadFile(path, home string) (Config, error) {
	cfg := Default(home)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvExportDir); ok {
		cfg.ExportDir = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var problems []string
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be json or console", c.Log.Format))
	}
	if c.Archive.MaxChainDepth < 0 || c.Archive.MaxChainDepth > 5 {
		problems = append(problems, "archive.max_chain_depth must be between 0 and 5")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Memory returns the archive configuration.
func (c Config) Memory() memory.Config {
	return memory.Config{
		DataDir:           c.Home,
		MaxSearchResults:  c.Archive.MaxSearchResults,
		MaxRecentSessions: c.Archive.MaxRecentSessions,
		MaxChainDepth:     c.Archive.MaxChainDepth,
	}
}

// Write stores c as YAML at path, creating the directory.
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
