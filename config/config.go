package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/k1LoW/filmstrip/logger/progress"
)

const appName = "filmstrip"

var (
	homePath       string
	configHomePath string
	stateHomePath  string
)

// Config controls console presentation only. Frame count, file naming and
// input/output paths are fixed.
type Config struct {
	// progress style: "lines" (default) or "dots"
	Progress string `yaml:"progress,omitempty" json:"progress,omitempty"`
	// disable colored output
	NoColor *bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}

func init() {
	var err error
	homePath, err = os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
}

// Load loads the configuration from the config file.
// It searches for $XDG_CONFIG_HOME/filmstrip/config.yml and config.yaml.
// If no config file is found, it returns an empty Config struct.
func Load() (*Config, error) {
	basePath := filepath.Join(configPath(), "config")
	cfg := &Config{}
	for _, ext := range []string{".yml", ".yaml"} {
		p := basePath + ext
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", p, err)
		}
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", p, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

// ProgressStyle returns the configured progress style, defaulting to lines.
func (cfg *Config) ProgressStyle() string {
	if cfg == nil || cfg.Progress == "" {
		return progress.StyleLines
	}
	return cfg.Progress
}

// Color reports whether colored output is enabled.
func (cfg *Config) Color() bool {
	if cfg == nil || cfg.NoColor == nil {
		return true
	}
	return !*cfg.NoColor
}

func (cfg *Config) validate() error {
	switch cfg.Progress {
	case "", progress.StyleLines, progress.StyleDots:
		return nil
	default:
		return fmt.Errorf("unknown progress style: %q, must be %q or %q", cfg.Progress, progress.StyleLines, progress.StyleDots)
	}
}

// configPath returns the path to the configuration directory.
func configPath() string {
	if configHomePath != "" {
		return configHomePath
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		configHomePath = filepath.Join(v, appName)
	} else {
		configHomePath = filepath.Join(homePath, ".config", appName)
	}
	return configHomePath
}

func StateHomePath() string {
	if stateHomePath != "" {
		return stateHomePath
	}
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		stateHomePath = filepath.Join(v, appName)
	} else {
		stateHomePath = filepath.Join(homePath, ".local", "state", appName)
	}
	return stateHomePath
}
