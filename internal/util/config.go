package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Configuration carries the host settings. Build metadata is injected by
// main; everything else may come from flags or a config file.
type Configuration struct {
	Version   string `toml:"-" yaml:"-"`
	BuildDate string `toml:"-" yaml:"-"`
	Commit    string `toml:"-" yaml:"-"`

	NCycles float64 `toml:"n_cycles" yaml:"n_cycles"`
	Cps     float64 `toml:"cps" yaml:"cps"`

	StoreDriver string `toml:"store_driver" yaml:"store_driver"`
	StoreDSN    string `toml:"store_dsn" yaml:"store_dsn"`

	ListenAddr string `toml:"listen_addr" yaml:"listen_addr"`
}

// DefaultConfiguration returns the settings used when no file is given.
func DefaultConfiguration() Configuration {
	return Configuration{
		NCycles:     0,
		Cps:         0.5,
		StoreDriver: "sqlite3",
		StoreDSN:    "flux.db",
		ListenAddr:  ":8080",
	}
}

// LoadConfiguration reads a TOML or YAML config file, detecting the format
// from the extension. Unknown extensions default to TOML.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	return cfg, nil
}
