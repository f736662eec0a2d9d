package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file configuration for the serve command.
type Config struct {
	// TCP address like "127.0.0.1:7878",
	// or a unix socket like "unix:///run/gsegtree.sock".
	Listen string `yaml:"listen"`

	LogLevel string `yaml:"log_level"`

	// Largest input accepted when creating a tree; zero for no limit.
	MaxLen int `yaml:"max_len"`
}

func defaultConfig() Config {
	return Config{
		Listen:   "127.0.0.1:7878",
		LogLevel: "info",
		MaxLen:   1 << 20,
	}
}

// loadConfig reads path over the defaults.
// Keys missing from the file keep their default values.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxLen < 0 {
		return Config{}, fmt.Errorf("config %s: max_len must not be negative", path)
	}
	return cfg, nil
}
