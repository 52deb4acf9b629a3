package main

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config controls which symbols get inspected and how much work runs in
// parallel.
type Config struct {
	// Arch selects a slice of a fat binary. Ignored for thin files.
	Arch string `yaml:"arch"`
	// Modules restricts output to symbols rooted in the named Swift
	// modules. Empty means all modules.
	Modules []string `yaml:"modules"`
	// Workers bounds the number of symbols demangled concurrently.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
	}
}

// LoadConfig reads a yaml config from path, or returns DefaultConfig
// when path is empty.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}
