// Package config loads .tagspeak.toml with CLI > env > file > defaults
// precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the decoded form of .tagspeak.toml plus environment overrides.
type Config struct {
	Security SecurityConfig `toml:"security"`
	Run      RunConfig      `toml:"run"`
	Prompts  PromptsConfig  `toml:"prompts"`
	Network  NetworkConfig  `toml:"network"`
}

type SecurityConfig struct {
	AllowExec     bool     `toml:"allow_exec"`
	ExecAllowlist []string `toml:"exec_allowlist"`

	// AllowYellowAll has no file key; it is only ever set by
	// TAGSPEAK_ALLOW_YELLOW.
	AllowYellowAll bool `toml:"-"`
}

type RunConfig struct {
	MaxDepth       int  `toml:"max_depth"`
	RequireYellow  bool `toml:"require_yellow"`
}

type PromptsConfig struct {
	Noninteractive bool `toml:"noninteractive"`
}

type NetworkConfig struct {
	Enabled bool     `toml:"enabled"`
	Allow   []string `toml:"allow"`
}

// Default returns the configuration in effect with no file and no
// environment overrides. MaxDepth is left at zero, meaning the
// interpreter's own run-nesting default applies.
func Default() *Config {
	return &Config{}
}

// Load reads path (if it exists) over the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if truthyEnv("TAGSPEAK_ALLOW_EXEC") {
		c.Security.AllowExec = true
	}
	if truthyEnv("TAGSPEAK_ALLOW_YELLOW") {
		c.Security.AllowYellowAll = true
	}
	if truthyEnv("TAGSPEAK_NONINTERACTIVE") {
		c.Prompts.Noninteractive = true
	}
	if truthyEnv("TAGSPEAK_ALLOW_RUN") {
		c.Run.RequireYellow = false
	}
	if raw := os.Getenv("TAGSPEAK_MAX_RUN_DEPTH"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			c.Run.MaxDepth = n
		}
	}
}

// truthyEnv reports whether the named environment variable is set to one
// of the accepted truthy spellings.
func truthyEnv(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "y", "yes":
		return true
	default:
		return false
	}
}
