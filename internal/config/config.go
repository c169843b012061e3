// Package config provides unified configuration loading for graphism.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GraphismConfig contains all graphism configuration settings.
type GraphismConfig struct {
	// Simulation contains the model and run parameters.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Seeds selects the initially infected nodes.
	Seeds SeedsConfig `json:"seeds" yaml:"seeds"`

	// Store locates the SQLite edge store.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// MCP configures the MCP server.
	MCP MCPConfig `json:"mcp" yaml:"mcp"`
}

// SimulationConfig configures the contagion model and the run driver.
type SimulationConfig struct {
	// Ticks is the number of propagate+recover rounds per run.
	Ticks int `json:"ticks" yaml:"ticks"`

	// RNGSeed makes runs reproducible when set.
	RNGSeed *uint64 `json:"rng_seed,omitempty" yaml:"rng_seed,omitempty"`

	// Directed makes edges transmit parent→child only.
	Directed bool `json:"directed" yaml:"directed"`

	// Transmission names the rule: "default", "weighted" or "constant".
	Transmission string `json:"transmission" yaml:"transmission"`

	// TransmissionProbability is the per-edge probability for "constant".
	TransmissionProbability float64 `json:"transmission_probability,omitempty" yaml:"transmission_probability,omitempty"`

	// RecoveryProbability is the per-tick recovery chance. 1 recovers every
	// infected node each tick; 0 never recovers.
	RecoveryProbability float64 `json:"recovery_probability" yaml:"recovery_probability"`

	// StopOnExtinction ends a run once no node is infected.
	StopOnExtinction bool `json:"stop_on_extinction" yaml:"stop_on_extinction"`

	// Trials is the number of independent runs to aggregate.
	Trials int `json:"trials" yaml:"trials"`
}

// SeedsConfig selects seed nodes. The selectors combine.
type SeedsConfig struct {
	Names     []string `json:"names,omitempty" yaml:"names,omitempty"`
	Random    int      `json:"random,omitempty" yaml:"random,omitempty"`
	TopDegree int      `json:"top_degree,omitempty" yaml:"top_degree,omitempty"`
}

// StoreConfig locates the edge store.
type StoreConfig struct {
	// Path is the SQLite file. Empty means ~/.graphism/graphism.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures graphism's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default),
	// "debug", or "trace". "trace" logs every infection and recovery.
	Level string `json:"level" yaml:"level"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	// RateLimit is the sustained calls per second allowed for each tool.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Burst is the number of calls allowed above the sustained rate.
	Burst int `json:"burst" yaml:"burst"`
}

// Default returns a GraphismConfig with sensible defaults.
func Default() *GraphismConfig {
	return &GraphismConfig{
		Simulation: SimulationConfig{
			Ticks:               50,
			Directed:            false,
			Transmission:        "default",
			RecoveryProbability: 1.0,
			StopOnExtinction:    true,
			Trials:              1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		MCP: MCPConfig{
			RateLimit: 2,
			Burst:     5,
		},
	}
}

// DefaultPath returns ~/.graphism/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".graphism", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.graphism/config.yaml -> environment variables
func Load() (*GraphismConfig, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads an explicit config file, then applies environment
// overrides. An empty path behaves like Load.
func LoadPath(path string) (*GraphismConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*GraphismConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the store path
	config.Store.Path = expandEnvVars(config.Store.Path)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *GraphismConfig) Validate() error {
	s := c.Simulation
	if s.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", s.Ticks)
	}
	if s.Trials < 1 {
		return fmt.Errorf("trials must be at least 1, got %d", s.Trials)
	}
	if s.RecoveryProbability < 0 || s.RecoveryProbability > 1 {
		return fmt.Errorf("recovery_probability must be between 0 and 1, got %f", s.RecoveryProbability)
	}

	validRules := map[string]bool{"": true, "default": true, "weighted": true, "constant": true}
	if !validRules[s.Transmission] {
		return fmt.Errorf("invalid transmission: %s (valid: default, weighted, constant)", s.Transmission)
	}
	if s.Transmission == "constant" && (s.TransmissionProbability < 0 || s.TransmissionProbability > 1) {
		return fmt.Errorf("transmission_probability must be between 0 and 1, got %f", s.TransmissionProbability)
	}

	if c.Seeds.Random < 0 || c.Seeds.TopDegree < 0 {
		return fmt.Errorf("seed counts must be non-negative, got random=%d top_degree=%d", c.Seeds.Random, c.Seeds.TopDegree)
	}

	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.MCP.RateLimit <= 0 {
		return fmt.Errorf("mcp rate_limit must be positive, got %f", c.MCP.RateLimit)
	}
	if c.MCP.Burst < 1 {
		return fmt.Errorf("mcp burst must be at least 1, got %d", c.MCP.Burst)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *GraphismConfig) {
	if v := os.Getenv("GRAPHISM_TICKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Ticks = n
		}
	}

	if v := os.Getenv("GRAPHISM_RNG_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Simulation.RNGSeed = &n
		}
	}

	if v := os.Getenv("GRAPHISM_DIRECTED"); v != "" {
		config.Simulation.Directed = v == "true" || v == "1"
	}

	if v := os.Getenv("GRAPHISM_TRANSMISSION"); v != "" {
		config.Simulation.Transmission = v
	}

	if v := os.Getenv("GRAPHISM_RECOVERY_PROBABILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.RecoveryProbability = f
		}
	}

	if v := os.Getenv("GRAPHISM_TRIALS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Trials = n
		}
	}

	if v := os.Getenv("GRAPHISM_SEEDS"); v != "" {
		config.Seeds.Names = splitList(v)
	}

	if v := os.Getenv("GRAPHISM_DB"); v != "" {
		config.Store.Path = v
	}

	if v := os.Getenv("GRAPHISM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
