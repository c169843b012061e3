package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Simulation.Ticks != 50 {
		t.Errorf("expected Ticks 50, got %d", config.Simulation.Ticks)
	}
	if config.Simulation.Directed {
		t.Error("expected Directed to be false by default")
	}
	if config.Simulation.Transmission != "default" {
		t.Errorf("expected Transmission 'default', got '%s'", config.Simulation.Transmission)
	}
	if config.Simulation.RecoveryProbability != 1.0 {
		t.Errorf("expected RecoveryProbability 1.0, got %f", config.Simulation.RecoveryProbability)
	}
	if !config.Simulation.StopOnExtinction {
		t.Error("expected StopOnExtinction to be true by default")
	}
	if config.Simulation.RNGSeed != nil {
		t.Errorf("expected no RNGSeed, got %d", *config.Simulation.RNGSeed)
	}
	if config.Simulation.Trials != 1 {
		t.Errorf("expected Trials 1, got %d", config.Simulation.Trials)
	}
	if config.Store.Path != "" {
		t.Errorf("expected empty Store.Path, got '%s'", config.Store.Path)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  ticks: 12
  rng_seed: 99
  directed: true
  transmission: constant
  transmission_probability: 0.3
  recovery_probability: 0.25
  stop_on_extinction: false
  trials: 8

seeds:
  names: [alice, bob]
  top_degree: 2

logging:
  level: trace
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	seed := uint64(99)
	want := Default()
	want.Simulation = SimulationConfig{
		Ticks:                   12,
		RNGSeed:                 &seed,
		Directed:                true,
		Transmission:            "constant",
		TransmissionProbability: 0.3,
		RecoveryProbability:     0.25,
		StopOnExtinction:        false,
		Trials:                  8,
	}
	want.Seeds = SeedsConfig{Names: []string{"alice", "bob"}, TopDegree: 2}
	want.Logging.Level = "trace"

	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("simulation:\n  ticks: 3\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Simulation.Ticks != 3 {
		t.Errorf("expected Ticks 3, got %d", config.Simulation.Ticks)
	}
	if config.Simulation.RecoveryProbability != 1.0 || config.MCP.Burst != 5 {
		t.Errorf("unset fields should keep defaults, got %+v", config)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path: ${GRAPHISM_TEST_DIR}/edges.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("GRAPHISM_TEST_DIR", "/data/graphs")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Store.Path != "/data/graphs/edges.db" {
		t.Errorf("expected Store.Path '/data/graphs/edges.db', got '%s'", config.Store.Path)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GRAPHISM_TICKS", "7")
	t.Setenv("GRAPHISM_RNG_SEED", "1234")
	t.Setenv("GRAPHISM_DIRECTED", "1")
	t.Setenv("GRAPHISM_TRANSMISSION", "weighted")
	t.Setenv("GRAPHISM_RECOVERY_PROBABILITY", "0.4")
	t.Setenv("GRAPHISM_TRIALS", "3")
	t.Setenv("GRAPHISM_SEEDS", "a, b,,c")
	t.Setenv("GRAPHISM_DB", "/tmp/g.db")
	t.Setenv("GRAPHISM_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	s := config.Simulation
	if s.Ticks != 7 || !s.Directed || s.Transmission != "weighted" || s.RecoveryProbability != 0.4 || s.Trials != 3 {
		t.Errorf("simulation overrides not applied: %+v", s)
	}
	if s.RNGSeed == nil || *s.RNGSeed != 1234 {
		t.Errorf("expected RNGSeed 1234, got %v", s.RNGSeed)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, config.Seeds.Names); diff != "" {
		t.Errorf("seed names (-want +got):\n%s", diff)
	}
	if config.Store.Path != "/tmp/g.db" {
		t.Errorf("expected Store.Path '/tmp/g.db', got '%s'", config.Store.Path)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestEnvOverrides_IgnoresUnparseable(t *testing.T) {
	t.Setenv("GRAPHISM_TICKS", "many")
	t.Setenv("GRAPHISM_RECOVERY_PROBABILITY", "half")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Ticks != 50 || config.Simulation.RecoveryProbability != 1.0 {
		t.Errorf("unparseable values should be ignored, got %+v", config.Simulation)
	}
}

func TestLoadPath_AppliesEnvAfterFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("simulation:\n  ticks: 3\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("GRAPHISM_TICKS", "9")

	config, err := LoadPath(configPath)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if config.Simulation.Ticks != 9 {
		t.Errorf("expected env to win with Ticks 9, got %d", config.Simulation.Ticks)
	}
}

func TestLoad_ReadsHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir := filepath.Join(home, ".graphism")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("simulation:\n  trials: 4\n"), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Simulation.Trials != 4 {
		t.Errorf("expected Trials 4 from home config, got %d", config.Simulation.Trials)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GraphismConfig)
	}{
		{"negative ticks", func(c *GraphismConfig) { c.Simulation.Ticks = -1 }},
		{"zero trials", func(c *GraphismConfig) { c.Simulation.Trials = 0 }},
		{"recovery above 1", func(c *GraphismConfig) { c.Simulation.RecoveryProbability = 1.5 }},
		{"recovery negative", func(c *GraphismConfig) { c.Simulation.RecoveryProbability = -0.1 }},
		{"unknown transmission", func(c *GraphismConfig) { c.Simulation.Transmission = "gravity" }},
		{"constant out of range", func(c *GraphismConfig) {
			c.Simulation.Transmission = "constant"
			c.Simulation.TransmissionProbability = 2
		}},
		{"negative random seeds", func(c *GraphismConfig) { c.Seeds.Random = -1 }},
		{"invalid log level", func(c *GraphismConfig) { c.Logging.Level = "verbose" }},
		{"zero rate limit", func(c *GraphismConfig) { c.MCP.RateLimit = 0 }},
		{"zero burst", func(c *GraphismConfig) { c.MCP.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "error", "warn", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
simulation:
  ticks: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
