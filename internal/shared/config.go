package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Output    OutputConfig    `toml:"output"`
	Equalizer EqualizerConfig `toml:"equalizer"`
	Database  DatabaseConfig  `toml:"database"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// OutputConfig selects and tunes the output provider.
type OutputConfig struct {
	Backend     string `toml:"backend"`      // "device", "file" or "null"
	BufferMS    int    `toml:"buffer_ms"`    // output buffer length in milliseconds
	FilePath    string `toml:"file_path"`    // target for the file backend
	ForceReopen bool   `toml:"force_reopen"` // close/reopen between songs even on identical formats
}

// EqualizerConfig holds the built-in equalizer state.
type EqualizerConfig struct {
	Enabled bool      `toml:"enabled"`
	Preamp  float64   `toml:"preamp"`
	Bands   []float64 `toml:"bands"` // ten band gains in dB, -12 to +12
}

// DatabaseConfig contains the playlist library database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidInput)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
