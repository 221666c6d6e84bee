// Package config loads the tscodec.config.json build configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-json-experiment/json"
)

// DefaultFileName is the config file looked up next to the tsconfig when no
// explicit path is given.
const DefaultFileName = "tscodec.config.json"

// Config represents the tscodec configuration.
type Config struct {
	Transform TransformConfig `json:"transform"`

	// Tsconfig is the tsconfig.json path driving program creation
	// (default: "tsconfig.json").
	Tsconfig string `json:"tsconfig,omitempty"`

	// MarkerModule overrides the import specifier recognized as the marker
	// package (default: "tscodec"). Useful for monorepo-internal wrappers.
	MarkerModule string `json:"markerModule,omitempty"`
}

// TransformConfig specifies which source files are scanned for marker calls.
type TransformConfig struct {
	// Include holds glob patterns for files to scan (default: ["src/**/*.ts"]).
	Include []string `json:"include"`

	// Exclude holds glob patterns removed from the include set.
	Exclude []string `json:"exclude,omitempty"`

	// DecodeDefaults disables post-decode defaults application in generated
	// codecs when set to false. Defaults to true.
	DecodeDefaults *bool `json:"decodeDefaults,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Transform: TransformConfig{
			Include: []string{"src/**/*.ts"},
		},
		Tsconfig:     "tsconfig.json",
		MarkerModule: "tscodec",
	}
}

// Load reads and parses a tscodec config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

// LoadOrDefault loads the config at path, or returns defaults when path is
// empty and no default config file exists.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFileName); err != nil {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		path = DefaultFileName
	}
	return Load(path)
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if len(c.Transform.Include) == 0 {
		return fmt.Errorf("transform.include must have at least one pattern")
	}
	for _, pattern := range c.Transform.Include {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("transform.include contains an empty pattern")
		}
	}
	if c.Tsconfig == "" {
		return fmt.Errorf("tsconfig must not be empty")
	}
	if c.MarkerModule == "" {
		return fmt.Errorf("markerModule must not be empty")
	}
	return nil
}

// ApplyDefaults reports whether generated codecs should apply post-decode
// defaults.
func (c *Config) ApplyDefaults() bool {
	return c.Transform.DecodeDefaults == nil || *c.Transform.DecodeDefaults
}
