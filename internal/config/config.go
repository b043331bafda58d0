package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level kernel.yaml configuration.
type Config struct {
	// Printer controls the pretty-printer pagination.
	Printer PrinterConfig `yaml:"printer"`

	// Check controls the law checks run by `kernel check`.
	Check CheckConfig `yaml:"check"`
}

// PrinterConfig holds the pagination parameters of the pretty-printer.
type PrinterConfig struct {
	// Width is the maximum line width. 0 selects DefaultLineWidth.
	Width int `yaml:"width"`

	// Indent is the number of spaces added per nesting level when a term is
	// broken over several lines.
	Indent int `yaml:"indent"`
}

// CheckConfig holds the parameters of the random term generator used by
// the law checks.
type CheckConfig struct {
	// Seed makes a run reproducible.
	Seed int64 `yaml:"seed"`

	// Count is the number of generated terms per law.
	Count int `yaml:"count"`

	// Depth bounds the nesting of generated terms.
	Depth int `yaml:"depth"`

	// Laws restricts the run to the named laws. Empty means all.
	Laws []string `yaml:"laws,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a kernel.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses kernel.yaml content. The path is only used in error
// messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for kernel.yaml starting from dir and walking up to
// parent directories. It returns an empty path and nil error when no file
// exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if c.Printer.Width < 0 {
		return fmt.Errorf("%s: printer.width must not be negative, got %d", path, c.Printer.Width)
	}
	if c.Printer.Indent < 0 {
		return fmt.Errorf("%s: printer.indent must not be negative, got %d", path, c.Printer.Indent)
	}
	if c.Check.Count < 0 {
		return fmt.Errorf("%s: check.count must not be negative, got %d", path, c.Check.Count)
	}
	if c.Check.Depth < 0 || c.Check.Depth > MaxCheckDepth {
		return fmt.Errorf("%s: check.depth must be between 0 and %d, got %d", path, MaxCheckDepth, c.Check.Depth)
	}
	seen := make(map[string]bool)
	for _, name := range c.Check.Laws {
		if name == "" {
			return fmt.Errorf("%s: check.laws contains an empty name", path)
		}
		if seen[name] {
			return fmt.Errorf("%s: check.laws lists %q twice", path, name)
		}
		seen[name] = true
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Printer.Width == 0 {
		c.Printer.Width = DefaultLineWidth
	}
	if c.Printer.Indent == 0 {
		c.Printer.Indent = DefaultIndent
	}
	if c.Check.Seed == 0 {
		c.Check.Seed = DefaultCheckSeed
	}
	if c.Check.Count == 0 {
		c.Check.Count = DefaultCheckCount
	}
	if c.Check.Depth == 0 {
		c.Check.Depth = DefaultCheckDepth
	}
}
