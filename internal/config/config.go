package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete tecarius configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Output   OutputConfig   `toml:"output"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Theme    ThemeConfig    `toml:"theme"`
}

// GeneralConfig contains general tecarius settings.
type GeneralConfig struct {
	// AutoConfirm skips confirmation prompts when true (like -y flag).
	AutoConfirm bool `toml:"auto_confirm"`

	// DryRun shows what would happen without executing when true.
	DryRun bool `toml:"dry_run"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	// Color enables colored output (respects NO_COLOR env var).
	Color bool `toml:"color"`

	// Unicode enables unicode symbols in output.
	Unicode bool `toml:"unicode"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`
}

// TimeoutsConfig bounds the background units, in seconds. Zero disables
// the corresponding timeout.
type TimeoutsConfig struct {
	LoadSeconds int `toml:"load_seconds"`
	PlanSeconds int `toml:"plan_seconds"`
}

// LoadTimeout returns the snapshot load timeout.
func (t TimeoutsConfig) LoadTimeout() time.Duration {
	return time.Duration(t.LoadSeconds) * time.Second
}

// PlanTimeout returns the planning timeout.
func (t TimeoutsConfig) PlanTimeout() time.Duration {
	return time.Duration(t.PlanSeconds) * time.Second
}

// ThemeConfig holds the interface palette as hex color strings.
type ThemeConfig struct {
	Base   string `toml:"base"`
	Border string `toml:"border"`
	Key    string `toml:"key"`
	Title  string `toml:"title"`
	Text   string `toml:"text"`
}

// Default returns the default configuration. The palette defaults to
// catppuccin mocha.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			AutoConfirm: false,
			DryRun:      false,
		},
		Output: OutputConfig{
			Color:   true,
			Unicode: true,
			Verbose: false,
		},
		Timeouts: TimeoutsConfig{
			LoadSeconds: 30,
			PlanSeconds: 30,
		},
		Theme: ThemeConfig{
			Base:   "#1e1e2e",
			Border: "#6c7086",
			Key:    "#94e2d5",
			Title:  "#a6e3a1",
			Text:   "#f5e0dc",
		},
	}
}

// Load loads the configuration from the default path.
// If the config file doesn't exist, it returns the default configuration.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
// If the config file doesn't exist, it returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}
