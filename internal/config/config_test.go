package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Check default output settings
	if !cfg.Output.Color {
		t.Error("expected Color to be true by default")
	}
	if !cfg.Output.Unicode {
		t.Error("expected Unicode to be true by default")
	}
	if cfg.Output.Verbose {
		t.Error("expected Verbose to be false by default")
	}

	// Check general settings
	if cfg.General.AutoConfirm {
		t.Error("expected AutoConfirm to be false by default")
	}
	if cfg.General.DryRun {
		t.Error("expected DryRun to be false by default")
	}

	// Check timeouts
	if cfg.Timeouts.LoadTimeout() != 30*time.Second {
		t.Errorf("expected 30s load timeout, got %s", cfg.Timeouts.LoadTimeout())
	}
	if cfg.Timeouts.PlanTimeout() != 30*time.Second {
		t.Errorf("expected 30s plan timeout, got %s", cfg.Timeouts.PlanTimeout())
	}

	// Check theme defaults
	if cfg.Theme.Base != "#1e1e2e" {
		t.Errorf("expected mocha base color, got %s", cfg.Theme.Base)
	}
	if cfg.Theme.Title == "" || cfg.Theme.Text == "" || cfg.Theme.Key == "" || cfg.Theme.Border == "" {
		t.Error("expected every theme color to have a default")
	}
}

func TestShouldUseColor(t *testing.T) {
	cfg := &Config{
		Output: OutputConfig{Color: true},
	}

	// Should return true when Color is true and NO_COLOR is not set
	os.Unsetenv("NO_COLOR")
	if !cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return true")
	}

	// Should return false when NO_COLOR is set
	os.Setenv("NO_COLOR", "1")
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when NO_COLOR is set")
	}
	os.Unsetenv("NO_COLOR")

	// Should return false when Color is false
	cfg.Output.Color = false
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when Color is false")
	}
}

func TestLoadSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.General.AutoConfirm = true
	cfg.Timeouts.PlanSeconds = 5
	cfg.Theme.Title = "#ff0000"

	err := cfg.SaveTo(configPath)
	if err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if !loaded.General.AutoConfirm {
		t.Error("loaded config lost AutoConfirm")
	}
	if loaded.Timeouts.PlanTimeout() != 5*time.Second {
		t.Errorf("loaded plan timeout = %s, want 5s", loaded.Timeouts.PlanTimeout())
	}
	if loaded.Theme.Title != "#ff0000" {
		t.Errorf("loaded theme title = %s, want #ff0000", loaded.Theme.Title)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	// Loading non-existent file should return default config
	cfg, err := LoadFrom("/non/existent/path/config.toml")
	if err != nil {
		t.Fatalf("LoadFrom() should not error for non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadFrom() should return default config for non-existent file")
	}

	// Should have default values
	if !cfg.Output.Color {
		t.Error("expected default Color to be true")
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	partial := "[general]\nauto_confirm = true\n"
	if err := os.WriteFile(configPath, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if !cfg.General.AutoConfirm {
		t.Error("expected AutoConfirm from file")
	}
	if cfg.Theme.Base != "#1e1e2e" {
		t.Error("expected unset sections to keep defaults")
	}
}
