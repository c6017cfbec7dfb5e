package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// EnsureDirectories creates the build output directories if they don't exist.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if err := os.MkdirAll(cfg.Style.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create style output directory %s: %w", cfg.Style.OutputDir, err)
	}

	if err := os.MkdirAll(cfg.Script.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create script output directory %s: %w", cfg.Script.OutputDir, err)
	}

	slog.Info("Output directories created/verified", "css", cfg.Style.OutputDir, "js", cfg.Script.OutputDir)
	return nil
}

// GetYAML returns the current configuration as a YAML document.
func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.config)
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
