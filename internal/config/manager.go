package config

import (
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"
	"unicode/utf8"
)

// Manager provides centralized configuration management with validation
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	watchers   []func(*Config)
	getenv     func(string) string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
		getenv: os.Getenv,
	}
}

// SetEnv replaces the environment lookup (tests).
func (m *Manager) SetEnv(getenv func(string) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getenv = getenv
}

// LoadFromFile loads configuration from a file, applies MAILDASH_*
// overrides and validates the result.
func (m *Manager) LoadFromFile(configPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	configPath = ExpandPath(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyEnv(m.getenv)
	m.applyDefaults(cfg)

	if err := m.validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m.config = cfg
	m.configPath = configPath
	m.notifyWatchers(cfg)

	return nil
}

// Path returns the file the configuration was loaded from.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

// GetConfig returns a copy of the current configuration
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.copyConfig(m.config)
}

// UpdateConfig updates the configuration with validation
func (m *Manager) UpdateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cfg = m.copyConfig(cfg)
	m.applyDefaults(cfg)
	if err := m.validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m.config = cfg
	m.notifyWatchers(cfg)

	return nil
}

// SaveToFile saves the current configuration to a file
func (m *Manager) SaveToFile(filePath string) error {
	m.mu.RLock()
	cfg := m.copyConfig(m.config)
	m.mu.RUnlock()

	if err := cfg.SaveConfig(ExpandPath(filePath)); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// AddWatcher adds a configuration change watcher. Watchers run
// synchronously under the manager lock and must not call back into it.
func (m *Manager) AddWatcher(watcher func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watchers = append(m.watchers, watcher)
}

// validateConfig validates the configuration
func (m *Manager) validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server base_url %q", cfg.Server.BaseURL)
	}

	if cfg.Server.Timeout != "" {
		d, err := time.ParseDuration(cfg.Server.Timeout)
		if err != nil {
			return fmt.Errorf("invalid server timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid server timeout: must be positive")
		}
	}

	if cfg.UI.PreviewLength < 0 {
		return fmt.Errorf("invalid preview_length: %d", cfg.UI.PreviewLength)
	}

	for name, key := range cfg.Keys.bindings() {
		if utf8.RuneCountInString(key) != 1 {
			return fmt.Errorf("key %s must be a single character, got %q", name, key)
		}
	}

	return nil
}

// applyDefaults applies default values for missing configuration
func (m *Manager) applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	cfg.Keys.fillFrom(defaults.Keys)
	if cfg.Layout.CurrentTheme == "" {
		cfg.Layout.CurrentTheme = defaults.Layout.CurrentTheme
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.UI.PreviewLength == 0 {
		cfg.UI.PreviewLength = defaults.UI.PreviewLength
	}
	if cfg.SavedSearches.DBPath == "" {
		cfg.SavedSearches.DBPath = defaults.SavedSearches.DBPath
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaults.TokenFile
	}

	cfg.TokenFile = ExpandPath(cfg.TokenFile)
	cfg.SavedSearches.DBPath = ExpandPath(cfg.SavedSearches.DBPath)
}

func (m *Manager) copyConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}

	copy := *cfg
	return &copy
}

func (m *Manager) notifyWatchers(cfg *Config) {
	for _, watcher := range m.watchers {
		watcher(m.copyConfig(cfg))
	}
}

func (k KeyBindings) bindings() map[string]string {
	return map[string]string{
		"compose":        k.Compose,
		"reply":          k.Reply,
		"refresh":        k.Refresh,
		"search":         k.Search,
		"toggle_read":    k.ToggleRead,
		"trash":          k.Trash,
		"restore":        k.Restore,
		"check":          k.Check,
		"check_all":      k.CheckAll,
		"bulk_menu":      k.BulkMenu,
		"undo":           k.Undo,
		"templates":      k.Templates,
		"save_search":    k.SaveSearch,
		"saved_searches": k.SavedSearches,
		"stats":          k.Stats,
		"theme":          k.Theme,
		"next_folder":    k.NextFolder,
		"prev_folder":    k.PrevFolder,
		"help":           k.Help,
		"quit":           k.Quit,
	}
}

// fillFrom copies every unset binding from def.
func (k *KeyBindings) fillFrom(def KeyBindings) {
	pairs := []struct {
		dst *string
		src string
	}{
		{&k.Compose, def.Compose},
		{&k.Reply, def.Reply},
		{&k.Refresh, def.Refresh},
		{&k.Search, def.Search},
		{&k.ToggleRead, def.ToggleRead},
		{&k.Trash, def.Trash},
		{&k.Restore, def.Restore},
		{&k.Check, def.Check},
		{&k.CheckAll, def.CheckAll},
		{&k.BulkMenu, def.BulkMenu},
		{&k.Undo, def.Undo},
		{&k.Templates, def.Templates},
		{&k.SaveSearch, def.SaveSearch},
		{&k.SavedSearches, def.SavedSearches},
		{&k.Stats, def.Stats},
		{&k.Theme, def.Theme},
		{&k.NextFolder, def.NextFolder},
		{&k.PrevFolder, def.PrevFolder},
		{&k.Help, def.Help},
		{&k.Quit, def.Quit},
	}
	for _, p := range pairs {
		if *p.dst == "" {
			*p.dst = p.src
		}
	}
}
