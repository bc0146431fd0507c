package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig  = "MAILDASH_CONFIG"
	EnvServer  = "MAILDASH_SERVER"
	EnvAccount = "MAILDASH_ACCOUNT"
	EnvToken   = "MAILDASH_TOKEN"
	EnvLogFile = "MAILDASH_LOG_FILE"
)

const defaultTimeout = 30 * time.Second

// Config holds all configuration for maildash
type Config struct {
	Server ServerConfig `json:"server"`

	// Account used when no session file names one.
	AccountID string `json:"account_id"`
	// Token is only ever populated from the environment, never persisted.
	Token     string `json:"-"`
	TokenFile string `json:"token_file"`
	// UseKeyring enables the OS keyring as a session source.
	UseKeyring bool `json:"use_keyring"`

	// Logging
	LogFile string `json:"log_file"`

	SavedSearches SavedSearchesConfig `json:"saved_searches"`
	UI            UIConfig            `json:"ui"`
	Layout        LayoutConfig        `json:"layout"`
	Keys          KeyBindings         `json:"keys"`
}

// ServerConfig points at the mail service.
type ServerConfig struct {
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"`
}

// SavedSearchesConfig controls the local saved search store.
type SavedSearchesConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"db_path"`
}

// UIConfig holds list rendering preferences.
type UIConfig struct {
	PreviewLength int  `json:"preview_length"`
	ShowPreview   bool `json:"show_preview"`
	// WrapWidth of the detail pane; 0 lets the pane wrap.
	WrapWidth int `json:"wrap_width"`
}

// LayoutConfig holds theme selection.
type LayoutConfig struct {
	CurrentTheme   string `json:"current_theme"`    // theme file name without extension
	CustomThemeDir string `json:"custom_theme_dir"` // empty = default
}

// KeyBindings defines keyboard shortcuts for the TUI. Every binding is a
// single rune.
type KeyBindings struct {
	Compose       string `json:"compose"`
	Reply         string `json:"reply"`
	Refresh       string `json:"refresh"`
	Search        string `json:"search"`
	ToggleRead    string `json:"toggle_read"`
	Trash         string `json:"trash"`
	Restore       string `json:"restore"`
	Check         string `json:"check"`
	CheckAll      string `json:"check_all"`
	BulkMenu      string `json:"bulk_menu"`
	Undo          string `json:"undo"`
	Templates     string `json:"templates"`
	SaveSearch    string `json:"save_search"`
	SavedSearches string `json:"saved_searches"`
	Stats         string `json:"stats"`
	Theme         string `json:"theme"`
	NextFolder    string `json:"next_folder"`
	PrevFolder    string `json:"prev_folder"`
	Help          string `json:"help"`
	Quit          string `json:"quit"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:5000",
			Timeout: "30s",
		},
		TokenFile:  DefaultTokenPath(),
		UseKeyring: true,
		LogFile:    "",
		SavedSearches: SavedSearchesConfig{
			Enabled: true,
			DBPath:  DefaultDBPath(),
		},
		UI: UIConfig{
			PreviewLength: 100,
			ShowPreview:   true,
		},
		Layout: DefaultLayoutConfig(),
		Keys:   DefaultKeyBindings(),
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Compose:       "c",
		Reply:         "r",
		Refresh:       "R",
		Search:        "/",
		ToggleRead:    "t",
		Trash:         "d",
		Restore:       "u",
		Check:         "x",
		CheckAll:      "a",
		BulkMenu:      "b",
		Undo:          "U",
		Templates:     "T",
		SaveSearch:    "S",
		SavedSearches: "s",
		Stats:         "i",
		Theme:         "p",
		NextFolder:    "]",
		PrevFolder:    "[",
		Help:          "?",
		Quit:          "q",
	}
}

// DefaultLayoutConfig returns default layout configuration
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		CurrentTheme:   "maildash-dark",
		CustomThemeDir: "",
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; a malformed one is an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// ApplyEnv overrides fields from MAILDASH_* variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvServer)); v != "" {
		c.Server.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvAccount)); v != "" {
		c.AccountID = v
	}
	if v := strings.TrimSpace(getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		c.LogFile = v
	}
}

// DefaultConfigDir returns ~/.config/maildash
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "maildash")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return inConfigDir("config.json")
}

// DefaultTokenPath returns the default session file path
func DefaultTokenPath() string {
	return inConfigDir("session.json")
}

// DefaultDBPath returns the default saved search database path
func DefaultDBPath() string {
	return inConfigDir("maildash.db")
}

// DefaultLogPath returns the default log file path
func DefaultLogPath() string {
	return inConfigDir("maildash.log")
}

// DefaultThemesDir returns the default themes directory path
func DefaultThemesDir() string {
	return inConfigDir("themes")
}

func inConfigDir(name string) string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// ServerTimeout returns the parsed request timeout
func (c *Config) ServerTimeout() time.Duration {
	if c.Server.Timeout == "" {
		return defaultTimeout
	}
	if d, err := time.ParseDuration(c.Server.Timeout); err == nil && d > 0 {
		return d
	}
	return defaultTimeout
}

// LogPath returns the log file in use.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return ExpandPath(c.LogFile)
	}
	return DefaultLogPath()
}

// ThemesDir returns the directory themes are loaded from.
func (c *Config) ThemesDir() string {
	if c.Layout.CustomThemeDir != "" {
		return ExpandPath(c.Layout.CustomThemeDir)
	}
	return DefaultThemesDir()
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
