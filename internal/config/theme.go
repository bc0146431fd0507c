package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultThemeName is written by CreateDefaultTheme.
const DefaultThemeName = "maildash-dark"

// ErrThemeNotFound is returned when no file matches a theme name.
var ErrThemeNotFound = errors.New("theme not found")

// themeFile is the on-disk layout of a theme.
type themeFile struct {
	Maildash *ColorsConfig `yaml:"maildash"`
}

// ThemeLoader handles loading and saving themes
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a new theme loader
func NewThemeLoader(themesDir string) *ThemeLoader {
	return &ThemeLoader{
		themesDir: themesDir,
	}
}

// LoadTheme loads a theme by name, e.g. "maildash-dark". The built-in
// default is returned for the default name when no file exists.
func (tl *ThemeLoader) LoadTheme(name string) (*ColorsConfig, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".yaml")
	if name == "" {
		name = DefaultThemeName
	}
	theme, err := tl.LoadThemeFromFile(name + ".yaml")
	if errors.Is(err, ErrThemeNotFound) && name == DefaultThemeName {
		return DefaultColors(), nil
	}
	return theme, err
}

// LoadThemeFromFile loads a theme from a YAML file in the themes directory,
// or from filename itself when it is a path. Colors the file leaves out keep
// their default values.
func (tl *ThemeLoader) LoadThemeFromFile(filename string) (*ColorsConfig, error) {
	path := filepath.Join(tl.themesDir, filename)
	if !fileExists(path) {
		path = filename
		if !fileExists(path) {
			return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, filename)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	theme := themeFile{Maildash: DefaultColors()}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if _, ok := raw["maildash"]; !ok {
		return nil, fmt.Errorf("invalid theme file: missing maildash section")
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	if err := tl.ValidateTheme(theme.Maildash); err != nil {
		return nil, err
	}
	return theme.Maildash, nil
}

// ListAvailableThemes returns the theme names found in the themes directory
func (tl *ThemeLoader) ListAvailableThemes() ([]string, error) {
	entries, err := os.ReadDir(tl.themesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var themes []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			themes = append(themes, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}

	return themes, nil
}

// SaveThemeToFile saves a theme configuration to a YAML file
func (tl *ThemeLoader) SaveThemeToFile(theme *ColorsConfig, filename string) error {
	if err := os.MkdirAll(tl.themesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}

	data, err := yaml.Marshal(themeFile{Maildash: theme})
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	if err := os.WriteFile(filepath.Join(tl.themesDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}

	return nil
}

// ValidateTheme validates a theme configuration
func (tl *ThemeLoader) ValidateTheme(theme *ColorsConfig) error {
	if theme == nil {
		return fmt.Errorf("theme is nil")
	}

	requiredColors := []struct {
		name  string
		color Color
	}{
		{"Body.FgColor", theme.Body.FgColor},
		{"Body.BgColor", theme.Body.BgColor},
		{"Email.UnreadColor", theme.Email.UnreadColor},
		{"Email.ReadColor", theme.Email.ReadColor},
	}

	for _, req := range requiredColors {
		if req.color == "" {
			return fmt.Errorf("missing required color: %s", req.name)
		}
	}

	return nil
}

// CreateDefaultTheme writes the built-in theme if it does not exist yet
func (tl *ThemeLoader) CreateDefaultTheme() error {
	if fileExists(filepath.Join(tl.themesDir, DefaultThemeName+".yaml")) {
		return nil
	}
	return tl.SaveThemeToFile(DefaultColors(), DefaultThemeName+".yaml")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
