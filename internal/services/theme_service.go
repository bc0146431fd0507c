package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/ajramos/maildash/internal/config"
)

// ThemeUpdateCallback receives the colors of a newly applied theme.
type ThemeUpdateCallback func(*config.ColorsConfig) error

// ComponentRegistration is a named receiver of theme updates.
type ComponentRegistration struct {
	name     string
	callback ThemeUpdateCallback
}

// ThemeServiceImpl implements ThemeService
type ThemeServiceImpl struct {
	mu           sync.Mutex
	currentTheme string
	themeLoader  *config.ThemeLoader
	components   []ComponentRegistration
	current      *config.ColorsConfig
	logger       *log.Logger
}

// NewThemeService creates a theme service reading YAML themes from themesDir.
// current is the theme already in use.
func NewThemeService(themesDir, current string) *ThemeServiceImpl {
	if current == "" {
		current = config.DefaultThemeName
	}
	return &ThemeServiceImpl{
		currentTheme: current,
		themeLoader:  config.NewThemeLoader(themesDir),
	}
}

func (s *ThemeServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// ListAvailableThemes returns the theme files found plus the built-in
// default, sorted by name.
func (s *ThemeServiceImpl) ListAvailableThemes(ctx context.Context) ([]string, error) {
	names, err := s.themeLoader.ListAvailableThemes()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	seen := map[string]bool{config.DefaultThemeName: true}
	out := []string{config.DefaultThemeName}
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CurrentTheme returns the name of the active theme.
func (s *ThemeServiceImpl) CurrentTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTheme
}

// ApplyTheme loads name and hands it to every registered component. The
// theme becomes current only when it loaded; component errors are joined.
func (s *ThemeServiceImpl) ApplyTheme(ctx context.Context, name string) error {
	theme, err := s.themeLoader.LoadTheme(name)
	if err != nil {
		return Validation("apply_theme", fmt.Errorf("failed to load theme '%s': %w", name, err))
	}

	s.mu.Lock()
	s.currentTheme = name
	s.current = theme
	components := append([]ComponentRegistration(nil), s.components...)
	s.mu.Unlock()

	var errs []error
	for _, c := range components {
		if err := c.callback(theme); err != nil {
			errs = append(errs, fmt.Errorf("component '%s': %w", c.name, err))
		}
	}
	if s.logger != nil {
		s.logger.Printf("ThemeService: applied %s to %d component(s)", name, len(components))
	}
	return errors.Join(errs...)
}

// RegisterComponent adds a receiver of theme updates. A theme that was
// already applied is delivered to it immediately.
func (s *ThemeServiceImpl) RegisterComponent(name string, callback ThemeUpdateCallback) error {
	s.mu.Lock()
	s.components = append(s.components, ComponentRegistration{name: name, callback: callback})
	current := s.current
	s.mu.Unlock()

	if current != nil {
		if err := callback(current); err != nil {
			return fmt.Errorf("failed to apply current theme to component '%s': %w", name, err)
		}
	}
	return nil
}

// UnregisterComponent removes a receiver by name.
func (s *ThemeServiceImpl) UnregisterComponent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.components {
		if c.name == name {
			s.components = append(s.components[:i], s.components[i+1:]...)
			return
		}
	}
}

// ValidateTheme reports whether name loads.
func (s *ThemeServiceImpl) ValidateTheme(ctx context.Context, name string) error {
	_, err := s.themeLoader.LoadTheme(name)
	return err
}
