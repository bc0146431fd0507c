package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/derailed/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeLoader_DefaultWithoutFiles(t *testing.T) {
	tl := NewThemeLoader(t.TempDir())

	theme, err := tl.LoadTheme("")
	require.NoError(t, err)
	assert.Equal(t, DefaultColors(), theme)

	_, err = tl.LoadTheme("solarized")
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestThemeLoader_SaveListLoad(t *testing.T) {
	dir := t.TempDir()
	tl := NewThemeLoader(dir)

	require.NoError(t, tl.CreateDefaultTheme())
	custom := DefaultColors()
	custom.Email.UnreadColor = NewColor("#ff0000")
	require.NoError(t, tl.SaveThemeToFile(custom, "red.yaml"))

	names, err := tl.ListAvailableThemes()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{DefaultThemeName, "red"}, names)

	loaded, err := tl.LoadTheme("red.yaml")
	require.NoError(t, err)
	assert.Equal(t, Color("#ff0000"), loaded.Email.UnreadColor)
	assert.Equal(t, tcell.NewHexColor(0xff0000).TrueColor(), loaded.Email.UnreadColor.Color())
}

func TestThemeLoader_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "maildash:\n  email:\n    unreadColor: \"#123456\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.yaml"), []byte(content), 0o644))

	theme, err := NewThemeLoader(dir).LoadTheme("partial")
	require.NoError(t, err)
	assert.Equal(t, Color("#123456"), theme.Email.UnreadColor)
	assert.Equal(t, DefaultColors().Body, theme.Body)
}

func TestThemeLoader_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"nosection.yaml": "other:\n  body: {}\n",
		"broken.yaml":    "maildash: [",
		"missing.yaml":   "maildash:\n  body:\n    fgColor: \"\"\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	tl := NewThemeLoader(dir)

	_, err := tl.LoadTheme("nosection")
	assert.ErrorContains(t, err, "missing maildash section")

	_, err = tl.LoadTheme("broken")
	assert.ErrorContains(t, err, "failed to parse")

	_, err = tl.LoadTheme("missing")
	assert.ErrorContains(t, err, "Body.FgColor")
}

func TestColor(t *testing.T) {
	assert.Equal(t, tcell.ColorDefault, DefaultColor.Color())
	assert.Equal(t, "-", DefaultColor.String())
	assert.Equal(t, "#50fa7b", NewColor("#50fa7b").String())
}
