package tui

import (
	"testing"

	"github.com/ajramos/maildash/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestWelcomeShortcuts_CustomConfig(t *testing.T) {
	k := config.KeyBindings{Help: "h", Compose: "n", Search: "f", Refresh: "g", Quit: "Q"}

	got := welcomeShortcuts(k)
	for _, want := range []string{"[h Help]", "[n Compose]", "[f Search]", "[g Refresh]", "[Q Quit]"} {
		assert.Contains(t, got, want)
	}
}

func TestWelcomeShortcuts_DefaultFallback(t *testing.T) {
	got := welcomeShortcuts(config.KeyBindings{Help: "h"})

	assert.Contains(t, got, "[h Help]")
	assert.Contains(t, got, "[c Compose]")
	assert.Contains(t, got, "[/ Search]")
	assert.Contains(t, got, "[R Refresh]")
	assert.Contains(t, got, "[q Quit]")
}

func TestWelcomeText(t *testing.T) {
	keys := config.DefaultKeyBindings()

	loading := welcomeText("a@x.com", stateLoading, keys)
	assert.Contains(t, loading, "Account: a@x.com")
	assert.Contains(t, loading, "Loading folders...")

	empty := welcomeText("", stateEmpty, keys)
	assert.NotContains(t, empty, "Account:")
	assert.Contains(t, empty, "Nothing here yet")

	ready := welcomeText("a@x.com", stateReady, keys)
	assert.Contains(t, ready, "press Enter to read it")
}
