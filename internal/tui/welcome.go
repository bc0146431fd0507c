package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/maildash/internal/config"
)

// welcomeShortcuts renders the quick action chips, falling back to the
// default binding for any key left empty.
func welcomeShortcuts(k config.KeyBindings) string {
	def := config.DefaultKeyBindings()
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	}
	chips := []string{
		fmt.Sprintf("[%s Help]", pick(k.Help, def.Help)),
		fmt.Sprintf("[%s Compose]", pick(k.Compose, def.Compose)),
		fmt.Sprintf("[%s Search]", pick(k.Search, def.Search)),
		fmt.Sprintf("[%s Refresh]", pick(k.Refresh, def.Refresh)),
		fmt.Sprintf("[%s Quit]", pick(k.Quit, def.Quit)),
	}
	return strings.Join(chips, "  ")
}

// welcomeText fills the detail pane while no message is open.
func welcomeText(account string, s loadState, k config.KeyBindings) string {
	var b strings.Builder
	b.WriteString("maildash: your mailbox in the terminal\n\n")
	if strings.TrimSpace(account) != "" {
		fmt.Fprintf(&b, "Account: %s\n\n", account)
	}
	b.WriteString("Quick actions:  " + welcomeShortcuts(k) + "\n\n")

	switch s {
	case stateLoading:
		b.WriteString("Loading folders...\n")
	case stateEmpty:
		b.WriteString("Nothing here yet. Switch folders with 1-6 or compose a new message.\n")
	default:
		b.WriteString("Select a message and press Enter to read it.\n")
	}
	return b.String()
}

type loadState int

const (
	stateReady loadState = iota
	stateLoading
	stateEmpty
)
