package dashboard

import (
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/services"
)

// Snapshot is the read-only view handed to the presentation layer. It is
// rebuilt after every settled action and never shares memory with the
// controller.
type Snapshot struct {
	ActiveFolder mailbox.Folder
	// Messages is what the user sees: search results while the overlay is
	// active, the active folder otherwise.
	Messages  []mailbox.Message
	Templates []mailbox.Template
	Search    services.SearchState

	Open         *mailbox.Message
	OpenIdentity mailbox.Identity
	Checked      []mailbox.Identity
	// BulkActions lists the actions offered for the checked set.
	BulkActions []mailbox.BulkAction

	ComposeState services.ComposeState
	Compose      *services.Composition
	Confirmation *services.ConfirmationRequest

	Counts          map[mailbox.Folder]int
	Unread          int
	CanUndo         bool
	UndoDescription string

	Stats   *mailbox.Stats
	Storage *mailbox.Storage
}

// IsChecked reports whether m is in the checked set.
func (s Snapshot) IsChecked(m mailbox.Message) bool {
	id := m.Identity()
	for _, c := range s.Checked {
		if c == id {
			return true
		}
	}
	return false
}

// IsOpen reports whether m is the open message.
func (s Snapshot) IsOpen(m mailbox.Message) bool {
	return !s.OpenIdentity.IsZero() && s.OpenIdentity == m.Identity()
}

// Scope is the folder that actions on the displayed messages operate in.
func (s Snapshot) Scope() mailbox.Folder {
	if s.Search.Active {
		return s.Search.Scope
	}
	return s.ActiveFolder
}
