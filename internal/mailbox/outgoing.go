package mailbox

// Outgoing is the payload for send, schedule and save_draft.
type Outgoing struct {
	To         string
	Subject    string
	Body       string
	Attachment string
}

// BulkAction names an action applied to a whole selection in one call.
type BulkAction string

const (
	BulkDelete     BulkAction = "delete"
	BulkMarkRead   BulkAction = "mark_read"
	BulkMarkUnread BulkAction = "mark_unread"
	BulkRestore    BulkAction = "restore"
)

// BulkActionsFor returns the bulk actions offered while folder is active.
// Trash only offers restore; folders without messages offer nothing.
func BulkActionsFor(folder Folder) []BulkAction {
	switch folder {
	case Trash:
		return []BulkAction{BulkRestore}
	case Templates, "":
		return nil
	default:
		return []BulkAction{BulkDelete, BulkMarkRead, BulkMarkUnread}
	}
}

// AllowsBulk reports whether action is offered in folder.
func AllowsBulk(folder Folder, action BulkAction) bool {
	for _, a := range BulkActionsFor(folder) {
		if a == action {
			return true
		}
	}
	return false
}

// Stats is the per-account summary served by /stats.
type Stats struct {
	TotalReceived int     `json:"total_received"`
	TotalSent     int     `json:"total_sent"`
	UnreadCount   int     `json:"unread_count"`
	DeletedCount  int     `json:"deleted_count"`
	DraftCount    int     `json:"draft_count"`
	Storage       Storage `json:"storage_used"`
}

// Storage is the quota summary served by /storage.
type Storage struct {
	UsedMB     float64 `json:"used_mb"`
	TotalMB    float64 `json:"total_mb"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}
