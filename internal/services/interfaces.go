package services

import (
	"context"
	"io"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
)

// MailAPI is the remote mail service. *mailapi.Client implements it.
type MailAPI interface {
	FolderAPI
	ActionAPI
	Uploader
	Search(ctx context.Context, query string, folder mailbox.Folder) ([]mailbox.Message, error)
	Recipients(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*mailbox.Stats, error)
	Storage(ctx context.Context) (*mailbox.Storage, error)
	Logout(ctx context.Context) error
}

// FolderAPI lists folder contents
type FolderAPI interface {
	ListFolder(ctx context.Context, folder mailbox.Folder) ([]mailbox.Message, error)
	ListTemplates(ctx context.Context) ([]mailbox.Template, error)
}

// ActionAPI performs mutating calls
type ActionAPI interface {
	MarkRead(ctx context.Context, m mailbox.Message, activeTab mailbox.Folder) error
	MarkUnread(ctx context.Context, m mailbox.Message, activeTab mailbox.Folder) error
	DeleteMail(ctx context.Context, m mailbox.Message, activeTab mailbox.Folder) error
	PermanentDelete(ctx context.Context, m mailbox.Message) error
	Restore(ctx context.Context, m mailbox.Message) error
	DeleteDraft(ctx context.Context, draft mailbox.Message) error
	SaveDraft(ctx context.Context, out mailbox.Outgoing) error
	Send(ctx context.Context, out mailbox.Outgoing) error
	Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time) error
	SaveTemplate(ctx context.Context, tpl mailbox.Template) error
	BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) error
}

// Uploader stores a blob and returns a reference to it.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// SearchAPI runs server side searches
type SearchAPI interface {
	Search(ctx context.Context, query string, folder mailbox.Folder) ([]mailbox.Message, error)
}

// RecipientAPI serves the autocomplete source
type RecipientAPI interface {
	Recipients(ctx context.Context) ([]string, error)
}

// NotifyKind is the severity of a user facing notification.
type NotifyKind string

const (
	NotifyInfo    NotifyKind = "info"
	NotifySuccess NotifyKind = "success"
	NotifyWarning NotifyKind = "warning"
	NotifyError   NotifyKind = "error"
)

// Notifier is the sink for user facing notifications.
type Notifier interface {
	Notify(kind NotifyKind, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind NotifyKind, text string)

func (f NotifierFunc) Notify(kind NotifyKind, text string) { f(kind, text) }

// FolderService holds the six folder snapshots
type FolderService interface {
	// Load replaces the snapshot of folder. On failure it logs, keeps the
	// previous snapshot and returns an empty slice.
	Load(ctx context.Context, folder mailbox.Folder) []mailbox.Message
	// Refresh loads every folder given, in parallel, and waits for all of them.
	Refresh(ctx context.Context, folders ...mailbox.Folder)
	Snapshot(folder mailbox.Folder) []mailbox.Message
	Templates() []mailbox.Template
	Counts() map[mailbox.Folder]int
	UnreadCount() int
	Reset()
}

// ActionService translates a user intent into a remote call and a refresh
type ActionService interface {
	MarkRead(ctx context.Context, m mailbox.Message) (ActionResult, error)
	MarkUnread(ctx context.Context, m mailbox.Message) (ActionResult, error)
	MoveToTrash(ctx context.Context, m mailbox.Message) (ActionResult, error)
	Restore(ctx context.Context, m mailbox.Message) (ActionResult, error)
	PermanentDelete(ctx context.Context, m mailbox.Message, c Confirmation) (ActionResult, error)
	DeleteDraft(ctx context.Context, draft mailbox.Message) (ActionResult, error)
	DeleteScheduled(ctx context.Context, m mailbox.Message) (ActionResult, error)
	SaveDraft(ctx context.Context, out mailbox.Outgoing, replaces *mailbox.Message) (ActionResult, error)
	Send(ctx context.Context, out mailbox.Outgoing, consumed *mailbox.Message) (ActionResult, error)
	Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time, consumed *mailbox.Message) (ActionResult, error)
	SaveTemplate(ctx context.Context, tpl mailbox.Template) (ActionResult, error)
	BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) (ActionResult, error)
}

// Intent names one user initiated transition.
type Intent string

const (
	IntentMarkRead        Intent = "mark_read"
	IntentMarkUnread      Intent = "mark_unread"
	IntentMoveToTrash     Intent = "move_to_trash"
	IntentRestore         Intent = "restore"
	IntentPermanentDelete Intent = "permanent_delete"
	IntentDeleteDraft     Intent = "delete_draft"
	IntentDeleteScheduled Intent = "delete_scheduled"
	IntentSaveDraft       Intent = "save_draft"
	IntentSend            Intent = "send"
	IntentSchedule        Intent = "schedule"
	IntentSaveTemplate    Intent = "save_template"
	IntentBulkAction      Intent = "bulk_action"
)

// ActionResult describes a settled action.
type ActionResult struct {
	Intent    Intent
	Refreshed []mailbox.Folder
	// Warning is a non fatal follow-up failure, such as a draft that could
	// not be removed after its message was sent.
	Warning error
}

// SelectionService tracks the open message and the checked set
type SelectionService interface {
	Open(ctx context.Context, m mailbox.Message, displayed []mailbox.Message) (mailbox.Identity, error)
	Close()
	OpenIdentity() (mailbox.Identity, bool)
	Check(m mailbox.Message, displayed []mailbox.Message) error
	Uncheck(m mailbox.Message)
	ToggleAll(displayed []mailbox.Message)
	Clear()
	IsChecked(id mailbox.Identity) bool
	Checked() []mailbox.Identity
	Selected(displayed []mailbox.Message) []mailbox.Message
	Reconcile(displayed []mailbox.Message)
}

// SearchService overlays search results on the active folder
type SearchService interface {
	Search(ctx context.Context, query string, active mailbox.Folder) (bool, error)
	Rerun(ctx context.Context) (bool, error)
	Deactivate()
	State() SearchState
	Results() []mailbox.Message
}

// SearchState is a read-only view of the overlay.
type SearchState struct {
	Active bool           `json:"active"`
	Query  string         `json:"query"`
	Scope  mailbox.Folder `json:"scope"`
}

// CompositionService models the single compose session
type CompositionService interface {
	ComposeNew() (*Composition, error)
	EditDraft(draft mailbox.Message) (*Composition, error)
	SetFields(to, subject, body string) error
	ChooseFile(path string) error
	UploadPending(ctx context.Context) (string, error)
	ClearAttachment() error
	ApplyTemplate(tpl mailbox.Template) error
	Send(ctx context.Context) (ActionResult, error)
	SaveDraft(ctx context.Context) (ActionResult, error)
	Schedule(ctx context.Context, date, clock string) (ActionResult, error)
	Discard() error
	Current() (*Composition, bool)
	State() ComposeState
}

// ComposeState is the compose session state machine position.
type ComposeState string

const (
	ComposeIdle        ComposeState = "idle"
	ComposeDrafting    ComposeState = "drafting"
	ComposeSending     ComposeState = "sending"
	ComposeSavingDraft ComposeState = "saving_draft"
	ComposeScheduling  ComposeState = "scheduling"
	ComposeDiscarding  ComposeState = "discarding"
)

// Composition is the in-progress outgoing message
type Composition struct {
	ID          string       `json:"id"`
	State       ComposeState `json:"state"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachment  string       `json:"attachment,omitempty"`
	PendingFile string       `json:"pending_file,omitempty"`
	// EditingDraft is the draft this session was opened from, if any.
	EditingDraft *mailbox.Message `json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	ModifiedAt   time.Time        `json:"modified_at"`
}

// EditingDraftIdentity returns the identity of the originating draft.
func (c *Composition) EditingDraftIdentity() (mailbox.Identity, bool) {
	if c == nil || c.EditingDraft == nil {
		return mailbox.Identity{}, false
	}
	return c.EditingDraft.Identity(), true
}

// Outgoing returns the payload for send, schedule and save_draft.
func (c *Composition) Outgoing() mailbox.Outgoing {
	return mailbox.Outgoing{To: c.To, Subject: c.Subject, Body: c.Body, Attachment: c.Attachment}
}

// ConfirmationService gates irreversible actions
type ConfirmationService interface {
	Request(message string, onConfirm ConfirmFunc) ConfirmationRequest
	Pending() (ConfirmationRequest, bool)
	Confirm(ctx context.Context) error
	Cancel()
}

// RecipientService serves autocomplete suggestions
type RecipientService interface {
	Suggest(ctx context.Context, query string, exclude []string) ([]string, error)
	Reset()
}

// UndoService handles single level undo of reversible actions
type UndoService interface {
	RecordAction(action *UndoableAction) error
	UndoLastAction(ctx context.Context) (*UndoResult, error)
	HasUndoableAction() bool
	GetUndoDescription() string
	ClearUndoHistory()
}

// UndoActionType names a reversible action
type UndoActionType string

const (
	UndoActionTrash      UndoActionType = "trash"
	UndoActionMarkRead   UndoActionType = "mark_read"
	UndoActionMarkUnread UndoActionType = "mark_unread"
)

// UndoableAction represents an action that can be undone
type UndoableAction struct {
	ID          string          `json:"id"`
	Type        UndoActionType  `json:"type"`
	Message     mailbox.Message `json:"-"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
}

// UndoResult represents the result of an undo operation
type UndoResult struct {
	ActionType  UndoActionType `json:"action_type"`
	Description string         `json:"description"`
	Result      ActionResult   `json:"-"`
}

// QueryService manages saved searches
type QueryService interface {
	SaveQuery(ctx context.Context, name, query string, folder mailbox.Folder) (*SavedQueryInfo, error)
	GetQuery(ctx context.Context, name string) (*SavedQueryInfo, error)
	ListQueries(ctx context.Context, folder mailbox.Folder) ([]*SavedQueryInfo, error)
	DeleteQuery(ctx context.Context, name string) error
	MarkUsed(ctx context.Context, id int64) error
}

// SavedQueryInfo represents a saved search
type SavedQueryInfo struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Query     string         `json:"query"`
	Folder    mailbox.Folder `json:"folder"`
	UseCount  int            `json:"use_count"`
	CreatedAt time.Time      `json:"created_at"`
	LastUsed  time.Time      `json:"last_used"`
}
