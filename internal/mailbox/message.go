package mailbox

import (
	"strings"
	"time"
)

// Folder names one server-backed collection.
type Folder string

const (
	Inbox     Folder = "inbox"
	Sent      Folder = "sent"
	Drafts    Folder = "drafts"
	Trash     Folder = "trash"
	Scheduled Folder = "scheduled"
	Templates Folder = "templates"
)

// Folders lists every folder in navigation order.
var Folders = []Folder{Inbox, Sent, Drafts, Scheduled, Trash, Templates}

// ParseFolder converts a user supplied name into a Folder.
func ParseFolder(name string) (Folder, bool) {
	f := Folder(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Folders {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Title returns the label shown in navigation.
func (f Folder) Title() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

// HoldsMessages reports whether the folder contains messages (templates do not).
func (f Folder) HoldsMessages() bool {
	return f != Templates && f != ""
}

// Status is the server side message_status value.
type Status string

const (
	StatusUnread    Status = "unread"
	StatusRead      Status = "read"
	StatusDeleted   Status = "deleted"
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
)

// Message is a single mail item. Folder is the variant tag: it is set by
// whoever loaded the message and decides which of the optional fields carry
// meaning.
//
//	inbox, sent   SentAt
//	drafts        ComposedAt
//	scheduled     ScheduledFor
//	trash         SentAt or ScheduledFor, plus Origin
//
// Timestamps are kept as the raw strings the service returned so that a
// message echoed back in a request matches the stored record byte for byte.
type Message struct {
	ID         string
	From       string
	To         string
	Subject    string
	Body       string
	Attachment string
	Status     Status

	Folder       Folder
	ComposedAt   string
	SentAt       string
	ScheduledFor string
	OriginFolder Folder
}

// IsUnread reports whether the message still carries the unread flag.
func (m Message) IsUnread() bool {
	return m.Status == StatusUnread
}

// IsDeleted reports whether the service already marked the message deleted.
func (m Message) IsDeleted() bool {
	return m.Status == StatusDeleted
}

// Origin returns the folder a trashed message came from. Messages that carry
// no provenance are assumed to have been received.
func (m Message) Origin() Folder {
	if m.Folder != Trash {
		return m.Folder
	}
	if m.OriginFolder != "" {
		return m.OriginFolder
	}
	return Inbox
}

// Date returns the timestamp most relevant to the message's folder.
func (m Message) Date() string {
	switch m.Folder {
	case Drafts:
		return m.ComposedAt
	case Scheduled:
		return m.ScheduledFor
	}
	if m.SentAt != "" {
		return m.SentAt
	}
	if m.ScheduledFor != "" {
		return m.ScheduledFor
	}
	return m.ComposedAt
}

// Time parses Date. The zero time is returned for missing or malformed values.
func (m Message) Time() time.Time {
	return ParseTimestamp(m.Date())
}

// Identity derives the key used to match this message across snapshots.
func (m Message) Identity() Identity {
	return IdentityOf(m)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the formats the service emits (with or without a zone).
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Template is a stored reusable subject/body pair.
type Template struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
