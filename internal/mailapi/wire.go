package mailapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ajramos/maildash/internal/mailbox"
)

// wireMessage is the JSON shape the service stores and expects back.
type wireMessage struct {
	ID             flexibleID `json:"id,omitempty"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	Attachment     string     `json:"attachment,omitempty"`
	Status         string     `json:"message_status,omitempty"`
	DateOfCompose  string     `json:"date_of_compose,omitempty"`
	DateOfSend     string     `json:"date_of_send,omitempty"`
	ScheduledDate  string     `json:"scheduled_date,omitempty"`
	OriginalFolder string     `json:"original_folder,omitempty"`
}

// flexibleID accepts ids encoded as JSON strings or numbers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

type folderResponse struct {
	Inbox     []wireMessage `json:"inbox"`
	Sent      []wireMessage `json:"sent"`
	Drafts    []wireMessage `json:"drafts"`
	Trash     []wireMessage `json:"trash"`
	Scheduled []wireMessage `json:"scheduled"`
}

func (r folderResponse) pick(folder mailbox.Folder) []wireMessage {
	switch folder {
	case mailbox.Inbox:
		return r.Inbox
	case mailbox.Sent:
		return r.Sent
	case mailbox.Drafts:
		return r.Drafts
	case mailbox.Trash:
		return r.Trash
	case mailbox.Scheduled:
		return r.Scheduled
	}
	return nil
}

type tokenRequest struct {
	Token string `json:"token"`
}

type searchRequest struct {
	Token  string `json:"token"`
	Query  string `json:"query"`
	Folder string `json:"folder"`
}

type mailRequest struct {
	Token     string      `json:"token"`
	Mail      wireMessage `json:"mail"`
	ActiveTab string      `json:"activeTab,omitempty"`
}

type draftRequest struct {
	Token string      `json:"token"`
	Draft wireMessage `json:"draft"`
}

type outgoingRequest struct {
	Token        string `json:"token"`
	To           string `json:"to"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	Attachment   string `json:"attachment"`
	ScheduleTime string `json:"scheduleTime,omitempty"`
}

type templateRequest struct {
	Token   string `json:"token"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type bulkRequest struct {
	Token  string        `json:"token"`
	Action string        `json:"action"`
	Emails []wireMessage `json:"emails"`
	Folder string        `json:"folder"`
}

func toWire(m mailbox.Message) wireMessage {
	w := wireMessage{
		ID:            flexibleID(m.ID),
		From:          m.From,
		To:            m.To,
		Subject:       m.Subject,
		Body:          m.Body,
		Attachment:    m.Attachment,
		Status:        string(m.Status),
		DateOfCompose: m.ComposedAt,
		DateOfSend:    m.SentAt,
		ScheduledDate: m.ScheduledFor,
	}
	if m.Folder == mailbox.Trash {
		w.OriginalFolder = string(m.Origin())
	}
	return w
}

func fromWire(ws []wireMessage, folder mailbox.Folder) []mailbox.Message {
	msgs := make([]mailbox.Message, 0, len(ws))
	for _, w := range ws {
		m := mailbox.Message{
			ID:           string(w.ID),
			From:         w.From,
			To:           w.To,
			Subject:      w.Subject,
			Body:         w.Body,
			Attachment:   w.Attachment,
			Status:       mailbox.Status(strings.ToLower(w.Status)),
			Folder:       folder,
			ComposedAt:   w.DateOfCompose,
			SentAt:       w.DateOfSend,
			ScheduledFor: w.ScheduledDate,
		}
		if folder == mailbox.Trash {
			if origin, ok := mailbox.ParseFolder(w.OriginalFolder); ok {
				m.OriginFolder = origin
			}
		}
		msgs = append(msgs, m)
	}
	return msgs
}
