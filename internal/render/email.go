package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/maildash/internal/config"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/derailed/tcell/v2"
	"github.com/emersion/go-message/mail"
	"github.com/mattn/go-runewidth"
)

// EmailColorer picks list colors from a message's folder and status.
type EmailColorer struct {
	UnreadColor    tcell.Color
	ReadColor      tcell.Color
	SentColor      tcell.Color
	DraftColor     tcell.Color
	ScheduledColor tcell.Color
	DeletedColor   tcell.Color
}

// NewEmailColorer creates a colorer with the built-in theme colors.
func NewEmailColorer() *EmailColorer {
	ec := &EmailColorer{}
	ec.UpdateFromStyles(config.DefaultColors())
	return ec
}

// ColorFor returns the foreground color of a list row.
func (ec *EmailColorer) ColorFor(m mailbox.Message) tcell.Color {
	switch {
	case m.Folder == mailbox.Trash || m.IsDeleted():
		return ec.DeletedColor
	case m.Folder == mailbox.Drafts:
		return ec.DraftColor
	case m.Folder == mailbox.Scheduled:
		return ec.ScheduledColor
	case m.Folder == mailbox.Sent:
		return ec.SentColor
	case m.IsUnread():
		return ec.UnreadColor
	}
	return ec.ReadColor
}

// UpdateFromStyles updates colors from configuration
func (ec *EmailColorer) UpdateFromStyles(colors *config.ColorsConfig) {
	if colors == nil {
		return
	}
	ec.UnreadColor = colors.Email.UnreadColor.Color()
	ec.ReadColor = colors.Email.ReadColor.Color()
	ec.SentColor = colors.Email.SentColor.Color()
	ec.DraftColor = colors.Email.DraftColor.Color()
	ec.ScheduledColor = colors.Email.ScheduledColor.Color()
	ec.DeletedColor = colors.Email.DeletedColor.Color()
}

// EmailRenderer formats messages for the list and the detail header.
type EmailRenderer struct {
	colorer       *EmailColorer
	senderWidth   int
	dateWidth     int
	showPreview   bool
	previewLength int
}

// NewEmailRenderer creates a new email renderer
func NewEmailRenderer() *EmailRenderer {
	return &EmailRenderer{
		colorer:       NewEmailColorer(),
		senderWidth:   22,
		dateWidth:     9,
		previewLength: DefaultPreviewLength,
	}
}

// SetPreview toggles the body preview after the subject.
func (er *EmailRenderer) SetPreview(show bool, length int) {
	er.showPreview = show
	if length > 0 {
		er.previewLength = length
	}
}

// Colorer exposes the colorer so callers can apply a theme.
func (er *EmailRenderer) Colorer() *EmailColorer { return er.colorer }

// FormatEmailList formats one list row: check mark, unread marker, the other
// party, subject (and preview) and a relative date, fitted to maxWidth.
func (er *EmailRenderer) FormatEmailList(m mailbox.Message, checked bool, maxWidth int, now time.Time) (string, tcell.Color) {
	if maxWidth < 40 {
		maxWidth = 40
	}
	mark := "[ ]"
	if checked {
		mark = "[x]"
	}
	dot := " "
	if m.IsUnread() {
		dot = "●"
	}

	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		subject = "(No subject)"
	}
	if er.showPreview {
		if p := Preview(m.Body, er.previewLength); p != "" {
			subject += " - " + p
		}
	}
	if m.Attachment != "" {
		subject = "@ " + subject
	}

	// "[ ] ● " + " | " + " | "
	subjectWidth := maxWidth - er.senderWidth - er.dateWidth - 6 - 6
	if subjectWidth < 10 {
		subjectWidth = 10
	}

	line := fmt.Sprintf("%s %s %s | %s | %s",
		mark,
		dot,
		fitWidth(Counterpart(m), er.senderWidth),
		fitWidth(subject, subjectWidth),
		rightFit(RelativeDate(m.Time(), now), er.dateWidth),
	)
	return line, er.colorer.ColorFor(m)
}

// FormatHeaderPlain renders the detail-pane header block.
func (er *EmailRenderer) FormatHeaderPlain(m mailbox.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", m.From)
	fmt.Fprintf(&b, "To: %s\n", m.To)
	subject := m.Subject
	if subject == "" {
		subject = "(No subject)"
	}
	fmt.Fprintf(&b, "Subject: %s\n", subject)

	switch m.Folder {
	case mailbox.Drafts:
		fmt.Fprintf(&b, "Saved: %s\n", formatDate(m.Time()))
	case mailbox.Scheduled:
		fmt.Fprintf(&b, "Scheduled for: %s\n", formatDate(m.Time()))
	default:
		fmt.Fprintf(&b, "Date: %s\n", formatDate(m.Time()))
	}
	if m.Folder == mailbox.Trash {
		fmt.Fprintf(&b, "Deleted from: %s\n", m.Origin().Title())
	}
	return b.String()
}

// Counterpart is the address shown in the list: the sender for received
// mail, the recipient for everything the account wrote.
func Counterpart(m mailbox.Message) string {
	folder := m.Folder
	if folder == mailbox.Trash {
		folder = m.Origin()
	}
	switch folder {
	case mailbox.Sent, mailbox.Drafts, mailbox.Scheduled:
		to := SenderName(m.To)
		if to == "" {
			to = "(No recipient)"
		}
		return "To: " + to
	}
	from := SenderName(m.From)
	if from == "" {
		return "(No sender)"
	}
	return from
}

// SenderName returns the display name of an address, falling back to its
// local part. Lists are reduced to their first entry.
func SenderName(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if list, err := mail.ParseAddressList(addr); err == nil && len(list) > 0 {
		a := list[0]
		if name := strings.TrimSpace(a.Name); name != "" {
			return name
		}
		return localPart(a.Address)
	}
	if i := strings.Index(addr, "<"); i > 0 {
		return strings.Trim(strings.TrimSpace(addr[:i]), `"`)
	}
	return localPart(addr)
}

func localPart(addr string) string {
	if i := strings.Index(addr, "@"); i > 0 {
		return addr[:i]
	}
	return addr
}

// RelativeDate formats t relative to now: the time for today, "Yesterday",
// the weekday within the last week and a short date otherwise.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	day := time.Date(ty, tm, td, 0, 0, 0, 0, now.Location())

	switch days := int(today.Sub(day).Hours() / 24); {
	case days == 0:
		return t.Format("15:04")
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return t.Format("Mon")
	case days < 0:
		// scheduled mail lives in the future
		if ty == ny {
			return t.Format("Jan 2")
		}
		return t.Format("Jan 2 2006")
	}
	if ty != ny {
		return t.Format("Jan 2 2006")
	}
	return t.Format("Jan 2")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon, 02 Jan 2006 15:04")
}

// fitWidth truncates and pads on the right to fit a fixed width
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "...")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// rightFit truncates and right-aligns to width
func rightFit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}
