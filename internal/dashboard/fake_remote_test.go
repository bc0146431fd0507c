package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/services"
)

// fakeRemote is an in-memory mail service that applies every mutation the
// way the real backend does, so tests can observe the next snapshot.
type fakeRemote struct {
	mu         sync.Mutex
	folders    map[mailbox.Folder][]mailbox.Message
	templates  []mailbox.Template
	recipients []string
	calls      map[string]int
	fail       map[string]error
	seq        int
}

var _ services.MailAPI = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		folders: make(map[mailbox.Folder][]mailbox.Message),
		calls:   make(map[string]int),
		fail:    make(map[string]error),
	}
}

func (f *fakeRemote) seed(folder mailbox.Folder, msgs ...mailbox.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		m.Folder = folder
		f.folders[folder] = append(f.folders[folder], m)
	}
}

// failNext makes the next call to op return err.
func (f *fakeRemote) failNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) contents(folder mailbox.Folder) []mailbox.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailbox.Message, len(f.folders[folder]))
	copy(out, f.folders[folder])
	return out
}

// call records op and pops an injected failure. Caller holds f.mu.
func (f *fakeRemote) call(op string) error {
	f.calls[op]++
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return err
	}
	return nil
}

func (f *fakeRemote) stamp() string {
	f.seq++
	return fmt.Sprintf("2024-05-01T12:%02d:00Z", f.seq)
}

// take removes the message carrying m's identity from folder. Caller holds f.mu.
func (f *fakeRemote) take(folder mailbox.Folder, m mailbox.Message) (mailbox.Message, bool) {
	id := m.Identity()
	for i, cur := range f.folders[folder] {
		if id.Matches(cur) {
			f.folders[folder] = append(f.folders[folder][:i:i], f.folders[folder][i+1:]...)
			return cur, true
		}
	}
	return mailbox.Message{}, false
}

func (f *fakeRemote) put(folder mailbox.Folder, m mailbox.Message) {
	m.Folder = folder
	f.folders[folder] = append(f.folders[folder], m)
}

func (f *fakeRemote) setStatus(folder mailbox.Folder, m mailbox.Message, status mailbox.Status) {
	id := m.Identity()
	for i := range f.folders[folder] {
		if id.Matches(f.folders[folder][i]) {
			f.folders[folder][i].Status = status
		}
	}
}

func (f *fakeRemote) ListFolder(ctx context.Context, folder mailbox.Folder) ([]mailbox.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_" + string(folder)); err != nil {
		return nil, err
	}
	out := make([]mailbox.Message, len(f.folders[folder]))
	copy(out, f.folders[folder])
	return out, nil
}

func (f *fakeRemote) ListTemplates(ctx context.Context) ([]mailbox.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_templates"); err != nil {
		return nil, err
	}
	out := make([]mailbox.Template, len(f.templates))
	copy(out, f.templates)
	return out, nil
}

func (f *fakeRemote) Search(ctx context.Context, query string, folder mailbox.Folder) ([]mailbox.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("search"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []mailbox.Message
	for _, m := range f.folders[folder] {
		if m.IsDeleted() {
			continue
		}
		if strings.Contains(strings.ToLower(m.Subject), q) || strings.Contains(strings.ToLower(m.Body), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRemote) MarkRead(ctx context.Context, m mailbox.Message, tab mailbox.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("mark_read"); err != nil {
		return err
	}
	f.setStatus(tab, m, mailbox.StatusRead)
	return nil
}

func (f *fakeRemote) MarkUnread(ctx context.Context, m mailbox.Message, tab mailbox.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("mark_unread"); err != nil {
		return err
	}
	f.setStatus(tab, m, mailbox.StatusUnread)
	return nil
}

func (f *fakeRemote) trash(m mailbox.Message, tab mailbox.Folder) {
	if cur, ok := f.take(tab, m); ok {
		cur.OriginFolder = tab
		cur.Status = mailbox.StatusDeleted
		f.put(mailbox.Trash, cur)
	}
}

func (f *fakeRemote) DeleteMail(ctx context.Context, m mailbox.Message, tab mailbox.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_mail"); err != nil {
		return err
	}
	f.trash(m, tab)
	return nil
}

func (f *fakeRemote) PermanentDelete(ctx context.Context, m mailbox.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("permanent_delete"); err != nil {
		return err
	}
	f.take(mailbox.Trash, m)
	return nil
}

func (f *fakeRemote) restore(m mailbox.Message) {
	if cur, ok := f.take(mailbox.Trash, m); ok {
		origin := cur.Origin()
		cur.OriginFolder = ""
		cur.Status = mailbox.StatusRead
		f.put(origin, cur)
	}
}

func (f *fakeRemote) Restore(ctx context.Context, m mailbox.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("restore"); err != nil {
		return err
	}
	f.restore(m)
	return nil
}

func (f *fakeRemote) DeleteDraft(ctx context.Context, draft mailbox.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_draft"); err != nil {
		return err
	}
	f.take(mailbox.Drafts, draft)
	return nil
}

func (f *fakeRemote) SaveDraft(ctx context.Context, out mailbox.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("save_draft"); err != nil {
		return err
	}
	f.put(mailbox.Drafts, mailbox.Message{
		From: "me@x.com", To: out.To, Subject: out.Subject, Body: out.Body, Attachment: out.Attachment,
		Status: mailbox.StatusDraft, ComposedAt: f.stamp(),
	})
	return nil
}

func (f *fakeRemote) Send(ctx context.Context, out mailbox.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("send"); err != nil {
		return err
	}
	f.put(mailbox.Sent, mailbox.Message{
		From: "me@x.com", To: out.To, Subject: out.Subject, Body: out.Body, Attachment: out.Attachment,
		Status: mailbox.StatusRead, SentAt: f.stamp(),
	})
	return nil
}

func (f *fakeRemote) Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("schedule"); err != nil {
		return err
	}
	f.put(mailbox.Scheduled, mailbox.Message{
		From: "me@x.com", To: out.To, Subject: out.Subject, Body: out.Body, Attachment: out.Attachment,
		Status: mailbox.StatusScheduled, ScheduledFor: at.UTC().Format(time.RFC3339),
	})
	return nil
}

func (f *fakeRemote) SaveTemplate(ctx context.Context, tpl mailbox.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("save_template"); err != nil {
		return err
	}
	f.templates = append(f.templates, tpl)
	return nil
}

func (f *fakeRemote) BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("bulk_action"); err != nil {
		return err
	}
	for _, m := range msgs {
		switch action {
		case mailbox.BulkDelete:
			f.trash(m, folder)
		case mailbox.BulkMarkRead:
			f.setStatus(folder, m, mailbox.StatusRead)
		case mailbox.BulkMarkUnread:
			f.setStatus(folder, m, mailbox.StatusUnread)
		case mailbox.BulkRestore:
			f.restore(m)
		}
	}
	return nil
}

func (f *fakeRemote) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("upload"); err != nil {
		return "", err
	}
	return "https://files.example.com/" + filename, nil
}

func (f *fakeRemote) Recipients(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("recipients"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.recipients...), nil
}

func (f *fakeRemote) Stats(ctx context.Context) (*mailbox.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("stats"); err != nil {
		return nil, err
	}
	stats := &mailbox.Stats{
		TotalReceived: len(f.folders[mailbox.Inbox]),
		TotalSent:     len(f.folders[mailbox.Sent]),
		DeletedCount:  len(f.folders[mailbox.Trash]),
		DraftCount:    len(f.folders[mailbox.Drafts]),
	}
	for _, m := range f.folders[mailbox.Inbox] {
		if m.IsUnread() {
			stats.UnreadCount++
		}
	}
	return stats, nil
}

func (f *fakeRemote) Storage(ctx context.Context) (*mailbox.Storage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("storage"); err != nil {
		return nil, err
	}
	return &mailbox.Storage{UsedMB: 12.5, TotalMB: 100, Percentage: 12.5, Status: "ok"}, nil
}

func (f *fakeRemote) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.call("logout")
}

// notifications records what the controller told the user.
type notifications struct {
	mu   sync.Mutex
	list []notification
}

type notification struct {
	Kind services.NotifyKind
	Text string
}

func (n *notifications) Notify(kind services.NotifyKind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, notification{Kind: kind, Text: text})
}

func (n *notifications) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.list) == 0 {
		return notification{}
	}
	return n.list[len(n.list)-1]
}

func (n *notifications) kinds() []services.NotifyKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]services.NotifyKind, len(n.list))
	for i, x := range n.list {
		out[i] = x.Kind
	}
	return out
}
