package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// bindKeys installs the global shortcuts. Keys go to the focused widget
// untouched while a form, modal or the compose page has focus.
func (a *App) bindKeys() {
	a.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		a.mu.RLock()
		busy := a.composeOpen || a.modalOpen
		a.mu.RUnlock()
		if busy || a.ctl == nil {
			return event
		}
		switch a.GetFocus().(type) {
		case *tview.InputField, *tview.Form, *tview.Modal:
			return event
		}
		if a.handleKey(event) {
			return nil
		}
		return event
	})
}

// handleKey runs the action bound to event and reports whether it was used.
func (a *App) handleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyEscape:
		a.escape()
		return true
	case tcell.KeyTab:
		a.toggleFocus()
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	r := event.Rune()
	if r >= '1' && r < '1'+rune(len(mailbox.Folders)) {
		a.switchFolder(mailbox.Folders[r-'1'])
		return true
	}

	switch string(r) {
	case a.Keys.Quit:
		a.Quit()
	case a.Keys.Help:
		a.toggleHelp()
	case a.Keys.NextFolder:
		a.stepFolder(1)
	case a.Keys.PrevFolder:
		a.stepFolder(-1)
	case a.Keys.Refresh:
		a.dispatch("refresh", func(ctx context.Context) error {
			a.ctl.Refresh(ctx)
			return nil
		})
	case a.Keys.Compose:
		a.startCompose()
	case a.Keys.Reply:
		a.reply()
	case a.Keys.Search:
		a.openSearchInput()
	case a.Keys.SaveSearch:
		a.openSaveSearchForm()
	case a.Keys.SavedSearches:
		a.openSavedSearches()
	case a.Keys.ToggleRead:
		a.onSelected("toggle read", a.ctl.ToggleRead)
	case a.Keys.Trash:
		a.deleteSelected()
	case a.Keys.Restore:
		a.onSelected("restore", a.ctl.Restore)
	case a.Keys.Check:
		if m, ok := a.selectedMessage(); ok {
			_ = a.ctl.ToggleCheck(m)
			a.moveCursor(1)
		}
	case a.Keys.CheckAll:
		a.ctl.ToggleAll()
	case a.Keys.BulkMenu:
		a.openBulkMenu()
	case a.Keys.Undo:
		a.dispatch("undo", a.ctl.Undo)
	case a.Keys.Templates:
		a.openSaveTemplateForm()
	case a.Keys.Stats:
		a.openStats()
	case a.Keys.Theme:
		a.openThemePicker()
	default:
		return false
	}
	return true
}

func (a *App) switchFolder(f mailbox.Folder) {
	a.dispatch("switch folder", func(ctx context.Context) error {
		return a.ctl.SwitchFolder(ctx, f)
	})
}

// stepFolder moves to the next (step 1) or previous (step -1) folder.
func (a *App) stepFolder(step int) {
	a.switchFolder(nextFolder(a.current().ActiveFolder, step))
}

func nextFolder(cur mailbox.Folder, step int) mailbox.Folder {
	n := len(mailbox.Folders)
	for i, f := range mailbox.Folders {
		if f == cur {
			return mailbox.Folders[((i+step)%n+n)%n]
		}
	}
	return mailbox.Inbox
}

// escape closes the open message first, then clears an active search.
func (a *App) escape() {
	s := a.current()
	switch {
	case s.Open != nil:
		a.ctl.Close()
	case s.Search.Active:
		a.ctl.ClearSearch()
	case len(s.Checked) > 0:
		a.ctl.ClearSelection()
	}
}

func (a *App) toggleFocus() {
	if a.GetFocus() == a.views["folders"] {
		a.SetFocus(a.views["list"])
		return
	}
	a.SetFocus(a.views["folders"])
}

func (a *App) moveCursor(delta int) {
	table, ok := a.views["list"].(*tview.Table)
	if !ok {
		return
	}
	row, _ := table.GetSelection()
	if next := row + delta; next >= 0 && next < table.GetRowCount() {
		table.Select(next, 0)
	}
}

// onSelected runs a single-message action on the row under the cursor.
func (a *App) onSelected(op string, fn func(ctx context.Context, m mailbox.Message) error) {
	m, ok := a.selectedMessage()
	if !ok {
		return
	}
	a.dispatch(op, func(ctx context.Context) error { return fn(ctx, m) })
}

// openSelected is the Enter action: drafts open in the editor, templates start
// a new message, anything else is opened for reading.
func (a *App) openSelected() {
	s := a.current()
	if s.ActiveFolder == mailbox.Templates && !s.Search.Active {
		if tpl, ok := a.selectedTemplate(); ok {
			a.composeFromTemplate(tpl.Name)
		}
		return
	}
	m, ok := a.selectedMessage()
	if !ok {
		return
	}
	if s.Scope() == mailbox.Drafts {
		a.startEditDraft(m)
		return
	}
	a.dispatch("open", func(ctx context.Context) error { return a.ctl.Open(ctx, m) })
}

// deleteSelected routes the delete key by folder; trash asks for confirmation.
func (a *App) deleteSelected() {
	m, ok := a.selectedMessage()
	if !ok {
		return
	}
	if a.current().Scope() == mailbox.Trash {
		_, _ = a.ctl.RequestPermanentDelete(m)
		return
	}
	a.dispatch("delete", func(ctx context.Context) error { return a.ctl.Delete(ctx, m) })
}

func (a *App) composeFromTemplate(name string) {
	if err := a.ctl.ComposeNew(); err != nil {
		return
	}
	if err := a.ctl.ApplyTemplate(name); err != nil {
		return
	}
	if comp := a.ctl.Snapshot().Compose; comp != nil {
		a.openCompose(comp)
	}
}

// reply opens a compose session addressed to the counterpart of the open
// message, or of the selected one.
func (a *App) reply() {
	s := a.current()
	var m mailbox.Message
	if s.Open != nil {
		m = *s.Open
	} else if sel, ok := a.selectedMessage(); ok {
		m = sel
	} else {
		return
	}
	to, subject, body := replyFields(m)
	if err := a.ctl.ComposeNew(); err != nil {
		return
	}
	if err := a.ctl.UpdateCompose(to, subject, body); err != nil {
		return
	}
	if comp := a.ctl.Snapshot().Compose; comp != nil {
		a.openCompose(comp)
	}
}

func replyFields(m mailbox.Message) (to, subject, body string) {
	to = m.From
	if m.Origin() != mailbox.Inbox {
		to = m.To
	}
	subject = m.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n\nOn %s, %s wrote:\n", m.Date(), m.From)
	for _, line := range strings.Split(strings.TrimRight(m.Body, "\n"), "\n") {
		b.WriteString("> " + line + "\n")
	}
	return to, subject, b.String()
}
