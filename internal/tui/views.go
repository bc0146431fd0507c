package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/render"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// applySnapshot redraws every view from s. Runs on the UI goroutine.
func (a *App) applySnapshot(s dashboard.Snapshot) {
	prev, hadPrev := a.selectedMessage()

	a.mu.Lock()
	a.snapshot = s
	a.rows = s.Messages
	a.templates = s.Templates
	a.mu.Unlock()

	a.updateFolders(s)
	a.updateList(s, prev, hadPrev)
	a.updateDetail(s)
	a.syncCompose(s)
	a.syncConfirmation(s)
	a.errorHandler.Refresh()
}

func (a *App) updateFolders(s dashboard.Snapshot) {
	folders, ok := a.views["folders"].(*tview.List)
	if !ok {
		return
	}
	for i, f := range mailbox.Folders {
		unread := 0
		if f == mailbox.Inbox {
			unread = s.Unread
		}
		folders.SetItemText(i, folderLabel(f, s.Counts[f], unread, f == s.ActiveFolder), "")
	}
}

func (a *App) updateList(s dashboard.Snapshot, prev mailbox.Message, hadPrev bool) {
	table, ok := a.views["list"].(*tview.Table)
	if !ok {
		return
	}
	table.Clear()
	table.SetTitle(tview.Escape(listTitle(s)))

	width := a.listWidth(table)
	if s.ActiveFolder == mailbox.Templates && !s.Search.Active {
		for i, tpl := range s.Templates {
			line := fmt.Sprintf("%-20s | %s", tpl.Name, tpl.Subject)
			table.SetCell(i, 0, tview.NewTableCell(tview.Escape(line)).SetExpansion(1))
		}
		if len(s.Templates) == 0 {
			table.SetCell(0, 0, tview.NewTableCell("No templates yet").SetSelectable(false))
		}
		return
	}

	now := a.now()
	selectRow := 0
	for i, m := range s.Messages {
		line, color := a.emailRenderer.FormatEmailList(m, s.IsChecked(m), width, now)
		// rows start with "[x]" which would otherwise parse as a color tag
		cell := tview.NewTableCell(tview.Escape(line)).SetTextColor(color).SetExpansion(1)
		if m.IsUnread() {
			cell.SetAttributes(tcell.AttrBold)
		}
		table.SetCell(i, 0, cell)
		if hadPrev && m.Identity() == prev.Identity() {
			selectRow = i
		}
	}
	if len(s.Messages) == 0 {
		table.SetCell(0, 0, tview.NewTableCell(tview.Escape(emptyListText(s))).SetSelectable(false))
		return
	}
	table.Select(selectRow, 0)
}

func (a *App) listWidth(table *tview.Table) int {
	_, _, w, _ := table.GetInnerRect()
	if w <= 0 {
		return 100
	}
	return w
}

func (a *App) updateDetail(s dashboard.Snapshot) {
	header, _ := a.views["header"].(*tview.TextView)
	text, _ := a.views["text"].(*tview.TextView)
	if header == nil || text == nil {
		return
	}
	if s.Open == nil {
		state := stateReady
		if len(s.Messages) == 0 && (s.ActiveFolder != mailbox.Templates || len(s.Templates) == 0) {
			state = stateEmpty
		}
		header.SetText("")
		text.SetText(welcomeText(a.ctl.Account(), state, a.Keys))
		return
	}
	header.SetText(a.emailRenderer.FormatHeaderPlain(*s.Open))
	text.SetText(render.FormatBody(*s.Open, render.BodyOptions{
		WrapWidth:     a.Config.UI.WrapWidth,
		CollapseLinks: true,
	}))
	text.ScrollToBeginning()
}

// statusBaseline is the status bar text when no notification is showing.
func (a *App) statusBaseline() string {
	account := ""
	if a.ctl != nil {
		account = a.ctl.Account()
	}
	return statusLine(account, a.current(), a.Keys.Help)
}

func folderLabel(f mailbox.Folder, count, unread int, active bool) string {
	label := fmt.Sprintf("%s (%d)", f.Title(), count)
	if unread > 0 {
		label += fmt.Sprintf(" %d new", unread)
	}
	if active {
		label = "> " + label
	}
	return label
}

func listTitle(s dashboard.Snapshot) string {
	var b strings.Builder
	b.WriteString(" ")
	if s.Search.Active {
		fmt.Fprintf(&b, "Search %q in %s (%d)", s.Search.Query, s.Search.Scope.Title(), len(s.Messages))
	} else if s.ActiveFolder == mailbox.Templates {
		fmt.Fprintf(&b, "Templates (%d)", len(s.Templates))
	} else {
		fmt.Fprintf(&b, "%s (%d)", s.ActiveFolder.Title(), len(s.Messages))
	}
	if n := len(s.Checked); n > 0 {
		fmt.Fprintf(&b, " | %d checked", n)
	}
	b.WriteString(" ")
	return b.String()
}

func emptyListText(s dashboard.Snapshot) string {
	if s.Search.Active {
		return fmt.Sprintf("No messages match %q", s.Search.Query)
	}
	return fmt.Sprintf("%s is empty", s.ActiveFolder.Title())
}

func statusLine(account string, s dashboard.Snapshot, helpKey string) string {
	parts := []string{"maildash"}
	if account != "" {
		parts = append(parts, account)
	}
	if s.Unread > 0 {
		parts = append(parts, fmt.Sprintf("%d unread", s.Unread))
	}
	if len(s.Checked) > 0 {
		acts := make([]string, 0, len(s.BulkActions))
		for _, act := range s.BulkActions {
			acts = append(acts, string(act))
		}
		parts = append(parts, fmt.Sprintf("%d checked: %s", len(s.Checked), strings.Join(acts, "/")))
	}
	if s.CanUndo {
		parts = append(parts, "undo: "+s.UndoDescription)
	}
	if s.Storage != nil {
		parts = append(parts, fmt.Sprintf("storage %.0f%%", s.Storage.Percentage))
	}
	if helpKey != "" {
		parts = append(parts, helpKey+" help")
	}
	return strings.Join(parts, " | ")
}
