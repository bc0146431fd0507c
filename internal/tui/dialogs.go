package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/maildash/internal/config"
	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// openPicker shows a filterable list of items. Enter in the filter picks the
// first match; Enter in the list picks the highlighted one. onDelete, when
// set, is bound to the Delete key in the list.
func (a *App) openPicker(title string, items []string, footer string, onPick, onDelete func(string)) {
	input := tview.NewInputField().SetLabel("Filter: ").SetFieldWidth(0)
	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(false)

	var visible []string
	reload := func(filter string) {
		list.Clear()
		visible = filterItems(items, filter)
		for _, item := range visible {
			list.AddItem(tview.Escape(item), "", 0, nil)
		}
	}
	pick := func(item string) {
		a.closeModal(pageModal)
		onPick(item)
	}

	input.SetChangedFunc(func(text string) { reload(strings.TrimSpace(text)) })
	input.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyDown && list.GetItemCount() > 0 {
			a.SetFocus(list)
			return nil
		}
		return e
	})
	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEscape:
			a.closeModal(pageModal)
		case tcell.KeyEnter:
			if len(visible) > 0 {
				pick(visible[0])
			}
		}
	})
	list.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		if i >= 0 && i < len(visible) {
			pick(visible[i])
		}
	})
	list.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyUp && list.GetCurrentItem() == 0 {
			a.SetFocus(input)
			return nil
		}
		if e.Key() == tcell.KeyEscape {
			a.closeModal(pageModal)
			return nil
		}
		if e.Key() == tcell.KeyDelete && onDelete != nil {
			if i := list.GetCurrentItem(); i >= 0 && i < len(visible) {
				a.closeModal(pageModal)
				onDelete(visible[i])
			}
			return nil
		}
		return e
	})

	container := tview.NewFlex().SetDirection(tview.FlexRow)
	container.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)
	container.AddItem(input, 1, 0, true)
	container.AddItem(list, 0, 1, false)
	container.AddItem(tview.NewTextView().SetTextAlign(tview.AlignRight).SetText(footer), 1, 0, false)

	reload("")
	a.showModal(pageModal, container, 60, min(len(items), 12)+4)
	a.SetFocus(input)
}

func filterItems(items []string, filter string) []string {
	filter = strings.ToLower(filter)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if filter == "" || strings.Contains(strings.ToLower(item), filter) {
			out = append(out, item)
		}
	}
	return out
}

// syncConfirmation shows the pending confirmation request as a modal and
// hides it once the request is gone.
func (a *App) syncConfirmation(s dashboard.Snapshot) {
	if s.Confirmation == nil {
		if a.confirmID != "" {
			a.confirmID = ""
			a.closeModal(pageConfirm)
		}
		return
	}
	if s.Confirmation.ID == a.confirmID {
		return
	}
	a.confirmID = s.Confirmation.ID

	modal := tview.NewModal().
		SetText(s.Confirmation.Message).
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			if label == "Delete" {
				a.dispatch("confirm", a.ctl.Confirm)
				return
			}
			a.ctl.Cancel()
		})
	a.Pages.RemovePage(pageConfirm)
	a.Pages.AddPage(pageConfirm, modal, true, true)
	a.mu.Lock()
	a.modalOpen = true
	a.mu.Unlock()
	a.SetFocus(modal)
}

// openSearchInput shows the search bar. An empty query clears the search.
func (a *App) openSearchInput() {
	s := a.current()
	input := tview.NewInputField().SetLabel(fmt.Sprintf("Search %s: ", s.Scope().Title())).SetFieldWidth(0)
	if s.Search.Active {
		input.SetText(s.Search.Query)
	}
	input.SetBorder(true).SetTitle(" Search ").SetTitleAlign(tview.AlignLeft)
	input.SetDoneFunc(func(key tcell.Key) {
		query := strings.TrimSpace(input.GetText())
		a.closeModal(pageModal)
		if key != tcell.KeyEnter {
			return
		}
		if query == "" {
			a.ctl.ClearSearch()
			return
		}
		a.dispatch("search", func(ctx context.Context) error {
			return a.ctl.Search(ctx, query)
		})
	})
	a.showModal(pageModal, input, 70, 3)
}

// openBulkMenu offers the bulk actions allowed for the checked set.
func (a *App) openBulkMenu() {
	s := a.current()
	if len(s.Checked) == 0 {
		a.notify(services.NotifyWarning, "No messages checked")
		return
	}
	items := make([]string, 0, len(s.BulkActions))
	for _, act := range s.BulkActions {
		items = append(items, string(act))
	}
	title := fmt.Sprintf(" Apply to %d checked ", len(s.Checked))
	a.openPicker(title, items, "Enter to apply | Esc to back", func(item string) {
		action := mailbox.BulkAction(item)
		a.dispatch("bulk "+item, func(ctx context.Context) error {
			return a.ctl.Bulk(ctx, action)
		})
	}, nil)
}

// openSaveSearchForm names and stores the active search.
func (a *App) openSaveSearchForm() {
	s := a.current()
	if !s.Search.Active {
		a.notify(services.NotifyWarning, "Run a search before saving it")
		return
	}
	input := tview.NewInputField().SetLabel("Name: ").SetFieldWidth(0)
	input.SetBorder(true).
		SetTitle(fmt.Sprintf(" Save search %q ", s.Search.Query)).
		SetTitleAlign(tview.AlignLeft)
	input.SetDoneFunc(func(key tcell.Key) {
		name := strings.TrimSpace(input.GetText())
		a.closeModal(pageModal)
		if key != tcell.KeyEnter {
			return
		}
		a.dispatch("save search", func(ctx context.Context) error {
			_, err := a.ctl.SaveSearch(ctx, name)
			return err
		})
	})
	a.showModal(pageModal, input, 60, 3)
}

// openSavedSearches lists stored searches; Enter runs one, Delete removes it.
func (a *App) openSavedSearches() {
	a.dispatch("saved searches", func(ctx context.Context) error {
		saved, err := a.ctl.SavedSearches(ctx)
		if err != nil {
			return err
		}
		if len(saved) == 0 {
			a.notify(services.NotifyInfo, "No saved searches")
			return nil
		}
		items := make([]string, 0, len(saved))
		byLabel := make(map[string]string, len(saved))
		for _, q := range saved {
			label := savedSearchLabel(q)
			items = append(items, label)
			byLabel[label] = q.Name
		}
		a.QueueUpdateDraw(func() {
			run := func(label string) {
				name := byLabel[label]
				a.dispatch("run saved search", func(ctx context.Context) error {
					return a.ctl.RunSavedSearch(ctx, name)
				})
			}
			remove := func(label string) {
				name := byLabel[label]
				a.dispatch("delete saved search", func(ctx context.Context) error {
					if err := a.ctl.DeleteSavedSearch(ctx, name); err != nil {
						return err
					}
					a.notify(services.NotifySuccess, fmt.Sprintf("Saved search %q deleted", name))
					return nil
				})
			}
			a.openPicker(" Saved searches ", items, "Enter to run | Del to delete | Esc to back", run, remove)
		})
		return nil
	})
}

func savedSearchLabel(q *services.SavedQueryInfo) string {
	return fmt.Sprintf("%s: %q in %s (used %d)", q.Name, q.Query, q.Folder.Title(), q.UseCount)
}

// openStats loads account statistics and shows them in a panel.
func (a *App) openStats() {
	a.dispatch("stats", func(ctx context.Context) error {
		if err := a.ctl.LoadStats(ctx); err != nil {
			return err
		}
		s := a.ctl.Snapshot()
		if s.Stats == nil {
			return nil
		}
		a.QueueUpdateDraw(func() {
			view := tview.NewTextView().SetText(statsText(a.ctl.Account(), s.Stats, s.Storage))
			view.SetBorder(true).SetTitle(" Account statistics ").SetTitleAlign(tview.AlignLeft)
			view.SetDoneFunc(func(tcell.Key) { a.closeModal(pageModal) })
			a.showModal(pageModal, view, 50, 14)
		})
		return nil
	})
}

func statsText(account string, st *mailbox.Stats, storage *mailbox.Storage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account:   %s\n\n", account)
	fmt.Fprintf(&b, "Received:  %d\n", st.TotalReceived)
	fmt.Fprintf(&b, "Sent:      %d\n", st.TotalSent)
	fmt.Fprintf(&b, "Unread:    %d\n", st.UnreadCount)
	fmt.Fprintf(&b, "Deleted:   %d\n", st.DeletedCount)
	fmt.Fprintf(&b, "Drafts:    %d\n", st.DraftCount)
	if storage != nil {
		fmt.Fprintf(&b, "\nStorage:   %.1f / %.1f MB (%.0f%%)", storage.UsedMB, storage.TotalMB, storage.Percentage)
		if storage.Status != "" {
			fmt.Fprintf(&b, " %s", storage.Status)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nEsc to close")
	return b.String()
}

// openThemePicker lists the installed themes and applies the one picked.
func (a *App) openThemePicker() {
	names, err := a.themes.ListAvailableThemes(a.ctx)
	if err != nil {
		a.notify(services.NotifyError, fmt.Sprintf("Themes not available: %v", err))
		return
	}
	current := a.themes.CurrentTheme()
	title := fmt.Sprintf(" Theme (current: %s) ", current)
	a.openPicker(title, names, "Enter to apply | Esc to back", func(name string) {
		if err := a.themes.ApplyTheme(a.ctx, name); err != nil {
			a.notify(services.NotifyError, err.Error())
			return
		}
		a.Config.Layout.CurrentTheme = name
		a.applySnapshot(a.current())
		a.notify(services.NotifySuccess, fmt.Sprintf("Theme %s applied", name))
	}, nil)
}

// toggleHelp shows or hides the key reference.
func (a *App) toggleHelp() {
	if a.showHelp {
		a.showHelp = false
		a.closeModal(pageModal)
		return
	}
	a.showHelp = true
	view := tview.NewTextView().SetText(helpText(a.Keys))
	view.SetBorder(true).SetTitle(" Keys ").SetTitleAlign(tview.AlignLeft)
	view.SetDoneFunc(func(tcell.Key) {
		a.showHelp = false
		a.closeModal(pageModal)
	})
	a.showModal(pageModal, view, 56, 30)
}

func helpText(k config.KeyBindings) string {
	rows := [][2]string{
		{"1-6", "switch folder"},
		{k.PrevFolder + " " + k.NextFolder, "previous / next folder"},
		{"Enter", "open message, edit draft or use template"},
		{k.Compose, "compose"},
		{k.Reply, "reply to the open message"},
		{k.Refresh, "refresh"},
		{k.Search, "search the current folder"},
		{k.SaveSearch, "save the active search"},
		{k.SavedSearches, "saved searches"},
		{k.ToggleRead, "toggle read"},
		{k.Trash, "delete (trash, cancel, discard draft or delete forever)"},
		{k.Restore, "restore from trash"},
		{k.Check, "check message"},
		{k.CheckAll, "check all / none"},
		{k.BulkMenu, "bulk actions on checked"},
		{k.Undo, "undo"},
		{k.Templates, "save a template"},
		{k.Stats, "account statistics"},
		{k.Theme, "switch theme"},
		{"Esc", "close message or clear search"},
		{k.Help, "toggle this help"},
		{k.Quit, "quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, " %-8s %s\n", r[0], r[1])
	}
	return b.String()
}
