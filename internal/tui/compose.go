package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const composeHint = "Tab next field | Ctrl+J send | Ctrl+D save draft | Ctrl+L schedule | Ctrl+T template | Ctrl+U upload | Ctrl+X drop attachment | Esc discard"

// composeView is the compose page. Field edits are pushed to the controller
// as they happen; the view only reloads its fields when a different session
// is opened or a template is applied.
type composeView struct {
	app  *App
	root *tview.Flex

	to          *tview.InputField
	subject     *tview.InputField
	attach      *tview.InputField
	suggestions *tview.List
	body        *bodyEditor
	info        *tview.TextView

	focusables []tview.Primitive
	focusIndex int

	sessionID string
	loading   bool
}

func newComposeView(a *App) *composeView {
	v := &composeView{
		app:         a,
		root:        tview.NewFlex().SetDirection(tview.FlexRow),
		to:          tview.NewInputField().SetLabel("To:      ").SetFieldWidth(0),
		subject:     tview.NewInputField().SetLabel("Subject: ").SetFieldWidth(0),
		attach:      tview.NewInputField().SetLabel("Attach:  ").SetFieldWidth(0),
		suggestions: tview.NewList().ShowSecondaryText(false),
		body:        newBodyEditor(),
		info:        tview.NewTextView(),
	}
	v.body.SetBorder(true).SetTitle(" Body ").SetTitleAlign(tview.AlignLeft)

	hint := tview.NewTextView().SetTextAlign(tview.AlignRight).SetText(composeHint)

	v.root.AddItem(v.to, 1, 0, true).
		AddItem(v.suggestions, 0, 0, false).
		AddItem(v.subject, 1, 0, false).
		AddItem(v.attach, 1, 0, false).
		AddItem(v.info, 1, 0, false).
		AddItem(v.body, 0, 1, false).
		AddItem(hint, 1, 0, false)
	v.root.SetBorder(true).SetTitle(" Compose ").SetTitleAlign(tview.AlignLeft)

	v.focusables = []tview.Primitive{v.to, v.subject, v.attach, v.body}
	v.wire()
	return v
}

func (v *composeView) wire() {
	push := func(string) { v.pushFields() }
	v.to.SetChangedFunc(func(text string) {
		v.pushFields()
		v.suggest(text)
	})
	v.subject.SetChangedFunc(push)
	v.body.SetChangedFunc(push)

	v.to.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyDown && v.suggestions.GetItemCount() > 0 {
			v.app.SetFocus(v.suggestions)
			return nil
		}
		return e
	})
	v.suggestions.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		if e.Key() == tcell.KeyUp && v.suggestions.GetCurrentItem() == 0 {
			v.app.SetFocus(v.to)
			return nil
		}
		return e
	})
	v.suggestions.SetSelectedFunc(func(_ int, addr, _ string, _ rune) {
		v.to.SetText(completeRecipient(v.to.GetText(), addr))
		v.showSuggestions(nil)
		v.app.SetFocus(v.to)
	})

	v.attach.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		path := strings.TrimSpace(v.attach.GetText())
		if path == "" {
			return
		}
		if err := v.app.ctl.ChooseAttachment(path); err == nil {
			v.attach.SetText("")
		}
	})

	v.root.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		switch e.Key() {
		case tcell.KeyEscape:
			if v.suggestions.GetItemCount() > 0 {
				v.showSuggestions(nil)
				v.app.SetFocus(v.to)
				return nil
			}
			_ = v.app.ctl.DiscardCompose()
			return nil
		case tcell.KeyTab:
			v.cycle(1)
			return nil
		case tcell.KeyBacktab:
			v.cycle(-1)
			return nil
		case tcell.KeyCtrlJ:
			v.submit("send", v.app.ctl.Send)
			return nil
		case tcell.KeyCtrlD:
			v.submit("save draft", v.app.ctl.SaveDraft)
			return nil
		case tcell.KeyCtrlL:
			v.app.openScheduleForm()
			return nil
		case tcell.KeyCtrlT:
			v.app.openTemplatePicker()
			return nil
		case tcell.KeyCtrlU:
			v.submit("upload", v.app.ctl.UploadAttachment)
			return nil
		case tcell.KeyCtrlX:
			_ = v.app.ctl.ClearAttachment()
			return nil
		}
		return e
	})
}

// pushFields hands the edited fields to the controller.
func (v *composeView) pushFields() {
	if v.loading || v.app.ctl == nil {
		return
	}
	_ = v.app.ctl.UpdateCompose(v.to.GetText(), v.subject.GetText(), v.body.GetText())
}

func (v *composeView) submit(op string, fn func(ctx context.Context) error) {
	v.pushFields()
	v.app.dispatch(op, fn)
}

func (v *composeView) suggest(text string) {
	query := lastRecipient(text)
	if len(query) < 2 {
		v.showSuggestions(nil)
		return
	}
	v.app.dispatch("suggest", func(ctx context.Context) error {
		out, err := v.app.ctl.SuggestRecipients(ctx, query)
		if err != nil {
			return err
		}
		v.app.QueueUpdateDraw(func() {
			// stale answer for an older prefix
			if lastRecipient(v.to.GetText()) != query {
				return
			}
			v.showSuggestions(out)
		})
		return nil
	})
}

func (v *composeView) showSuggestions(addrs []string) {
	v.suggestions.Clear()
	for _, addr := range addrs {
		v.suggestions.AddItem(addr, "", 0, nil)
	}
	v.root.ResizeItem(v.suggestions, min(len(addrs), 5), 0)
}

func (v *composeView) cycle(step int) {
	n := len(v.focusables)
	v.focusIndex = (v.focusIndex + step + n) % n
	v.focus()
}

func (v *composeView) focus() {
	v.app.SetFocus(v.focusables[v.focusIndex])
}

// load fills the fields from comp without pushing them back.
func (v *composeView) load(comp *services.Composition) {
	v.loading = true
	defer func() { v.loading = false }()

	v.sessionID = comp.ID
	v.to.SetText(comp.To)
	v.subject.SetText(comp.Subject)
	v.body.SetText(comp.Body)
	v.attach.SetText("")
	v.showSuggestions(nil)
}

// refresh updates the parts of the page owned by the controller.
func (v *composeView) refresh(comp *services.Composition) {
	title := " Compose "
	if comp.EditingDraft != nil {
		title = " Edit draft "
	}
	if comp.State != services.ComposeDrafting {
		title += fmt.Sprintf("(%s...) ", strings.ReplaceAll(string(comp.State), "_", " "))
	}
	v.root.SetTitle(title)
	v.info.SetText(attachmentLine(comp))
}

// syncCompose opens, refreshes or closes the compose page to match s.
func (a *App) syncCompose(s dashboard.Snapshot) {
	if s.Compose == nil {
		if a.composeOpen {
			a.closeCompose()
		}
		return
	}
	if !a.composeOpen {
		a.openCompose(s.Compose)
		return
	}
	if s.Compose.ID != a.compose.sessionID {
		a.compose.load(s.Compose)
	}
	a.compose.refresh(s.Compose)
}

func (a *App) openCompose(comp *services.Composition) {
	if a.compose == nil {
		a.compose = newComposeView(a)
	}
	a.compose.load(comp)
	a.compose.refresh(comp)
	a.compose.focusIndex = 0
	if comp.To != "" {
		a.compose.focusIndex = 3
	}

	a.mu.Lock()
	a.composeOpen = true
	a.mu.Unlock()

	a.Pages.RemovePage(pageCompose)
	a.Pages.AddPage(pageCompose, a.compose.root, true, true)
	a.compose.focus()
}

func (a *App) closeCompose() {
	a.mu.Lock()
	a.composeOpen = false
	a.mu.Unlock()

	a.Pages.RemovePage(pageCompose)
	if a.compose != nil {
		a.compose.sessionID = ""
	}
	a.SetFocus(a.views["list"])
}

// startCompose opens a blank session; the next snapshot shows the page.
func (a *App) startCompose() {
	_ = a.ctl.ComposeNew()
}

func (a *App) startEditDraft(m mailbox.Message) {
	_ = a.ctl.EditDraft(m)
}

// applyTemplate overwrites the session's subject and body and reloads them.
func (a *App) applyTemplate(name string) {
	if err := a.ctl.ApplyTemplate(name); err != nil {
		return
	}
	if comp := a.ctl.Snapshot().Compose; comp != nil && a.compose != nil {
		a.compose.load(comp)
		a.compose.refresh(comp)
	}
}

// openScheduleForm asks for a local date and time to schedule the session for.
func (a *App) openScheduleForm() {
	if a.compose != nil {
		a.compose.pushFields()
	}
	next := a.now().Add(time.Hour)
	form := tview.NewForm().
		AddInputField("Date (YYYY-MM-DD)", next.Format("2006-01-02"), 12, nil, nil).
		AddInputField("Time (HH:MM)", next.Format("15:04"), 6, nil, nil)
	form.AddButton("Schedule", func() {
		date := form.GetFormItem(0).(*tview.InputField).GetText()
		clock := form.GetFormItem(1).(*tview.InputField).GetText()
		a.closeModal(pageModal)
		a.dispatch("schedule", func(ctx context.Context) error {
			return a.ctl.Schedule(ctx, strings.TrimSpace(date), strings.TrimSpace(clock))
		})
	})
	form.AddButton("Cancel", func() { a.closeModal(pageModal) })
	form.SetCancelFunc(func() { a.closeModal(pageModal) })
	form.SetBorder(true).SetTitle(" Schedule send ").SetTitleAlign(tview.AlignLeft)
	a.showModal(pageModal, form, 44, 9)
}

func (a *App) openTemplatePicker() {
	a.mu.RLock()
	templates := templateNames(a.templates)
	a.mu.RUnlock()
	if len(templates) == 0 {
		a.notify(services.NotifyWarning, "No templates saved yet")
		return
	}
	a.openPicker(" Apply template ", templates, "Enter to apply | Esc to back", func(name string) {
		a.applyTemplate(name)
	}, nil)
}

// openSaveTemplateForm stores a new template, prefilled from the compose
// session when one is open.
func (a *App) openSaveTemplateForm() {
	subject, body := "", ""
	if s := a.current(); s.Compose != nil {
		subject, body = s.Compose.Subject, s.Compose.Body
	}
	form := tview.NewForm().
		AddInputField("Name", "", 30, nil, nil).
		AddInputField("Subject", subject, 40, nil, nil).
		AddInputField("Body", body, 40, nil, nil)
	form.AddButton("Save", func() {
		name := form.GetFormItem(0).(*tview.InputField).GetText()
		subj := form.GetFormItem(1).(*tview.InputField).GetText()
		text := form.GetFormItem(2).(*tview.InputField).GetText()
		a.closeModal(pageModal)
		a.dispatch("save template", func(ctx context.Context) error {
			return a.ctl.SaveTemplate(ctx, name, subj, text)
		})
	})
	form.AddButton("Cancel", func() { a.closeModal(pageModal) })
	form.SetCancelFunc(func() { a.closeModal(pageModal) })
	form.SetBorder(true).SetTitle(" Save template ").SetTitleAlign(tview.AlignLeft)
	a.showModal(pageModal, form, 60, 11)
}

// lastRecipient is the address being typed at the end of a recipient list.
func lastRecipient(to string) string {
	if i := strings.LastIndex(to, ","); i >= 0 {
		to = to[i+1:]
	}
	return strings.TrimSpace(to)
}

// completeRecipient replaces the address being typed with addr.
func completeRecipient(to, addr string) string {
	prefix := ""
	if i := strings.LastIndex(to, ","); i >= 0 {
		prefix = strings.TrimRight(to[:i+1], " ") + " "
	}
	return prefix + addr + ", "
}

func attachmentLine(comp *services.Composition) string {
	switch {
	case comp.Attachment != "" && comp.PendingFile != "":
		return fmt.Sprintf("Attached: %s | chosen: %s (Ctrl+U to upload)", comp.Attachment, comp.PendingFile)
	case comp.Attachment != "":
		return "Attached: " + comp.Attachment
	case comp.PendingFile != "":
		return fmt.Sprintf("Chosen: %s (Ctrl+U to upload)", comp.PendingFile)
	}
	return "No attachment (type a path in Attach and press Enter)"
}

func templateNames(templates []mailbox.Template) []string {
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, t.Name)
	}
	return out
}
