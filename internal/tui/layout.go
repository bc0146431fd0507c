package tui

import (
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// initViews builds the main layout: folders on the left, the message list
// above the detail pane on the right and a status bar at the bottom.
func (a *App) initViews() {
	folders := tview.NewList().ShowSecondaryText(false)
	folders.SetBorder(true).SetTitle(" Folders ").SetTitleAlign(tview.AlignLeft)
	for i, f := range mailbox.Folders {
		folder := f
		folders.AddItem(f.Title(), "", rune('1'+i), func() {
			a.switchFolder(folder)
		})
	}

	list := tview.NewTable().SetSelectable(true, false)
	list.SetBorder(true).
		SetBorderAttributes(tcell.AttrBold).
		SetTitle(" Inbox ").
		SetTitleAlign(tview.AlignCenter)
	list.SetSelectedFunc(func(row, _ int) { a.openSelected() })

	header := tview.NewTextView().SetWrap(true)
	header.SetBorder(false)

	text := tview.NewTextView().SetWrap(true).SetScrollable(true)
	text.SetBorder(false)

	detail := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 5, 0, false).
		AddItem(text, 0, 1, false)
	detail.SetBorder(true).SetTitle(" Message ").SetTitleAlign(tview.AlignLeft)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(list, 0, 3, true).
		AddItem(detail, 0, 2, false)

	body := tview.NewFlex().
		AddItem(folders, 22, 0, false).
		AddItem(right, 0, 1, true)

	status := tview.NewTextView().SetTextAlign(tview.AlignLeft)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(status, 1, 0, false)

	a.views["folders"] = folders
	a.views["list"] = list
	a.views["header"] = header
	a.views["text"] = text
	a.views["detail"] = detail
	a.views["status"] = status
	a.views["main"] = main

	a.Pages.AddPage(pageMain, main, true, true)
}

func (a *App) statusView() *tview.TextView {
	v, _ := a.views["status"].(*tview.TextView)
	return v
}

// showModal centers p over the main page and focuses it.
func (a *App) showModal(name string, p tview.Primitive, width, height int) {
	grid := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)

	a.mu.Lock()
	a.modalOpen = true
	a.mu.Unlock()

	a.Pages.RemovePage(name)
	a.Pages.AddPage(name, grid, true, true)
	a.SetFocus(p)
}

// closeModal removes a modal page and gives focus back to the list.
func (a *App) closeModal(name string) {
	a.Pages.RemovePage(name)
	a.mu.Lock()
	a.modalOpen = a.Pages.HasPage(pageModal) || a.Pages.HasPage(pageConfirm)
	a.mu.Unlock()
	if a.Pages.HasPage(pageCompose) && a.compose != nil {
		a.compose.focus()
		return
	}
	a.SetFocus(a.views["list"])
}
