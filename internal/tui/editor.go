package tui

import (
	"strings"
	"unicode"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const cursorGlyph = "█"

// textBuffer is a line based edit buffer with a cursor. Columns count runes.
type textBuffer struct {
	lines [][]rune
	line  int
	col   int
}

func newTextBuffer(text string) *textBuffer {
	b := &textBuffer{}
	b.SetText(text)
	return b
}

// SetText replaces the content and moves the cursor to the end.
func (b *textBuffer) SetText(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	b.lines = make([][]rune, len(parts))
	for i, p := range parts {
		b.lines[i] = []rune(p)
	}
	b.line = len(b.lines) - 1
	b.col = len(b.lines[b.line])
}

func (b *textBuffer) Text() string {
	parts := make([]string, len(b.lines))
	for i, l := range b.lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}

func (b *textBuffer) Cursor() (int, int) { return b.line, b.col }

func (b *textBuffer) Insert(r rune) {
	cur := b.lines[b.line]
	next := make([]rune, 0, len(cur)+1)
	next = append(next, cur[:b.col]...)
	next = append(next, r)
	next = append(next, cur[b.col:]...)
	b.lines[b.line] = next
	b.col++
}

func (b *textBuffer) Newline() {
	cur := b.lines[b.line]
	left := append([]rune(nil), cur[:b.col]...)
	right := append([]rune(nil), cur[b.col:]...)

	lines := make([][]rune, 0, len(b.lines)+1)
	lines = append(lines, b.lines[:b.line]...)
	lines = append(lines, left, right)
	lines = append(lines, b.lines[b.line+1:]...)
	b.lines = lines
	b.line++
	b.col = 0
}

// Backspace removes the rune before the cursor, joining lines at column 0.
func (b *textBuffer) Backspace() {
	switch {
	case b.col > 0:
		cur := b.lines[b.line]
		b.lines[b.line] = append(cur[:b.col-1:b.col-1], cur[b.col:]...)
		b.col--
	case b.line > 0:
		prev := b.lines[b.line-1]
		b.col = len(prev)
		b.lines[b.line-1] = append(append([]rune(nil), prev...), b.lines[b.line]...)
		b.lines = append(b.lines[:b.line], b.lines[b.line+1:]...)
		b.line--
	}
}

// Delete removes the rune under the cursor, joining lines at the end.
func (b *textBuffer) Delete() {
	cur := b.lines[b.line]
	switch {
	case b.col < len(cur):
		b.lines[b.line] = append(cur[:b.col:b.col], cur[b.col+1:]...)
	case b.line < len(b.lines)-1:
		b.lines[b.line] = append(append([]rune(nil), cur...), b.lines[b.line+1]...)
		b.lines = append(b.lines[:b.line+1], b.lines[b.line+2:]...)
	}
}

func (b *textBuffer) Left() {
	if b.col > 0 {
		b.col--
	} else if b.line > 0 {
		b.line--
		b.col = len(b.lines[b.line])
	}
}

func (b *textBuffer) Right() {
	if b.col < len(b.lines[b.line]) {
		b.col++
	} else if b.line < len(b.lines)-1 {
		b.line++
		b.col = 0
	}
}

func (b *textBuffer) Up() {
	if b.line > 0 {
		b.line--
		b.col = min(b.col, len(b.lines[b.line]))
	}
}

func (b *textBuffer) Down() {
	if b.line < len(b.lines)-1 {
		b.line++
		b.col = min(b.col, len(b.lines[b.line]))
	}
}

func (b *textBuffer) Home() { b.col = 0 }

func (b *textBuffer) End() { b.col = len(b.lines[b.line]) }

// Render returns the content with a block cursor drawn at the cursor.
func (b *textBuffer) Render() string {
	parts := make([]string, len(b.lines))
	for i, l := range b.lines {
		if i != b.line {
			parts[i] = string(l)
			continue
		}
		if b.col >= len(l) {
			parts[i] = string(l) + cursorGlyph
		} else {
			parts[i] = string(l[:b.col]) + cursorGlyph + string(l[b.col+1:])
		}
	}
	return strings.Join(parts, "\n")
}

// bodyEditor is a multi-line text editor built on a TextView. Escape, Tab
// and control keys bubble up to the compose page.
type bodyEditor struct {
	*tview.TextView
	buf     *textBuffer
	changed func(string)
}

func newBodyEditor() *bodyEditor {
	e := &bodyEditor{
		TextView: tview.NewTextView().SetWrap(true).SetScrollable(true),
		buf:      newTextBuffer(""),
	}
	e.TextView.SetInputCapture(e.handleKey)
	e.redraw()
	return e
}

// SetText replaces the content without firing the changed callback.
func (e *bodyEditor) SetText(text string) {
	if text == e.buf.Text() {
		return
	}
	e.buf.SetText(text)
	e.redraw()
}

func (e *bodyEditor) GetText() string { return e.buf.Text() }

func (e *bodyEditor) SetChangedFunc(fn func(string)) { e.changed = fn }

func (e *bodyEditor) handleKey(event *tcell.EventKey) *tcell.EventKey {
	edited := true
	switch event.Key() {
	case tcell.KeyEnter:
		e.buf.Newline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.buf.Backspace()
	case tcell.KeyDelete:
		e.buf.Delete()
	case tcell.KeyLeft:
		e.buf.Left()
		edited = false
	case tcell.KeyRight:
		e.buf.Right()
		edited = false
	case tcell.KeyUp:
		e.buf.Up()
		edited = false
	case tcell.KeyDown:
		e.buf.Down()
		edited = false
	case tcell.KeyHome:
		e.buf.Home()
		edited = false
	case tcell.KeyEnd:
		e.buf.End()
		edited = false
	case tcell.KeyRune:
		if !unicode.IsPrint(event.Rune()) {
			return event
		}
		e.buf.Insert(event.Rune())
	default:
		return event
	}
	e.redraw()
	if edited && e.changed != nil {
		e.changed(e.buf.Text())
	}
	return nil
}

func (e *bodyEditor) redraw() {
	e.TextView.SetText(e.buf.Render())
	line, _ := e.buf.Cursor()
	_, _, _, height := e.TextView.GetInnerRect()
	if height > 0 && line >= height {
		e.TextView.ScrollTo(line-height+1, 0)
	} else {
		e.TextView.ScrollToBeginning()
	}
}
