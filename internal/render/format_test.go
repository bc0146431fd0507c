package render

import (
	"strings"
	"testing"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/stretchr/testify/assert"
)

func TestDetectPlainTextLinks(t *testing.T) {
	body := "Check this https://example.com/page?x=1#sec and this http://foo.bar"
	links, replaced := detectPlainTextLinks(body)
	if assert.Len(t, links, 2) {
		assert.Equal(t, "https://example.com/page?x=1#sec", links[0].URL)
		assert.Equal(t, 2, links[1].Index)
	}
	assert.Equal(t, "Check this [1] and this [2]", replaced)
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("word ", 40)

	tests := []struct {
		name string
		body string
		n    int
		want string
	}{
		{"plain", "Hello there", 100, "Hello there"},
		{"collapses whitespace", "Hello\n\n   there\tfriend", 100, "Hello there friend"},
		{"strips tags", "<p>Hello <b>bold</b></p><p>world</p>", 100, "Hello bold world"},
		{"skips style", "<style>p{color:red}</style><div>Hi</div>", 100, "Hi"},
		{"decodes entities", "Fish &amp; chips", 100, "Fish & chips"},
		{"truncates", long, 9, "word word..."},
		{"default length", long, 0, strings.TrimSpace(long[:100]) + "..."},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.body, tt.n))
		})
	}
}

func TestPreview_CountsRunesNotBytes(t *testing.T) {
	got := Preview("ñandú ñandú ñandú", 5)
	assert.Equal(t, "ñandú...", got)
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<p>hi</p>"))
	assert.True(t, LooksLikeHTML("line<br/>line"))
	assert.False(t, LooksLikeHTML("a < b and c > d"))
	assert.False(t, LooksLikeHTML("plain text"))
}

func TestFormatBody_HTML(t *testing.T) {
	m := mailbox.Message{
		Folder: mailbox.Inbox,
		Body: `<html><head><title>x</title></head><body>
<p>Hello <b>Ana</b>,</p>
<ul><li>one</li><li>two</li></ul>
<p>See <a href="https://example.com/doc">the doc</a> or <a href="mailto:a@x.com">mail me</a>.</p>
</body></html>`,
	}
	out := FormatBody(m, BodyOptions{})

	assert.Contains(t, out, "Hello Ana,")
	assert.Contains(t, out, "- one\n- two")
	assert.Contains(t, out, "the doc [1]")
	assert.Contains(t, out, "mail me")
	assert.Contains(t, out, "[LINKS]\n[1] the doc <https://example.com/doc>")
	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "mailto:")
}

func TestFormatBody_PlainWithLinksAndAttachment(t *testing.T) {
	m := mailbox.Message{
		Folder:     mailbox.Inbox,
		Body:       "Report at https://files.example.com/r.pdf… thanks",
		Attachment: "https://files.example.com/r.pdf",
	}
	out := FormatBody(m, BodyOptions{CollapseLinks: true})

	assert.True(t, strings.HasPrefix(out, "Report at [1]"), out)
	assert.Contains(t, out, "[ATTACHMENT]\nhttps://files.example.com/r.pdf")
	assert.Contains(t, out, "[LINKS]\n[1] https://files.example.com/r.pdf")
}

func TestFormatBody_Empty(t *testing.T) {
	assert.Equal(t, "(no content)", FormatBody(mailbox.Message{}, BodyOptions{}))
}

func TestSanitizeForTerminal(t *testing.T) {
	in := "Line … with – unicode\r\n• item​\x07"
	assert.Equal(t, "Line ... with - unicode\n-  item", sanitizeForTerminal(in))
}

func TestCollapseBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", collapseBlankLines("a\n\n\n\n  \nb"))
}

func TestWrapTextPreserving(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short line untouched", "hello world", 20, "hello world"},
		{"wraps on spaces", "aaa bbb ccc", 7, "aaa bbb\nccc"},
		{"keeps quote prefix", "> aaa bbb ccc", 9, "> aaa bbb\n> ccc"},
		{"keeps urls whole", "x https://example.com/a/very/long/path", 10, "x\nhttps://example.com/a/very/long/path"},
		{"hard cuts long words", "abcdefghij", 4, "abcd\nefgh\nij"},
		{"zero width", "a b", 0, "a b"},
		{"blank lines", "a\n\nb", 5, "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapTextPreserving(tt.in, tt.width))
		})
	}
}
