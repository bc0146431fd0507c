package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ajramos/maildash/internal/mailbox"
	"golang.org/x/net/html"
)

// DefaultPreviewLength is the number of runes kept by Preview when no limit is given.
const DefaultPreviewLength = 100

// LinkRef is a numbered link extracted from a body.
type LinkRef struct {
	Index int
	URL   string
	Text  string
}

// BodyOptions controls FormatBody.
type BodyOptions struct {
	WrapWidth int
	// CollapseLinks replaces URLs in plain text bodies with [n] references.
	CollapseLinks bool
}

var (
	plainLinkRe = regexp.MustCompile(`(?i)\bhttps?://[\w\-\._~:/%\?#\[\]@!$&'()*+,;=]+`)
	bareURLRe   = regexp.MustCompile(`(?i)^[a-z][a-z0-9+\-.]*://\S+$`)
	markupRe    = regexp.MustCompile(`(?i)<(p|div|br|html|body|span|a|table|ul|ol|b|i|strong|em)[\s/>]`)
)

// LooksLikeHTML reports whether a body carries markup worth rendering.
func LooksLikeHTML(body string) bool {
	return markupRe.MatchString(body)
}

// FormatBody renders the detail-pane text of a message: the body (HTML is
// flattened), the attachment link if any and a numbered link list.
func FormatBody(m mailbox.Message, opts BodyOptions) string {
	var (
		text  string
		links []LinkRef
	)
	if LooksLikeHTML(m.Body) {
		rendered, found, err := htmlToText(m.Body)
		if err == nil {
			text, links = rendered, found
		} else {
			text = StripHTML(m.Body)
		}
	} else {
		text = m.Body
		if opts.CollapseLinks {
			links, text = detectPlainTextLinks(text)
		}
	}

	text = sanitizeForTerminal(text)
	text = collapseBlankLines(text)
	if opts.WrapWidth > 0 {
		text = WrapTextPreserving(text, opts.WrapWidth)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(text))
	if strings.TrimSpace(text) == "" {
		b.WriteString("(no content)")
	}
	if m.Attachment != "" {
		b.WriteString("\n\n[ATTACHMENT]\n")
		b.WriteString(m.Attachment)
	}
	if len(links) > 0 {
		b.WriteString("\n\n[LINKS]\n")
		for _, l := range links {
			if l.Text != "" && l.Text != l.URL {
				fmt.Fprintf(&b, "[%d] %s <%s>\n", l.Index, l.Text, l.URL)
			} else {
				fmt.Fprintf(&b, "[%d] %s\n", l.Index, l.URL)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Preview returns the single-line list preview of a body: tags stripped,
// whitespace collapsed and cut to n runes with a trailing "...".
func Preview(body string, n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	text := strings.Join(strings.Fields(StripHTML(body)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + "..."
}

// StripHTML drops every tag and returns the text content. Script and style
// contents are skipped.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "head", "title":
				skip++
			case "br", "p", "div", "li", "tr":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "head", "title":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "tr":
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte(' ')
			}
		}
	}
}

func htmlToText(src string) (string, []LinkRef, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	var links []LinkRef
	quoteDepth := 0
	// set when the previous text run ended in whitespace
	pendingSpace := false
	separate := func(raw string) {
		if quoteDepth > 0 && endsLine(&b) {
			b.WriteString(strings.Repeat("> ", min(quoteDepth, 3)))
		} else if !endsLine(&b) && !strings.HasSuffix(b.String(), " ") && (pendingSpace || startsSpace(raw)) {
			b.WriteByte(' ')
		}
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text := strings.Join(strings.Fields(n.Data), " ")
			if text == "" {
				pendingSpace = pendingSpace || n.Data != ""
				return
			}
			separate(n.Data)
			b.WriteString(text)
			pendingSpace = endsSpace(n.Data)
			return
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "head", "style", "script", "title", "meta", "link":
				return
			case "br":
				b.WriteByte('\n')
				return
			case "hr":
				b.WriteString("\n-----\n")
				return
			case "p", "h1", "h2", "h3", "h4", "h5", "h6":
				visitChildren(n, visit)
				b.WriteString("\n\n")
				return
			case "div", "section", "tr":
				visitChildren(n, visit)
				if !endsLine(&b) {
					b.WriteByte('\n')
				}
				return
			case "li":
				if !endsLine(&b) {
					b.WriteByte('\n')
				}
				b.WriteString("- ")
				visitChildren(n, visit)
				b.WriteByte('\n')
				return
			case "blockquote":
				quoteDepth++
				if !endsLine(&b) {
					b.WriteByte('\n')
				}
				visitChildren(n, visit)
				quoteDepth--
				b.WriteByte('\n')
				return
			case "a":
				href := attr(n, "href")
				label := strings.Join(strings.Fields(textOf(n)), " ")
				if label == "" {
					label = href
				}
				separate(textOf(n))
				pendingSpace = false
				if href == "" || strings.HasPrefix(strings.ToLower(href), "mailto:") {
					b.WriteString(label)
					return
				}
				links = append(links, LinkRef{Index: len(links) + 1, URL: href, Text: label})
				fmt.Fprintf(&b, "%s [%d]", label, len(links))
				return
			case "img":
				if alt := attr(n, "alt"); alt != "" {
					fmt.Fprintf(&b, "[image: %s]", alt)
				}
				return
			}
		}
		visitChildren(n, visit)
	}
	visit(doc)
	return b.String(), links, nil
}

func visitChildren(n *html.Node, visit func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func endsLine(b *strings.Builder) bool {
	return b.Len() == 0 || strings.HasSuffix(b.String(), "\n")
}

func startsSpace(raw string) bool {
	r := []rune(raw)
	return len(r) > 0 && unicode.IsSpace(r[0])
}

func endsSpace(raw string) bool {
	r := []rune(raw)
	return len(r) > 0 && unicode.IsSpace(r[len(r)-1])
}

func detectPlainTextLinks(input string) ([]LinkRef, string) {
	var links []LinkRef
	replaced := plainLinkRe.ReplaceAllStringFunc(input, func(m string) string {
		links = append(links, LinkRef{Index: len(links) + 1, URL: m, Text: m})
		return fmt.Sprintf("[%d]", len(links))
	})
	return links, replaced
}

var terminalReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u2026", "...",
	"\u2013", "-",
	"\u2014", "-",
	"\u2022", "- ",
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", "\"",
	"\u201d", "\"",
	"\t", "    ",
)

// sanitizeForTerminal normalises punctuation the terminal renders poorly and
// removes control characters.
func sanitizeForTerminal(s string) string {
	s = terminalReplacer.Replace(normalizeNewlines(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRightFunc(ln, unicode.IsSpace)
		if ln == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}

// WrapTextPreserving wraps lines to width without splitting URLs and keeps
// quote prefixes ("> ") on continuation lines.
func WrapTextPreserving(input string, width int) string {
	if width <= 0 {
		return input
	}
	lines := strings.Split(normalizeNewlines(input), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		prefix := ""
		rest := line
		for strings.HasPrefix(rest, "> ") {
			prefix += "> "
			rest = rest[2:]
		}
		tokens := strings.Fields(rest)
		if len(tokens) == 0 {
			out = append(out, strings.TrimRight(prefix, " "))
			continue
		}
		cur := prefix
		for _, tok := range tokens {
			empty := cur == prefix
			switch {
			case empty:
				cur += tok
			case displayLen(cur)+1+displayLen(tok) <= width:
				cur += " " + tok
			default:
				out = append(out, cur)
				cur = prefix + tok
			}
			// Hard cut single tokens wider than a line unless they are URLs.
			for displayLen(cur) > width && !bareURLRe.MatchString(tok) && displayLen(prefix) < width {
				r := []rune(cur)
				out = append(out, string(r[:width]))
				cur = prefix + string(r[width:])
			}
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func displayLen(s string) int { return len([]rune(s)) }
