package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// HTMLOffset is a byte offset into raw stored HTML. It orders links within a
// section; it is not a caret position in rendered text.
type HTMLOffset int

// TextOffset is a byte offset into tag-stripped, entity-decoded text.
type TextOffset int

// DefaultContextWindow is the snippet size used around links and mentions.
const DefaultContextWindow = 200

const ellipsis = "..."

// StripTags drops markup from one HTML section and decodes entities.
func StripTags(section string) string {
	var out strings.Builder
	out.Grow(len(section))

	z := html.NewTokenizer(strings.NewReader(section))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a tokenizer failure; keep what we have
			break
		}
		if tt == html.TextToken {
			out.WriteString(html.UnescapeString(string(z.Raw())))
		}
	}
	return out.String()
}

// PlainText returns the text of stored content with markup removed.
// Tabs are joined with a newline.
func PlainText(raw string) string {
	sections := Detect(raw).Sections()
	if len(sections) == 1 {
		return StripTags(sections[0])
	}
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = StripTags(s)
	}
	return strings.Join(parts, "\n")
}

// Snippet returns up to window bytes of text centered on the match at pos
// with the given length. The window shrinks by the match length and is split
// evenly on both sides. Truncated ends are marked with "...".
func Snippet(text string, pos TextOffset, length, window int) string {
	if window <= 0 {
		window = DefaultContextWindow
	}

	n := len(text)
	p := int(pos)
	if p < 0 {
		p = 0
	}
	if p > n {
		p = n
	}
	end := p + length
	if end > n {
		end = n
	}
	if end < p {
		end = p
	}

	half := (window - (end - p)) / 2
	if half < 0 {
		half = 0
	}

	start := p - half
	if start < 0 {
		start = 0
	}
	stop := end + half
	if stop > n {
		stop = n
	}

	// Never split a rune
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for stop < n && !utf8.RuneStart(text[stop]) {
		stop++
	}

	s := strings.TrimSpace(text[start:stop])
	if start > 0 {
		s = ellipsis + s
	}
	if stop < n {
		s += ellipsis
	}
	return s
}
