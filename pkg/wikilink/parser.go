// Package wikilink parses and renders raw [[wiki-link]] syntax.
// It works on plain text only and knows nothing about the document graph.
package wikilink

import (
	"strings"
)

// Link is a [[Title]] or [[Title|Display]] occurrence.
// Start and End are byte offsets into the parsed text, End exclusive.
type Link struct {
	Title   string `json:"title"`
	Display string `json:"display"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Result holds the links found by Parse and the text with every link
// replaced by its display text.
type Result struct {
	Links        []Link `json:"links"`
	CleanContent string `json:"cleanContent"`
}

// scanner walks the text once, left to right
type scanner struct {
	text string
	n    int
}

// Parse scans content left to right for wiki-links.
func Parse(content string) Result {
	s := scanner{text: content, n: len(content)}
	links := make([]Link, 0)

	var clean strings.Builder
	clean.Grow(len(content))
	copied := 0

	i := 0
	for i < s.n {
		next := strings.Index(content[i:], "[[")
		if next == -1 {
			break
		}
		i += next

		end, ok := s.matchAt(i)
		if !ok {
			// Unclosed or malformed, retry one byte later
			i++
			continue
		}

		inner := content[i+2 : end-2]
		if strings.TrimSpace(inner) == "" {
			i = end
			continue
		}

		title, display := splitInner(inner)
		if title == "" {
			i = end
			continue
		}
		links = append(links, Link{
			Title:   title,
			Display: display,
			Start:   i,
			End:     end,
		})

		clean.WriteString(content[copied:i])
		clean.WriteString(display)
		copied = end
		i = end
	}
	clean.WriteString(content[copied:])

	return Result{Links: links, CleanContent: clean.String()}
}

// matchAt tries to match a link starting at start, which must point at "[[".
// Elements are either a non-bracket byte or a [group] holding no brackets.
// Returns the offset just past the closing "]]".
func (s *scanner) matchAt(start int) (int, bool) {
	j := start + 2
	elements := 0
	for j < s.n {
		switch s.text[j] {
		case ']':
			if elements > 0 && j+1 < s.n && s.text[j+1] == ']' {
				return j + 2, true
			}
			return 0, false
		case '[':
			k := j + 1
			for k < s.n && s.text[k] != ']' && s.text[k] != '[' {
				k++
			}
			if k >= s.n || s.text[k] == '[' {
				return 0, false
			}
			j = k + 1
		default:
			j++
		}
		elements++
	}
	return 0, false
}

func splitInner(inner string) (title, display string) {
	parts := strings.SplitN(inner, "|", 2)
	title = strings.TrimSpace(parts[0])
	display = title
	if len(parts) > 1 {
		if d := strings.TrimSpace(parts[1]); d != "" {
			display = d
		}
	}
	return title, display
}

// ExtractLinks returns only the links found in content.
func ExtractLinks(content string) []Link {
	return Parse(content).Links
}

// CreateLink wraps title in wiki-link brackets.
func CreateLink(title string) string {
	return "[[" + title + "]]"
}

// IsValidLinkSyntax reports whether text is a single bracketed link with
// non-blank inner content.
func IsValidLinkSyntax(text string) bool {
	if !strings.HasPrefix(text, "[[") || !strings.HasSuffix(text, "]]") {
		return false
	}
	if len(text) < 4 {
		return false
	}
	return strings.TrimSpace(text[2:len(text)-2]) != ""
}
