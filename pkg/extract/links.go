package extract

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/kittclouds/linkgraph/pkg/wikilink"
)

// Attributes the editor writes on materialized link elements
const (
	MarkerAttr   = "data-wiki-link"
	TargetIDAttr = "data-target-id"
	TitleAttr    = "data-title"
)

// Elements that never get an end tag
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Elements that end a run of inline text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// Link is one link occurrence found in stored content.
type Link struct {
	TargetID     string     `json:"targetId,omitempty"` // empty when the editor had no target
	Title        string     `json:"title"`
	Context      string     `json:"context"`
	Tab          int        `json:"tab"`
	Position     HTMLOffset `json:"position"`     // offset of the opening tag or "[[" in the tab's HTML
	TextPosition TextOffset `json:"textPosition"` // offset in the tab's stripped text
	Raw          bool       `json:"raw"`          // true for unmaterialized [[...]] syntax
}

// Extractor pulls link occurrences out of stored content.
type Extractor struct {
	ContextWindow int
}

// New creates an extractor with the default context window.
func New() *Extractor {
	return &Extractor{ContextWindow: DefaultContextWindow}
}

// Links extracts links with the default extractor.
func Links(raw string) []Link {
	return New().Links(raw)
}

// Links returns every link in raw content, tab by tab, each tab in
// document order.
func (e *Extractor) Links(raw string) []Link {
	content := Detect(raw)
	var links []Link
	for i, section := range content.Sections() {
		links = append(links, e.section(section, i)...)
	}
	return links
}

// pending is a materialized link whose display text is still being read
type pending struct {
	link      Link
	tag       string
	depth     int
	textStart int
}

func (e *Extractor) section(section string, tab int) []Link {
	var (
		links  []Link
		text   strings.Builder
		spans  [][2]int // text range of each link, parallel to links
		offset int
		open   *pending
		run    textRun
	)

	// Raw [[...]] syntax is read from the joined text of a run, so inline
	// formatting inside the brackets does not hide a link. Runs end at
	// block elements and at materialized links.
	flush := func() {
		for _, wl := range wikilink.ExtractLinks(run.text.String()) {
			if strings.TrimSpace(wl.Title) == "" {
				continue
			}
			links = append(links, Link{
				Title:        wl.Title,
				Tab:          tab,
				Position:     run.htmlOffset(wl.Start),
				TextPosition: TextOffset(run.textStart + wl.Start),
				Raw:          true,
			})
			spans = append(spans, [2]int{run.textStart + wl.Start, run.textStart + wl.End})
		}
		run.reset()
	}

	z := html.NewTokenizer(strings.NewReader(section))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		tokenStart := offset
		offset += len(raw)

		switch tt {
		case html.TextToken:
			unescaped := html.UnescapeString(raw)
			if open == nil {
				run.add(tokenStart, raw, text.Len(), unescaped)
			}
			text.WriteString(unescaped)

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if open == nil && blockElements[tag] {
				flush()
			}

			if open != nil {
				if tag == open.tag && tt == html.StartTagToken {
					open.depth++
				}
				continue
			}
			if !hasAttr {
				continue
			}

			link, ok := readMarker(z)
			if !ok {
				continue
			}
			flush()
			link.Tab = tab
			link.Position = HTMLOffset(tokenStart)
			link.TextPosition = TextOffset(text.Len())

			if tt == html.SelfClosingTagToken || voidElements[tag] {
				links = append(links, link)
				spans = append(spans, [2]int{text.Len(), text.Len()})
				continue
			}
			open = &pending{link: link, tag: tag, depth: 1, textStart: text.Len()}

		case html.EndTagToken:
			name, _ := z.TagName()
			if open == nil {
				if blockElements[string(name)] {
					flush()
				}
				continue
			}
			if string(name) != open.tag {
				continue
			}
			open.depth--
			if open.depth == 0 {
				links = append(links, open.link)
				spans = append(spans, [2]int{open.textStart, text.Len()})
				open = nil
			}
		}
	}

	flush()

	// Unterminated element at end of input still counts
	if open != nil {
		links = append(links, open.link)
		spans = append(spans, [2]int{open.textStart, text.Len()})
	}

	plain := text.String()
	for i := range links {
		links[i].Context = Snippet(plain, TextOffset(spans[i][0]), spans[i][1]-spans[i][0], e.ContextWindow)
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Position < links[j].Position
	})
	return links
}

// readMarker reads the link attributes of the current tag. ok is false when
// the tag is not a link marker or carries no title.
func readMarker(z *html.Tokenizer) (Link, bool) {
	var (
		link   Link
		marker bool
	)
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case MarkerAttr:
			marker = true
		case TargetIDAttr:
			link.TargetID = strings.TrimSpace(string(val))
		case TitleAttr:
			link.Title = strings.TrimSpace(string(val))
		}
		if !more {
			break
		}
	}
	if !marker || link.Title == "" {
		return Link{}, false
	}
	return link, true
}

// textRun is consecutive text outside materialized links, with enough of
// its source kept to map offsets back into the HTML
type textRun struct {
	text      strings.Builder
	textStart int // offset of the run in the section's stripped text
	segments  []segment
}

// segment is one text token of a run
type segment struct {
	htmlStart int
	raw       string
	runStart  int // offset of the unescaped token in the run
	unescaped string
}

func (r *textRun) add(htmlStart int, raw string, textStart int, unescaped string) {
	if len(r.segments) == 0 {
		r.textStart = textStart
	}
	r.segments = append(r.segments, segment{
		htmlStart: htmlStart,
		raw:       raw,
		runStart:  r.text.Len(),
		unescaped: unescaped,
	})
	r.text.WriteString(unescaped)
}

func (r *textRun) reset() {
	r.text.Reset()
	r.segments = r.segments[:0]
}

// htmlOffset maps an offset in the run's text to the section's HTML
func (r *textRun) htmlOffset(pos int) HTMLOffset {
	for i := len(r.segments) - 1; i >= 0; i-- {
		seg := r.segments[i]
		if pos < seg.runStart {
			continue
		}
		return HTMLOffset(seg.htmlStart + rawIndex(seg, pos-seg.runStart))
	}
	return 0
}

// rawIndex finds the byte in seg.raw where the first n unescaped bytes end.
// Character references are never split.
func rawIndex(seg segment, n int) int {
	if seg.raw == seg.unescaped {
		return n
	}
	for k := 0; k <= len(seg.raw); k++ {
		head := html.UnescapeString(seg.raw[:k])
		if len(head) == n && head+html.UnescapeString(seg.raw[k:]) == seg.unescaped {
			return k
		}
	}
	return 0
}
