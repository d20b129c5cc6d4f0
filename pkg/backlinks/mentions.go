package backlinks

import (
	"regexp"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/kittclouds/linkgraph/pkg/extract"
)

// GetUnlinkedMentions finds plain-text occurrences of title in documents
// that do not already link to it. The document the title resolves to is
// skipped, and so are occurrences sitting inside an open [[...]].
func (idx *Index) GetUnlinkedMentions(title string) []UnlinkedMention {
	result := make([]UnlinkedMention, 0)
	title = strings.TrimSpace(title)
	if title == "" {
		return result
	}

	targetID, _ := idx.ResolveLink(title)
	key := normalizeTitle(title)
	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(title))

	for _, id := range idx.order {
		if id == targetID || idx.references(id, targetID, key) {
			continue
		}
		doc := idx.docs[id]
		text := extract.PlainText(doc.Content)
		for _, m := range pattern.FindAllStringIndex(text, -1) {
			if insideOpenLink(text, m[0]) {
				continue
			}
			result = append(result, UnlinkedMention{
				DocumentID:    id,
				DocumentTitle: doc.Title,
				MentionText:   text[m[0]:m[1]],
				Context:       extract.Snippet(text, extract.TextOffset(m[0]), m[1]-m[0], idx.cfg.ContextWindow),
				Position:      extract.TextOffset(m[0]),
			})
		}
	}
	return result
}

// references reports whether src already links to the target id or title
func (idx *Index) references(src, targetID, key string) bool {
	for _, link := range idx.outgoing[src] {
		if targetID != "" && link.TargetID != nil && *link.TargetID == targetID {
			return true
		}
		if normalizeTitle(link.TargetTitle) == key {
			return true
		}
	}
	return false
}

// insideOpenLink reports whether pos follows a "[[" with no "]]" after it
func insideOpenLink(text string, pos int) bool {
	open := strings.LastIndex(text[:pos], "[[")
	if open == -1 {
		return false
	}
	return !strings.Contains(text[open:pos], "]]")
}

// titleMatcher is one automaton over every registered title
type titleMatcher struct {
	ac   ahocorasick.AhoCorasick
	keys []string // pattern index -> normalized title
}

func (idx *Index) titleAutomaton() *titleMatcher {
	if idx.matcher != nil {
		return idx.matcher
	}

	keys := make([]string, 0, len(idx.titleToID))
	for _, id := range idx.order {
		key := normalizeTitle(idx.idToTitle[id])
		if key == "" || idx.titleToID[key] != id {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	idx.matcher = &titleMatcher{ac: builder.Build(keys), keys: keys}
	return idx.matcher
}

// SuggestLinks scans one document for plain-text occurrences of other
// documents' titles that it does not link to yet. Matching is whole-word
// and ASCII case-insensitive; the longest title wins at each position.
func (idx *Index) SuggestLinks(id string) []Suggestion {
	result := make([]Suggestion, 0)
	doc, ok := idx.docs[id]
	if !ok {
		return result
	}
	m := idx.titleAutomaton()
	if m == nil {
		return result
	}

	text := extract.PlainText(doc.Content)
	for _, match := range m.ac.FindAll(text) {
		key := m.keys[match.Pattern()]
		target := idx.titleToID[key]
		if target == id || idx.references(id, target, key) {
			continue
		}
		start, end := match.Start(), match.End()
		if insideOpenLink(text, start) {
			continue
		}
		result = append(result, Suggestion{
			TargetID:    target,
			TargetTitle: idx.idToTitle[target],
			MentionText: text[start:end],
			Context:     extract.Snippet(text, extract.TextOffset(start), end-start, idx.cfg.ContextWindow),
			Position:    extract.TextOffset(start),
		})
	}
	return result
}
