// Package extract reads links and plain text out of stored document content.
//
// Stored content comes in two shapes: a tabbed JSON envelope
// ({"version":3,"tabs":[{"content":"<p>..</p>"}, ...]}) written by the
// multi-tab editor, and a bare HTML string written by the legacy single-tab
// editor. Detect tells them apart structurally.
package extract

import (
	"encoding/json"
	"strings"
)

// Format identifies how a document's content is stored.
type Format int

const (
	FormatLegacyHTML Format = iota
	FormatTabbed
)

func (f Format) String() string {
	switch f {
	case FormatTabbed:
		return "tabbed"
	default:
		return "legacy-html"
	}
}

// Content is stored content split into the HTML sections to scan.
// For FormatTabbed, Tabs holds each tab's HTML; for FormatLegacyHTML,
// HTML holds the whole string.
type Content struct {
	Format Format
	Tabs   []string
	HTML   string
}

// Sections returns the HTML strings to scan, in order.
func (c Content) Sections() []string {
	if c.Format == FormatTabbed {
		return c.Tabs
	}
	return []string{c.HTML}
}

type envelopeTab struct {
	Content json.RawMessage `json:"content"`
}

// Detect classifies raw stored content. It never fails: anything that is not
// an object with a numeric "version" and a "tabs" array is legacy HTML.
func Detect(raw string) Content {
	legacy := Content{Format: FormatLegacyHTML, HTML: raw}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return legacy
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return legacy
	}

	var version float64
	rawVersion, ok := fields["version"]
	if !ok || json.Unmarshal(rawVersion, &version) != nil {
		return legacy
	}

	var rawTabs []json.RawMessage
	tabsField, ok := fields["tabs"]
	if !ok || json.Unmarshal(tabsField, &rawTabs) != nil || rawTabs == nil {
		return legacy
	}

	tabs := make([]string, len(rawTabs))
	for i, rt := range rawTabs {
		var tab envelopeTab
		if err := json.Unmarshal(rt, &tab); err != nil {
			continue
		}
		var s string
		if err := json.Unmarshal(tab.Content, &s); err == nil {
			tabs[i] = s
		}
	}

	return Content{Format: FormatTabbed, Tabs: tabs}
}
