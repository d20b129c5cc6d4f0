package backlinks

import (
	"github.com/kittclouds/linkgraph/pkg/extract"
)

// Config tunes the index
type Config struct {
	// ContextWindow is the snippet size, in bytes, kept around links and mentions
	ContextWindow int
}

// DefaultConfig returns the standard index configuration
func DefaultConfig() Config {
	return Config{
		ContextWindow: extract.DefaultContextWindow,
	}
}

// IndexedDocument is the index's record of one corpus document.
type IndexedDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocumentLink is one outgoing link occurrence. TargetID is nil while the
// title does not resolve to any document; the link keeps its title until
// a matching document shows up.
type DocumentLink struct {
	SourceID    string             `json:"sourceId"`
	TargetID    *string            `json:"targetId"`
	TargetTitle string             `json:"targetTitle"`
	Context     string             `json:"context"`
	Position    extract.HTMLOffset `json:"position"`
}

// Resolved reports whether the link currently points at a document.
func (l DocumentLink) Resolved() bool {
	return l.TargetID != nil
}

// Target returns the target id, or "" for an unresolved link.
func (l DocumentLink) Target() string {
	if l.TargetID == nil {
		return ""
	}
	return *l.TargetID
}

// Backlink is an incoming link as seen from its target.
type Backlink struct {
	DocumentID    string             `json:"documentId"`
	DocumentTitle string             `json:"documentTitle"`
	Context       string             `json:"context"`
	Position      extract.HTMLOffset `json:"position"`
}

// UnlinkedMention is a plain-text occurrence of a title that is not a link.
type UnlinkedMention struct {
	DocumentID    string             `json:"documentId"`
	DocumentTitle string             `json:"documentTitle"`
	MentionText   string             `json:"mentionText"`
	Context       string             `json:"context"`
	Position      extract.TextOffset `json:"position"`
}

// Suggestion is an unlinked mention of another document's title found
// inside one document.
type Suggestion struct {
	TargetID    string             `json:"targetId"`
	TargetTitle string             `json:"targetTitle"`
	MentionText string             `json:"mentionText"`
	Context     string             `json:"context"`
	Position    extract.TextOffset `json:"position"`
}

// LinkCount pairs a document with its incoming link count.
type LinkCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Stats summarizes the graph. Isolated counts documents with no resolved
// link in either direction, so unlike Orphans it ignores dangling links.
type Stats struct {
	Documents  int `json:"documents"`
	Links      int `json:"links"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Orphans    int `json:"orphans"`
	Isolated   int `json:"isolated"`
}

func strPtr(s string) *string {
	return &s
}
