package backlinks

import (
	"time"

	"github.com/kittclouds/linkgraph/pkg/extract"
)

// SerializedVersion is the snapshot format version written by Serialize
const SerializedVersion = 1

// JavaScript Date.toISOString layout
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

// SerializedIndex is a flat snapshot of the index. Incoming sets are not
// stored; Deserialize derives them from Links.
type SerializedIndex struct {
	Version     int                  `json:"version"`
	Documents   []SerializedDocument `json:"documents"`
	Links       []SerializedLink     `json:"links"`
	LastUpdated string               `json:"lastUpdated"`
}

// SerializedDocument is one document record
type SerializedDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SerializedLink is one outgoing link occurrence
type SerializedLink struct {
	SourceID    string             `json:"sourceId"`
	TargetID    *string            `json:"targetId"`
	TargetTitle string             `json:"targetTitle"`
	Context     string             `json:"context"`
	Position    extract.HTMLOffset `json:"position"`
}

// Serialize snapshots the index. Documents come in insertion order; links
// are grouped by source in the same order, each group in stored order.
func (idx *Index) Serialize() *SerializedIndex {
	data := &SerializedIndex{
		Version:     SerializedVersion,
		Documents:   make([]SerializedDocument, 0, len(idx.order)),
		Links:       make([]SerializedLink, 0, idx.LinkCount()),
		LastUpdated: time.Now().UTC().Format(isoTimestamp),
	}

	for _, id := range idx.order {
		doc := idx.docs[id]
		data.Documents = append(data.Documents, SerializedDocument{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: doc.Content,
		})
	}
	for _, id := range idx.order {
		for _, link := range idx.outgoing[id] {
			sl := SerializedLink{
				SourceID:    link.SourceID,
				TargetTitle: link.TargetTitle,
				Context:     link.Context,
				Position:    link.Position,
			}
			if link.TargetID != nil {
				sl.TargetID = strPtr(*link.TargetID)
			}
			data.Links = append(data.Links, sl)
		}
	}
	return data
}

// Deserialize discards the current state and rebuilds it from a snapshot.
// Stored links are authoritative; content is only read back for the
// editor-written ids. Links from unknown sources are dropped and links to
// unknown targets are restored unresolved.
func (idx *Index) Deserialize(data *SerializedIndex) {
	idx.reset()
	if data == nil {
		return
	}

	for _, d := range data.Documents {
		if _, dup := idx.docs[d.ID]; dup {
			logger().Warningf("snapshot lists document %s twice, keeping the first", d.ID)
			continue
		}
		idx.insertRecord(d.ID, d.Title, d.Content)
		idx.registerTitle(d.ID, d.Title)
	}

	dropped := 0
	for _, sl := range data.Links {
		if _, ok := idx.docs[sl.SourceID]; !ok {
			dropped++
			continue
		}
		link := DocumentLink{
			SourceID:    sl.SourceID,
			TargetTitle: sl.TargetTitle,
			Context:     sl.Context,
			Position:    sl.Position,
		}
		if sl.TargetID != nil {
			if _, ok := idx.docs[*sl.TargetID]; ok {
				link.TargetID = strPtr(*sl.TargetID)
				idx.addIncoming(*sl.TargetID, sl.SourceID)
			}
		}
		idx.outgoing[sl.SourceID] = append(idx.outgoing[sl.SourceID], link)
	}
	if dropped > 0 {
		logger().Warningf("snapshot held %d links from unknown documents", dropped)
	}

	// Editor-written ids are not in the snapshot; read them back from the
	// content when it still yields the same links.
	for _, id := range idx.order {
		links := idx.outgoing[id]
		if len(links) == 0 {
			continue
		}
		refs := make([]string, len(links))
		if found := idx.extractor.Links(idx.docs[id].Content); len(found) == len(links) {
			for i, l := range found {
				if l.Title == links[i].TargetTitle {
					refs[i] = l.TargetID
				}
			}
		}
		idx.refs[id] = refs
		idx.track(id)
	}

	logger().Debugf("restored %d documents, %d links", len(idx.docs), idx.LinkCount())
}
