package backlinks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kittclouds/linkgraph/pkg/graph"
)

// ErrInconsistent is returned by CheckConsistency when the incoming sets
// disagree with the outgoing lists.
var ErrInconsistent = errors.New("backlink index inconsistent")

// GetBacklinks returns one entry per link occurrence pointing at targetID.
// Sources come in document order.
func (idx *Index) GetBacklinks(targetID string) []Backlink {
	result := make([]Backlink, 0)
	bm := idx.incoming[targetID]
	if bm == nil {
		return result
	}

	it := bm.Iterator()
	for it.HasNext() {
		src, ok := idx.ids[it.Next()]
		if !ok {
			continue
		}
		title := idx.docs[src].Title
		for _, link := range idx.outgoing[src] {
			if link.TargetID != nil && *link.TargetID == targetID {
				result = append(result, Backlink{
					DocumentID:    src,
					DocumentTitle: title,
					Context:       link.Context,
					Position:      link.Position,
				})
			}
		}
	}
	return result
}

// GetOutgoingLinks returns a copy of a document's links in stored order.
func (idx *Index) GetOutgoingLinks(documentID string) []DocumentLink {
	links := idx.outgoing[documentID]
	result := make([]DocumentLink, len(links))
	for i, link := range links {
		result[i] = link
		if link.TargetID != nil {
			result[i].TargetID = strPtr(*link.TargetID)
		}
	}
	return result
}

// GetUnresolvedLinks returns every dangling link, grouped by source in
// document order.
func (idx *Index) GetUnresolvedLinks() []DocumentLink {
	result := make([]DocumentLink, 0)
	for _, id := range idx.order {
		for _, link := range idx.outgoing[id] {
			if link.TargetID == nil {
				result = append(result, link)
			}
		}
	}
	return result
}

// GetOrphanDocuments returns documents with no outgoing entries (resolved or
// not) and no incoming links.
func (idx *Index) GetOrphanDocuments() []string {
	result := make([]string, 0)
	for _, id := range idx.order {
		if len(idx.outgoing[id]) == 0 && idx.incomingCount(id) == 0 {
			result = append(result, id)
		}
	}
	return result
}

// GetMostLinkedDocuments ranks every document by incoming link count.
// Ties keep document order. A limit <= 0 returns all documents.
func (idx *Index) GetMostLinkedDocuments(limit int) []LinkCount {
	result := make([]LinkCount, 0, len(idx.order))
	for _, id := range idx.order {
		result = append(result, LinkCount{ID: id, Count: idx.incomingCount(id)})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (idx *Index) incomingCount(id string) int {
	if bm := idx.incoming[id]; bm != nil {
		return int(bm.GetCardinality())
	}
	return 0
}

// GetGraphData returns every document as a node sized by incoming links
// and every resolved link as an edge.
func (idx *Index) GetGraphData() graph.Data {
	return idx.buildGraph().Data()
}

// GetLocalGraph returns the neighborhood of id up to depth hops.
func (idx *Index) GetLocalGraph(id string, depth int) graph.Data {
	sub := idx.buildGraph().Subgraph(id, depth)
	if sub == nil {
		return graph.Data{Nodes: []graph.Node{}, Edges: []graph.Edge{}}
	}
	return sub.Data()
}

func (idx *Index) buildGraph() *graph.LinkGraph {
	g := graph.NewGraph()
	for _, id := range idx.order {
		g.EnsureNode(id, idx.docs[id].Title).Size = idx.incomingCount(id)
	}
	for _, id := range idx.order {
		for _, link := range idx.outgoing[id] {
			if link.TargetID != nil {
				g.AddLink(id, *link.TargetID)
			}
		}
	}
	for id, c := range g.DegreeCentrality() {
		g.Nodes[id].Centrality = c
	}
	return g
}

// Stats summarizes the index
func (idx *Index) Stats() Stats {
	s := Stats{
		Documents: len(idx.docs),
		Orphans:   len(idx.GetOrphanDocuments()),
		Isolated:  len(idx.buildGraph().OrphanNodes()),
	}
	for _, links := range idx.outgoing {
		for _, link := range links {
			s.Links++
			if link.TargetID != nil {
				s.Resolved++
			} else {
				s.Unresolved++
			}
		}
	}
	return s
}

// CheckConsistency verifies that incoming sets mirror the resolved
// outgoing links exactly and that title maps agree with the records.
func (idx *Index) CheckConsistency() error {
	for src, links := range idx.outgoing {
		num, ok := idx.nums[src]
		if !ok {
			return fmt.Errorf("%w: outgoing links for unknown document %s", ErrInconsistent, src)
		}
		for _, link := range links {
			if link.TargetID == nil {
				continue
			}
			target := *link.TargetID
			if _, ok := idx.docs[target]; !ok {
				return fmt.Errorf("%w: %s links to missing document %s", ErrInconsistent, src, target)
			}
			bm := idx.incoming[target]
			if bm == nil || !bm.Contains(num) {
				return fmt.Errorf("%w: %s -> %s missing from incoming set", ErrInconsistent, src, target)
			}
		}
	}

	for target, bm := range idx.incoming {
		if bm.IsEmpty() {
			return fmt.Errorf("%w: empty incoming set kept for %s", ErrInconsistent, target)
		}
		it := bm.Iterator()
		for it.HasNext() {
			src, ok := idx.ids[it.Next()]
			if !ok {
				return fmt.Errorf("%w: incoming set of %s holds a released document", ErrInconsistent, target)
			}
			if !idx.linksTo(src, target) {
				return fmt.Errorf("%w: %s listed as source of %s without a link", ErrInconsistent, src, target)
			}
		}
	}

	for id, doc := range idx.docs {
		if idx.idToTitle[id] != doc.Title {
			return fmt.Errorf("%w: title map out of date for %s", ErrInconsistent, id)
		}
		owner, ok := idx.titleToID[normalizeTitle(doc.Title)]
		if !ok {
			return fmt.Errorf("%w: title %q of %s not registered", ErrInconsistent, doc.Title, id)
		}
		if idx.nums[owner] > idx.nums[id] {
			return fmt.Errorf("%w: title %q owned by later document %s", ErrInconsistent, doc.Title, owner)
		}
	}
	return nil
}
