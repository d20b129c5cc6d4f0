// Package backlinks maintains the wiki-link graph over a document corpus.
//
// The Index owns every document record, the title maps, the outgoing link
// lists and the incoming link sets. Outgoing lists are the source of truth;
// incoming sets are derived from their resolved entries and are kept in step
// on every mutation.
//
// Every stored target is the one the link would get if its source were
// indexed again now: the editor-written id while that document is live,
// otherwise the title resolved by ResolveLink. Mutations re-resolve only
// the links a change can affect.
//
// The Index is not safe for concurrent use. Callers serialize access.
package backlinks

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/tliron/commonlog"

	"github.com/kittclouds/linkgraph/pkg/extract"
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("linkgraph.backlinks")
}

// Index is the backlink graph.
type Index struct {
	cfg       Config
	extractor *extract.Extractor

	docs  map[string]*IndexedDocument
	order []string // live ids in insertion order

	// Document numbers, allocated in insertion order, released on removal.
	// Bitmaps hold these numbers, so bitmap order is document order.
	nums    map[string]uint32
	ids     map[uint32]string
	nextNum uint32

	titleToID map[string]string          // normalized title -> owning id
	idToTitle map[string]string          // id -> exact title
	titleDocs map[string]*roaring.Bitmap // normalized title -> every doc carrying it

	outgoing map[string][]DocumentLink
	incoming map[string]*roaring.Bitmap // target id -> source numbers

	refs       map[string][]string        // source id -> editor-written target id per outgoing link
	linkTitles map[string]*roaring.Bitmap // normalized link title -> source numbers
	refSources map[string]*roaring.Bitmap // editor-written target id -> source numbers

	matcher *titleMatcher // lazily rebuilt after title changes
}

// New creates an empty index
func New(cfg Config) *Index {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = extract.DefaultContextWindow
	}
	idx := &Index{
		cfg:       cfg,
		extractor: &extract.Extractor{ContextWindow: cfg.ContextWindow},
	}
	idx.reset()
	return idx
}

func (idx *Index) reset() {
	idx.docs = make(map[string]*IndexedDocument)
	idx.order = nil
	idx.nums = make(map[string]uint32)
	idx.ids = make(map[uint32]string)
	idx.nextNum = 0
	idx.titleToID = make(map[string]string)
	idx.idToTitle = make(map[string]string)
	idx.titleDocs = make(map[string]*roaring.Bitmap)
	idx.outgoing = make(map[string][]DocumentLink)
	idx.incoming = make(map[string]*roaring.Bitmap)
	idx.refs = make(map[string][]string)
	idx.linkTitles = make(map[string]*roaring.Bitmap)
	idx.refSources = make(map[string]*roaring.Bitmap)
	idx.matcher = nil
}

// normalizeTitle is the key used by every title lookup
func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// =============================================================================
// Mutations
// =============================================================================

// AddDocument indexes a new document and resolves any links elsewhere
// that its title or id now satisfies. Adding a known id updates it.
func (idx *Index) AddDocument(id, title, content string) {
	if _, exists := idx.docs[id]; exists {
		idx.UpdateDocument(id, title, content)
		return
	}

	idx.insertRecord(id, title, content)
	idx.registerTitle(id, title)
	idx.indexLinks(id, content)
	upgraded := idx.refreshTitle(normalizeTitle(title)) + idx.refreshRefs(id)

	logger().Debugf("added %s (%q): %d links, %d upgraded", id, title, len(idx.outgoing[id]), upgraded)
}

// UpdateDocument replaces a document's content and title. Its outgoing links
// are rebuilt from scratch. On a title change, links elsewhere that reached
// it by title are resolved again against the new title set, and links the
// new title satisfies are upgraded. Updating an unknown id adds it.
func (idx *Index) UpdateDocument(id, title, content string) {
	doc, exists := idx.docs[id]
	if !exists {
		idx.AddDocument(id, title, content)
		return
	}

	idx.dropOutgoing(id)

	renamed := doc.Title != title
	if renamed {
		idx.unregisterTitle(id, doc.Title)
		idx.registerTitle(id, title)
	}
	doc.Title = title
	doc.Content = content

	idx.indexLinks(id, content)

	changed := 0
	if renamed {
		changed = idx.refreshTargeting(id) + idx.refreshTitle(normalizeTitle(title))
	}

	logger().Debugf("updated %s (%q, renamed=%t): %d links, %d retargeted", id, title, renamed, len(idx.outgoing[id]), changed)
}

// RemoveDocument deletes a document. Links elsewhere that pointed at it
// stay in place, carrying their title, and are resolved again against the
// remaining documents. Unknown ids are ignored.
func (idx *Index) RemoveDocument(id string) {
	doc, exists := idx.docs[id]
	if !exists {
		return
	}

	idx.unregisterTitle(id, doc.Title)
	idx.dropOutgoing(id)
	sources := idx.sourcesOf(id)
	idx.deleteRecord(id)
	for _, src := range sources {
		idx.refresh(src, func(_ string, link DocumentLink) bool {
			return link.Target() == id
		})
	}

	logger().Debugf("removed %s (%q): %d sources affected", id, doc.Title, len(sources))
}

// Clear drops every document and link
func (idx *Index) Clear() {
	idx.reset()
}

// DocumentCount returns the number of indexed documents
func (idx *Index) DocumentCount() int {
	return len(idx.docs)
}

// LinkCount returns the number of stored link occurrences, resolved or not
func (idx *Index) LinkCount() int {
	count := 0
	for _, links := range idx.outgoing {
		count += len(links)
	}
	return count
}

// GetDocument returns a copy of a document record
func (idx *Index) GetDocument(id string) (IndexedDocument, bool) {
	doc, ok := idx.docs[id]
	if !ok {
		return IndexedDocument{}, false
	}
	return *doc, true
}

// =============================================================================
// Records
// =============================================================================

func (idx *Index) insertRecord(id, title, content string) {
	idx.nextNum++
	idx.nums[id] = idx.nextNum
	idx.ids[idx.nextNum] = id
	idx.docs[id] = &IndexedDocument{ID: id, Title: title, Content: content}
	idx.order = append(idx.order, id)
}

func (idx *Index) deleteRecord(id string) {
	num := idx.nums[id]
	delete(idx.ids, num)
	delete(idx.nums, id)
	delete(idx.docs, id)
	delete(idx.incoming, id)
	for i, other := range idx.order {
		if other == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// =============================================================================
// Links
// =============================================================================

// indexLinks extracts links from content and installs them as id's
// outgoing list
func (idx *Index) indexLinks(id, content string) {
	found := idx.extractor.Links(content)
	if len(found) == 0 {
		return
	}

	links := make([]DocumentLink, 0, len(found))
	refs := make([]string, 0, len(found))
	for _, l := range found {
		link := DocumentLink{
			SourceID:    id,
			TargetTitle: l.Title,
			Context:     l.Context,
			Position:    l.Position,
		}
		if target, ok := idx.resolveStored(l.TargetID, l.Title); ok {
			link.TargetID = strPtr(target)
			idx.addIncoming(target, id)
		}
		links = append(links, link)
		refs = append(refs, l.TargetID)
	}
	idx.outgoing[id] = links
	idx.refs[id] = refs
	idx.track(id)
}

// resolveStored is the target a link should have right now: the id written
// by the editor when it names a live document, else title resolution
func (idx *Index) resolveStored(ref, title string) (string, bool) {
	if ref != "" {
		if _, ok := idx.docs[ref]; ok {
			return ref, true
		}
	}
	return idx.ResolveLink(title)
}

// dropOutgoing removes id's outgoing links and their incoming entries
func (idx *Index) dropOutgoing(id string) {
	num := idx.nums[id]
	for _, link := range idx.outgoing[id] {
		if link.TargetID != nil {
			removeFromSet(idx.incoming, *link.TargetID, num)
		}
	}
	idx.untrack(id)
	delete(idx.outgoing, id)
	delete(idx.refs, id)
}

// track records src's link titles and written ids so later title and
// document changes find the links they affect
func (idx *Index) track(src string) {
	num := idx.nums[src]
	refs := idx.refs[src]
	for i, link := range idx.outgoing[src] {
		addToSet(idx.linkTitles, normalizeTitle(link.TargetTitle), num)
		if refs[i] != "" {
			addToSet(idx.refSources, refs[i], num)
		}
	}
}

func (idx *Index) untrack(src string) {
	num := idx.nums[src]
	refs := idx.refs[src]
	for i, link := range idx.outgoing[src] {
		removeFromSet(idx.linkTitles, normalizeTitle(link.TargetTitle), num)
		if refs[i] != "" {
			removeFromSet(idx.refSources, refs[i], num)
		}
	}
}

// refresh resolves again every link of src accepted by match and moves
// the incoming entries with it. Returns the number of links retargeted.
func (idx *Index) refresh(src string, match func(ref string, link DocumentLink) bool) int {
	links := idx.outgoing[src]
	refs := idx.refs[src]
	changed := 0
	for i := range links {
		if !match(refs[i], links[i]) {
			continue
		}
		old := links[i].Target()
		target, _ := idx.resolveStored(refs[i], links[i].TargetTitle)
		if target == old {
			continue
		}

		if target == "" {
			links[i].TargetID = nil
		} else {
			links[i].TargetID = strPtr(target)
			idx.addIncoming(target, src)
		}
		if old != "" && !idx.linksTo(src, old) {
			removeFromSet(idx.incoming, old, idx.nums[src])
		}
		changed++
	}
	return changed
}

// refreshTitle re-resolves the links a change to the title key can affect:
// those whose title equals the key or is contained in it
func (idx *Index) refreshTitle(key string) int {
	if key == "" {
		return 0
	}
	changed := 0
	for title, bm := range idx.linkTitles {
		if !strings.Contains(key, title) {
			continue
		}
		for _, src := range idx.idsOf(bm) {
			changed += idx.refresh(src, func(_ string, link DocumentLink) bool {
				return normalizeTitle(link.TargetTitle) == title
			})
		}
	}
	return changed
}

// refreshRefs re-resolves the links whose editor-written id is id
func (idx *Index) refreshRefs(id string) int {
	changed := 0
	for _, src := range idx.idsOf(idx.refSources[id]) {
		changed += idx.refresh(src, func(ref string, _ DocumentLink) bool {
			return ref == id
		})
	}
	return changed
}

// refreshTargeting re-resolves every link currently pointing at id
func (idx *Index) refreshTargeting(id string) int {
	changed := 0
	for _, src := range idx.sourcesOf(id) {
		changed += idx.refresh(src, func(_ string, link DocumentLink) bool {
			return link.Target() == id
		})
	}
	return changed
}

// sourcesOf returns the documents linking to id, in document order
func (idx *Index) sourcesOf(id string) []string {
	return idx.idsOf(idx.incoming[id])
}

// idsOf snapshots a bitmap as live document ids so callers can mutate
// the sets while walking the result
func (idx *Index) idsOf(bm *roaring.Bitmap) []string {
	if bm == nil {
		return nil
	}
	ids := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		if id, ok := idx.ids[it.Next()]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (idx *Index) linksTo(src, target string) bool {
	for _, link := range idx.outgoing[src] {
		if link.TargetID != nil && *link.TargetID == target {
			return true
		}
	}
	return false
}

func (idx *Index) addIncoming(target, src string) {
	addToSet(idx.incoming, target, idx.nums[src])
}

func addToSet(sets map[string]*roaring.Bitmap, key string, num uint32) {
	bm := sets[key]
	if bm == nil {
		bm = roaring.New()
		sets[key] = bm
	}
	bm.Add(num)
}

func removeFromSet(sets map[string]*roaring.Bitmap, key string, num uint32) {
	bm := sets[key]
	if bm == nil {
		return
	}
	bm.Remove(num)
	if bm.IsEmpty() {
		delete(sets, key)
	}
}
