package backlinks

import (
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"
)

// registerTitle records that id carries title. The owner of a title is the
// earliest live document carrying it.
func (idx *Index) registerTitle(id, title string) {
	key := normalizeTitle(title)
	idx.idToTitle[id] = title

	bm := idx.titleDocs[key]
	if bm == nil {
		bm = roaring.New()
		idx.titleDocs[key] = bm
	}
	bm.Add(idx.nums[id])
	idx.titleToID[key] = idx.ids[bm.Minimum()]
	idx.matcher = nil
}

// unregisterTitle drops id from title. Ownership passes to the next
// document carrying the same title, if any.
func (idx *Index) unregisterTitle(id, title string) {
	key := normalizeTitle(title)
	delete(idx.idToTitle, id)
	idx.matcher = nil

	bm := idx.titleDocs[key]
	if bm == nil {
		return
	}
	bm.Remove(idx.nums[id])
	if bm.IsEmpty() {
		delete(idx.titleDocs, key)
		delete(idx.titleToID, key)
		return
	}
	idx.titleToID[key] = idx.ids[bm.Minimum()]
}

// ResolveLink finds the document a link text points at. A case-insensitive
// exact title match always wins. Otherwise the shortest title containing the
// text wins, ties broken by lexical order of the lowercased titles.
func (idx *Index) ResolveLink(text string) (string, bool) {
	key := normalizeTitle(text)
	if key == "" {
		return "", false
	}
	if id, ok := idx.titleToID[key]; ok {
		return id, true
	}

	var (
		bestID  string
		bestKey string
		bestLen int
	)
	for title, id := range idx.titleToID {
		if !strings.Contains(title, key) {
			continue
		}
		n := utf8.RuneCountInString(title)
		if bestID == "" || n < bestLen || (n == bestLen && title < bestKey) {
			bestID, bestKey, bestLen = id, title, n
		}
	}
	if bestID == "" {
		return "", false
	}
	return bestID, true
}

// TitleOf returns the exact title of a document
func (idx *Index) TitleOf(id string) (string, bool) {
	title, ok := idx.idToTitle[id]
	return title, ok
}
