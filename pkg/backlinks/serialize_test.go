package backlinks

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertSameQueries compares every read path of two indexes
func assertSameQueries(t *testing.T, want, got *Index) {
	t.Helper()

	assert.Equal(t, want.DocumentCount(), got.DocumentCount())
	assert.Equal(t, want.LinkCount(), got.LinkCount())
	assert.Equal(t, want.GetOrphanDocuments(), got.GetOrphanDocuments())
	assert.Equal(t, want.GetMostLinkedDocuments(0), got.GetMostLinkedDocuments(0))
	assert.Equal(t, want.GetUnresolvedLinks(), got.GetUnresolvedLinks())
	assert.Equal(t, want.GetGraphData(), got.GetGraphData())
	assert.Equal(t, want.Stats(), got.Stats())

	for _, id := range want.order {
		assert.Equal(t, want.GetBacklinks(id), got.GetBacklinks(id), "backlinks of %s", id)
		assert.Equal(t, want.GetOutgoingLinks(id), got.GetOutgoingLinks(id), "outgoing of %s", id)
	}
}

func TestSerializeShape(t *testing.T) {
	idx := newIndex()
	idx.AddDocument("doc-1", "Note A", "<p>See [[Note B]] and [[Nowhere]]</p>")
	idx.AddDocument("doc-2", "Note B", "<p>x</p>")

	data := idx.Serialize()
	assert.Equal(t, SerializedVersion, data.Version)
	require.Len(t, data.Documents, 2)
	assert.Equal(t, SerializedDocument{ID: "doc-1", Title: "Note A", Content: "<p>See [[Note B]] and [[Nowhere]]</p>"}, data.Documents[0])
	require.Len(t, data.Links, 2)

	_, err := time.Parse(time.RFC3339, data.LastUpdated)
	require.NoError(t, err)

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.EqualValues(t, 1, generic["version"])
	links := generic["links"].([]any)
	first := links[0].(map[string]any)
	second := links[1].(map[string]any)
	assert.Equal(t, "doc-2", first["targetId"])
	assert.Contains(t, second, "targetId")
	assert.Nil(t, second["targetId"], "dangling link serializes as null")
	assert.Equal(t, "Nowhere", second["targetTitle"])
}

func TestRoundTrip(t *testing.T) {
	idx := hubCorpus()
	idx.AddDocument("d", "D", `{"version":3,"tabs":[{"content":"<p>[[Hub]]</p>"},{"content":"<p>[[Ghost]]</p>"}]}`)
	idx.RemoveDocument("c")
	idx.UpdateDocument("b", "Bee", "<p>[[Hub]] [[A]] [[A]]</p>")

	raw, err := json.Marshal(idx.Serialize())
	require.NoError(t, err)

	var data SerializedIndex
	require.NoError(t, json.Unmarshal(raw, &data))

	restored := newIndex()
	restored.AddDocument("junk", "Junk", "<p>[[Hub]]</p>")
	restored.Deserialize(&data)

	require.NoError(t, restored.CheckConsistency())
	assertSameQueries(t, idx, restored)
	_, ok := restored.GetDocument("junk")
	assert.False(t, ok, "deserialize discards prior state")
}

func TestRoundTripRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	titles := []string{"One", "Two", "Three", "one", "Two Three"}

	for round := 0; round < 20; round++ {
		idx := newIndex()
		for step := 0; step < 40; step++ {
			id := fmt.Sprintf("d%d", rng.Intn(8))
			if rng.Intn(5) == 0 {
				idx.RemoveDocument(id)
				continue
			}
			content := ""
			for i := rng.Intn(3); i > 0; i-- {
				content += fmt.Sprintf("<p>[[%s]]</p>", titles[rng.Intn(len(titles))])
			}
			idx.UpdateDocument(id, titles[rng.Intn(len(titles))], content)
		}

		restored := newIndex()
		restored.Deserialize(idx.Serialize())
		require.NoError(t, restored.CheckConsistency(), "round %d", round)
		assertSameQueries(t, idx, restored)

		for _, title := range titles {
			want, _ := idx.ResolveLink(title)
			got, _ := restored.ResolveLink(title)
			assert.Equal(t, want, got, "resolve %q in round %d", title, round)
		}
	}
}

func TestDeserializeTolerance(t *testing.T) {
	ghost := "ghost"
	kept := "a"
	data := &SerializedIndex{
		Version: SerializedVersion,
		Documents: []SerializedDocument{
			{ID: "a", Title: "A"},
			{ID: "b", Title: "B"},
			{ID: "a", Title: "Duplicate"},
		},
		Links: []SerializedLink{
			{SourceID: "b", TargetID: &kept, TargetTitle: "A"},
			{SourceID: "b", TargetID: &ghost, TargetTitle: "Ghost"},
			{SourceID: "nobody", TargetID: &kept, TargetTitle: "A"},
		},
	}

	idx := newIndex()
	idx.Deserialize(data)

	assert.Equal(t, 2, idx.DocumentCount())
	title, _ := idx.TitleOf("a")
	assert.Equal(t, "A", title)

	out := idx.GetOutgoingLinks("b")
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Target())
	assert.Nil(t, out[1].TargetID)
	assert.Len(t, idx.GetBacklinks("a"), 1)
	require.NoError(t, idx.CheckConsistency())

	idx.Deserialize(nil)
	assert.Equal(t, 0, idx.DocumentCount())
}
