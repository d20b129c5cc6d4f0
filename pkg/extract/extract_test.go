package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		tabs   int
	}{
		{"legacy html", "<p>Hello</p>", FormatLegacyHTML, 0},
		{"empty", "", FormatLegacyHTML, 0},
		{"malformed json", `{"version":3,"tabs":[`, FormatLegacyHTML, 0},
		{"json without tabs", `{"version":3}`, FormatLegacyHTML, 0},
		{"json without version", `{"tabs":[{"content":"x"}]}`, FormatLegacyHTML, 0},
		{"string version", `{"version":"3","tabs":[]}`, FormatLegacyHTML, 0},
		{"tabbed", `{"version":3,"tabs":[{"content":"<p>a</p>"},{"content":"<p>b</p>"}]}`, FormatTabbed, 2},
		{"tabbed odd tab", `{"version":3,"tabs":[{"content":5},"nope"]}`, FormatTabbed, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Detect(tt.input)
			assert.Equal(t, tt.format, c.Format)
			if tt.format == FormatTabbed {
				assert.Len(t, c.Tabs, tt.tabs)
			} else {
				assert.Equal(t, tt.input, c.HTML)
				assert.Equal(t, []string{tt.input}, c.Sections())
			}
		})
	}
}

func TestLinksMaterialized(t *testing.T) {
	html := `<p>See <span data-wiki-link="" data-target-id="doc-2" data-title="Note B">Note B</span> now</p>`
	links := Links(html)

	require.Len(t, links, 1)
	l := links[0]
	assert.Equal(t, "doc-2", l.TargetID)
	assert.Equal(t, "Note B", l.Title)
	assert.Equal(t, HTMLOffset(strings.Index(html, "<span")), l.Position)
	assert.Equal(t, TextOffset(4), l.TextPosition)
	assert.Equal(t, "See Note B now", l.Context)
	assert.False(t, l.Raw)
}

func TestLinksUnresolvedMarker(t *testing.T) {
	html := `<p><a data-wiki-link data-title="Ghost">Ghost</a><span data-wiki-link data-title="">x</span></p>`
	links := Links(html)

	require.Len(t, links, 1, "marker without title is skipped")
	assert.Equal(t, "", links[0].TargetID)
	assert.Equal(t, "Ghost", links[0].Title)
}

func TestLinksRawSyntax(t *testing.T) {
	html := `<p>See [[Note B]] and [[Tom &amp; Jerry|cartoon]]</p>`
	links := Links(html)

	require.Len(t, links, 2)
	assert.Equal(t, "Note B", links[0].Title)
	assert.Equal(t, HTMLOffset(strings.Index(html, "[[Note B]]")), links[0].Position)
	assert.True(t, links[0].Raw)
	assert.Equal(t, "Tom & Jerry", links[1].Title)
}

func TestLinksRawSyntaxAcrossInlineTags(t *testing.T) {
	html := `<p>x &amp; [[Note <em>B</em>]]</p><p>[[Split</p><p>Block]]</p>`
	links := Links(html)

	require.Len(t, links, 1, "block elements end a run")
	assert.Equal(t, "Note B", links[0].Title)
	assert.Equal(t, HTMLOffset(strings.Index(html, "[[Note")), links[0].Position)
	assert.Equal(t, TextOffset(len("x & ")), links[0].TextPosition)
	assert.Contains(t, links[0].Context, "x & [[Note B]]")
}

func TestLinksInsideMarkerNotRescanned(t *testing.T) {
	html := `<span data-wiki-link data-title="A">[[A]] <span>inner</span></span> [[B]]`
	links := Links(html)

	require.Len(t, links, 2)
	assert.Equal(t, "A", links[0].Title)
	assert.False(t, links[0].Raw)
	assert.Equal(t, "B", links[1].Title)
	assert.True(t, links[1].Raw)
}

func TestLinksTabbed(t *testing.T) {
	content := `{"version":3,"tabs":[{"content":"<p>[[One]]</p>"},{"content":"<p>x [[Two]] [[One]]</p>"}]}`
	links := Links(content)

	require.Len(t, links, 3)
	assert.Equal(t, "One", links[0].Title)
	assert.Equal(t, 0, links[0].Tab)
	assert.Equal(t, "Two", links[1].Title)
	assert.Equal(t, 1, links[1].Tab)
	// Offsets are per tab
	assert.Equal(t, HTMLOffset(5), links[1].Position)
	assert.Equal(t, "One", links[2].Title)
}

func TestLinksMalformedEnvelopeFallsBack(t *testing.T) {
	links := Links(`{"version":3,"tabs":[ [[Broken]]`)
	require.Len(t, links, 1)
	assert.Equal(t, "Broken", links[0].Title)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello & world", PlainText("<p>Hello &amp; <b>world</b></p>"))
	assert.Equal(t, "a\nb", PlainText(`{"version":3,"tabs":[{"content":"<p>a</p>"},{"content":"<p>b</p>"}]}`))
}

func TestSnippet(t *testing.T) {
	short := "Just a short line about React Hooks."
	assert.Equal(t, short, Snippet(short, TextOffset(strings.Index(short, "React")), 11, 200))

	long := strings.Repeat("a ", 200) + "TARGET" + strings.Repeat(" b", 200)
	pos := strings.Index(long, "TARGET")
	s := Snippet(long, TextOffset(pos), 6, 40)
	assert.True(t, strings.HasPrefix(s, "..."))
	assert.True(t, strings.HasSuffix(s, "..."))
	assert.Contains(t, s, "TARGET")
	assert.LessOrEqual(t, len(s), 40+2*len("..."))

	start := Snippet(long, 0, 1, 40)
	assert.False(t, strings.HasPrefix(start, "..."))
	assert.True(t, strings.HasSuffix(start, "..."))
}

func TestSnippetRuneBoundary(t *testing.T) {
	text := strings.Repeat("é", 50) + "X" + strings.Repeat("ü", 50)
	pos := strings.Index(text, "X")
	s := Snippet(text, TextOffset(pos), 1, 21)
	assert.Contains(t, s, "X")
	for _, r := range s {
		assert.NotEqual(t, '�', r)
	}
}
