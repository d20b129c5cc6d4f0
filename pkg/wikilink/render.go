package wikilink

import (
	"html"
	"net/url"
)

// Route prefix for resolved links inside the editor
const routePrefix = "#/wiki/"

// RenderLink renders a link for display. Resolved links become anchors that
// navigate by title; unresolved links become a marked span.
func RenderLink(title string, resolved bool) string {
	escaped := html.EscapeString(title)
	if resolved {
		return `<a class="wiki-link" href="` + routePrefix + url.PathEscape(title) +
			`" data-title="` + escaped + `">` + escaped + `</a>`
	}
	return `<span class="wiki-link wiki-link-unresolved" data-title="` + escaped +
		`" data-unresolved="true">` + escaped + `</span>`
}

// RenderContent renders every link in content, asking resolved whether each
// title currently points at a document. Text outside links is left untouched.
func RenderContent(content string, resolved func(title string) bool) string {
	res := Parse(content)
	if len(res.Links) == 0 {
		return content
	}

	out := make([]byte, 0, len(content))
	last := 0
	for _, l := range res.Links {
		out = append(out, content[last:l.Start]...)
		if l.Display != l.Title {
			out = append(out, renderDisplay(l, resolved(l.Title))...)
		} else {
			out = append(out, RenderLink(l.Title, resolved(l.Title))...)
		}
		last = l.End
	}
	out = append(out, content[last:]...)
	return string(out)
}

func renderDisplay(l Link, resolved bool) string {
	title := html.EscapeString(l.Title)
	display := html.EscapeString(l.Display)
	if resolved {
		return `<a class="wiki-link" href="` + routePrefix + url.PathEscape(l.Title) +
			`" data-title="` + title + `">` + display + `</a>`
	}
	return `<span class="wiki-link wiki-link-unresolved" data-title="` + title +
		`" data-unresolved="true">` + display + `</span>`
}
