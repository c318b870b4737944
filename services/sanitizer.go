package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// menuPolicy is the upstream sanitizer for model-generated menus. Documents
// keep their own styling (style elements, class and style attributes) and
// images, but lose scripts, event handlers and embedded frames.
var menuPolicy = newMenuPolicy()

func newMenuPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Style elements are only kept when unsafe content is allowed. Scripts are
	// still stripped because they are never in the allowed element list.
	p.AllowUnsafe(true)
	p.AllowElements(
		"html", "head", "body", "title", "style",
		"div", "span", "section", "article", "header", "footer", "main", "aside", "nav",
		"h1", "h2", "h3", "h4", "h5", "h6", "p", "br", "hr", "small", "strong", "em", "b", "i", "u", "sup", "sub",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption",
		"figure", "figcaption", "blockquote",
	)
	p.AllowAttrs("charset").OnElements("meta")
	p.AllowAttrs("name", "content").OnElements("meta")
	p.AllowElements("meta")
	p.AllowAttrs("class", "id", "style", "title", "lang", "dir").Globally()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")

	// Web fonts are linked from https only.
	p.AllowAttrs("rel", "href", "type").OnElements("link")
	p.AllowElements("link")
	p.AllowURLSchemes("https")
	p.RequireNoFollowOnLinks(false)

	p.AllowImages()
	p.AllowDataURIImages()
	p.AllowDataAttributes()

	return p
}

// SanitizeMenuHTML strips scripts and event handlers from a generated menu
// document before it is stored. The doctype is restored if the sanitizer
// dropped it.
func SanitizeMenuHTML(document string) string {
	clean := menuPolicy.Sanitize(document)
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(clean)), "<!doctype") {
		clean = "<!DOCTYPE html>\n" + clean
	}
	return clean
}
