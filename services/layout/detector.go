package layout

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// strategy is one selector tried by the detector. Strategies run from most
// specific to most generic until one yields at least two top-level blocks.
type strategy struct {
	selector string
	matcher  cascadia.Selector
}

// strategies lists the section selectors in priority order. Model-generated
// documents do not use stable class names, so the chain goes from exact
// section-like class tokens down to broad substring matches.
var strategies = []strategy{
	{selector: ".menu-section, .menu-category, .category-section, .category-block, .section-block"},
	{selector: `[class*="menu-section"], [class*="menu-category"], [class*="category-section"], [class*="category-block"]`},
	{selector: "section"},
	{selector: `[class*="category"], [class*="section"]`},
}

func init() {
	for i := range strategies {
		strategies[i].matcher = cascadia.MustCompile(strategies[i].selector)
	}
}

// Detect returns the top-level sections of a parsed document in document
// order, or nil when no strategy finds at least two of them. It never looks at
// rendered geometry. Rendered contexts flag short sections with
// MeasuredSections instead, so indices are the same on both sides.
func Detect(root *html.Node) []*html.Node {
	for _, s := range strategies {
		matches := s.matcher.MatchAll(root)
		if len(matches) < 2 {
			continue
		}
		if sections := topLevel(matches); len(sections) >= 2 {
			return sections
		}
	}
	return nil
}

// topLevel drops every match that has another match as an ancestor. Matches
// are in document order, so an ancestor is always seen before its descendants.
func topLevel(matches []*html.Node) []*html.Node {
	kept := make([]*html.Node, 0, len(matches))
	for _, n := range matches {
		nested := false
		for _, k := range kept {
			if isAncestor(k, n) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, n)
		}
	}
	return kept
}

// Section describes a detected content block. Index is the only stable
// identity a section has: positions are matched to sections by it.
type Section struct {
	Index   int      `json:"index"`
	Tag     string   `json:"tag"`
	Classes []string `json:"classes,omitempty"`
	Heading string   `json:"heading,omitempty"`
}

// DetectSections runs the detector over a document string.
func DetectSections(document string) []Section {
	root, ok := parseDocument(document)
	if !ok {
		return nil
	}

	nodes := Detect(root)
	sections := make([]Section, 0, len(nodes))
	for i, n := range nodes {
		class, _ := getAttr(n, "class")
		sections = append(sections, Section{
			Index:   i,
			Tag:     n.Data,
			Classes: strings.Fields(class),
			Heading: heading(n),
		})
	}
	return sections
}

var headingMatcher = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")

// heading returns the text of the first heading inside a section, falling
// back to the section's own leading text.
func heading(n *html.Node) string {
	if h := headingMatcher.MatchFirst(n); h != nil {
		return collapseSpace(textContent(h))
	}
	text := collapseSpace(textContent(n))
	if runes := []rune(text); len(runes) > 40 {
		text = string(runes[:40])
	}
	return text
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
