package layout

import (
	"log"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Min-height bookkeeping for manually positioned pages.
const (
	defaultSectionHeight = 200.0
	pageBottomMargin     = 40.0
)

// ApplyPositions commits a manual arrangement. positions[i] belongs to the
// i-th detected section. Lengths that are not a plain number with a unit are
// ignored, so positions never inject other declarations. Matched sections become absolutely positioned direct
// children of their page, so sections dragged out of different column
// containers share one coordinate space. Sections without a position are left
// untouched. When nothing can be positioned the input is returned unchanged.
//
// The result is the new canonical document; there is no way back to the
// original flow layout.
func ApplyPositions(document string, positions []Position) string {
	root, ok := parseDocument(document)
	if !ok {
		return document
	}

	sections := Detect(root)
	if len(sections) < 1 {
		return document
	}

	page := enclosingPage(root, sections)
	if page == nil {
		log.Printf("[WARNING] layout: no page element encloses the %d detected sections", len(sections))
		return document
	}

	pageStyle := parseInlineStyle(page)
	pageStyle.set("position", "relative", false)

	for i, pos := range positions {
		if i >= len(sections) {
			break
		}
		section := sections[i]

		style := parseInlineStyle(section)
		style.set("position", "absolute", false)
		style.set("left", lengthOrZero(pos.Left), false)
		style.set("top", lengthOrZero(pos.Top), false)
		if pos.Width.Valid() {
			style.set("width", pos.Width.String(), false)
		}
		if pos.Height.Valid() {
			style.set("height", pos.Height.String(), false)
		}
		style.set("box-sizing", "border-box", false)
		style.apply(section)

		section.Parent.RemoveChild(section)
		page.AppendChild(section)
	}

	if required, ok := requiredMinHeight(positions); ok {
		current := 0.0
		if v, ok := pageStyle.get("min-height"); ok {
			current, _ = toPixels(v)
		}
		if required > current {
			pageStyle.set("min-height", formatPixels(required), false)
		}
	}
	pageStyle.apply(page)

	out, ok := renderDocument(root)
	if !ok {
		return document
	}
	return out
}

// enclosingPage finds the single element all sections share as their
// coordinate space: a page box when one contains every section, otherwise the
// nearest common ancestor below body.
func enclosingPage(root *html.Node, sections []*html.Node) *html.Node {
	for _, page := range findPages(root) {
		if containsAll(page, sections) {
			return page
		}
	}

	for p := sections[0].Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if p.DataAtom == atom.Body || p.DataAtom == atom.Html {
			return nil
		}
		if containsAll(p, sections) {
			return p
		}
	}
	return nil
}

func containsAll(ancestor *html.Node, nodes []*html.Node) bool {
	for _, n := range nodes {
		if !isAncestor(ancestor, n) {
			return false
		}
	}
	return true
}

// requiredMinHeight is the bottom-most edge over all positions plus a
// margin. Positions with a missing or non-absolute height count as 200px.
func requiredMinHeight(positions []Position) (float64, bool) {
	var max float64
	var found bool
	for _, pos := range positions {
		top, _ := pos.Top.Pixels()
		height, ok := pos.Height.Pixels()
		if !ok {
			height = defaultSectionHeight
		}
		if bottom := top + height + pageBottomMargin; !found || bottom > max {
			max, found = bottom, true
		}
	}
	return max, found
}

// lengthOrZero returns l, or 0px when it is missing or not a plain length.
func lengthOrZero(l Length) string {
	if !l.Valid() {
		return "0px"
	}
	return l.String()
}
