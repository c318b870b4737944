// Package layout fits model-generated menu documents to A4 pages.
//
// A document is a complete HTML string containing one or more page boxes
// (elements carrying the menu-page class). The package detects the repeatable
// content blocks of a page, locks pages to a fixed size for on-screen preview,
// reflows them for PDF export, and rewrites documents after a user manually
// repositions sections in the editor. Every transform takes and returns a
// string and never fails: when a document cannot be processed the input is
// returned as-is.
package layout

import (
	"bytes"
	"log"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page geometry and selectors shared by all transforms.
const (
	PageClass    = "menu-page"
	PageSelector = "." + PageClass
	PageWidth    = "210mm"
	PageHeight   = "297mm"

	doctype = "<!DOCTYPE html>\n"
)

// Marker attributes. Downstream components branch on their presence, so they
// must survive a parse/serialize round trip verbatim.
const (
	AttrFitScaled     = "data-fit-scaled"
	AttrFitWrapper    = "data-fit-wrapper"
	AttrFitLock       = "data-page-fit-lock"
	AttrFitScript     = "data-page-fit-script"
	AttrPdfPagination = "data-pdf-pagination"
	AttrPdfBackground = "data-pdf-background"
	AttrSectionIndex  = "data-section-index"
)

var pageMatcher = cascadia.MustCompile(PageSelector)

// parseDocument parses a document string into a node tree. The second return
// value is false when the input could not be parsed.
func parseDocument(document string) (*html.Node, bool) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		log.Printf("[WARNING] layout: failed to parse document: %v", err)
		return nil, false
	}
	return root, true
}

// renderDocument serializes a tree, always prefixed with a standard doctype.
func renderDocument(root *html.Node) (string, bool) {
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.DoctypeNode {
			root.RemoveChild(c)
		}
		c = next
	}

	var buf bytes.Buffer
	buf.WriteString(doctype)
	if err := html.Render(&buf, root); err != nil {
		log.Printf("[WARNING] layout: failed to render document: %v", err)
		return "", false
	}
	return buf.String(), true
}

// findPages returns every page box in document order.
func findPages(root *html.Node) []*html.Node {
	return pageMatcher.MatchAll(root)
}

// findElement returns the first element with the given atom, depth first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// ensureHead returns the document head, creating it when missing.
func ensureHead(root *html.Node) *html.Node {
	if head := findElement(root, atom.Head); head != nil {
		return head
	}
	htmlEl := findElement(root, atom.Html)
	if htmlEl == nil {
		htmlEl = newElement(atom.Html)
		root.AppendChild(htmlEl)
	}
	head := newElement(atom.Head)
	htmlEl.InsertBefore(head, htmlEl.FirstChild)
	return head
}

// hasMarkedElement reports whether an element of the given kind carries the
// marker attribute anywhere in the tree.
func hasMarkedElement(root *html.Node, a atom.Atom, marker string) bool {
	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == a && hasAttr(n, marker) {
			found = true
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func newElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

// newRawElement builds a style or script element holding raw text content.
func newRawElement(a atom.Atom, marker, content string) *html.Node {
	el := newElement(a, html.Attribute{Key: marker, Val: "true"})
	el.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	return el
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace != "" || attr.Key != key {
			kept = append(kept, attr)
		}
	}
	n.Attr = kept
}

// isAncestor reports whether a is a strict ancestor of n.
func isAncestor(a, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of a subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
