package layout

import (
	"sort"
	"strconv"

	"golang.org/x/net/html"
)

// DefaultMinSectionHeight is the rendered height at or below which a section
// is treated as decoration (icon wrappers, empty dividers).
const DefaultMinSectionHeight = 4.0

// TagSections marks every detected section with its detection index so a
// rendering context measures exactly the sections Detect returns. Index
// attributes already present in the input are cleared first. The result is a
// measurement copy and is never persisted.
func TagSections(document string) string {
	root, ok := parseDocument(document)
	if !ok {
		return document
	}

	clearAttr(root, AttrSectionIndex)
	for i, n := range Detect(root) {
		setAttr(n, AttrSectionIndex, strconv.Itoa(i))
	}

	out, ok := renderDocument(root)
	if !ok {
		return document
	}
	return out
}

func clearAttr(n *html.Node, key string) {
	if n.Type == html.ElementNode {
		removeAttr(n, key)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clearAttr(c, key)
	}
}

// Box is one section box reported by MeasurementScript, in pixels relative to
// the page holding the section.
type Box struct {
	Index  int     `json:"index"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MeasuredSection is the rendered box of one detected section. Index is the
// same index DetectSections reports and ApplyPositions consumes.
//
// Hidden sections are no taller than the minimum section height. The editor
// offers no handle for them but sends their box back as measured, so every
// later position keeps its index.
type MeasuredSection struct {
	Index  int  `json:"index"`
	Hidden bool `json:"hidden"`
	Position
}

// MeasuredSections orders measurement boxes by index and flags the ones at or
// below minHeight as hidden. Nothing is dropped.
func MeasuredSections(boxes []Box, minHeight float64) []MeasuredSection {
	sorted := append([]Box(nil), boxes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	measured := make([]MeasuredSection, 0, len(sorted))
	for _, b := range sorted {
		measured = append(measured, MeasuredSection{
			Index:  b.Index,
			Hidden: b.Height <= minHeight,
			Position: Position{
				Left:   Px(b.Left),
				Top:    Px(b.Top),
				Width:  Px(b.Width),
				Height: Px(b.Height),
			},
		})
	}
	return measured
}
