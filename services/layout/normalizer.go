package layout

import (
	"golang.org/x/net/html/atom"
)

// lockStyle pins every page to the physical sheet, overriding whatever sizing
// the generator emitted.
const lockStyle = PageSelector + ` {
  width: ` + PageWidth + ` !important;
  height: ` + PageHeight + ` !important;
  min-height: unset !important;
  max-height: ` + PageHeight + ` !important;
  overflow: hidden !important;
  box-sizing: border-box !important;
  position: relative !important;
}`

// NormalizeForDisplay locks page boxes to A4 and embeds the shrink-to-fit
// script used by the live preview. Applying it more than once is a no-op.
func NormalizeForDisplay(document string) string {
	root, ok := parseDocument(document)
	if !ok {
		return document
	}

	head := ensureHead(root)
	if !hasMarkedElement(root, atom.Style, AttrFitLock) {
		head.AppendChild(newRawElement(atom.Style, AttrFitLock, lockStyle))
	}
	if !hasMarkedElement(root, atom.Script, AttrFitScript) {
		head.AppendChild(newRawElement(atom.Script, AttrFitScript, fitScript))
	}

	out, ok := renderDocument(root)
	if !ok {
		return document
	}
	return out
}

// MarkPagesScaled flags every page as already fit, which turns the embedded
// scaler into a no-op for that render.
func MarkPagesScaled(document string) string {
	root, ok := parseDocument(document)
	if !ok {
		return document
	}

	pages := findPages(root)
	if len(pages) == 0 {
		return document
	}
	for _, page := range pages {
		setAttr(page, AttrFitScaled, "true")
	}

	out, ok := renderDocument(root)
	if !ok {
		return document
	}
	return out
}
