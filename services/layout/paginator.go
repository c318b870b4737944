package layout

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// paginationStyle turns locked pages into flowing ones for print. The page
// selector is more specific than the lock's and the block is injected after
// it, so it wins regardless of injection order.
const paginationStyle = `@page {
  size: A4;
  margin: 0;
}
html, body {
  margin: 0 !important;
  padding: 0 !important;
  height: auto !important;
  overflow: visible !important;
}
html body ` + PageSelector + ` {
  width: ` + PageWidth + ` !important;
  height: auto !important;
  min-height: ` + PageHeight + ` !important;
  max-height: none !important;
  overflow: visible !important;
  break-after: page;
  page-break-after: always;
}
` + PageSelector + ` section,
` + PageSelector + ` [class*="section"],
` + PageSelector + ` [class*="category"],
` + PageSelector + ` [class*="dish"],
` + PageSelector + ` [class*="item"] {
  break-inside: avoid;
  page-break-inside: avoid;
}`

// PreparePDFDocument converts a document from the locked preview layout to a
// flowing multi-page layout for the print engine. It must run on every export
// since its output is never persisted. Documents without a page box are
// returned unchanged.
func PreparePDFDocument(document string) string {
	root, ok := parseDocument(document)
	if !ok {
		return document
	}

	pages := findPages(root)
	if len(pages) == 0 {
		return document
	}

	lockedHeight, _ := toPixels(PageHeight)
	for i, page := range pages {
		// Keeps the preview scaler from running on the export render.
		setAttr(page, AttrFitScaled, "true")

		// A manually positioned page may need more than one sheet. Its
		// inline min-height has to beat the flow override below.
		style := parseInlineStyle(page)
		if v, ok := style.get("min-height"); ok {
			if px, ok := toPixels(v); ok && px > lockedHeight {
				style.set("min-height", v, true)
				style.apply(page)
			}
		}

		// No blank sheet after the last page, whatever follows it in the markup.
		if i == len(pages)-1 {
			style.set("break-after", "auto", true)
			style.set("page-break-after", "auto", true)
			style.apply(page)
		}
	}

	head := ensureHead(root)
	if !hasMarkedElement(root, atom.Style, AttrPdfPagination) {
		head.AppendChild(newRawElement(atom.Style, AttrPdfPagination, paginationStyle))
	}

	if bg, ok := resolvePageBackground(root, pages[0]); ok {
		for _, a := range []atom.Atom{atom.Html, atom.Body} {
			if el := findElement(root, a); el != nil {
				style := parseInlineStyle(el)
				style.set("background-color", bg, true)
				style.apply(el)
			}
		}
	}
	if !hasMarkedElement(root, atom.Script, AttrPdfBackground) {
		head.AppendChild(newRawElement(atom.Script, AttrPdfBackground, backgroundScript))
	}

	out, ok := renderDocument(root)
	if !ok {
		return document
	}
	return out
}

// resolvePageBackground works out the page's background colour without a
// renderer: the inline style wins, then the last stylesheet rule targeting the
// page class. One level of var() is followed through custom properties.
func resolvePageBackground(root, page *html.Node) (string, bool) {
	sheets := styleSheets(root)

	color, ok := inlineBackground(parseInlineStyle(page))
	if !ok {
		color, ok = sheetBackground(sheets)
	}
	if !ok {
		return "", false
	}

	if strings.HasPrefix(strings.ToLower(color), "var(") {
		return resolveVar(color, customProperties(sheets, parseInlineStyle(page)))
	}
	return color, true
}

func inlineBackground(style *inlineStyle) (string, bool) {
	if v, ok := style.get("background-color"); ok {
		if c, ok := backgroundColor(v); ok {
			return c, true
		}
	}
	if v, ok := style.get("background"); ok {
		return backgroundColor(v)
	}
	return "", false
}

func sheetBackground(sheets []*css.Stylesheet) (string, bool) {
	var color string
	var important, found bool
	for _, sheet := range sheets {
		for _, rule := range qualifiedRules(sheet.Rules) {
			if !anySelector(rule.Selectors, targetsPage) {
				continue
			}
			for _, d := range rule.Declarations {
				prop := strings.ToLower(d.Property)
				if prop != "background" && prop != "background-color" {
					continue
				}
				c, ok := backgroundColor(d.Value)
				if !ok || (important && !d.Important) {
					continue
				}
				color, important, found = c, d.Important, true
			}
		}
	}
	return color, found
}

// customProperties collects --name declarations from document-level rules and
// rules on the page itself. Later declarations win.
func customProperties(sheets []*css.Stylesheet, pageStyle *inlineStyle) map[string]string {
	props := make(map[string]string)
	for _, sheet := range sheets {
		for _, rule := range qualifiedRules(sheet.Rules) {
			if !anySelector(rule.Selectors, func(sel string) bool {
				switch strings.TrimSpace(sel) {
				case ":root", "html", "body", "*":
					return true
				}
				return targetsPage(sel)
			}) {
				continue
			}
			for _, d := range rule.Declarations {
				if strings.HasPrefix(d.Property, "--") {
					props[d.Property] = strings.TrimSpace(d.Value)
				}
			}
		}
	}
	for _, d := range pageStyle.decls {
		if strings.HasPrefix(d.Property, "--") {
			props[d.Property] = d.Value
		}
	}
	return props
}

// resolveVar resolves var(--name[, fallback]) against props.
func resolveVar(value string, props map[string]string) (string, bool) {
	inner := strings.TrimSpace(value)
	inner = strings.TrimSuffix(inner[len("var("):], ")")
	name, fallback, hasFallback := strings.Cut(inner, ",")

	if v, ok := props[strings.TrimSpace(name)]; ok {
		if c, ok := backgroundColor(v); ok && !strings.HasPrefix(c, "var(") {
			return c, true
		}
	}
	if hasFallback {
		if c, ok := backgroundColor(fallback); ok && !strings.HasPrefix(c, "var(") {
			return c, true
		}
	}
	return "", false
}

func anySelector(selectors []string, fn func(string) bool) bool {
	for _, sel := range selectors {
		if fn(sel) {
			return true
		}
	}
	return false
}

// targetsPage reports whether the subject of a selector is the page box.
func targetsPage(selector string) bool {
	parts := strings.FieldsFunc(selector, func(r rune) bool {
		return r == ' ' || r == '>' || r == '+' || r == '~' || r == '\n' || r == '\t'
	})
	if len(parts) == 0 {
		return false
	}
	subject := parts[len(parts)-1]
	if strings.Contains(subject, "::") {
		return false
	}

	for rest := subject; ; {
		i := strings.Index(rest, PageSelector)
		if i < 0 {
			return false
		}
		rest = rest[i+len(PageSelector):]
		if rest == "" || !isClassChar(rest[0]) {
			return true
		}
	}
}

func isClassChar(b byte) bool {
	return b == '-' || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
