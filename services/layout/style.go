package layout

import (
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/net/html"
)

// declaration is one property of an inline style attribute.
type declaration struct {
	Property  string
	Value     string
	Important bool
}

// inlineStyle is an ordered, editable view of an element's style attribute.
type inlineStyle struct {
	decls []declaration
}

func parseInlineStyle(n *html.Node) *inlineStyle {
	raw, _ := getAttr(n, "style")
	return parseStyleText(raw)
}

func parseStyleText(raw string) *inlineStyle {
	s := &inlineStyle{}
	text := strings.TrimSpace(raw)
	if text == "" {
		return s
	}

	// The declaration parser drops the value of an unterminated final
	// declaration, which is how most style attributes end.
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}

	parsed, err := parser.ParseDeclarations(text)
	if err != nil {
		// Fall back to a plain split so a malformed attribute is not lost.
		for _, part := range strings.Split(raw, ";") {
			prop, val, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			s.set(strings.TrimSpace(prop), strings.TrimSpace(val), false)
		}
		return s
	}

	for _, d := range parsed {
		s.set(d.Property, d.Value, d.Important)
	}
	return s
}

func (s *inlineStyle) get(property string) (string, bool) {
	property = strings.ToLower(property)
	for i := len(s.decls) - 1; i >= 0; i-- {
		if s.decls[i].Property == property {
			return s.decls[i].Value, true
		}
	}
	return "", false
}

// set replaces the property in place, or appends it when absent.
func (s *inlineStyle) set(property, value string, important bool) {
	property = strings.ToLower(property)
	for i := range s.decls {
		if s.decls[i].Property == property {
			s.decls[i].Value = value
			s.decls[i].Important = important
			return
		}
	}
	s.decls = append(s.decls, declaration{Property: property, Value: value, Important: important})
}

func (s *inlineStyle) String() string {
	parts := make([]string, 0, len(s.decls))
	for _, d := range s.decls {
		part := d.Property + ": " + d.Value
		if d.Important {
			part += " !important"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func (s *inlineStyle) apply(n *html.Node) {
	setAttr(n, "style", s.String())
}

// Pixel conversion factors at the CSS reference resolution of 96dpi.
var unitToPx = map[string]float64{
	"px": 1,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
	"pt": 96.0 / 72.0,
}

// toPixels converts an absolute CSS length to pixels. Bare numbers are
// pixels. Relative units and keywords are not convertible.
func toPixels(value string) (float64, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v, true
	}
	for unit, factor := range unitToPx {
		if num, ok := strings.CutSuffix(value, unit); ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return 0, false
			}
			return v * factor, true
		}
	}
	return 0, false
}

func formatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// Keywords that may appear in a background shorthand but are not colours.
var backgroundKeywords = map[string]bool{
	"none": true, "repeat": true, "no-repeat": true, "repeat-x": true, "repeat-y": true,
	"space": true, "round": true, "center": true, "top": true, "bottom": true, "left": true,
	"right": true, "fixed": true, "scroll": true, "local": true, "cover": true, "contain": true,
	"auto": true, "border-box": true, "padding-box": true, "content-box": true, "text": true,
	"inherit": true, "initial": true, "unset": true, "revert": true, "transparent": true,
}

// backgroundColor extracts the colour component from a background or
// background-color value. Hex colours are normalised to #rrggbb.
func backgroundColor(value string) (string, bool) {
	for _, token := range splitTopLevel(value) {
		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, "#"):
			c, err := colorful.Hex(lower)
			if err != nil {
				continue
			}
			return c.Hex(), true
		case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") ||
			strings.HasPrefix(lower, "hsl(") || strings.HasPrefix(lower, "hsla(") ||
			strings.HasPrefix(lower, "var("):
			return token, true
		case isIdent(lower) && !backgroundKeywords[lower]:
			return token, true
		}
	}
	return "", false
}

// splitTopLevel splits a CSS value on whitespace and commas outside parentheses.
func splitTopLevel(value string) []string {
	var tokens []string
	var sb strings.Builder
	depth := 0
	flush := func() {
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
	}
	for _, r := range value {
		switch {
		case r == '(':
			depth++
			sb.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			sb.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == ','):
			flush()
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

// styleSheets parses every style element of the document except the ones
// injected by this package.
func styleSheets(root *html.Node) []*css.Stylesheet {
	var sheets []*css.Stylesheet
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			if !hasAttr(n, AttrFitLock) && !hasAttr(n, AttrPdfPagination) {
				if sheet, err := parser.Parse(textContent(n)); err == nil {
					sheets = append(sheets, sheet)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sheets
}

// qualifiedRules flattens rules, descending into at-rule blocks such as
// @media so their declarations are still considered.
func qualifiedRules(rules []*css.Rule) []*css.Rule {
	var out []*css.Rule
	for _, r := range rules {
		if r.Kind == css.QualifiedRule {
			out = append(out, r)
			continue
		}
		out = append(out, qualifiedRules(r.Rules)...)
	}
	return out
}
