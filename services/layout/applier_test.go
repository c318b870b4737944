package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestApplyPositionsAcrossColumns(t *testing.T) {
	positions := []Position{
		{Left: "10px", Top: "20px", Width: "300px", Height: "150px"},
		{Left: "400px", Top: "20px", Width: "300px", Height: "150px"},
		{Left: "10px", Top: "400px"},
		{Left: "400px", Top: "400px", Width: "50mm"},
	}

	out := ApplyPositions(twoColumnMenu, positions)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n"))

	root := mustParse(t, out)
	page := queryOne(t, root, PageSelector)
	assert.Contains(t, styleOf(page), "position: relative")

	sections := queryAll(root, ".menu-section")
	require.Len(t, sections, 4)

	// Reparented in input order, after the page's original children.
	var children []*html.Node
	for c := page.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, c)
		}
	}
	require.Len(t, children, 6)
	assert.Equal(t, sections, children[2:])

	for i, section := range sections {
		assert.Same(t, page, section.Parent)
		style := styleOf(section)
		assert.Contains(t, style, "position: absolute")
		assert.Contains(t, style, "left: "+positions[i].Left.String())
		assert.Contains(t, style, "top: "+positions[i].Top.String())
		assert.Contains(t, style, "box-sizing: border-box")
	}
	assert.Equal(t, "Entrées", textContent(queryOne(t, sections[0], "h2")))
	assert.Equal(t, "Boissons", textContent(queryOne(t, sections[3], "h2")))

	assert.NotContains(t, styleOf(sections[2]), "width")
	assert.NotContains(t, styleOf(sections[2]), "height")
	assert.Contains(t, styleOf(sections[3]), "width: 50mm")

	// The emptied columns stay where they were.
	assert.Empty(t, queryAll(queryOne(t, root, ".col-left"), ".menu-section"))
	assert.Empty(t, queryAll(queryOne(t, root, ".col-right"), ".menu-section"))
}

func TestApplyPositionsFewerPositions(t *testing.T) {
	out := ApplyPositions(twoColumnMenu, []Position{
		{Left: "0px", Top: "0px"},
		{Left: "0px", Top: "250px"},
	})
	root := mustParse(t, out)
	page := queryOne(t, root, PageSelector)

	sections := queryAll(root, ".menu-section")
	require.Len(t, sections, 4)

	assert.Same(t, page, sections[2].Parent)
	assert.Same(t, page, sections[3].Parent)
	assert.Contains(t, styleOf(sections[2]), "position: absolute")
	assert.Contains(t, styleOf(sections[3]), "position: absolute")

	// Document order now lists the untouched right column first.
	right := queryOne(t, root, ".col-right")
	assert.Same(t, right, sections[0].Parent)
	assert.Same(t, right, sections[1].Parent)
	assert.False(t, hasAttr(sections[0], "style"))
	assert.False(t, hasAttr(sections[1], "style"))
	assert.Equal(t, "Desserts", textContent(queryOne(t, sections[0], "h2")))
}

func TestApplyPositionsNoSections(t *testing.T) {
	documents := map[string]string{
		"no sections":  `<html><body><div class="menu-page"><p>Menu du jour</p></div></body></html>`,
		"one section":  `<html><body><div class="menu-page"><div class="menu-section"><h2>Plats</h2></div></div></body></html>`,
		"not html":     "just some text",
		"empty string": "",
	}

	for name, document := range documents {
		t.Run(name, func(t *testing.T) {
			out := ApplyPositions(document, []Position{{Left: "10px", Top: "10px"}})
			assert.Equal(t, document, out)
		})
	}
}

func TestApplyPositionsMinHeight(t *testing.T) {
	tests := []struct {
		name      string
		pageStyle string
		positions []Position
		expected  string
	}{
		{
			name:      "Uses the bottom-most edge",
			positions: []Position{{Top: "100px", Height: "150px"}, {Top: "300px"}},
			expected:  "min-height: 540px",
		},
		{
			name:      "Default height when omitted",
			positions: []Position{{Top: "0px"}},
			expected:  "min-height: 240px",
		},
		{
			name:      "Grows a smaller existing value",
			pageStyle: "min-height: 100px",
			positions: []Position{{Top: "500px", Height: "100px"}},
			expected:  "min-height: 640px",
		},
		{
			name:      "Never shrinks a larger existing value",
			pageStyle: "min-height: 2000px",
			positions: []Position{{Top: "500px", Height: "100px"}},
			expected:  "min-height: 2000px",
		},
		{
			name:      "Physical existing value is compared in pixels",
			pageStyle: "min-height: 297mm",
			positions: []Position{{Top: "100px", Height: "100px"}},
			expected:  "min-height: 297mm",
		},
		{
			name:      "Counts positions without a section",
			positions: []Position{{Top: "0px"}, {Top: "10px"}, {Top: "10px"}, {Top: "10px"}, {Top: "900px", Height: "60px"}},
			expected:  "min-height: 1000px",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			document := strings.Replace(twoColumnMenu, `<div class="menu-page">`,
				`<div class="menu-page" style="`+tt.pageStyle+`">`, 1)

			root := mustParse(t, ApplyPositions(document, tt.positions))
			page := queryOne(t, root, PageSelector)
			assert.Contains(t, styleOf(page), tt.expected)
			assert.Equal(t, 1, strings.Count(styleOf(page), "min-height"))
		})
	}
}

func TestApplyPositionsKeepsExistingSizing(t *testing.T) {
	document := `<div class="menu-page" style="padding: 12mm; position: static">
		<div class="menu-section" style="width: 48%; color: red"><h2>A</h2></div>
		<div class="menu-section"><h2>B</h2></div>
	</div>`

	root := mustParse(t, ApplyPositions(document, []Position{{Left: "5px", Top: "6px"}}))
	page := queryOne(t, root, PageSelector)
	sections := queryAll(root, ".menu-section")
	require.Len(t, sections, 2)

	assert.Equal(t, "padding: 12mm; position: relative; min-height: 246px", styleOf(page))
	assert.Equal(t, "width: 48%; color: red; position: absolute; left: 5px; top: 6px; box-sizing: border-box",
		styleOf(sections[1]))
}

func TestApplyPositionsWithoutPageClass(t *testing.T) {
	t.Run("Nearest common ancestor", func(t *testing.T) {
		document := `<html><body><main class="sheet">
			<div class="left"><section>A</section></div>
			<div class="right"><section>B</section></div>
		</main></body></html>`

		root := mustParse(t, ApplyPositions(document, []Position{{Left: "0px", Top: "0px"}, {Left: "0px", Top: "300px"}}))
		sheet := queryOne(t, root, "main.sheet")
		assert.Contains(t, styleOf(sheet), "position: relative")
		for _, s := range queryAll(root, "section") {
			assert.Same(t, sheet, s.Parent)
		}
	})

	t.Run("Sections directly in body", func(t *testing.T) {
		document := `<html><body><section>A</section><section>B</section></body></html>`
		assert.Equal(t, document, ApplyPositions(document, []Position{{Left: "0px", Top: "0px"}}))
	})
}

func TestApplyPositionsRerun(t *testing.T) {
	positions := []Position{
		{Left: "10px", Top: "20px"},
		{Left: "10px", Top: "300px"},
		{Left: "400px", Top: "20px"},
		{Left: "400px", Top: "300px"},
	}
	first := ApplyPositions(twoColumnMenu, positions)

	moved := append([]Position(nil), positions...)
	moved[0] = Position{Left: "200px", Top: "700px", Height: "100px"}
	second := ApplyPositions(first, moved)

	assert.Len(t, DetectSections(second), 4)
	root := mustParse(t, second)
	sections := queryAll(root, ".menu-section")
	require.Len(t, sections, 4)
	style := styleOf(sections[0])
	assert.Contains(t, style, "left: 200px")
	assert.Contains(t, style, "top: 700px")
	assert.Equal(t, 1, strings.Count(style, "position:"))
	assert.Contains(t, styleOf(queryOne(t, root, PageSelector)), "min-height: 840px")
}

func TestLengthUnmarshalJSON(t *testing.T) {
	var pos Position
	err := json.Unmarshal([]byte(`{"left": 10.5, "top": "20", "width": "50mm", "height": null}`), &pos)
	require.NoError(t, err)

	assert.Equal(t, Length("10.5px"), pos.Left)
	assert.Equal(t, Length("20px"), pos.Top)
	assert.Equal(t, Length("50mm"), pos.Width)
	assert.True(t, pos.Height.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"left": true}`), &pos))

	require.NoError(t, json.Unmarshal([]byte(`{"left": "-12.5PX", "top": ".5in", "width": "40%", "height": ""}`), &pos))
	assert.Equal(t, Length("-12.5px"), pos.Left)
	assert.Equal(t, Length(".5in"), pos.Top)
	assert.Equal(t, Length("40%"), pos.Width)
	assert.True(t, pos.Height.IsZero())

	for _, raw := range []string{
		`{"left": "0px; background-image: url(https://evil.example/x.png)"}`,
		`{"top": "calc(10px + 2mm)"}`,
		`{"width": "auto"}`,
		`{"height": "10px;"}`,
		`{"left": "12vw"}`,
	} {
		assert.Error(t, json.Unmarshal([]byte(raw), &pos), raw)
	}
}

func TestApplyPositionsIgnoresMalformedLengths(t *testing.T) {
	out := ApplyPositions(twoColumnMenu, []Position{
		{Left: "0px; background-image: url(https://evil.example/x.png)", Top: "5px", Width: "1px; color: red"},
		{Left: "10px", Top: "20px"},
	})

	assert.NotContains(t, out, "evil.example")
	assert.NotContains(t, out, "color: red")

	root := mustParse(t, out)
	sections := queryAll(root, ".menu-section")
	require.Len(t, sections, 4)
	moved := styleOf(sections[2])
	assert.Contains(t, moved, "left: 0px")
	assert.Contains(t, moved, "top: 5px")
	assert.NotContains(t, moved, "width")
}

func TestApplyPositionsRoundTrip(t *testing.T) {
	document := strings.Replace(twoColumnMenu, `<div class="menu-page">`,
		`<div class="menu-page" style="background-color: #FDF6E3; min-height: 2000px">`, 1)
	positions := []Position{
		{Left: "10px", Top: "20px", Width: "300px"},
		{Left: "10px", Top: "300px"},
		{Left: "400px", Top: "20px"},
		{Left: "400px", Top: "1300px", Height: "100px"},
	}

	first := ApplyPositions(document, positions)
	second := ApplyPositions(first, positions)

	root := mustParse(t, second)
	page := queryOne(t, root, PageSelector)
	assert.Contains(t, styleOf(page), "min-height: 2000px")
	assert.Contains(t, styleOf(page), "background-color: #FDF6E3")
	assert.Contains(t, styleOf(queryAll(root, ".menu-section")[0]), "width: 300px")

	// The paginator reads back what the applier wrote.
	printed := mustParse(t, PreparePDFDocument(second))
	assert.Contains(t, styleOf(queryOne(t, printed, PageSelector)), "min-height: 2000px !important")
	assert.Contains(t, styleOf(queryOne(t, printed, "body")), "background-color: #fdf6e3 !important")
}

func TestLengthPixels(t *testing.T) {
	tests := []struct {
		in       Length
		expected float64
		ok       bool
	}{
		{"120px", 120, true},
		{"120", 120, true},
		{"1in", 96, true},
		{"72pt", 96, true},
		{"2.54cm", 96, true},
		{"50%", 0, false},
		{"2vmin", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		v, ok := tt.in.Pixels()
		assert.Equal(t, tt.ok, ok, string(tt.in))
		assert.InDelta(t, tt.expected, v, 0.001, string(tt.in))
	}

	mm, ok := Length(PageHeight).Pixels()
	assert.True(t, ok)
	assert.InDelta(t, 1122.52, mm, 0.01)
}
