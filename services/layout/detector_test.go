package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func headings(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Heading)
	}
	return out
}

func TestDetectSections(t *testing.T) {
	tests := []struct {
		name     string
		document string
		expected []string
	}{
		{
			name:     "Sections split across columns",
			document: twoColumnMenu,
			expected: []string{"Entrées", "Plats", "Desserts", "Boissons"},
		},
		{
			name: "Section tags",
			document: `<div class="menu-page">
				<section><h2>Pizzas</h2></section>
				<section><h2>Pasta</h2></section>
				<section><h2>Dolci</h2></section>
			</div>`,
			expected: []string{"Pizzas", "Pasta", "Dolci"},
		},
		{
			name: "Nested matches are not top-level",
			document: `<div class="menu-page">
				<div class="category"><h3 class="category-title">Starters</h3><div class="section-row">Bread</div></div>
				<div class="category"><h3 class="category-title">Mains</h3><div class="section-row">Fish</div></div>
			</div>`,
			expected: []string{"Starters", "Mains"},
		},
		{
			name: "Exact class tokens ignore wrappers",
			document: `<div class="menu-page"><div class="menu-sections">
				<div class="menu-section"><h2>Tapas</h2></div>
				<div class="menu-section"><h2>Raciones</h2></div>
			</div></div>`,
			expected: []string{"Tapas", "Raciones"},
		},
		{
			name: "Strategy with a single top-level match falls through",
			document: `<div class="menu-page"><div class="menu-category-list">
				<section class="menu-category-item"><h2>Sushi</h2></section>
				<section class="menu-category-item"><h2>Ramen</h2></section>
			</div></div>`,
			expected: []string{"Sushi", "Ramen"},
		},
		{
			name: "Document order is kept",
			document: `<div class="menu-page">
				<div class="right"><div class="menu-category"><h2>B</h2></div></div>
				<div class="left"><div class="menu-category"><h2>A</h2></div></div>
			</div>`,
			expected: []string{"B", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := DetectSections(tt.document)
			assert.Equal(t, tt.expected, headings(sections))
			for i, s := range sections {
				assert.Equal(t, i, s.Index)
			}
		})
	}
}

func TestDetectSectionsNoneFound(t *testing.T) {
	documents := map[string]string{
		"empty page":     `<div class="menu-page"></div>`,
		"single section": `<div class="menu-page"><div class="menu-section"><h2>Only</h2></div></div>`,
		"single section tag": `<div class="menu-page"><section><h2>Only</h2></section>
			<div class="dish">Soup</div><div class="dish">Salad</div></div>`,
		"plain paragraphs": `<div class="menu-page"><p>One</p><p>Two</p></div>`,
	}

	for name, document := range documents {
		t.Run(name, func(t *testing.T) {
			sections := DetectSections(document)
			assert.NotNil(t, sections)
			assert.Empty(t, sections)
		})
	}
}

func TestDetectSectionsDescriptor(t *testing.T) {
	sections := DetectSections(`<div class="menu-page">
		<section class="menu-section dark"><h2>  Vins   rouges </h2><p>Bordeaux</p></section>
		<section class="menu-section"><p>Eaux minérales et sodas</p></section>
	</div>`)

	assert.Len(t, sections, 2)
	assert.Equal(t, "section", sections[0].Tag)
	assert.Equal(t, []string{"menu-section", "dark"}, sections[0].Classes)
	assert.Equal(t, "Vins rouges", sections[0].Heading)
	assert.Equal(t, "Eaux minérales et sodas", sections[1].Heading)
}
