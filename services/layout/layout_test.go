package layout

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// twoColumnMenu splits four categories across two column containers.
const twoColumnMenu = `<!DOCTYPE html>
<html>
<head><title>Carte</title>
<style>.menu-page { background: #FDF6E3; padding: 20mm; }</style>
</head>
<body>
<div class="menu-page">
  <header class="menu-header"><h1>Le Bistrot</h1></header>
  <div class="columns">
    <div class="col-left">
      <div class="menu-section"><h2>Entrées</h2><div class="menu-item">Soupe à l&#39;oignon</div></div>
      <div class="menu-section"><h2>Plats</h2><div class="menu-item">Boeuf bourguignon</div></div>
    </div>
    <div class="col-right">
      <div class="menu-section"><h2>Desserts</h2><div class="menu-item">Tarte Tatin</div></div>
      <div class="menu-section"><h2>Boissons</h2><div class="menu-item">Vin rouge</div></div>
    </div>
  </div>
</div>
</body>
</html>`

func mustParse(t *testing.T, document string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(document))
	require.NoError(t, err)
	return root
}

func queryAll(root *html.Node, selector string) []*html.Node {
	return cascadia.MustCompile(selector).MatchAll(root)
}

func queryOne(t *testing.T, root *html.Node, selector string) *html.Node {
	t.Helper()
	n := cascadia.MustCompile(selector).MatchFirst(root)
	require.NotNil(t, n, "no element matches %q", selector)
	return n
}

func styleOf(n *html.Node) string {
	v, _ := getAttr(n, "style")
	return v
}
