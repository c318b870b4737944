package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu_studio_app_go/services/layout"
)

const tavernMenu = `<html><head></head><body><div class="menu-page">
<div class="left"><section class="menu-section"><h2>Starters</h2></section><section class="menu-section"><h2>Mains</h2></section></div>
<div class="right"><section class="menu-section"><h2>Drinks</h2></section></div>
</div></body></html>`

func writeFixture(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	var stdout bytes.Buffer
	root := rootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestDetectCommand(t *testing.T) {
	out, err := run(t, "detect", writeFixture(t, "menu.html", tavernMenu))
	require.NoError(t, err)

	var sections []layout.Section
	require.NoError(t, json.Unmarshal([]byte(out), &sections))
	require.Len(t, sections, 3)
	assert.Equal(t, "Drinks", sections[2].Heading)
}

func TestDetectCommandOutput(t *testing.T) {
	out, err := run(t, "detect", writeFixture(t, "plain.html", `<div class="menu-page"><p>Plat du jour</p></div>`))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	target := filepath.Join(t.TempDir(), "sections.json")
	_, err = run(t, "detect", writeFixture(t, "menu.html", tavernMenu), "-o", target)
	require.NoError(t, err)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "[\n  {"))

	_, err = run(t, "detect", writeFixture(t, "menu.html", tavernMenu), "-o", filepath.Join(t.TempDir(), "missing", "sections.json"))
	assert.ErrorContains(t, err, "failed to write")

	_, err = run(t, "detect", filepath.Join(t.TempDir(), "absent.html"))
	assert.ErrorContains(t, err, "failed to read document")
}

func TestNormalizeAndPaginateCommands(t *testing.T) {
	input := writeFixture(t, "menu.html", tavernMenu)

	out, err := run(t, "normalize", input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, layout.AttrFitLock)

	target := filepath.Join(t.TempDir(), "print.html")
	out, err = run(t, "paginate", input, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), layout.AttrPdfPagination)
}

func TestApplyCommand(t *testing.T) {
	input := writeFixture(t, "menu.html", tavernMenu)
	positions := writeFixture(t, "positions.json", `[{"left":0,"top":0},{"left":0,"top":260},{"left":"105mm","top":0,"width":"90mm"}]`)

	out, err := run(t, "apply", input, "--positions", positions)
	require.NoError(t, err)
	assert.Contains(t, out, "left: 105mm")
	assert.Contains(t, out, "width: 90mm")
	assert.Contains(t, out, "min-height: 500px")

	_, err = run(t, "apply", input)
	assert.Error(t, err)
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "detect", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)

	_, err = run(t, "export", writeFixture(t, "menu.html", tavernMenu))
	assert.EqualError(t, err, "--out is required for PDF output")
}
