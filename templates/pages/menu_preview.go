package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// MenuPreviewViewModel carries what the preview shell shows around a menu
type MenuPreviewViewModel struct {
	Name      string
	Version   int
	Manual    bool
	ExportURL string
	// Document is the display-normalized menu, shown in an isolated frame so
	// its styles never reach the toolbar.
	Document string
}

const previewShellStyle = `body { margin: 0; background: #e5e7eb; font-family: system-ui, sans-serif; }
.preview-toolbar { display: flex; gap: 16px; align-items: center; padding: 10px 20px; background: #111827; color: #f9fafb; font-size: 14px; }
.preview-toolbar .preview-title { font-weight: 600; flex: 1; }
.preview-toolbar a { color: #93c5fd; }
.preview-sheet { display: block; width: 210mm; height: 297mm; margin: 24px auto; border: 0; background: #fff; box-shadow: 0 4px 16px rgba(0, 0, 0, 0.2); }`

// MenuPreview renders the editor preview: a toolbar and the locked menu in a
// frame sized to one A4 sheet
func MenuPreview(vm MenuPreviewViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		mode := "Generated layout"
		if vm.Manual {
			mode = "Manual layout"
		}

		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
<nav class="preview-toolbar">
<span class="preview-title">%s</span>
<span class="preview-version">v%d</span>
<span class="preview-mode">%s</span>
<a class="preview-export" href="%s">Download PDF</a>
</nav>
<iframe class="preview-sheet" title="%s" sandbox="allow-scripts" srcdoc="%s"></iframe>
</body>
</html>`,
			templ.EscapeString(vm.Name),
			previewShellStyle,
			templ.EscapeString(vm.Name),
			vm.Version,
			mode,
			templ.EscapeString(string(templ.URL(vm.ExportURL))),
			templ.EscapeString(vm.Name),
			templ.EscapeString(vm.Document),
		)
		return err
	})
}
