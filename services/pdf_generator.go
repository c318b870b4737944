package services

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"menu_studio_app_go/services/layout"
)

// getChromePath returns the Chrome executable path from environment variable
func getChromePath() string {
	return os.Getenv("CHROME_PATH")
}

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns the options for menu exports: A4 with no outer
// margins, since menu pages carry their own padding.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
	}
}

// BrowserRenderer renders documents in a headless browser
type BrowserRenderer interface {
	PrintPDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error)
	MeasureSections(ctx context.Context, htmlContent string) ([]layout.MeasuredSection, error)
}

// Browser is the global renderer instance
var Browser BrowserRenderer = &ChromeRenderer{}

// ChromeRenderer implements BrowserRenderer with chromedp. A fresh browser is
// started per call, so concurrent exports never share a tab.
type ChromeRenderer struct {
	ExecPath string
}

// NewChromeRenderer creates a renderer, falling back to CHROME_PATH
func NewChromeRenderer(execPath string) *ChromeRenderer {
	if execPath == "" {
		execPath = getChromePath()
	}
	return &ChromeRenderer{ExecPath: execPath}
}

// newBrowserContext starts a headless browser bound to ctx. Cancelling ctx,
// or its deadline passing, tears the browser down.
func (r *ChromeRenderer) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)

	// Check for custom Chrome path (for headless-shell in Docker)
	execPath := r.ExecPath
	if execPath == "" {
		execPath = getChromePath()
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// loadDocument replaces the blank page's content with htmlContent and waits
// for web fonts, since font swaps change every measured height.
func loadDocument(htmlContent string) chromedp.Tasks {
	var fontsReady bool
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts ? document.fonts.ready.then(function () { return true; }) : true`,
			&fontsReady, awaitPromise),
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// paperSize returns the paper dimensions in inches
func paperSize(options PDFOptions) (float64, float64) {
	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth = 8.5
		paperHeight = 14.0
	case "letter":
		paperWidth = 8.5
		paperHeight = 11.0
	default: // A4
		paperWidth = 8.27
		paperHeight = 11.69
	}

	// Swap dimensions for landscape
	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}
	return paperWidth, paperHeight
}

// PrintPDF renders an already paginated document to PDF
func (r *ChromeRenderer) PrintPDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error) {
	ctx, cancel := r.newBrowserContext(ctx)
	defer cancel()

	paperWidth, paperHeight := paperSize(options)

	// Convert points to inches for margins
	marginTop := float64(options.MarginTop) / 72.0
	marginBottom := float64(options.MarginBottom) / 72.0
	marginLeft := float64(options.MarginLeft) / 72.0
	marginRight := float64(options.MarginRight) / 72.0

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		loadDocument(htmlContent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithMarginRight(marginRight).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}

// GeneratePDF paginates a menu document and renders it to PDF. The caller's
// context bounds the whole export; nothing inside retries.
func GeneratePDF(ctx context.Context, document string, options PDFOptions) ([]byte, error) {
	return Browser.PrintPDF(ctx, layout.PreparePDFDocument(document), options)
}
