package services

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"menu_studio_app_go/services/layout"
)

// MeasureSections renders a document with its pages locked to A4 and returns
// the box of every tagged section relative to its page. Sections with no
// meaningful rendered height are flagged hidden, never dropped.
func (r *ChromeRenderer) MeasureSections(ctx context.Context, htmlContent string) ([]layout.MeasuredSection, error) {
	ctx, cancel := r.newBrowserContext(ctx)
	defer cancel()

	var boxes []layout.Box
	err := chromedp.Run(ctx,
		loadDocument(htmlContent),
		chromedp.Evaluate(layout.MeasurementScript, &boxes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to measure sections: %w", err)
	}
	return layout.MeasuredSections(boxes, layout.DefaultMinSectionHeight), nil
}

// InspectSectionLayout returns the current on-page boxes of a menu's
// sections, used to seed the drag and resize editor. Entry i is section i of
// DetectSections. The scaler is kept out of the measurement so boxes are in
// unscaled page coordinates.
func InspectSectionLayout(ctx context.Context, document string) ([]layout.MeasuredSection, error) {
	return Browser.MeasureSections(ctx, lockedForMeasurement(document))
}

// lockedForMeasurement tags the detected sections and applies the A4 lock,
// marking pages as already scaled so the shrink-to-fit script leaves them
// alone.
func lockedForMeasurement(document string) string {
	return layout.MarkPagesScaled(layout.NormalizeForDisplay(layout.TagSections(document)))
}
