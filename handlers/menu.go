package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"menu_studio_app_go/config"
	"menu_studio_app_go/db"
	"menu_studio_app_go/models"
	"menu_studio_app_go/services"
	"menu_studio_app_go/services/layout"
	"menu_studio_app_go/templates/pages"
)

func render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// appURL builds an absolute link on the configured public origin
func appURL(cfg *config.Config, format string, args ...interface{}) string {
	return strings.TrimRight(cfg.AppURL, "/") + fmt.Sprintf(format, args...)
}

// CreateMenuRequest is the body accepted by CreateMenuHandler
type CreateMenuRequest struct {
	Name string `json:"name" form:"name"`
	HTML string `json:"html" form:"html"`
}

// SaveLayoutRequest is the body accepted by SaveMenuLayoutHandler
type SaveLayoutRequest struct {
	Positions []layout.Position `json:"positions"`
}

// menuHTTPError maps service errors to HTTP errors
func menuHTTPError(err error) error {
	switch {
	case errors.Is(err, services.ErrMenuNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Menu not found")
	case errors.Is(err, services.ErrExportNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Export not found")
	case errors.Is(err, services.ErrNoPositions):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrLayoutConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "Rendering timed out")
	default:
		log.Printf("[ERROR] %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// CreateMenuHandler stores a generated menu document
func CreateMenuHandler(c echo.Context) error {
	var req CreateMenuRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	// Multipart uploads carry the document as a file
	if file, err := c.FormFile("file"); err == nil {
		content, err := services.ReadMenuUpload(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		req.HTML = content
		if req.Name == "" {
			req.Name = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
		}
	}

	menu, err := services.CreateMenu(db.DB, req.Name, req.HTML)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	log.Printf("[INFO] Menu %s created (%d sections detected)", menu.ID, len(services.DetectMenuSections(menu)))
	return c.JSON(http.StatusCreated, menu)
}

// GetMenuHandler returns menu metadata
func GetMenuHandler(c echo.Context) error {
	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}
	return c.JSON(http.StatusOK, menu)
}

// MenuPreviewHandler serves the editor preview: the menu locked to A4 with
// shrink-to-fit, framed by a toolbar
func MenuPreviewHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}

	return render(c, pages.MenuPreview(pages.MenuPreviewViewModel{
		Name:      menu.Name,
		Version:   menu.Version,
		Manual:    menu.IsManuallyPositioned(),
		ExportURL: appURL(cfg, "/menus/%s/export.pdf", menu.ID),
		Document:  services.RenderMenuPreview(menu),
	}))
}

// GetMenuSectionsHandler lists the sections the editor can move
func GetMenuSectionsHandler(c echo.Context) error {
	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"layout_mode": menu.LayoutMode,
		"version":     menu.Version,
		"sections":    services.DetectMenuSections(menu),
	})
}

// InspectMenuLayoutHandler measures the rendered section boxes in a headless browser
func InspectMenuLayoutHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.InspectTimeout)
	defer cancel()

	measured, err := services.InspectMenuLayout(ctx, menu)
	if err != nil {
		return menuHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":  menu.Version,
		"sections": measured,
	})
}

// SaveMenuLayoutHandler commits a drag/resize arrangement
func SaveMenuLayoutHandler(c echo.Context) error {
	var req SaveLayoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid positions")
	}

	menu, changed, err := services.SaveMenuLayout(db.DB, c.Param("id"), req.Positions)
	if err != nil {
		return menuHTTPError(err)
	}

	if changed {
		log.Printf("[INFO] Menu %s layout saved (version %d, %d positions)", menu.ID, menu.Version, len(req.Positions))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"menu":    menu,
		"changed": changed,
	})
}

// ExportMenuPDFHandler renders the menu to a paginated PDF download
func ExportMenuPDFHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}

	// The timeout bounds the whole export; a slow render is abandoned, not retried
	ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.ExportTimeout)
	defer cancel()

	start := time.Now()
	_, pdfBytes, err := services.ExportMenuPDF(ctx, db.DB, menu, services.DefaultPDFOptions())
	if err != nil {
		return menuHTTPError(err)
	}
	log.Printf("[INFO] Menu %s exported (%d bytes in %s)", menu.ID, len(pdfBytes), time.Since(start).Round(time.Millisecond))

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", menu.ExportFileName()))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// MenuExportResponse is a stored export with its download link
type MenuExportResponse struct {
	models.MenuExport
	DownloadURL string `json:"download_url"`
}

// GetMenuExportsHandler lists a menu's previous exports
func GetMenuExportsHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}

	exports, err := services.GetMenuExports(db.DB, menu.ID)
	if err != nil {
		return menuHTTPError(err)
	}

	response := make([]MenuExportResponse, 0, len(exports))
	for _, e := range exports {
		response = append(response, MenuExportResponse{
			MenuExport:  e,
			DownloadURL: appURL(cfg, "/menus/%s/exports/%s", menu.ID, e.ID),
		})
	}
	return c.JSON(http.StatusOK, response)
}

// DownloadMenuExportHandler serves a stored export
func DownloadMenuExportHandler(c echo.Context) error {
	menu, err := services.GetMenu(db.DB, c.Param("id"))
	if err != nil {
		return menuHTTPError(err)
	}

	export, err := services.GetMenuExport(db.DB, menu.ID, c.Param("exportId"))
	if err != nil {
		return menuHTTPError(err)
	}

	// Check if using R2 storage
	if _, ok := services.Storage.(*services.R2Storage); ok {
		// Generate signed URL for R2 download (valid for 15 minutes)
		signedURL, err := services.Storage.GetSignedURL(c.Request().Context(), export.FilePath, 15*time.Minute)
		if err != nil {
			return c.String(http.StatusInternalServerError, "Failed to generate download URL")
		}
		return c.Redirect(http.StatusTemporaryRedirect, signedURL)
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), export.FilePath)
	if err != nil {
		return c.String(http.StatusNotFound, "File not found")
	}
	defer reader.Close()

	fileName := fmt.Sprintf("%s-v%d.pdf", strings.TrimSuffix(menu.ExportFileName(), ".pdf"), export.MenuVersion)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Stream(http.StatusOK, contentType, reader)
}
