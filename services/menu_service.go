package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"menu_studio_app_go/models"
	"menu_studio_app_go/services/layout"
)

var (
	// ErrMenuNotFound is returned when no menu has the requested ID
	ErrMenuNotFound = errors.New("menu not found")
	// ErrNoPositions is returned when a layout commit carries no positions
	ErrNoPositions = errors.New("at least one position is required")
	// ErrExportNotFound is returned when a menu has no export with the requested ID
	ErrExportNotFound = errors.New("export not found")
	// ErrLayoutConflict is returned when the menu changed while a layout was being applied
	ErrLayoutConflict = errors.New("menu was modified concurrently, reload and retry")
)

// CreateMenu stores a generated menu document after sanitizing it
func CreateMenu(db *gorm.DB, name string, document string) (*models.Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("menu name is required")
	}
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("menu document is required")
	}

	menu := &models.Menu{
		Name:    name,
		Content: SanitizeMenuHTML(document),
	}
	if err := db.Create(menu).Error; err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", err)
	}
	return menu, nil
}

// GetMenu retrieves a menu by ID
func GetMenu(db *gorm.DB, id string) (*models.Menu, error) {
	var menu models.Menu
	if err := db.First(&menu, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch menu: %w", err)
	}
	return &menu, nil
}

// RenderMenuPreview returns the menu document locked to A4 with the
// shrink-to-fit script. The result is for display only and never stored.
func RenderMenuPreview(menu *models.Menu) string {
	return layout.NormalizeForDisplay(menu.Content)
}

// DetectMenuSections lists the sections the editor can reposition. Detection
// always runs on the current content since structure changes between saves.
func DetectMenuSections(menu *models.Menu) []layout.Section {
	return layout.DetectSections(menu.Content)
}

// SaveMenuLayout applies a manual arrangement and persists the result as the
// menu's canonical document. It reports whether the document changed; a
// document with no detectable sections is left as it was.
func SaveMenuLayout(db *gorm.DB, id string, positions []layout.Position) (*models.Menu, bool, error) {
	if len(positions) == 0 {
		return nil, false, ErrNoPositions
	}

	menu, err := GetMenu(db, id)
	if err != nil {
		return nil, false, err
	}

	updated := layout.ApplyPositions(menu.Content, positions)
	if updated == menu.Content {
		log.Printf("[INFO] Layout for menu %s left unchanged (no repositionable sections)", menu.ID)
		return menu, false, nil
	}

	// Guard on the version read above so two editors cannot overwrite each other
	result := db.Model(&models.Menu{}).
		Where("id = ? AND version = ?", menu.ID, menu.Version).
		Updates(map[string]interface{}{
			"content":     updated,
			"layout_mode": models.LayoutModeManual,
			"version":     menu.Version + 1,
		})
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to save menu layout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, false, ErrLayoutConflict
	}

	menu.Content = updated
	menu.LayoutMode = models.LayoutModeManual
	menu.Version++
	return menu, true, nil
}

// InspectMenuLayout measures the menu's sections in a headless browser
func InspectMenuLayout(ctx context.Context, menu *models.Menu) ([]layout.MeasuredSection, error) {
	measured, err := InspectSectionLayout(ctx, menu.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect menu %s: %w", menu.ID, err)
	}
	return measured, nil
}

// ExportMenuPDF renders the menu to a paginated PDF, stores it and records the
// export, replacing any earlier export of the same menu version. The
// paginated document itself is never persisted. Without a configured storage
// backend the PDF is returned but not recorded.
func ExportMenuPDF(ctx context.Context, db *gorm.DB, menu *models.Menu, options PDFOptions) (*models.MenuExport, []byte, error) {
	pdfBytes, err := GeneratePDF(ctx, menu.Content, options)
	if err != nil {
		return nil, nil, err
	}

	if Storage == nil || !Storage.IsConfigured() {
		log.Printf("[WARNING] Storage not configured, export of menu %s is not kept", menu.ID)
		return nil, pdfBytes, nil
	}

	key := GenerateMenuExportKey(menu.ID, menu.Version)
	uploadResult, err := Storage.UploadReader(ctx, bytes.NewReader(pdfBytes), key, "application/pdf", int64(len(pdfBytes)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	export := &models.MenuExport{
		MenuID:      menu.ID,
		MenuVersion: menu.Version,
		FileName:    filepath.Base(uploadResult.Key),
		FilePath:    uploadResult.Key,
		FileSize:    uploadResult.FileSize,
	}
	if err := db.Create(export).Error; err != nil {
		// Non-fatal: the PDF is still returned to the caller
		log.Printf("[WARNING] Could not record export for menu %s: %v", menu.ID, err)
		if err := Storage.Delete(ctx, key); err != nil {
			log.Printf("[WARNING] Could not remove unrecorded export %s: %v", key, err)
		}
		return nil, pdfBytes, nil
	}

	pruneSupersededExports(ctx, db, export)
	return export, pdfBytes, nil
}

// pruneSupersededExports removes older exports of the same menu version, both
// the stored file and the record
func pruneSupersededExports(ctx context.Context, db *gorm.DB, latest *models.MenuExport) {
	var superseded []models.MenuExport
	err := db.Where("menu_id = ? AND menu_version = ? AND id <> ?", latest.MenuID, latest.MenuVersion, latest.ID).
		Find(&superseded).Error
	if err != nil {
		log.Printf("[WARNING] Could not list superseded exports for menu %s: %v", latest.MenuID, err)
		return
	}

	for _, old := range superseded {
		if err := Storage.Delete(ctx, old.FilePath); err != nil {
			log.Printf("[WARNING] Could not delete superseded export %s: %v", old.FilePath, err)
			continue
		}
		if err := db.Delete(&old).Error; err != nil {
			log.Printf("[WARNING] Could not delete export record %s: %v", old.ID, err)
		}
	}
}

// GetMenuExports lists a menu's exports, newest first
func GetMenuExports(db *gorm.DB, menuID string) ([]models.MenuExport, error) {
	var exports []models.MenuExport
	if err := db.Where("menu_id = ?", menuID).Order("created_at DESC").Find(&exports).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch menu exports: %w", err)
	}
	return exports, nil
}

// GetMenuExport retrieves one export of a menu
func GetMenuExport(db *gorm.DB, menuID, exportID string) (*models.MenuExport, error) {
	var export models.MenuExport
	if err := db.Where("menu_id = ?", menuID).First(&export, "id = ?", exportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExportNotFound, exportID)
		}
		return nil, fmt.Errorf("failed to fetch menu export: %w", err)
	}
	return &export, nil
}
