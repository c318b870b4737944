package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Layout mode constants. A menu starts in flow layout as generated and moves
// to manual once a user commits a drag/resize arrangement. There is no way
// back.
const (
	LayoutModeGenerated = "generated"
	LayoutModeManual    = "manual"
)

// Menu is a printable menu document produced by the generation pipeline
type Menu struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`

	// Content is the canonical HTML document. Only layout commits write it
	// back; preview and export transforms are applied per use.
	Content string `gorm:"type:text;not null" json:"-"`

	LayoutMode string `gorm:"not null;default:generated" json:"layout_mode"`

	// Versioning
	Version int `gorm:"not null;default:1" json:"version"`
}

// BeforeCreate hook to generate UUID
func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.LayoutMode == "" {
		m.LayoutMode = LayoutModeGenerated
	}
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

// TableName specifies the table name for Menu model
func (Menu) TableName() string {
	return "menus"
}

// IsManuallyPositioned reports whether sections were placed by hand
func (m *Menu) IsManuallyPositioned() bool {
	return m.LayoutMode == LayoutModeManual
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// ExportFileName returns a download file name derived from the menu name
func (m *Menu) ExportFileName() string {
	slug := strings.ToLower(strings.TrimSpace(m.Name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	// Limit to 50 characters
	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	if slug == "" {
		slug = "menu"
	}
	return slug + ".pdf"
}
