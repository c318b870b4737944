package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuExport records a PDF rendered from a menu
type MenuExport struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	MenuID string `gorm:"type:uuid;not null;index" json:"menu_id"`
	Menu   Menu   `gorm:"foreignKey:MenuID" json:"-"`

	// Menu version the PDF was rendered from
	MenuVersion int `gorm:"not null" json:"menu_version"`

	// File info
	FileName string `gorm:"not null" json:"file_name"`
	FilePath string `gorm:"not null" json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// BeforeCreate hook to generate UUID
func (e *MenuExport) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for MenuExport model
func (MenuExport) TableName() string {
	return "menu_exports"
}
