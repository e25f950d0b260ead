package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectFile is a reference file shared at the project level: briefs,
// brand assets, scripts. Distinct from deliverable files, which carry the
// review workflow.
type ProjectFile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	FileName    string         `gorm:"size:500;not null" json:"file_name"`
	StorageKey  string         `gorm:"uniqueIndex;size:100;not null" json:"-"`
	ContentType string         `gorm:"size:200" json:"content_type"`
	Size        int64          `json:"size"`
	UploadedBy  uint           `json:"uploaded_by"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectFile) TableName() string { return "project_files" }
