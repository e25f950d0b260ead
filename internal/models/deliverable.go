package models

import (
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"gorm.io/gorm"
)

// Deliverable is a single piece of work inside a project: a cut, a set of
// stills, a master file. Its status walks the review workflow from pending
// through final_delivered.
type Deliverable struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProjectID     uint           `gorm:"index;not null" json:"project_id"`
	Project       *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Status        string         `gorm:"size:50;default:pending;index" json:"status"`
	RevisionsUsed int            `gorm:"default:0" json:"revisions_used"`
	DueAt         *time.Time     `json:"due_at"`
	DeliveredAt   *time.Time     `json:"delivered_at"`
	ExpiresAt     *time.Time     `gorm:"index" json:"expires_at"` // final file access cutoff
	ExpiryWarned  bool           `gorm:"default:false" json:"-"`
	CreatedBy     uint           `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Files []DeliverableFile `gorm:"foreignKey:DeliverableID" json:"files,omitempty"`
}

func (Deliverable) TableName() string { return "deliverables" }

// Snapshot maps the deliverable to the authorization engine's input type.
func (d *Deliverable) Snapshot() *authz.Deliverable {
	return &authz.Deliverable{
		ID:            d.ID,
		Status:        authz.DeliverableStatus(d.Status),
		ExpiresAt:     d.ExpiresAt,
		RevisionsUsed: d.RevisionsUsed,
	}
}

// DeliverableFile is an uploaded beta preview or final master attached to
// a deliverable. StorageKey is the opaque on-disk name; the original
// filename is kept for display and download headers only.
type DeliverableFile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	DeliverableID uint           `gorm:"index;not null" json:"deliverable_id"`
	Kind          string         `gorm:"size:20;not null;index" json:"kind"` // beta, final
	FileName      string         `gorm:"size:500;not null" json:"file_name"`
	StorageKey    string         `gorm:"uniqueIndex;size:100;not null" json:"-"`
	ContentType   string         `gorm:"size:200" json:"content_type"`
	Size          int64          `json:"size"`
	UploadedBy    uint           `json:"uploaded_by"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DeliverableFile) TableName() string { return "deliverable_files" }

const (
	FileKindBeta  = "beta"
	FileKindFinal = "final"
)
