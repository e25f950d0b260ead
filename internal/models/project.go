package models

import (
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"gorm.io/gorm"
)

// Project represents a client video production engagement.
type Project struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	ClientCompany   string         `gorm:"size:200" json:"client_company"`
	Status          string         `gorm:"size:50;default:draft;index" json:"status"`
	TermsAcceptedAt *time.Time     `json:"terms_accepted_at"`
	TermsAcceptedBy *uint          `json:"terms_accepted_by"`
	ArchivedAt      *time.Time     `json:"archived_at"`
	CreatedBy       uint           `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

func (Project) TableName() string { return "projects" }

// Snapshot maps the project to the authorization engine's input type.
// teamIDs is the internal team roster, deduplicated and in display order.
func (p *Project) Snapshot(teamIDs []uint) *authz.Project {
	return &authz.Project{
		ID:              p.ID,
		Status:          authz.ProjectStatus(p.Status),
		TermsAcceptedAt: p.TermsAcceptedAt,
		TeamIDs:         teamIDs,
	}
}
