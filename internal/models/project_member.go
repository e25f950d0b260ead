package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectMember ties a user to a project. For clients, IsPrimaryContact
// marks who may approve deliverables and request revisions; for internal
// staff it is always false.
type ProjectMember struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProjectID        uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project          *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID           uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User             *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsPrimaryContact bool           `gorm:"default:false" json:"is_primary_contact"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectMember) TableName() string { return "project_members" }
