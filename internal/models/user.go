package models

import (
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"gorm.io/gorm"
)

// User represents a portal account: internal staff or a client contact.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	Email     string         `gorm:"size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	Role      string         `gorm:"size:50;default:client" json:"role"` // super_admin, project_manager, team_member, client
	Company   string         `gorm:"size:200" json:"company"`            // client company name, empty for internal staff
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Snapshot maps the user plus their project memberships to the
// authorization engine's input type. memberships may be nil when the
// caller has not loaded any.
func (u *User) Snapshot(memberships []ProjectMember) *authz.User {
	snap := &authz.User{
		ID:   u.ID,
		Role: authz.Role(u.Role),
	}
	if len(memberships) > 0 {
		snap.Memberships = make(map[uint]authz.Membership, len(memberships))
		for _, m := range memberships {
			snap.Memberships[m.ProjectID] = authz.Membership{IsPrimaryContact: m.IsPrimaryContact}
		}
	}
	return snap
}
