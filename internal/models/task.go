package models

import (
	"time"

	"github.com/reelcraft/portal/backend/internal/authz"
	"gorm.io/gorm"
)

// Task is an internal work item on a project, optionally tied to a
// deliverable. Assignment can be a single assignee, a set of assignees,
// or both; the authorization engine treats them as one collection.
type Task struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProjectID     uint           `gorm:"index;not null" json:"project_id"`
	Project       *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	DeliverableID *uint          `gorm:"index" json:"deliverable_id"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Status        string         `gorm:"size:50;default:open" json:"status"` // open, in_progress, done
	AssigneeID    *uint          `json:"assignee_id"`
	Assignees     []User         `gorm:"many2many:task_assignees" json:"assignees,omitempty"`
	DueAt         *time.Time     `json:"due_at"`
	CreatedBy     uint           `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Snapshot maps the task to the authorization engine's input type. The
// Assignees association must be preloaded for the collection to carry.
func (t *Task) Snapshot() *authz.Task {
	snap := &authz.Task{
		ID:         t.ID,
		AssigneeID: t.AssigneeID,
	}
	for _, u := range t.Assignees {
		snap.AssigneeIDs = append(snap.AssigneeIDs, u.ID)
	}
	return snap
}
