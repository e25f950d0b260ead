package models

import "time"

// ApprovalEvent is an append-only record of a client decision on a
// deliverable. Events are never updated or deleted; the approval history
// endpoint reads them back in order.
type ApprovalEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProjectID     uint      `gorm:"index;not null" json:"project_id"`
	DeliverableID uint      `gorm:"index;not null" json:"deliverable_id"`
	ActorID       uint      `gorm:"not null" json:"actor_id"`
	Actor         *User     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Action        string    `gorm:"size:50;not null" json:"action"` // approved, revision_requested, rejected
	Note          string    `gorm:"type:text" json:"note"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (ApprovalEvent) TableName() string { return "approval_events" }

const (
	ApprovalActionApproved          = "approved"
	ApprovalActionRevisionRequested = "revision_requested"
	ApprovalActionRejected          = "rejected"
)
