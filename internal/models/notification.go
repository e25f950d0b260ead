package models

import "time"

// Notification is an in-portal message for a user: a deliverable went up
// for review, an approval landed, final file access is about to expire.
type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Type          string     `gorm:"size:50;not null" json:"type"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Body          string     `gorm:"type:text" json:"body"`
	ProjectID     *uint      `json:"project_id"`
	DeliverableID *uint      `json:"deliverable_id"`
	ReadAt        *time.Time `json:"read_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

const (
	NotifyBetaReady         = "beta_ready"
	NotifyAwaitingApproval  = "awaiting_approval"
	NotifyApproved          = "approved"
	NotifyRevisionRequested = "revision_requested"
	NotifyRejected          = "rejected"
	NotifyFinalDelivered    = "final_delivered"
	NotifyExpiryWarning     = "expiry_warning"
	NotifyStatusChanged     = "status_changed"
)
