package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is feedback left on a deliverable, by either side.
type Comment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	DeliverableID uint           `gorm:"index;not null" json:"deliverable_id"`
	AuthorID      uint           `gorm:"index;not null" json:"author_id"`
	Author        *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body          string         `gorm:"type:text;not null" json:"body"`
	Timecode      string         `gorm:"size:20" json:"timecode"` // optional hh:mm:ss:ff position in the cut
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Comment) TableName() string { return "comments" }
