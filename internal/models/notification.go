package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification represents one delivered escalation event to one recipient.
// For a given reminder at most one unread notification per recipient should
// exist inside the dedup window; the check-then-create in the notification
// service is not atomic, so duplicates can appear under concurrency and are
// removed by the dedup-on-read cleanup pass.
type Notification struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string     `gorm:"size:30;not null;index:idx_notification_user_read" json:"username"` // recipient
	ReminderID      *string    `gorm:"size:36;index" json:"reminder_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Message         string     `gorm:"type:text" json:"message"`
	IsRead          bool       `gorm:"not null;default:false;index:idx_notification_user_read" json:"is_read"`
	ReadAt          *time.Time `json:"read_at"`
	ShouldPlaySound bool       `gorm:"not null;default:false" json:"should_play_sound"`
	CreatedAt       time.Time  `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook is called before creating a new notification
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notification"
}
