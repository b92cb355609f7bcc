package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderType identifies the domain event a reminder follows up on
type ReminderType string

const (
	ReminderCalibration ReminderType = "CALIBRATION"
	ReminderRental      ReminderType = "RENTAL"
	ReminderMaintenance ReminderType = "MAINTENANCE"
	ReminderSchedule    ReminderType = "SCHEDULE"
)

// ReminderStatus represents the escalation state of a reminder
type ReminderStatus string

const (
	ReminderPending      ReminderStatus = "PENDING"
	ReminderSent         ReminderStatus = "SENT"
	ReminderAcknowledged ReminderStatus = "ACKNOWLEDGED"
)

// Lead times between the first escalation tier and the due date, per type
const (
	CalibrationLeadDays = 30
	RentalLeadDays      = 7
	MaintenanceLeadDays = 7
	ScheduleLeadDays    = 0
)

// Reminder represents a pending follow-up tied to exactly one domain entity.
// At most one non-acknowledged reminder exists per (type, originating entity),
// enforced by upsert-by-entity-id semantics in the reminder service.
type Reminder struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Type           ReminderType   `gorm:"size:15;not null;index:idx_reminder_type_entity" json:"type"`
	DueDate        time.Time      `gorm:"not null;index" json:"due_date"`
	ReminderDate   time.Time      `gorm:"not null" json:"reminder_date"`
	Status         ReminderStatus `gorm:"size:15;not null;default:'PENDING';index" json:"status"`
	LastMilestone  string         `gorm:"size:10" json:"last_milestone"` // highest tier already notified
	Title          string         `gorm:"size:255;not null" json:"title"`
	Message        string         `gorm:"type:text" json:"message"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at"`
	AcknowledgedBy string         `gorm:"size:30" json:"acknowledged_by"`
	EmailSent      bool           `gorm:"not null;default:false" json:"email_sent"`
	EmailSentAt    *time.Time     `json:"email_sent_at"`
	Username       string         `gorm:"size:30;not null;index" json:"username"`  // assignee (admin)
	CreatedBy      string         `gorm:"size:30" json:"created_by"`               // originating user, if any
	ItemSerial     string         `gorm:"size:50" json:"item_serial"`              // display only

	// Exactly one of these is set, matching Type
	CalibrationID *uint `gorm:"index:idx_reminder_type_entity" json:"calibration_id"`
	RentalID      *uint `gorm:"index:idx_reminder_type_entity" json:"rental_id"`
	MaintenanceID *uint `gorm:"index:idx_reminder_type_entity" json:"maintenance_id"`
	ScheduleID    *uint `gorm:"index:idx_reminder_type_entity" json:"schedule_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// EntityID returns the id of the originating domain entity
func (r *Reminder) EntityID() uint {
	switch {
	case r.CalibrationID != nil:
		return *r.CalibrationID
	case r.RentalID != nil:
		return *r.RentalID
	case r.MaintenanceID != nil:
		return *r.MaintenanceID
	case r.ScheduleID != nil:
		return *r.ScheduleID
	}
	return 0
}

// IsAcknowledged returns true once a human has confirmed action was taken
func (r *Reminder) IsAcknowledged() bool {
	return r.Status == ReminderAcknowledged
}

// BeforeCreate hook is called before creating a new reminder
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	if r.Status == "" {
		r.Status = ReminderPending
	}
	return nil
}

// BeforeSave hook is called before saving the reminder
func (r *Reminder) BeforeSave(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Reminder model
func (Reminder) TableName() string {
	return "reminder"
}
