package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role represents a user's role in the system
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Account represents a user account in the system
type Account struct {
	Username  string         `gorm:"primaryKey;size:30;not null" json:"username" binding:"required,alphanum"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email" binding:"required,email"`
	FullName  string         `gorm:"size:100" json:"full_name"`
	Role      Role           `gorm:"size:10;not null;default:'staff';index" json:"role"`
	LastLogin time.Time      `gorm:"not null" json:"last_login"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin returns true if the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// BeforeCreate hook is called before creating a new account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.LastLogin.IsZero() {
		a.LastLogin = now
	}
	if a.Role == "" {
		a.Role = RoleStaff
	}
	return nil
}

// BeforeSave hook is called before saving the account
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// ActivityLog represents an entry in the system activity history
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string         `gorm:"size:30;not null;index" json:"username"`
	EventType string         `gorm:"size:30;not null" json:"event_type"` // acknowledge_reminder, complete_calibration, ...
	Details   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "account"
}

// TableName specifies the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_log"
}

// CreateAccountRequest represents the data needed to create a new account
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"max=100"`
	Role     Role   `json:"role" binding:"omitempty,oneof=admin staff"`
}
