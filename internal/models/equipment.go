package models

import (
	"time"

	"gorm.io/gorm"
)

// CalibrationStatus represents the state of a calibration job
type CalibrationStatus string

const (
	CalibrationInProgress CalibrationStatus = "in_progress"
	CalibrationCompleted  CalibrationStatus = "completed"
)

// RentalStatus represents the state of an equipment rental
type RentalStatus string

const (
	RentalPending  RentalStatus = "pending"
	RentalApproved RentalStatus = "approved"
	RentalReturned RentalStatus = "returned"
)

// Item represents a physical piece of equipment, identified by serial number
type Item struct {
	Serial    string         `gorm:"primaryKey;size:50;not null" json:"serial" binding:"required"`
	Name      string         `gorm:"size:100;not null" json:"name" binding:"required"`
	Category  string         `gorm:"size:50" json:"category"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Calibration represents a calibration job for an item
type Calibration struct {
	ID              uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemSerial      string            `gorm:"size:50;not null;index" json:"item_serial"`
	Status          CalibrationStatus `gorm:"size:15;not null;default:'in_progress'" json:"status"`
	CalibrationDate *time.Time        `json:"calibration_date"`
	ValidUntil      *time.Time        `json:"valid_until"`
	Vendor          string            `gorm:"size:100" json:"vendor"`
	CreatedBy       string            `gorm:"size:30;not null;index" json:"created_by"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`

	Item Item `gorm:"foreignKey:ItemSerial" json:"item,omitempty"`
}

// Rental represents an equipment rental to a counterparty
type Rental struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemSerial string       `gorm:"size:50;not null;index" json:"item_serial"`
	RenterName string       `gorm:"size:100;not null" json:"renter_name"`
	Status     RentalStatus `gorm:"size:10;not null;default:'pending'" json:"status"`
	StartDate  time.Time    `gorm:"not null" json:"start_date"`
	EndDate    *time.Time   `json:"end_date"`
	CreatedBy  string       `gorm:"size:30;not null;index" json:"created_by"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`

	Item Item `gorm:"foreignKey:ItemSerial" json:"item,omitempty"`
}

// Maintenance represents a maintenance job for an item
type Maintenance struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemSerial  string     `gorm:"size:50;not null;index" json:"item_serial"`
	Description string     `gorm:"type:text" json:"description"`
	Technician  string     `gorm:"size:100" json:"technician"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedBy   string     `gorm:"size:30;not null;index" json:"created_by"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`

	Item Item `gorm:"foreignKey:ItemSerial" json:"item,omitempty"`
}

// InventorySchedule represents a scheduled inventory check
type InventorySchedule struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	Location      string    `gorm:"size:100" json:"location"`
	ScheduledDate time.Time `gorm:"not null" json:"scheduled_date"`
	CreatedBy     string    `gorm:"size:30;not null;index" json:"created_by"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "item"
}

// TableName specifies the table name for the Calibration model
func (Calibration) TableName() string {
	return "calibration"
}

// TableName specifies the table name for the Rental model
func (Rental) TableName() string {
	return "rental"
}

// TableName specifies the table name for the Maintenance model
func (Maintenance) TableName() string {
	return "maintenance"
}

// TableName specifies the table name for the InventorySchedule model
func (InventorySchedule) TableName() string {
	return "inventory_schedule"
}

// CreateItemRequest represents the data needed to register an item
type CreateItemRequest struct {
	Serial   string `json:"serial" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=100"`
	Category string `json:"category" binding:"max=50"`
}

// CreateCalibrationRequest represents the data needed to open a calibration job
type CreateCalibrationRequest struct {
	ItemSerial      string     `json:"item_serial" binding:"required"`
	CalibrationDate *time.Time `json:"calibration_date"`
	Vendor          string     `json:"vendor" binding:"max=100"`
}

// CompleteCalibrationRequest represents the completion data for a calibration job
type CompleteCalibrationRequest struct {
	CalibrationDate *time.Time `json:"calibration_date"`
	ValidUntil      *time.Time `json:"valid_until"`
}

// CreateRentalRequest represents the data needed to create a rental
type CreateRentalRequest struct {
	ItemSerial string     `json:"item_serial" binding:"required"`
	RenterName string     `json:"renter_name" binding:"required,max=100"`
	StartDate  time.Time  `json:"start_date" binding:"required"`
	EndDate    *time.Time `json:"end_date" binding:"required"`
}

// CreateMaintenanceRequest represents the data needed to open a maintenance job
type CreateMaintenanceRequest struct {
	ItemSerial  string     `json:"item_serial" binding:"required"`
	Description string     `json:"description"`
	Technician  string     `json:"technician" binding:"max=100"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateScheduleRequest represents the data needed to schedule an inventory check
type CreateScheduleRequest struct {
	Title         string    `json:"title" binding:"required,max=100"`
	Location      string    `json:"location" binding:"max=100"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}
