package database

import (
	"context"
	"errors"
	"time"

	"equiptrack/internal/models"
	"equiptrack/internal/services"

	"gorm.io/gorm"
)

// ReminderStore is the gorm-backed reminder collection
type ReminderStore struct {
	db *gorm.DB
}

func NewReminderStore(db *gorm.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// entityColumn maps a reminder type to its originating-entity foreign key
func entityColumn(rtype models.ReminderType) string {
	switch rtype {
	case models.ReminderCalibration:
		return "calibration_id"
	case models.ReminderRental:
		return "rental_id"
	case models.ReminderMaintenance:
		return "maintenance_id"
	default:
		return "schedule_id"
	}
}

// FindByEntity returns the non-acknowledged reminder for an originating
// entity, or nil when none exists. Acknowledged reminders are terminal and
// never re-armed; a new event after acknowledgement gets a fresh reminder.
func (s *ReminderStore) FindByEntity(ctx context.Context, rtype models.ReminderType, entityID uint) (*models.Reminder, error) {
	var reminder models.Reminder
	err := s.db.WithContext(ctx).
		Where("type = ? AND "+entityColumn(rtype)+" = ? AND status <> ?", rtype, entityID, models.ReminderAcknowledged).
		Order("created_at DESC").
		First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// GetByID returns a reminder by id, or nil when it no longer exists
func (s *ReminderStore) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	var reminder models.Reminder
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Save creates or updates a reminder
func (s *ReminderStore) Save(ctx context.Context, reminder *models.Reminder) error {
	return s.db.WithContext(ctx).Save(reminder).Error
}

// MarkEmailSent records the email side channel. The conditional column
// update leaves escalation state alone, so it cannot revert an
// acknowledgement that landed after the sweep read its candidate.
func (s *ReminderStore) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ? AND status <> ?", id, models.ReminderAcknowledged).
		Updates(map[string]interface{}{"email_sent": true, "email_sent_at": at}).Error
}

// ListCandidates returns every non-acknowledged reminder whose due date lies
// inside its type's escalation window: 30 days for calibration, 7 for rental
// and maintenance, day-of for schedules. Overdue reminders always match.
func (s *ReminderStore) ListCandidates(ctx context.Context, today time.Time) ([]models.Reminder, error) {
	day := services.DateOnly(today)
	var reminders []models.Reminder
	err := s.db.WithContext(ctx).
		Where("status <> ?", models.ReminderAcknowledged).
		Where(
			"(type = ? AND due_date < ?) OR (type IN ? AND due_date < ?) OR (type = ? AND due_date < ?)",
			models.ReminderCalibration, day.AddDate(0, 0, models.CalibrationLeadDays+1),
			[]models.ReminderType{models.ReminderRental, models.ReminderMaintenance}, day.AddDate(0, 0, models.RentalLeadDays+1),
			models.ReminderSchedule, day.AddDate(0, 0, 1),
		).
		Order("due_date ASC").
		Find(&reminders).Error
	return reminders, err
}

// List returns reminders for the admin dashboard with filtering and pagination
func (s *ReminderStore) List(ctx context.Context, filter services.ReminderFilter) ([]models.Reminder, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Reminder{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var reminders []models.Reminder
	err := query.Order("due_date ASC").Limit(limit).Offset((page - 1) * limit).Find(&reminders).Error
	return reminders, total, err
}
