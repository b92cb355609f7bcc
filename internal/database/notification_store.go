package database

import (
	"context"
	"errors"
	"time"

	"equiptrack/internal/models"
	"equiptrack/internal/services"

	"gorm.io/gorm"
)

// NotificationStore is the gorm-backed notification collection
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create inserts a notification row
func (s *NotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	return s.db.WithContext(ctx).Create(notification).Error
}

// FindRecentUnread returns the recipient's unread notification for a
// reminder created at or after since, or nil when there is none
func (s *NotificationStore) FindRecentUnread(ctx context.Context, reminderID, username string, since time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).
		Where("reminder_id = ? AND username = ? AND is_read = ? AND created_at >= ?", reminderID, username, false, since).
		Order("created_at DESC").
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// List returns a page of the user's notifications, newest first
func (s *NotificationStore) List(ctx context.Context, filter services.NotificationFilter) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("notification.username = ?", filter.Username)

	if filter.Type != "" || filter.OverdueOnly {
		query = query.Joins("JOIN reminder ON reminder.id = notification.reminder_id")
		if filter.Type != "" {
			query = query.Where("reminder.type = ?", filter.Type)
		}
		if filter.OverdueOnly {
			query = query.Where("reminder.due_date < ?", services.DateOnly(time.Now()))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.Order("notification.created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkRead marks one of the user's notifications as read; false means the
// row no longer exists (or belongs to someone else)
func (s *NotificationStore) MarkRead(ctx context.Context, id uint, username string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND username = ?", id, username).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected > 0, result.Error
}

// MarkAllRead marks every unread notification for the user as read
func (s *NotificationStore) MarkAllRead(ctx context.Context, username string, at time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("username = ? AND is_read = ?", username, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}

// MarkReadByReminder marks every notification for a reminder as read,
// across all recipients
func (s *NotificationStore) MarkReadByReminder(ctx context.Context, reminderID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("reminder_id = ? AND is_read = ?", reminderID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

// Delete removes one of the user's notifications; false means already gone
func (s *NotificationStore) Delete(ctx context.Context, id uint, username string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND username = ?", id, username).
		Delete(&models.Notification{})
	return result.RowsAffected > 0, result.Error
}

// DeleteRead removes all of the user's read notifications
func (s *NotificationStore) DeleteRead(ctx context.Context, username string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("username = ? AND is_read = ?", username, true).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// DeleteDuplicateUnread removes older unread duplicates per reminder for a
// recipient, keeping the newest. This is the cleanup backstop for the
// non-atomic dedup check in the fan-out.
func (s *NotificationStore) DeleteDuplicateUnread(ctx context.Context, username string) (int64, error) {
	result := s.db.WithContext(ctx).Exec(`
		DELETE FROM notification
		WHERE username = ? AND is_read = false AND reminder_id IS NOT NULL
		  AND id NOT IN (
			SELECT MAX(id) FROM notification
			WHERE username = ? AND is_read = false AND reminder_id IS NOT NULL
			GROUP BY reminder_id
		  )`, username, username)
	return result.RowsAffected, result.Error
}
