package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"equiptrack/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccountStore is the gorm-backed account and activity-log collection
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// ListAdmins returns every account with the admin role, ordered by username
// so the recipient policy sees a stable pool
func (s *AccountStore) ListAdmins(ctx context.Context) ([]models.Account, error) {
	var admins []models.Account
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleAdmin).
		Order("username ASC").
		Find(&admins).Error
	return admins, err
}

// GetByUsername returns an account, or nil when it does not exist
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// LogActivity appends an entry to the activity history
func (s *AccountStore) LogActivity(ctx context.Context, username, eventType string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}

	activity := models.ActivityLog{
		Username:  username,
		EventType: eventType,
		Details:   datatypes.JSON(payload),
		Timestamp: time.Now(),
	}
	return s.db.WithContext(ctx).Create(&activity).Error
}
