package services

import (
	"context"
	"errors"
	"time"

	"equiptrack/internal/models"
)

var (
	// ErrNoAdminAvailable means no account with the admin role exists to
	// receive a reminder assignment
	ErrNoAdminAvailable = errors.New("no admin account available")
	// ErrEntityNotFound means the originating domain entity does not exist
	ErrEntityNotFound = errors.New("entity not found")
	// ErrMissingEndDate means a rental has no end date to derive a due date from
	ErrMissingEndDate = errors.New("rental has no end date")
	// ErrMissingCalibrationDate means a completed calibration carries neither
	// a validity date nor a calibration date
	ErrMissingCalibrationDate = errors.New("calibration has no calibration date")
)

// ReminderFilter narrows reminder listings
type ReminderFilter struct {
	Status models.ReminderStatus
	Type   models.ReminderType
	Page   int
	Limit  int
}

// NotificationFilter narrows per-user notification listings
type NotificationFilter struct {
	Username    string
	Type        models.ReminderType
	OverdueOnly bool
	Page        int
	Limit       int
}

type reminderStore interface {
	FindByEntity(ctx context.Context, rtype models.ReminderType, entityID uint) (*models.Reminder, error)
	GetByID(ctx context.Context, id string) (*models.Reminder, error)
	Save(ctx context.Context, reminder *models.Reminder) error
	MarkEmailSent(ctx context.Context, id string, at time.Time) error
	ListCandidates(ctx context.Context, today time.Time) ([]models.Reminder, error)
	List(ctx context.Context, filter ReminderFilter) ([]models.Reminder, int64, error)
}

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindRecentUnread(ctx context.Context, reminderID, username string, since time.Time) (*models.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id uint, username string, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, username string, at time.Time) (int64, error)
	MarkReadByReminder(ctx context.Context, reminderID string, at time.Time) error
	Delete(ctx context.Context, id uint, username string) (bool, error)
	DeleteRead(ctx context.Context, username string) (int64, error)
	DeleteDuplicateUnread(ctx context.Context, username string) (int64, error)
}

type accountStore interface {
	ListAdmins(ctx context.Context) ([]models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	LogActivity(ctx context.Context, username, eventType string, details map[string]interface{}) error
}

type equipmentStore interface {
	GetItem(ctx context.Context, serial string) (*models.Item, error)
	GetCalibration(ctx context.Context, id uint) (*models.Calibration, error)
	SaveCalibration(ctx context.Context, calibration *models.Calibration) error
	GetRental(ctx context.Context, id uint) (*models.Rental, error)
	GetMaintenance(ctx context.Context, id uint) (*models.Maintenance, error)
	SaveMaintenance(ctx context.Context, maintenance *models.Maintenance) error
	GetSchedule(ctx context.Context, id uint) (*models.InventorySchedule, error)
}

// RecipientPolicy decides which account a reminder is assigned to. The rule
// is swappable without touching the reminder service.
type RecipientPolicy interface {
	SelectAssignee(admins []models.Account) (string, error)
}

// FirstAdminPolicy assigns every reminder to the first admin by username,
// preserving the single-owner assignment rule.
type FirstAdminPolicy struct{}

// SelectAssignee implements RecipientPolicy
func (FirstAdminPolicy) SelectAssignee(admins []models.Account) (string, error) {
	if len(admins) == 0 {
		return "", ErrNoAdminAvailable
	}
	first := admins[0]
	for _, a := range admins[1:] {
		if a.Username < first.Username {
			first = a
		}
	}
	return first.Username, nil
}
