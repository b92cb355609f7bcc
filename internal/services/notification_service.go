package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"equiptrack/internal/models"
)

// DedupWindow is how long an unread notification suppresses re-delivery of
// the same reminder to the same recipient
const DedupWindow = 12 * time.Hour

const adminTitlePrefix = "[Admin] "

// FanOutResult summarizes one fan-out attempt across all recipients
type FanOutResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// NotificationService creates and manages per-recipient notifications
type NotificationService struct {
	notifications notificationStore
	accounts      accountStore
	now           func() time.Time
}

func NewNotificationService(notifications notificationStore, accounts accountStore) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		accounts:      accounts,
		now:           time.Now,
	}
}

// FanOutForReminder creates one notification per recipient: every admin,
// plus the originating user when they are not already in the admin pool.
// Recipients inside the dedup window are skipped; a failure for one
// recipient does not prevent attempts for the rest. The returned error is
// reserved for being unable to resolve the recipient pool at all.
func (s *NotificationService) FanOutForReminder(ctx context.Context, reminder *models.Reminder, milestone Milestone, daysRemaining int, force bool) (FanOutResult, error) {
	var result FanOutResult

	admins, err := s.accounts.ListAdmins(ctx)
	if err != nil {
		return result, err
	}
	if len(admins) == 0 {
		return result, ErrNoAdminAvailable
	}

	type recipient struct {
		username string
		admin    bool
	}
	recipients := make([]recipient, 0, len(admins)+1)
	seen := make(map[string]bool, len(admins)+1)
	for _, a := range admins {
		recipients = append(recipients, recipient{a.Username, true})
		seen[a.Username] = true
	}
	if reminder.CreatedBy != "" && !seen[reminder.CreatedBy] {
		recipients = append(recipients, recipient{reminder.CreatedBy, false})
	}

	now := s.now()
	title, message := composeNotification(reminder, milestone, daysRemaining)

	for _, rcpt := range recipients {
		if !force {
			existing, errFind := s.notifications.FindRecentUnread(ctx, reminder.ID, rcpt.username, now.Add(-DedupWindow))
			if errFind != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rcpt.username, errFind))
				continue
			}
			if existing != nil {
				result.Skipped++
				continue
			}
		}

		notification := &models.Notification{
			Username:        rcpt.username,
			ReminderID:      &reminder.ID,
			Title:           title,
			Message:         message,
			ShouldPlaySound: milestone == MilestoneH0 || milestone == MilestoneOverdue,
			CreatedAt:       now,
		}
		if rcpt.admin {
			notification.Title = adminTitlePrefix + title
		}
		if errCreate := s.notifications.Create(ctx, notification); errCreate != nil {
			log.Printf("Warning: Failed to create notification for %s (reminder %s): %v", rcpt.username, reminder.ID, errCreate)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rcpt.username, errCreate))
			continue
		}
		result.Created++
	}

	return result, nil
}

// ListForUser returns a page of a user's notifications. Older unread
// duplicates for the same reminder are cleaned up first so the user only
// ever sees the newest one per reminder.
func (s *NotificationService) ListForUser(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error) {
	if _, err := s.notifications.DeleteDuplicateUnread(ctx, filter.Username); err != nil {
		log.Printf("Warning: Notification dedup cleanup failed for %s: %v", filter.Username, err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return s.notifications.List(ctx, filter)
}

// MarkRead marks one of the user's notifications as read. A notification
// that no longer exists is reported as already gone, not as an error.
func (s *NotificationService) MarkRead(ctx context.Context, id uint, username string) (bool, error) {
	return s.notifications.MarkRead(ctx, id, username, s.now())
}

// MarkAllRead marks every unread notification for the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, username string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, username, s.now())
}

// MarkReadByReminder marks every notification referencing the reminder as
// read, across all recipients. Used on acknowledgement.
func (s *NotificationService) MarkReadByReminder(ctx context.Context, reminderID string) error {
	return s.notifications.MarkReadByReminder(ctx, reminderID, s.now())
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, id uint, username string) (bool, error) {
	return s.notifications.Delete(ctx, id, username)
}

// DeleteRead removes all of the user's read notifications
func (s *NotificationService) DeleteRead(ctx context.Context, username string) (int64, error) {
	return s.notifications.DeleteRead(ctx, username)
}

// composeNotification derives the delivered title and body from the
// reminder's templated text plus an urgency line for the crossed tier
func composeNotification(r *models.Reminder, m Milestone, daysRemaining int) (string, string) {
	var urgency string
	switch m {
	case MilestoneOverdue:
		urgency = fmt.Sprintf("OVERDUE by %d day(s) since %s.", -daysRemaining, r.DueDate.Format(dueDateFormat))
	case MilestoneH0:
		urgency = "Due TODAY."
	case MilestoneH1:
		urgency = "Due tomorrow."
	default:
		urgency = fmt.Sprintf("Due in %d days, on %s.", daysRemaining, r.DueDate.Format(dueDateFormat))
	}
	return r.Title, r.Message + " " + urgency
}
