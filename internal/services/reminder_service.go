package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"equiptrack/internal/models"
)

const dueDateFormat = "02 Jan 2006"

// Domain event notification outcomes, returned to the calling CRUD layer
const (
	NotifyCreated  = "created"
	NotifySkipped  = "reminder_skipped"
	NotifyDeferred = "notification_deferred"
	NotifyError    = "error"
)

// ReminderService derives reminders from domain events. One creation method
// per domain type; all of them upsert by (type, originating entity) so the
// same event firing twice re-arms the existing reminder instead of creating
// a duplicate.
type ReminderService struct {
	reminders     reminderStore
	equipment     equipmentStore
	accounts      accountStore
	notifications *NotificationService
	policy        RecipientPolicy
	now           func() time.Time
}

func NewReminderService(
	reminders reminderStore,
	equipment equipmentStore,
	accounts accountStore,
	notifications *NotificationService,
	policy RecipientPolicy,
) *ReminderService {
	if policy == nil {
		policy = FirstAdminPolicy{}
	}
	return &ReminderService{
		reminders:     reminders,
		equipment:     equipment,
		accounts:      accounts,
		notifications: notifications,
		policy:        policy,
		now:           time.Now,
	}
}

// CreateCalibrationReminder upserts the reminder for a completed calibration.
// A nil reminder with nil error means the calibration is still in progress
// and the event was skipped; callers must treat that as success.
func (s *ReminderService) CreateCalibrationReminder(ctx context.Context, calibrationID uint) (*models.Reminder, error) {
	cal, err := s.equipment.GetCalibration(ctx, calibrationID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, fmt.Errorf("calibration %d: %w", calibrationID, ErrEntityNotFound)
	}
	if cal.Status != models.CalibrationCompleted {
		// Days-since-calibration is undefined before completion
		return nil, nil
	}

	dueDate := time.Time{}
	if cal.ValidUntil != nil {
		dueDate = *cal.ValidUntil
	} else {
		if cal.CalibrationDate == nil {
			return nil, fmt.Errorf("calibration %d: %w", calibrationID, ErrMissingCalibrationDate)
		}
		dueDate = cal.CalibrationDate.AddDate(0, 0, 365)
		// Back-fill so future recomputation is stable
		cal.ValidUntil = &dueDate
		if err := s.equipment.SaveCalibration(ctx, cal); err != nil {
			return nil, err
		}
	}

	item := s.itemName(ctx, cal.ItemSerial)
	title := fmt.Sprintf("Calibration due: %s", item)
	message := fmt.Sprintf("Calibration for %s (serial %s) expires on %s. Send an email to re-schedule calibration.",
		item, cal.ItemSerial, dueDate.Format(dueDateFormat))

	return s.upsert(ctx, &models.Reminder{
		Type:          models.ReminderCalibration,
		CalibrationID: &cal.ID,
		DueDate:       dueDate,
		ItemSerial:    cal.ItemSerial,
		CreatedBy:     cal.CreatedBy,
		Title:         title,
		Message:       message,
	})
}

// CreateRentalReminder upserts the reminder for an approved rental
func (s *ReminderService) CreateRentalReminder(ctx context.Context, rentalID uint) (*models.Reminder, error) {
	rental, err := s.equipment.GetRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, fmt.Errorf("rental %d: %w", rentalID, ErrEntityNotFound)
	}
	if rental.EndDate == nil {
		return nil, fmt.Errorf("rental %d: %w", rentalID, ErrMissingEndDate)
	}

	item := s.itemName(ctx, rental.ItemSerial)
	title := fmt.Sprintf("Rental return due: %s", item)
	message := fmt.Sprintf("%s (serial %s), rented to %s, is due back on %s. Contact the renter to arrange the return.",
		item, rental.ItemSerial, rental.RenterName, rental.EndDate.Format(dueDateFormat))

	return s.upsert(ctx, &models.Reminder{
		Type:       models.ReminderRental,
		RentalID:   &rental.ID,
		DueDate:    *rental.EndDate,
		ItemSerial: rental.ItemSerial,
		CreatedBy:  rental.CreatedBy,
		Title:      title,
		Message:    message,
	})
}

// CreateMaintenanceReminder upserts the follow-up reminder for a maintenance
// job. A job without an end date gets one back-filled to now.
func (s *ReminderService) CreateMaintenanceReminder(ctx context.Context, maintenanceID uint) (*models.Reminder, error) {
	m, err := s.equipment.GetMaintenance(ctx, maintenanceID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("maintenance %d: %w", maintenanceID, ErrEntityNotFound)
	}

	if m.EndDate == nil {
		now := s.now()
		m.EndDate = &now
		if err := s.equipment.SaveMaintenance(ctx, m); err != nil {
			return nil, err
		}
	}
	dueDate := m.EndDate.AddDate(0, 0, 30)

	item := s.itemName(ctx, m.ItemSerial)
	title := fmt.Sprintf("Maintenance follow-up: %s", item)
	message := fmt.Sprintf("%s (serial %s) finished maintenance on %s. Verify its condition before %s.",
		item, m.ItemSerial, m.EndDate.Format(dueDateFormat), dueDate.Format(dueDateFormat))

	return s.upsert(ctx, &models.Reminder{
		Type:          models.ReminderMaintenance,
		MaintenanceID: &m.ID,
		DueDate:       dueDate,
		ItemSerial:    m.ItemSerial,
		CreatedBy:     m.CreatedBy,
		Title:         title,
		Message:       message,
	})
}

// CreateScheduleReminder upserts the reminder for a scheduled inventory check
func (s *ReminderService) CreateScheduleReminder(ctx context.Context, scheduleID uint) (*models.Reminder, error) {
	sched, err := s.equipment.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fmt.Errorf("schedule %d: %w", scheduleID, ErrEntityNotFound)
	}

	title := fmt.Sprintf("Inventory check: %s", sched.Title)
	message := fmt.Sprintf("Inventory check '%s' (%s) is scheduled for %s.",
		sched.Title, sched.Location, sched.ScheduledDate.Format(dueDateFormat))

	return s.upsert(ctx, &models.Reminder{
		Type:       models.ReminderSchedule,
		ScheduleID: &sched.ID,
		DueDate:    sched.ScheduledDate,
		CreatedBy:  sched.CreatedBy,
		Title:      title,
		Message:    message,
	})
}

// NotifyForDomainEvent runs the factory for a domain event and, when the
// computed due date is today or earlier, fans out immediately instead of
// waiting for the next sweep. Callers treat every returned tag except
// NotifyError as success.
func (s *ReminderService) NotifyForDomainEvent(ctx context.Context, rtype models.ReminderType, entityID uint) (string, error) {
	var (
		reminder *models.Reminder
		err      error
	)
	switch rtype {
	case models.ReminderCalibration:
		reminder, err = s.CreateCalibrationReminder(ctx, entityID)
	case models.ReminderRental:
		reminder, err = s.CreateRentalReminder(ctx, entityID)
	case models.ReminderMaintenance:
		reminder, err = s.CreateMaintenanceReminder(ctx, entityID)
	case models.ReminderSchedule:
		reminder, err = s.CreateScheduleReminder(ctx, entityID)
	default:
		return NotifyError, fmt.Errorf("unknown reminder type %q", rtype)
	}
	if err != nil {
		return NotifyError, err
	}
	if reminder == nil {
		return NotifySkipped, nil
	}

	milestone, days := EvaluateMilestone(reminder.Type, reminder.DueDate, s.now())
	if days > 0 {
		return NotifyDeferred, nil
	}

	result, err := s.notifications.FanOutForReminder(ctx, reminder, milestone, days, false)
	if err != nil {
		return NotifyError, err
	}
	if result.Created == 0 {
		// Every recipient was inside the dedup window; the sweep owns
		// re-delivery from here
		return NotifyDeferred, nil
	}
	reminder.Status = models.ReminderSent
	if milestone.Rank() > Milestone(reminder.LastMilestone).Rank() {
		reminder.LastMilestone = string(milestone)
	}
	if err := s.reminders.Save(ctx, reminder); err != nil {
		log.Printf("Warning: Failed to update reminder %s after instant fan-out: %v", reminder.ID, err)
	}
	return NotifyCreated, nil
}

// Acknowledge terminally closes a reminder: a human confirmed action was
// taken. Related notifications are marked read and the action is recorded in
// the activity log. Acknowledging an already-gone reminder returns nil, nil.
func (s *ReminderService) Acknowledge(ctx context.Context, reminderID, username string) (*models.Reminder, error) {
	reminder, err := s.reminders.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, nil
	}
	if reminder.IsAcknowledged() {
		return reminder, nil
	}

	now := s.now()
	reminder.Status = models.ReminderAcknowledged
	reminder.AcknowledgedAt = &now
	reminder.AcknowledgedBy = username
	if err := s.reminders.Save(ctx, reminder); err != nil {
		return nil, err
	}

	if err := s.notifications.MarkReadByReminder(ctx, reminder.ID); err != nil {
		log.Printf("Warning: Failed to mark notifications read for reminder %s: %v", reminder.ID, err)
	}
	if err := s.accounts.LogActivity(ctx, username, "acknowledge_reminder", map[string]interface{}{
		"reminder_id": reminder.ID,
		"type":        reminder.Type,
		"item_serial": reminder.ItemSerial,
	}); err != nil {
		log.Printf("Warning: Failed to log acknowledgement activity: %v", err)
	}

	return reminder, nil
}

// ListReminders returns reminders for the admin dashboard
func (s *ReminderService) ListReminders(ctx context.Context, filter ReminderFilter) ([]models.Reminder, int64, error) {
	return s.reminders.List(ctx, filter)
}

// upsert looks up the reminder for the originating entity and re-arms it, or
// creates a new one. The find-then-save pair is a known check-then-act race
// under concurrent events for the same entity; the natural-key lookup keeps
// it to at most one non-acknowledged reminder per entity in steady state.
func (s *ReminderService) upsert(ctx context.Context, next *models.Reminder) (*models.Reminder, error) {
	admins, err := s.accounts.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	assignee, err := s.policy.SelectAssignee(admins)
	if err != nil {
		return nil, err
	}

	next.Username = assignee
	next.ReminderDate = DateOnly(next.DueDate).AddDate(0, 0, -LeadDays(next.Type))

	existing, err := s.reminders.FindByEntity(ctx, next.Type, next.EntityID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.DueDate = next.DueDate
		existing.ReminderDate = next.ReminderDate
		existing.Title = next.Title
		existing.Message = next.Message
		existing.Username = next.Username
		existing.ItemSerial = next.ItemSerial
		existing.CreatedBy = next.CreatedBy
		existing.Status = models.ReminderPending
		existing.LastMilestone = ""
		existing.EmailSent = false
		existing.EmailSentAt = nil
		if err := s.reminders.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	next.Status = models.ReminderPending
	if err := s.reminders.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// itemName resolves the display name for an item, falling back to the serial
func (s *ReminderService) itemName(ctx context.Context, serial string) string {
	item, err := s.equipment.GetItem(ctx, serial)
	if err != nil || item == nil {
		return serial
	}
	return item.Name
}
