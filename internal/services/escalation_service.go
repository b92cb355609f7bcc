package services

import (
	"context"
	"log"
	"time"

	"equiptrack/internal/models"
)

// escalationMailer is the email side channel, decoupled from in-app
// notification state
type escalationMailer interface {
	SendReminderEscalation(to models.Account, reminder models.Reminder, milestone Milestone, daysRemaining int) error
}

// SweepResult is one entry of the itemized sweep report
type SweepResult struct {
	ReminderID    string              `json:"reminder_id"`
	Type          models.ReminderType `json:"type"`
	Milestone     string              `json:"milestone,omitempty"`
	DaysRemaining int                 `json:"days_remaining"`
	Status        string              `json:"status"` // created, skipped, error
	Created       int                 `json:"created"`
	Reason        string              `json:"reason,omitempty"`
}

// EscalationService runs the due-reminder sweep. It is driven by an external
// trigger (cron hitting the sweep endpoint) and tolerates being invoked at
// arbitrary intervals; the optional ticker worker only covers deployments
// without an external scheduler.
type EscalationService struct {
	reminders     reminderStore
	notifications *NotificationService
	accounts      accountStore
	mailer        escalationMailer
	interval      time.Duration
	now           func() time.Time
}

func NewEscalationService(
	reminders reminderStore,
	notifications *NotificationService,
	accounts accountStore,
	mailer escalationMailer,
	interval time.Duration,
) *EscalationService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &EscalationService{
		reminders:     reminders,
		notifications: notifications,
		accounts:      accounts,
		mailer:        mailer,
		interval:      interval,
		now:           time.Now,
	}
}

// Start runs the sweep on a fixed interval in the background
func (s *EscalationService) Start() {
	go s.run()
}

func (s *EscalationService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := s.RunSweep(context.Background(), false); err != nil {
			log.Printf("Error: Escalation sweep failed: %v", err)
		}
	}
}

// RunSweep queries candidate reminders, evaluates each against its
// escalation tiers and fans out where a tier has been crossed. Reminders are
// independent units of work: a failure on one is recorded in its report
// entry and the sweep continues. Only a failure to query the store at all is
// returned as an error. force bypasses both the tier check and the dedup
// window.
func (s *EscalationService) RunSweep(ctx context.Context, force bool) ([]SweepResult, error) {
	today := s.now()

	candidates, err := s.reminders.ListCandidates(ctx, today)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(candidates))
	for i := range candidates {
		reminder := &candidates[i]
		results = append(results, s.processReminder(ctx, reminder, today, force))
	}

	log.Printf("Escalation sweep processed %d candidate reminder(s)", len(results))
	return results, nil
}

func (s *EscalationService) processReminder(ctx context.Context, reminder *models.Reminder, today time.Time, force bool) SweepResult {
	milestone, days := EvaluateMilestone(reminder.Type, reminder.DueDate, today)
	result := SweepResult{
		ReminderID:    reminder.ID,
		Type:          reminder.Type,
		Milestone:     string(milestone),
		DaysRemaining: days,
	}

	if !force && !ShouldEscalate(reminder.LastMilestone, milestone) {
		result.Status = "skipped"
		if milestone == MilestoneNone {
			result.Reason = "no milestone crossed"
		} else {
			result.Reason = "already notified at this tier"
		}
		return result
	}

	fanOut, err := s.notifications.FanOutForReminder(ctx, reminder, milestone, days, force)
	result.Created = fanOut.Created
	if err != nil {
		result.Status = "error"
		result.Reason = err.Error()
		return result
	}
	if len(fanOut.Errors) > 0 {
		// Partial failure: other recipients were still attempted
		result.Status = "error"
		result.Reason = fanOut.Errors[0]
	} else if fanOut.Created == 0 {
		result.Status = "skipped"
		result.Reason = "absorbed by dedup window"
	} else {
		result.Status = "created"
	}

	if fanOut.Created > 0 {
		if current := s.recordEscalation(ctx, reminder, milestone); current != nil {
			s.sendEscalationEmail(ctx, current, milestone, days)
		}
	}
	return result
}

// recordEscalation moves the reminder to SENT and raises its recorded tier.
// It returns the re-read record, or nil when the reminder was deleted or
// acknowledged since the candidate query; everything downstream of the
// fan-out works on the re-read record, never the stale candidate copy.
func (s *EscalationService) recordEscalation(ctx context.Context, reminder *models.Reminder, milestone Milestone) *models.Reminder {
	current, err := s.reminders.GetByID(ctx, reminder.ID)
	if err != nil {
		log.Printf("Warning: Failed to re-read reminder %s after fan-out: %v", reminder.ID, err)
		return nil
	}
	if current == nil || current.IsAcknowledged() {
		return nil
	}

	current.Status = models.ReminderSent
	if milestone.Rank() > Milestone(current.LastMilestone).Rank() {
		current.LastMilestone = string(milestone)
	}
	if err := s.reminders.Save(ctx, current); err != nil {
		log.Printf("Warning: Failed to update reminder %s after fan-out: %v", reminder.ID, err)
		return nil
	}
	reminder.Status = current.Status
	reminder.LastMilestone = current.LastMilestone
	return current
}

// sendEscalationEmail mails the assignee once per reminder arming. Email
// failure never affects the in-app escalation outcome, and the side channel
// is persisted with a column update so it cannot touch escalation state.
func (s *EscalationService) sendEscalationEmail(ctx context.Context, reminder *models.Reminder, milestone Milestone, days int) {
	if s.mailer == nil || reminder.EmailSent {
		return
	}

	assignee, err := s.accounts.GetByUsername(ctx, reminder.Username)
	if err != nil || assignee == nil {
		log.Printf("Warning: Failed to resolve assignee %s for reminder email: %v", reminder.Username, err)
		return
	}
	if err := s.mailer.SendReminderEscalation(*assignee, *reminder, milestone, days); err != nil {
		log.Printf("Warning: Failed to send escalation email for reminder %s: %v", reminder.ID, err)
		return
	}

	now := s.now()
	if err := s.reminders.MarkEmailSent(ctx, reminder.ID, now); err != nil {
		log.Printf("Warning: Failed to record email side channel for reminder %s: %v", reminder.ID, err)
		return
	}
	reminder.EmailSent = true
	reminder.EmailSentAt = &now
}
