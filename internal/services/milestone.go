package services

import (
	"time"

	"equiptrack/internal/models"
)

// Milestone is an escalation tier relative to a reminder's due date
type Milestone string

const (
	MilestoneNone    Milestone = ""
	MilestoneH30     Milestone = "H-30"
	MilestoneH7      Milestone = "H-7"
	MilestoneH1      Milestone = "H-1"
	MilestoneH0      Milestone = "H-0"
	MilestoneOverdue Milestone = "OVERDUE"
)

// Rank orders tiers by urgency; higher outranks lower
func (m Milestone) Rank() int {
	switch m {
	case MilestoneH30:
		return 1
	case MilestoneH7:
		return 2
	case MilestoneH1:
		return 3
	case MilestoneH0:
		return 4
	case MilestoneOverdue:
		return 5
	}
	return 0
}

type tier struct {
	offset    int
	milestone Milestone
}

// Tiers per reminder type, ordered by descending day offset. A tier is
// crossed once daysRemaining <= offset, so a sweep that skipped the exact
// milestone day still escalates the highest crossed tier.
var tiersByType = map[models.ReminderType][]tier{
	models.ReminderCalibration: {{30, MilestoneH30}, {1, MilestoneH1}, {0, MilestoneH0}},
	models.ReminderRental:      {{7, MilestoneH7}, {1, MilestoneH1}, {0, MilestoneH0}},
	models.ReminderMaintenance: {{7, MilestoneH7}, {1, MilestoneH1}, {0, MilestoneH0}},
	models.ReminderSchedule:    {{0, MilestoneH0}},
}

// LeadDays returns the lead time between the first escalation tier and the
// due date for the given reminder type
func LeadDays(rtype models.ReminderType) int {
	switch rtype {
	case models.ReminderCalibration:
		return models.CalibrationLeadDays
	case models.ReminderRental:
		return models.RentalLeadDays
	case models.ReminderMaintenance:
		return models.MaintenanceLeadDays
	}
	return models.ScheduleLeadDays
}

// DateOnly truncates a timestamp to midnight UTC so day arithmetic is stable
// regardless of the time of day a sweep runs
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the whole days between today and the due date; negative
// once the due date is in the past
func DaysUntil(dueDate, today time.Time) int {
	return int(DateOnly(dueDate).Sub(DateOnly(today)).Hours() / 24)
}

// EvaluateMilestone classifies a reminder against today. It returns the most
// urgent tier the reminder has crossed for its type, or MilestoneNone when it
// is still outside every tier window, plus the days remaining.
func EvaluateMilestone(rtype models.ReminderType, dueDate, today time.Time) (Milestone, int) {
	days := DaysUntil(dueDate, today)
	if days < 0 {
		return MilestoneOverdue, days
	}

	result := MilestoneNone
	for _, t := range tiersByType[rtype] {
		if days <= t.offset {
			result = t.milestone
		}
	}
	return result, days
}

// ShouldEscalate decides whether a reminder at milestone m warrants a new
// fan-out given the highest tier already notified. Due and overdue tiers
// re-fire on every sweep and rely on the dedup window for throttling;
// lead-time tiers fire once, when they outrank the recorded tier.
func ShouldEscalate(lastMilestone string, m Milestone) bool {
	if m == MilestoneNone {
		return false
	}
	if m == MilestoneH0 || m == MilestoneOverdue {
		return true
	}
	return m.Rank() > Milestone(lastMilestone).Rank()
}
