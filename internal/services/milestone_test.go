package services

import (
	"testing"
	"time"

	"equiptrack/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMilestoneCalibrationBoundary(t *testing.T) {
	today := date(2025, time.January, 1)

	milestone, days := EvaluateMilestone(models.ReminderCalibration, date(2025, time.January, 31), today)
	assert.Equal(t, MilestoneH30, milestone)
	assert.Equal(t, 30, days)

	// 31 days out is still outside every tier window
	milestone, days = EvaluateMilestone(models.ReminderCalibration, date(2025, time.February, 1), today)
	assert.Equal(t, MilestoneNone, milestone)
	assert.Equal(t, 31, days)
}

func TestEvaluateMilestoneWindowed(t *testing.T) {
	today := date(2025, time.June, 10)

	// A sweep that missed the exact day still reports the crossed tier
	milestone, days := EvaluateMilestone(models.ReminderCalibration, date(2025, time.June, 25), today)
	assert.Equal(t, MilestoneH30, milestone)
	assert.Equal(t, 15, days)

	milestone, _ = EvaluateMilestone(models.ReminderRental, date(2025, time.June, 13), today)
	assert.Equal(t, MilestoneH7, milestone)

	milestone, _ = EvaluateMilestone(models.ReminderMaintenance, date(2025, time.June, 11), today)
	assert.Equal(t, MilestoneH1, milestone)

	milestone, _ = EvaluateMilestone(models.ReminderRental, date(2025, time.June, 10), today)
	assert.Equal(t, MilestoneH0, milestone)
}

func TestEvaluateMilestoneOverdueInclusivity(t *testing.T) {
	today := date(2025, time.March, 15)
	due := date(2025, time.March, 1)

	for _, rtype := range []models.ReminderType{
		models.ReminderCalibration,
		models.ReminderRental,
		models.ReminderMaintenance,
		models.ReminderSchedule,
	} {
		milestone, days := EvaluateMilestone(rtype, due, today)
		assert.Equal(t, MilestoneOverdue, milestone, "type %s", rtype)
		assert.Equal(t, -14, days)
	}
}

func TestEvaluateMilestoneScheduleHasNoLeadTime(t *testing.T) {
	today := date(2025, time.May, 1)

	milestone, _ := EvaluateMilestone(models.ReminderSchedule, date(2025, time.May, 2), today)
	assert.Equal(t, MilestoneNone, milestone)

	milestone, _ = EvaluateMilestone(models.ReminderSchedule, date(2025, time.May, 1), today)
	assert.Equal(t, MilestoneH0, milestone)
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2025, time.January, 1, 23, 55, 0, 0, time.UTC)
	due := time.Date(2025, time.January, 2, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysUntil(due, today))
}

func TestShouldEscalate(t *testing.T) {
	assert.False(t, ShouldEscalate("", MilestoneNone))

	// Lead-time tiers fire once, when they outrank the recorded tier
	assert.True(t, ShouldEscalate("", MilestoneH30))
	assert.False(t, ShouldEscalate(string(MilestoneH30), MilestoneH30))
	assert.True(t, ShouldEscalate(string(MilestoneH30), MilestoneH7))
	assert.True(t, ShouldEscalate(string(MilestoneH7), MilestoneH1))
	assert.False(t, ShouldEscalate(string(MilestoneH7), MilestoneH30))

	// Due and overdue tiers re-fire on every sweep
	assert.True(t, ShouldEscalate(string(MilestoneH0), MilestoneH0))
	assert.True(t, ShouldEscalate(string(MilestoneOverdue), MilestoneOverdue))
}

func TestMilestoneRankOrdering(t *testing.T) {
	ordered := []Milestone{MilestoneNone, MilestoneH30, MilestoneH7, MilestoneH1, MilestoneH0, MilestoneOverdue}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank())
	}
}
