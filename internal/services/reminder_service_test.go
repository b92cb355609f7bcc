package services

import (
	"context"
	"testing"
	"time"

	"equiptrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminAccount(username string) models.Account {
	return models.Account{Username: username, Email: username + "@lab.test", Role: models.RoleAdmin}
}

func staffAccount(username string) models.Account {
	return models.Account{Username: username, Email: username + "@lab.test", Role: models.RoleStaff}
}

type reminderFixture struct {
	service       *ReminderService
	notifications *NotificationService
	reminders     *fakeReminderStore
	equipment     *fakeEquipmentStore
	accounts      *fakeAccountStore
	store         *fakeNotificationStore
}

func newReminderFixture(t *testing.T, today time.Time, accounts ...models.Account) *reminderFixture {
	t.Helper()
	if len(accounts) == 0 {
		accounts = []models.Account{adminAccount("admin1")}
	}
	accountStore := newFakeAccountStore(accounts...)
	reminderStore := newFakeReminderStore()
	equipmentStore := newFakeEquipmentStore()
	notificationStore := newFakeNotificationStore()

	notifications := NewNotificationService(notificationStore, accountStore)
	notifications.now = fixedClock(today)

	service := NewReminderService(reminderStore, equipmentStore, accountStore, notifications, nil)
	service.now = fixedClock(today)

	return &reminderFixture{
		service:       service,
		notifications: notifications,
		reminders:     reminderStore,
		equipment:     equipmentStore,
		accounts:      accountStore,
		store:         notificationStore,
	}
}

func TestCalibrationReminderDueDateDeterminism(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	calDate := date(2025, time.January, 1)
	fx.equipment.calibrations[1] = &models.Calibration{
		ID:              1,
		ItemSerial:      "FLUKE-87V-001",
		Status:          models.CalibrationCompleted,
		CalibrationDate: &calDate,
		CreatedBy:       "tech1",
	}

	reminder, err := fx.service.CreateCalibrationReminder(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, reminder)

	assert.Equal(t, date(2026, time.January, 1), reminder.DueDate)
	assert.Equal(t, date(2025, time.December, 2), reminder.ReminderDate)
	assert.Equal(t, models.ReminderPending, reminder.Status)
	assert.Equal(t, "admin1", reminder.Username)

	// validUntil is back-filled onto the entity so recomputation is stable
	cal, _ := fx.equipment.GetCalibration(context.Background(), 1)
	require.NotNil(t, cal.ValidUntil)
	assert.Equal(t, date(2026, time.January, 1), *cal.ValidUntil)
}

func TestCalibrationReminderSkippedWhenInProgress(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	fx.equipment.calibrations[1] = &models.Calibration{
		ID:         1,
		ItemSerial: "FLUKE-87V-001",
		Status:     models.CalibrationInProgress,
	}

	reminder, err := fx.service.CreateCalibrationReminder(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, reminder)
	assert.Empty(t, fx.reminders.reminders)
}

func TestCalibrationReminderPrefersValidUntil(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	calDate := date(2025, time.January, 1)
	validUntil := date(2025, time.September, 1)
	fx.equipment.calibrations[1] = &models.Calibration{
		ID:              1,
		ItemSerial:      "FLUKE-87V-001",
		Status:          models.CalibrationCompleted,
		CalibrationDate: &calDate,
		ValidUntil:      &validUntil,
	}

	reminder, err := fx.service.CreateCalibrationReminder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, validUntil, reminder.DueDate)
}

func TestIdempotentUpsert(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	end := date(2025, time.July, 1)
	fx.equipment.maintenances[7] = &models.Maintenance{
		ID:         7,
		ItemSerial: "PUMP-002",
		StartDate:  date(2025, time.June, 20),
		EndDate:    &end,
		CreatedBy:  "tech1",
	}

	first, err := fx.service.CreateMaintenanceReminder(context.Background(), 7)
	require.NoError(t, err)

	// Simulate a completed escalation before the event fires again
	first.Status = models.ReminderSent
	first.LastMilestone = string(MilestoneH7)
	first.EmailSent = true
	now := time.Now()
	first.EmailSentAt = &now
	require.NoError(t, fx.reminders.Save(context.Background(), first))

	second, err := fx.service.CreateMaintenanceReminder(context.Background(), 7)
	require.NoError(t, err)

	assert.Len(t, fx.reminders.reminders, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.ReminderPending, second.Status)
	assert.Empty(t, second.LastMilestone)
	assert.False(t, second.EmailSent)
	assert.Nil(t, second.EmailSentAt)
}

func TestMaintenanceReminderDates(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.January, 10))
	end := date(2025, time.January, 1)
	fx.equipment.maintenances[3] = &models.Maintenance{
		ID:         3,
		ItemSerial: "PUMP-002",
		StartDate:  date(2024, time.December, 20),
		EndDate:    &end,
	}

	reminder, err := fx.service.CreateMaintenanceReminder(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 31), reminder.DueDate)
	assert.Equal(t, date(2025, time.January, 24), reminder.ReminderDate)
}

func TestMaintenanceReminderBackfillsEndDate(t *testing.T) {
	today := date(2025, time.April, 1)
	fx := newReminderFixture(t, today)
	fx.equipment.maintenances[3] = &models.Maintenance{
		ID:         3,
		ItemSerial: "PUMP-002",
		StartDate:  date(2025, time.March, 20),
	}

	reminder, err := fx.service.CreateMaintenanceReminder(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.May, 1), DateOnly(reminder.DueDate))

	m, _ := fx.equipment.GetMaintenance(context.Background(), 3)
	require.NotNil(t, m.EndDate)
	assert.Equal(t, today, DateOnly(*m.EndDate))
}

func TestRentalReminderRequiresEndDate(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	fx.equipment.rentals[5] = &models.Rental{
		ID:         5,
		ItemSerial: "SCOPE-010",
		RenterName: "Acme Labs",
		StartDate:  date(2025, time.June, 1),
	}

	_, err := fx.service.CreateRentalReminder(context.Background(), 5)
	assert.ErrorIs(t, err, ErrMissingEndDate)
}

func TestReminderFactoryEntityNotFound(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	_, err := fx.service.CreateRentalReminder(context.Background(), 99)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestReminderFactoryNoAdminAvailable(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1), staffAccount("tech1"))
	fx.equipment.schedules[1] = &models.InventorySchedule{
		ID:            1,
		Title:         "Q3 stocktake",
		ScheduledDate: date(2025, time.July, 1),
	}

	_, err := fx.service.CreateScheduleReminder(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoAdminAvailable)
}

func TestFirstAdminPolicyPicksLowestUsername(t *testing.T) {
	policy := FirstAdminPolicy{}
	assignee, err := policy.SelectAssignee([]models.Account{
		adminAccount("zoe"), adminAccount("amy"), adminAccount("mia"),
	})
	require.NoError(t, err)
	assert.Equal(t, "amy", assignee)

	_, err = policy.SelectAssignee(nil)
	assert.ErrorIs(t, err, ErrNoAdminAvailable)
}

func TestNotifyForDomainEventDeferred(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	fx.equipment.schedules[1] = &models.InventorySchedule{
		ID:            1,
		Title:         "Q3 stocktake",
		ScheduledDate: date(2025, time.July, 1),
		CreatedBy:     "tech1",
	}

	status, err := fx.service.NotifyForDomainEvent(context.Background(), models.ReminderSchedule, 1)
	require.NoError(t, err)
	assert.Equal(t, NotifyDeferred, status)
	assert.Empty(t, fx.store.notifications)
}

func TestNotifyForDomainEventInstantFanOut(t *testing.T) {
	today := date(2025, time.June, 1)
	fx := newReminderFixture(t, today, adminAccount("admin1"), staffAccount("tech1"))
	fx.equipment.schedules[1] = &models.InventorySchedule{
		ID:            1,
		Title:         "Overdue stocktake",
		ScheduledDate: today,
		CreatedBy:     "tech1",
	}

	status, err := fx.service.NotifyForDomainEvent(context.Background(), models.ReminderSchedule, 1)
	require.NoError(t, err)
	assert.Equal(t, NotifyCreated, status)

	// Admin pool plus the distinct originating user
	assert.Len(t, fx.store.unreadFor("admin1"), 1)
	assert.Len(t, fx.store.unreadFor("tech1"), 1)

	reminder, _ := fx.reminders.FindByEntity(context.Background(), models.ReminderSchedule, 1)
	require.NotNil(t, reminder)
	assert.Equal(t, models.ReminderSent, reminder.Status)
}

func TestNotifyForDomainEventAbsorbedByDedupWindow(t *testing.T) {
	today := date(2025, time.June, 1)
	fx := newReminderFixture(t, today, adminAccount("admin1"), staffAccount("tech1"))
	fx.equipment.schedules[1] = &models.InventorySchedule{
		ID:            1,
		Title:         "Overdue stocktake",
		ScheduledDate: today,
		CreatedBy:     "tech1",
	}

	status, err := fx.service.NotifyForDomainEvent(context.Background(), models.ReminderSchedule, 1)
	require.NoError(t, err)
	require.Equal(t, NotifyCreated, status)

	// Re-firing the event re-arms the reminder, but every recipient still
	// holds an unread notification, so nothing new is delivered
	status, err = fx.service.NotifyForDomainEvent(context.Background(), models.ReminderSchedule, 1)
	require.NoError(t, err)
	assert.Equal(t, NotifyDeferred, status)
	assert.Len(t, fx.store.notifications, 2)
}

func TestNotifyForDomainEventSkipped(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	fx.equipment.calibrations[1] = &models.Calibration{
		ID:     1,
		Status: models.CalibrationInProgress,
	}

	status, err := fx.service.NotifyForDomainEvent(context.Background(), models.ReminderCalibration, 1)
	require.NoError(t, err)
	assert.Equal(t, NotifySkipped, status)
}

func TestAcknowledgeTerminality(t *testing.T) {
	today := date(2025, time.June, 1)
	fx := newReminderFixture(t, today, adminAccount("admin1"), staffAccount("tech1"))
	fx.equipment.schedules[1] = &models.InventorySchedule{
		ID:            1,
		Title:         "Overdue stocktake",
		ScheduledDate: today,
		CreatedBy:     "tech1",
	}
	_, err := fx.service.NotifyForDomainEvent(context.Background(), models.ReminderSchedule, 1)
	require.NoError(t, err)

	reminder, _ := fx.reminders.FindByEntity(context.Background(), models.ReminderSchedule, 1)
	require.NotNil(t, reminder)

	acked, err := fx.service.Acknowledge(context.Background(), reminder.ID, "admin1")
	require.NoError(t, err)
	require.NotNil(t, acked)

	assert.Equal(t, models.ReminderAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.Equal(t, "admin1", acked.AcknowledgedBy)

	// Every related notification is read, for every recipient
	assert.Empty(t, fx.store.unreadFor("admin1"))
	assert.Empty(t, fx.store.unreadFor("tech1"))

	// The action lands in the activity log
	require.Len(t, fx.accounts.activities, 1)
	assert.Equal(t, "acknowledge_reminder", fx.accounts.activities[0].EventType)
	assert.Equal(t, "admin1", fx.accounts.activities[0].Username)

	// Acknowledging again is a no-op, not an error
	again, err := fx.service.Acknowledge(context.Background(), reminder.ID, "admin1")
	require.NoError(t, err)
	assert.Equal(t, models.ReminderAcknowledged, again.Status)
}

func TestAcknowledgeAlreadyGone(t *testing.T) {
	fx := newReminderFixture(t, date(2025, time.June, 1))
	reminder, err := fx.service.Acknowledge(context.Background(), "missing-id", "admin1")
	assert.NoError(t, err)
	assert.Nil(t, reminder)
}
