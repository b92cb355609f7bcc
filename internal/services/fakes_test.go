package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"equiptrack/internal/models"
)

// In-memory store fakes backing the service tests. They mirror the query
// semantics of the gorm stores, including the acknowledged-reminder
// exclusion and the per-type candidate windows.

type fakeReminderStore struct {
	reminders map[string]*models.Reminder
	nextID    int
	saveErr   error
	listErr   error
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: make(map[string]*models.Reminder)}
}

func cloneReminder(r *models.Reminder) *models.Reminder {
	c := *r
	return &c
}

func (f *fakeReminderStore) FindByEntity(_ context.Context, rtype models.ReminderType, entityID uint) (*models.Reminder, error) {
	for _, r := range f.reminders {
		if r.Type == rtype && r.EntityID() == entityID && !r.IsAcknowledged() {
			return cloneReminder(r), nil
		}
	}
	return nil, nil
}

func (f *fakeReminderStore) GetByID(_ context.Context, id string) (*models.Reminder, error) {
	if r, ok := f.reminders[id]; ok {
		return cloneReminder(r), nil
	}
	return nil, nil
}

func (f *fakeReminderStore) Save(_ context.Context, reminder *models.Reminder) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if reminder.ID == "" {
		f.nextID++
		reminder.ID = fmt.Sprintf("reminder-%d", f.nextID)
	}
	if reminder.Status == "" {
		reminder.Status = models.ReminderPending
	}
	f.reminders[reminder.ID] = cloneReminder(reminder)
	return nil
}

func (f *fakeReminderStore) MarkEmailSent(_ context.Context, id string, at time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	r, ok := f.reminders[id]
	if !ok || r.IsAcknowledged() {
		return nil
	}
	r.EmailSent = true
	sentAt := at
	r.EmailSentAt = &sentAt
	return nil
}

func (f *fakeReminderStore) ListCandidates(_ context.Context, today time.Time) ([]models.Reminder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	day := DateOnly(today)
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.IsAcknowledged() {
			continue
		}
		cutoff := day.AddDate(0, 0, LeadDays(r.Type)+1)
		if DateOnly(r.DueDate).Before(cutoff) {
			out = append(out, *cloneReminder(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeReminderStore) List(_ context.Context, filter ReminderFilter) ([]models.Reminder, int64, error) {
	var out []models.Reminder
	for _, r := range f.reminders {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		out = append(out, *cloneReminder(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, int64(len(out)), nil
}

type fakeNotificationStore struct {
	notifications []*models.Notification
	nextID        uint
	createErrFor  map[string]error // per-recipient injected failures
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{createErrFor: make(map[string]error)}
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	if err := f.createErrFor[n.Username]; err != nil {
		return err
	}
	f.nextID++
	n.ID = f.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	c := *n
	f.notifications = append(f.notifications, &c)
	return nil
}

func (f *fakeNotificationStore) FindRecentUnread(_ context.Context, reminderID, username string, since time.Time) (*models.Notification, error) {
	for i := len(f.notifications) - 1; i >= 0; i-- {
		n := f.notifications[i]
		if n.ReminderID != nil && *n.ReminderID == reminderID && n.Username == username &&
			!n.IsRead && !n.CreatedAt.Before(since) {
			c := *n
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationStore) List(_ context.Context, filter NotificationFilter) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.Username == filter.Username {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id uint, username string, at time.Time) (bool, error) {
	for _, n := range f.notifications {
		if n.ID == id && n.Username == username {
			n.IsRead = true
			n.ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, username string, at time.Time) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.Username == username && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkReadByReminder(_ context.Context, reminderID string, at time.Time) error {
	for _, n := range f.notifications {
		if n.ReminderID != nil && *n.ReminderID == reminderID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
		}
	}
	return nil
}

func (f *fakeNotificationStore) Delete(_ context.Context, id uint, username string) (bool, error) {
	for i, n := range f.notifications {
		if n.ID == id && n.Username == username {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationStore) DeleteRead(_ context.Context, username string) (int64, error) {
	var kept []*models.Notification
	var count int64
	for _, n := range f.notifications {
		if n.Username == username && n.IsRead {
			count++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return count, nil
}

func (f *fakeNotificationStore) DeleteDuplicateUnread(_ context.Context, username string) (int64, error) {
	newest := make(map[string]uint)
	for _, n := range f.notifications {
		if n.Username == username && !n.IsRead && n.ReminderID != nil && n.ID > newest[*n.ReminderID] {
			newest[*n.ReminderID] = n.ID
		}
	}
	var kept []*models.Notification
	var count int64
	for _, n := range f.notifications {
		if n.Username == username && !n.IsRead && n.ReminderID != nil && n.ID != newest[*n.ReminderID] {
			count++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return count, nil
}

// unreadFor returns the recipient's unread notifications, for assertions
func (f *fakeNotificationStore) unreadFor(username string) []*models.Notification {
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.Username == username && !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}

type activityEntry struct {
	Username  string
	EventType string
	Details   map[string]interface{}
}

type fakeAccountStore struct {
	accounts   map[string]*models.Account
	activities []activityEntry
	listErr    error
}

func newFakeAccountStore(accounts ...models.Account) *fakeAccountStore {
	f := &fakeAccountStore{accounts: make(map[string]*models.Account)}
	for i := range accounts {
		a := accounts[i]
		f.accounts[a.Username] = &a
	}
	return f
}

func (f *fakeAccountStore) ListAdmins(_ context.Context) ([]models.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var admins []models.Account
	for _, a := range f.accounts {
		if a.IsAdmin() {
			admins = append(admins, *a)
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Username < admins[j].Username })
	return admins, nil
}

func (f *fakeAccountStore) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	if a, ok := f.accounts[username]; ok {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (f *fakeAccountStore) LogActivity(_ context.Context, username, eventType string, details map[string]interface{}) error {
	f.activities = append(f.activities, activityEntry{username, eventType, details})
	return nil
}

type fakeEquipmentStore struct {
	items        map[string]*models.Item
	calibrations map[uint]*models.Calibration
	rentals      map[uint]*models.Rental
	maintenances map[uint]*models.Maintenance
	schedules    map[uint]*models.InventorySchedule
}

func newFakeEquipmentStore() *fakeEquipmentStore {
	return &fakeEquipmentStore{
		items:        make(map[string]*models.Item),
		calibrations: make(map[uint]*models.Calibration),
		rentals:      make(map[uint]*models.Rental),
		maintenances: make(map[uint]*models.Maintenance),
		schedules:    make(map[uint]*models.InventorySchedule),
	}
}

func (f *fakeEquipmentStore) GetItem(_ context.Context, serial string) (*models.Item, error) {
	if i, ok := f.items[serial]; ok {
		c := *i
		return &c, nil
	}
	return nil, nil
}

func (f *fakeEquipmentStore) GetCalibration(_ context.Context, id uint) (*models.Calibration, error) {
	if c, ok := f.calibrations[id]; ok {
		cc := *c
		return &cc, nil
	}
	return nil, nil
}

func (f *fakeEquipmentStore) SaveCalibration(_ context.Context, c *models.Calibration) error {
	cc := *c
	f.calibrations[c.ID] = &cc
	return nil
}

func (f *fakeEquipmentStore) GetRental(_ context.Context, id uint) (*models.Rental, error) {
	if r, ok := f.rentals[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, nil
}

func (f *fakeEquipmentStore) GetMaintenance(_ context.Context, id uint) (*models.Maintenance, error) {
	if m, ok := f.maintenances[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (f *fakeEquipmentStore) SaveMaintenance(_ context.Context, m *models.Maintenance) error {
	c := *m
	f.maintenances[m.ID] = &c
	return nil
}

func (f *fakeEquipmentStore) GetSchedule(_ context.Context, id uint) (*models.InventorySchedule, error) {
	if s, ok := f.schedules[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

type mailRecord struct {
	To        string
	Reminder  string
	Milestone Milestone
}

type fakeMailer struct {
	sent    []mailRecord
	sendErr error
}

func (f *fakeMailer) SendReminderEscalation(to models.Account, reminder models.Reminder, milestone Milestone, _ int) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, mailRecord{To: to.Username, Reminder: reminder.ID, Milestone: milestone})
	return nil
}

// date is a shorthand for building UTC dates in tests
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
