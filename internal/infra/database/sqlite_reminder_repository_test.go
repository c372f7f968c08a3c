package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"habit_reminder_service/internal/domain/reminder"
	"habit_reminder_service/internal/domain/tracking"
	"habit_reminder_service/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUserAndTracking satisfies the reminder foreign keys.
func seedUserAndTracking(t *testing.T, db *sql.DB) (*user.User, *tracking.Tracking) {
	t.Helper()
	ctx := context.Background()

	u := &user.User{Name: "Sam", Email: "sam@example.com"}
	require.NoError(t, NewSQLiteUserRepository(db).Create(ctx, u))

	tr := &tracking.Tracking{UserID: u.ID, Name: "Stretch", ScheduleSpec: "0 9 * * *", IsActive: true}
	require.NoError(t, NewSQLiteTrackingRepository(db).Create(ctx, tr))

	return u, tr
}

func TestReminderCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	scheduled := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	rem := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: scheduled, Status: reminder.StatusUpcoming}
	require.NoError(t, repo.Create(ctx, rem))
	require.NotZero(t, rem.ID)

	got, err := repo.GetByID(ctx, rem.ID)
	require.NoError(t, err)
	assert.Equal(t, reminder.StatusUpcoming, got.Status)
	assert.True(t, got.ScheduledTime.Equal(scheduled))
	assert.False(t, got.Value.Valid)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestReminderDuplicateOccurrence(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	scheduled := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: scheduled, Status: reminder.StatusUpcoming}))

	err := repo.Create(ctx, &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: scheduled, Status: reminder.StatusUpcoming})
	assert.ErrorIs(t, err, ErrDuplicateReminder)

	exists, err := repo.Exists(ctx, tr.ID, scheduled)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, tr.ID, scheduled.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateStatusFromCAS(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	rem := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: time.Now().UTC(), Status: reminder.StatusUpcoming}
	require.NoError(t, repo.Create(ctx, rem))

	require.NoError(t, repo.UpdateStatusFrom(ctx, rem.ID, reminder.StatusUpcoming, reminder.StatusPending))

	got, err := repo.GetByID(ctx, rem.ID)
	require.NoError(t, err)
	assert.Equal(t, reminder.StatusPending, got.Status)

	// The expected status no longer matches.
	err = repo.UpdateStatusFrom(ctx, rem.ID, reminder.StatusUpcoming, reminder.StatusPending)
	assert.ErrorIs(t, err, ErrStaleReminderStatus)

	err = repo.UpdateStatusFrom(ctx, 9999, reminder.StatusUpcoming, reminder.StatusPending)
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestListDueUpcoming(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	due := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: now.Add(-time.Hour), Status: reminder.StatusUpcoming}
	future := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: now.Add(time.Hour), Status: reminder.StatusUpcoming}
	answered := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: now.Add(-2 * time.Hour), Status: reminder.StatusAnswered}
	require.NoError(t, repo.BulkCreate(ctx, []*reminder.Reminder{due, future, answered}))

	got, err := repo.ListDueUpcoming(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].ScheduledTime.Equal(due.ScheduledTime))
}

func TestListByUserOrdersPendingFirst(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.BulkCreate(ctx, []*reminder.Reminder{
		{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: base, Status: reminder.StatusAnswered},
		{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: base.Add(time.Hour), Status: reminder.StatusUpcoming},
		{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: base.Add(2 * time.Hour), Status: reminder.StatusPending},
	}))

	got, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, reminder.StatusPending, got[0].Status)
	assert.Equal(t, reminder.StatusUpcoming, got[1].Status)
	assert.Equal(t, reminder.StatusAnswered, got[2].Status)
}

func TestSetValueAndMarkNotified(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	rem := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: time.Now().UTC(), Status: reminder.StatusPending}
	require.NoError(t, repo.Create(ctx, rem))

	require.NoError(t, repo.SetValue(ctx, rem.ID, reminder.ValueCompleted))
	notifiedAt := time.Date(2026, 9, 1, 9, 0, 30, 0, time.UTC)
	require.NoError(t, repo.MarkNotified(ctx, rem.ID, notifiedAt))

	got, err := repo.GetByID(ctx, rem.ID)
	require.NoError(t, err)
	require.True(t, got.Value.Valid)
	assert.Equal(t, "Completed", got.Value.String)
	require.True(t, got.LastNotifiedAt.Valid)
	assert.True(t, got.LastNotifiedAt.Time.Equal(notifiedAt))

	assert.ErrorIs(t, repo.SetValue(ctx, 9999, reminder.ValueDismissed), ErrReminderNotFound)
	assert.ErrorIs(t, repo.MarkNotified(ctx, 9999, notifiedAt), ErrReminderNotFound)
}

func TestRemindersCascadeWithTracking(t *testing.T) {
	db := newTestDB(t)
	u, tr := seedUserAndTracking(t, db)
	repo := NewSQLiteReminderRepository(db)
	ctx := context.Background()

	rem := &reminder.Reminder{TrackingID: tr.ID, UserID: u.ID, ScheduledTime: time.Now().UTC(), Status: reminder.StatusUpcoming}
	require.NoError(t, repo.Create(ctx, rem))

	_, err := db.ExecContext(ctx, `DELETE FROM trackings WHERE id = ?`, tr.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, rem.ID)
	assert.ErrorIs(t, err, ErrReminderNotFound)
}
