package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"habit_reminder_service/internal/domain/reminder"
	idb "habit_reminder_service/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReminderRepo is an in-memory reminder.Repository for service tests. It
// counts status writes so tests can assert the exactly-one-write contract.
type fakeReminderRepo struct {
	reminders map[int64]*reminder.Reminder

	statusWrites int
	updateErr    error // forced error for UpdateStatusFrom
	valueWrites  int
	notified     map[int64]bool
	created      []*reminder.Reminder
}

func newFakeReminderRepo(reminders ...*reminder.Reminder) *fakeReminderRepo {
	repo := &fakeReminderRepo{
		reminders: make(map[int64]*reminder.Reminder),
		notified:  make(map[int64]bool),
	}
	for _, rem := range reminders {
		repo.reminders[rem.ID] = rem
	}
	return repo
}

func (f *fakeReminderRepo) Create(_ context.Context, rem *reminder.Reminder) error {
	f.created = append(f.created, rem)
	f.reminders[rem.ID] = rem
	return nil
}

func (f *fakeReminderRepo) BulkCreate(_ context.Context, reminders []*reminder.Reminder) error {
	f.created = append(f.created, reminders...)
	return nil
}

func (f *fakeReminderRepo) GetByID(_ context.Context, id int64) (*reminder.Reminder, error) {
	rem, ok := f.reminders[id]
	if !ok {
		return nil, idb.ErrReminderNotFound
	}
	snapshot := *rem
	return &snapshot, nil
}

func (f *fakeReminderRepo) ListByUser(_ context.Context, userID int64) ([]*reminder.Reminder, error) {
	var out []*reminder.Reminder
	for _, rem := range f.reminders {
		if rem.UserID == userID {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) ListDueUpcoming(_ context.Context, dueAtOrBefore time.Time) ([]*reminder.Reminder, error) {
	var out []*reminder.Reminder
	for _, rem := range f.reminders {
		if rem.Status == reminder.StatusUpcoming && !rem.ScheduledTime.After(dueAtOrBefore) {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) Exists(_ context.Context, trackingID int64, scheduledTime time.Time) (bool, error) {
	for _, rem := range f.reminders {
		if rem.TrackingID == trackingID && rem.ScheduledTime.Equal(scheduledTime) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReminderRepo) UpdateStatusFrom(_ context.Context, id int64, from, to reminder.Status) error {
	f.statusWrites++
	if f.updateErr != nil {
		return f.updateErr
	}
	rem, ok := f.reminders[id]
	if !ok {
		return idb.ErrReminderNotFound
	}
	if rem.Status != from {
		return idb.ErrStaleReminderStatus
	}
	rem.Status = to
	return nil
}

func (f *fakeReminderRepo) SetValue(_ context.Context, id int64, value reminder.Value) error {
	f.valueWrites++
	rem, ok := f.reminders[id]
	if !ok {
		return idb.ErrReminderNotFound
	}
	rem.Value.String = string(value)
	rem.Value.Valid = true
	return nil
}

func (f *fakeReminderRepo) MarkNotified(_ context.Context, id int64, _ time.Time) error {
	if _, ok := f.reminders[id]; !ok {
		return idb.ErrReminderNotFound
	}
	f.notified[id] = true
	return nil
}

func TestTransitionPendingToAnswered(t *testing.T) {
	rem := &reminder.Reminder{ID: 1, Status: reminder.StatusPending}
	repo := newFakeReminderRepo(rem)
	svc := NewLifecycleService(repo)

	err := svc.Transition(context.Background(), &reminder.Reminder{ID: 1, Status: reminder.StatusPending}, reminder.StatusAnswered)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.statusWrites, "success path issues exactly one write")
	assert.Equal(t, reminder.StatusAnswered, repo.reminders[1].Status)
}

func TestTransitionRejectsSameStatus(t *testing.T) {
	repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: reminder.StatusPending})
	svc := NewLifecycleService(repo)

	err := svc.Transition(context.Background(), &reminder.Reminder{ID: 1, Status: reminder.StatusPending}, reminder.StatusPending)

	var te *reminder.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, reminder.StatusPending, te.From)
	assert.Equal(t, reminder.StatusPending, te.To)
	assert.Equal(t, 0, repo.statusWrites, "failure path issues zero writes")
}

func TestTransitionRejectsSameStatusForEveryStatus(t *testing.T) {
	for _, status := range reminder.AllStatuses() {
		repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: status})
		svc := NewLifecycleService(repo)

		err := svc.Transition(context.Background(), &reminder.Reminder{ID: 1, Status: status}, status)

		var te *reminder.TransitionError
		require.ErrorAs(t, err, &te, "identity transition for %s must fail", status)
		assert.Equal(t, 0, repo.statusWrites)
	}
}

func TestTransitionRejectsAnsweredToPending(t *testing.T) {
	repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: reminder.StatusAnswered})
	svc := NewLifecycleService(repo)

	err := svc.Transition(context.Background(), &reminder.Reminder{ID: 1, Status: reminder.StatusAnswered}, reminder.StatusPending)

	var te *reminder.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, reminder.StatusAnswered, te.From)
	assert.Equal(t, reminder.StatusPending, te.To)
	assert.Equal(t, 0, repo.statusWrites)
}

func TestTransitionDoesNotMutateCallerSnapshot(t *testing.T) {
	repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: reminder.StatusPending})
	svc := NewLifecycleService(repo)

	snapshot := &reminder.Reminder{ID: 1, Status: reminder.StatusPending}
	require.NoError(t, svc.Transition(context.Background(), snapshot, reminder.StatusAnswered))

	assert.Equal(t, reminder.StatusPending, snapshot.Status, "caller re-reads for the updated row")
}

func TestTransitionSecondAnswerFails(t *testing.T) {
	repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: reminder.StatusPending})
	svc := NewLifecycleService(repo)

	require.NoError(t, svc.Transition(context.Background(), &reminder.Reminder{ID: 1, Status: reminder.StatusPending}, reminder.StatusAnswered))

	// The second call sees the fresh snapshot and trips the same-status rule.
	updated, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	err = svc.Transition(context.Background(), updated, reminder.StatusAnswered)

	var te *reminder.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, repo.statusWrites)
}

func TestTransitionPropagatesPersistenceError(t *testing.T) {
	repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: reminder.StatusPending})
	repo.updateErr = fmt.Errorf("disk is full")
	svc := NewLifecycleService(repo)

	err := svc.Transition(context.Background(), &reminder.Reminder{ID: 1, Status: reminder.StatusPending}, reminder.StatusAnswered)

	require.Error(t, err)
	assert.ErrorIs(t, err, repo.updateErr)
	var te *reminder.TransitionError
	assert.False(t, errors.As(err, &te), "persistence failures are not transition errors")
}

func TestTransitionLostRaceSurfacesStaleStatus(t *testing.T) {
	// The row moved to ANSWERED after the caller read it.
	repo := newFakeReminderRepo(&reminder.Reminder{ID: 1, Status: reminder.StatusAnswered})
	svc := NewLifecycleService(repo)

	staleSnapshot := &reminder.Reminder{ID: 1, Status: reminder.StatusPending}
	err := svc.Transition(context.Background(), staleSnapshot, reminder.StatusAnswered)

	require.Error(t, err)
	assert.ErrorIs(t, err, idb.ErrStaleReminderStatus)
	assert.Equal(t, reminder.StatusAnswered, repo.reminders[1].Status, "the committed status is untouched")
}
