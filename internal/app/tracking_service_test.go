package app

import (
	"context"
	"testing"

	"habit_reminder_service/internal/domain/tracking"
	idb "habit_reminder_service/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTracking(t *testing.T) {
	svc := NewTrackingService(newFakeTrackingRepo())

	tr, err := svc.Create(context.Background(), 1, "Morning run", "0 7 * * *")
	require.NoError(t, err)
	assert.NotZero(t, tr.ID)
	assert.True(t, tr.IsActive)
	assert.Equal(t, "0 7 * * *", tr.ScheduleSpec)
}

func TestCreateTrackingRejectsBadSchedule(t *testing.T) {
	svc := NewTrackingService(newFakeTrackingRepo())

	_, err := svc.Create(context.Background(), 1, "Morning run", "every tuesday-ish")
	assert.ErrorIs(t, err, ErrInvalidScheduleSpec)
}

func TestCreateTrackingRejectsDuplicateName(t *testing.T) {
	repo := newFakeTrackingRepo(&tracking.Tracking{ID: 1, UserID: 1, Name: "Morning run", IsActive: true})
	svc := NewTrackingService(repo)

	_, err := svc.Create(context.Background(), 1, "Morning run", "0 7 * * *")
	assert.ErrorIs(t, err, ErrTrackingAlreadyExists)

	// Same name is fine for a different user.
	_, err = svc.Create(context.Background(), 2, "Morning run", "0 7 * * *")
	assert.NoError(t, err)
}

func TestArchiveTracking(t *testing.T) {
	repo := newFakeTrackingRepo(&tracking.Tracking{ID: 1, UserID: 1, Name: "Morning run", IsActive: true})
	svc := NewTrackingService(repo)

	tr, err := svc.Archive(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, tr.IsActive)

	_, err = svc.Archive(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTrackingAlreadyArchived)

	_, err = svc.Archive(context.Background(), 99)
	assert.ErrorIs(t, err, idb.ErrTrackingNotFound)
}

func TestListTrackingsFiltersArchived(t *testing.T) {
	repo := newFakeTrackingRepo(
		&tracking.Tracking{ID: 1, UserID: 1, Name: "Morning run", IsActive: true},
		&tracking.Tracking{ID: 2, UserID: 1, Name: "Old habit", IsActive: false},
	)
	svc := NewTrackingService(repo)

	active, err := svc.List(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
