package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"habit_reminder_service/internal/domain/tracking"
)

// Custom errors
var ErrTrackingNotFound = fmt.Errorf("tracking not found")
var ErrDuplicateTracking = fmt.Errorf("tracking with this name already exists for the user")

type SQLiteTrackingRepository struct {
	db *sql.DB
}

func NewSQLiteTrackingRepository(db *sql.DB) *SQLiteTrackingRepository {
	return &SQLiteTrackingRepository{db: db}
}

func (r *SQLiteTrackingRepository) Create(ctx context.Context, tr *tracking.Tracking) error {
	now := time.Now().UTC()
	query := `INSERT INTO trackings (user_id, name, schedule_spec, is_active, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, tr.UserID, tr.Name, tr.ScheduleSpec, tr.IsActive, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateTracking
		}
		return fmt.Errorf("error creating tracking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading new tracking id: %w", err)
	}
	tr.ID = id
	tr.CreatedAt = now
	tr.UpdatedAt = now
	return nil
}

const trackingColumns = `id, user_id, name, schedule_spec, is_active, created_at, updated_at`

func (r *SQLiteTrackingRepository) GetByID(ctx context.Context, id int64) (*tracking.Tracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM trackings WHERE id = ?`
	tr := &tracking.Tracking{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tr.ID, &tr.UserID, &tr.Name, &tr.ScheduleSpec, &tr.IsActive, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTrackingNotFound
		}
		return nil, fmt.Errorf("error getting tracking by ID: %w", err)
	}
	return tr, nil
}

func (r *SQLiteTrackingRepository) GetByUserAndName(ctx context.Context, userID int64, name string) (*tracking.Tracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM trackings WHERE user_id = ? AND name = ?`
	tr := &tracking.Tracking{}
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&tr.ID, &tr.UserID, &tr.Name, &tr.ScheduleSpec, &tr.IsActive, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTrackingNotFound
		}
		return nil, fmt.Errorf("error getting tracking by user and name: %w", err)
	}
	return tr, nil
}

func (r *SQLiteTrackingRepository) Update(ctx context.Context, tr *tracking.Tracking) error {
	query := `UPDATE trackings SET name = ?, schedule_spec = ?, is_active = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, tr.Name, tr.ScheduleSpec, tr.IsActive, now, tr.ID)
	if err != nil {
		return fmt.Errorf("error updating tracking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for tracking update: %w", err)
	}
	if affected == 0 {
		return ErrTrackingNotFound
	}
	tr.UpdatedAt = now
	return nil
}

func scanTrackings(rows *sql.Rows) ([]*tracking.Tracking, error) {
	trackings := make([]*tracking.Tracking, 0)
	for rows.Next() {
		tr := tracking.Tracking{}
		if err := rows.Scan(&tr.ID, &tr.UserID, &tr.Name, &tr.ScheduleSpec, &tr.IsActive, &tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning tracking row: %w", err)
		}
		trackings = append(trackings, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking rows: %w", err)
	}
	return trackings, nil
}

func (r *SQLiteTrackingRepository) ListActive(ctx context.Context) ([]*tracking.Tracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM trackings WHERE is_active = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active trackings: %w", err)
	}
	defer rows.Close()
	return scanTrackings(rows)
}

func (r *SQLiteTrackingRepository) ListByUser(ctx context.Context, userID int64, includeArchived bool) ([]*tracking.Tracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM trackings WHERE user_id = ?`
	if !includeArchived {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying trackings by user: %w", err)
	}
	defer rows.Close()
	return scanTrackings(rows)
}
