package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.WorkoutRepository = (*DB)(nil)

func (db *DB) CreateWorkout(ctx context.Context, w *model.WorkoutLog) error {
	w.ID = xid.New().String()
	if w.LoggedAt.IsZero() {
		w.LoggedAt = db.now()
	}
	w.LoggedAt = w.LoggedAt.UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO workout_logs (id, user_id, type, duration, calories_burned, notes, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID,
		w.UserID,
		w.Type,
		w.Duration,
		w.CaloriesBurned,
		w.Notes,
		w.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting workout for user %s: %w", w.UserID, err)
	}
	return nil
}

func (db *DB) ListWorkouts(ctx context.Context, userID string, r repository.TimeRange) ([]model.WorkoutLog, error) {
	return db.queryWorkouts(ctx,
		`SELECT id, user_id, type, duration, calories_burned, notes, logged_at
		 FROM workout_logs
		 WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at ASC`,
		userID, r.From.UTC(), upperBound(r.To),
	)
}

func (db *DB) RecentWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]model.WorkoutLog, error) {
	if limit <= 0 {
		limit = 10
	}
	return db.queryWorkouts(ctx,
		`SELECT id, user_id, type, duration, calories_burned, notes, logged_at
		 FROM workout_logs
		 WHERE user_id = ? AND logged_at >= ?
		 ORDER BY logged_at DESC
		 LIMIT ?`,
		userID, since.UTC(), limit,
	)
}

func (db *DB) queryWorkouts(ctx context.Context, query string, args ...any) ([]model.WorkoutLog, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing workouts: %w", err)
	}
	defer rows.Close()

	workouts := []model.WorkoutLog{}
	for rows.Next() {
		var w model.WorkoutLog
		if err := rows.Scan(
			&w.ID,
			&w.UserID,
			&w.Type,
			&w.Duration,
			&w.CaloriesBurned,
			&w.Notes,
			&w.LoggedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning workout row: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating workout rows: %w", err)
	}
	return workouts, nil
}
