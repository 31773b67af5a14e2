package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.MealRepository = (*DB)(nil)

// CreateMeal appends a meal. A zero LoggedAt means "now".
func (db *DB) CreateMeal(ctx context.Context, meal *model.MealLog) error {
	meal.ID = xid.New().String()
	if meal.LoggedAt.IsZero() {
		meal.LoggedAt = db.now()
	}
	meal.LoggedAt = meal.LoggedAt.UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO meal_logs (id, user_id, name, calories, protein, carbs, fat, notes, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.Calories,
		meal.Protein,
		meal.Carbs,
		meal.Fat,
		meal.Notes,
		meal.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting meal for user %s: %w", meal.UserID, err)
	}
	return nil
}

func (db *DB) ListMeals(ctx context.Context, userID string, r repository.TimeRange) ([]model.MealLog, error) {
	return db.queryMeals(ctx,
		`SELECT id, user_id, name, calories, protein, carbs, fat, notes, logged_at
		 FROM meal_logs
		 WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at ASC`,
		userID, r.From.UTC(), upperBound(r.To),
	)
}

func (db *DB) RecentMeals(ctx context.Context, userID string, since time.Time, limit int) ([]model.MealLog, error) {
	if limit <= 0 {
		limit = 10
	}
	return db.queryMeals(ctx,
		`SELECT id, user_id, name, calories, protein, carbs, fat, notes, logged_at
		 FROM meal_logs
		 WHERE user_id = ? AND logged_at >= ?
		 ORDER BY logged_at DESC
		 LIMIT ?`,
		userID, since.UTC(), limit,
	)
}

func (db *DB) queryMeals(ctx context.Context, query string, args ...any) ([]model.MealLog, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing meals: %w", err)
	}
	defer rows.Close()

	meals := []model.MealLog{}
	for rows.Next() {
		var m model.MealLog
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Name,
			&m.Calories,
			&m.Protein,
			&m.Carbs,
			&m.Fat,
			&m.Notes,
			&m.LoggedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning meal row: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meal rows: %w", err)
	}
	return meals, nil
}

// MealLogTimes feeds the streak calculation, which only needs timestamps.
func (db *DB) MealLogTimes(ctx context.Context, userID string) ([]time.Time, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT logged_at FROM meal_logs WHERE user_id = ? ORDER BY logged_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing meal times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sqlite: scanning meal time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meal times: %w", err)
	}
	return times, nil
}
