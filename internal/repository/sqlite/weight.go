package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.WeightRepository = (*DB)(nil)

func (db *DB) CreateWeight(ctx context.Context, w *model.WeightLog) error {
	w.ID = xid.New().String()
	if w.LoggedAt.IsZero() {
		w.LoggedAt = db.now()
	}
	w.LoggedAt = w.LoggedAt.UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO weight_logs (id, user_id, weight, notes, logged_at) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Weight, w.Notes, w.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting weight for user %s: %w", w.UserID, err)
	}
	return nil
}

// ListWeights returns weigh-ins in r, oldest first.
func (db *DB) ListWeights(ctx context.Context, userID string, r repository.TimeRange) ([]model.WeightLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, weight, notes, logged_at
		 FROM weight_logs
		 WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at ASC`,
		userID, r.From.UTC(), upperBound(r.To),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing weights: %w", err)
	}
	defer rows.Close()

	weights := []model.WeightLog{}
	for rows.Next() {
		var w model.WeightLog
		if err := rows.Scan(&w.ID, &w.UserID, &w.Weight, &w.Notes, &w.LoggedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning weight row: %w", err)
		}
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating weight rows: %w", err)
	}
	return weights, nil
}
