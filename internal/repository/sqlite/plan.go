package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.PlanRepository = (*DB)(nil)

// compile-time check that *DB is a complete store
var _ repository.Store = (*DB)(nil)

// GetPlan returns the cached plan for key or apperror.ErrNotFound.
func (db *DB) GetPlan(ctx context.Context, key model.PlanKey) (*model.DailyPlan, error) {
	var p model.DailyPlan
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, date, plan_type, content, created_at, updated_at
		 FROM daily_plans WHERE user_id = ? AND date = ? AND plan_type = ?`,
		key.UserID, key.Date, string(key.Type),
	).Scan(
		&p.ID,
		&p.UserID,
		&p.Date,
		&p.Type,
		&p.Content,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("plan", fmt.Sprintf("%s/%s/%s", key.UserID, key.Date, key.Type))
		}
		return nil, fmt.Errorf("sqlite: getting plan: %w", err)
	}
	return &p, nil
}

// UpsertPlan stores plan under its key.
//
// ON CONFLICT DO UPDATE keeps the original row (id, created_at) and only
// replaces content, so two writers racing on the same key never produce a
// second row. After the write the canonical row is read back into plan.
func (db *DB) UpsertPlan(ctx context.Context, plan *model.DailyPlan) error {
	now := db.now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO daily_plans (id, user_id, date, plan_type, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date, plan_type)
		 DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		xid.New().String(),
		plan.UserID,
		plan.Date,
		string(plan.Type),
		plan.Content,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting plan: %w", err)
	}

	stored, err := db.GetPlan(ctx, plan.Key())
	if err != nil {
		return err
	}
	*plan = *stored
	return nil
}
