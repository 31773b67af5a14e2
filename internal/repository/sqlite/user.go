package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, name, password_hash, profile_photo, age, gender,
	height, weight, goal_weight, diet_preference, fitness_goal, activity_level,
	daily_calories, medical_conditions, past_surgeries, dark_mode, created_at, updated_at`

// CreateUser inserts a new account. The email is stored lower-cased and
// must be unique; a duplicate returns apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := db.now()
	user.ID = xid.New().String()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.ProfilePhoto,
		user.Age,
		user.Gender,
		user.Height,
		user.Weight,
		user.GoalWeight,
		user.DietPreference,
		user.FitnessGoal,
		user.ActivityLevel,
		user.DailyCalories,
		user.MedicalConditions,
		user.PastSurgeries,
		user.DarkMode,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail looks the email up case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpdateProfile overwrites every editable profile column. Email,
// created_at and dark_mode are left alone.
func (db *DB) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = db.now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET
			name = ?, password_hash = ?, profile_photo = ?, age = ?, gender = ?,
			height = ?, weight = ?, goal_weight = ?, diet_preference = ?,
			fitness_goal = ?, activity_level = ?, daily_calories = ?,
			medical_conditions = ?, past_surgeries = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.PasswordHash,
		user.ProfilePhoto,
		user.Age,
		user.Gender,
		user.Height,
		user.Weight,
		user.GoalWeight,
		user.DietPreference,
		user.FitnessGoal,
		user.ActivityLevel,
		user.DailyCalories,
		user.MedicalConditions,
		user.PastSurgeries,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	return expectOneRow(result, "user", user.ID)
}

// UpdateWeight sets the current weight together with the calorie target
// derived from it.
func (db *DB) UpdateWeight(ctx context.Context, userID string, weight float64, dailyCalories int) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET weight = ?, daily_calories = ?, updated_at = ? WHERE id = ?`,
		weight, dailyCalories, db.now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating weight of user %s: %w", userID, err)
	}
	return expectOneRow(result, "user", userID)
}

func (db *DB) SetDarkMode(ctx context.Context, userID string, on bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET dark_mode = ?, updated_at = ? WHERE id = ?`,
		on, db.now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting dark mode of user %s: %w", userID, err)
	}
	return expectOneRow(result, "user", userID)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.ProfilePhoto,
		&u.Age,
		&u.Gender,
		&u.Height,
		&u.Weight,
		&u.GoalWeight,
		&u.DietPreference,
		&u.FitnessGoal,
		&u.ActivityLevel,
		&u.DailyCalories,
		&u.MedicalConditions,
		&u.PastSurgeries,
		&u.DarkMode,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// expectOneRow turns "no rows affected" into apperror.ErrNotFound.
func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
