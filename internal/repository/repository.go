// Package repository declares the storage interfaces the services depend
// on. internal/repository/sqlite implements all of them on one *sqlite.DB.
package repository

import (
	"context"
	"time"

	"github.com/sakif/fittrack/internal/model"
)

// TimeRange is the half-open interval [From, To). A zero To means "no
// upper bound".
type TimeRange struct {
	From time.Time
	To   time.Time
}

// LastDays returns the range covering the n calendar days ending with the
// day of now (UTC), now's day included.
func LastDays(now time.Time, n int) TimeRange {
	end := model.StartOfDay(now).AddDate(0, 0, 1)
	return TimeRange{From: end.AddDate(0, 0, -n), To: end}
}

// Day returns the range of the single UTC calendar day containing t.
func Day(t time.Time) TimeRange {
	return LastDays(t, 1)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateWeight(ctx context.Context, userID string, weight float64, dailyCalories int) error
	SetDarkMode(ctx context.Context, userID string, on bool) error
}

type MealRepository interface {
	CreateMeal(ctx context.Context, meal *model.MealLog) error
	// ListMeals returns meals in r, oldest first.
	ListMeals(ctx context.Context, userID string, r TimeRange) ([]model.MealLog, error)
	// RecentMeals returns up to limit meals logged at or after since, newest first.
	RecentMeals(ctx context.Context, userID string, since time.Time, limit int) ([]model.MealLog, error)
	// MealLogTimes returns the timestamp of every meal the user logged.
	MealLogTimes(ctx context.Context, userID string) ([]time.Time, error)
}

type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout *model.WorkoutLog) error
	ListWorkouts(ctx context.Context, userID string, r TimeRange) ([]model.WorkoutLog, error)
	RecentWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]model.WorkoutLog, error)
}

type WeightRepository interface {
	CreateWeight(ctx context.Context, w *model.WeightLog) error
	ListWeights(ctx context.Context, userID string, r TimeRange) ([]model.WeightLog, error)
}

// PlanRepository is the daily plan cache. At most one row exists per
// PlanKey; UpsertPlan overwrites the content of an existing row.
type PlanRepository interface {
	GetPlan(ctx context.Context, key model.PlanKey) (*model.DailyPlan, error)
	UpsertPlan(ctx context.Context, plan *model.DailyPlan) error
}

// LogRepository groups the three log stores.
type LogRepository interface {
	MealRepository
	WorkoutRepository
	WeightRepository
}

// Store is everything the application persists.
type Store interface {
	UserRepository
	LogRepository
	PlanRepository
	Ping(ctx context.Context) error
}
