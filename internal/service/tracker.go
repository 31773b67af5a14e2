package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// Plan item kinds accepted by LogPlanItem.
const (
	ItemMeal    = "meal"
	ItemWorkout = "workout"
)

const planItemNote = "Logged from AI plan"

// TrackerService appends meal, workout and weight logs.
type TrackerService struct {
	users  repository.UserRepository
	logs   repository.LogRepository
	logger *slog.Logger
}

func NewTrackerService(users repository.UserRepository, logs repository.LogRepository, logger *slog.Logger) *TrackerService {
	return &TrackerService{users: users, logs: logs, logger: logger}
}

func (s *TrackerService) LogMeal(ctx context.Context, userID string, meal *model.MealLog) error {
	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Name == "" {
		return apperror.ValidationFailed("name", "meal name is required")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"calories", meal.Calories},
		{"protein", meal.Protein},
		{"carbs", meal.Carbs},
		{"fat", meal.Fat},
	} {
		if !nonNegative(f.v) {
			return apperror.ValidationFailed(f.name, f.name+" must be a non-negative number")
		}
	}

	meal.UserID = userID
	if err := s.logs.CreateMeal(ctx, meal); err != nil {
		return apperror.Persistence("logging meal", err)
	}
	s.logger.Debug("meal logged", slog.String("userID", userID), slog.Float64("calories", meal.Calories))
	return nil
}

func (s *TrackerService) LogWorkout(ctx context.Context, userID string, w *model.WorkoutLog) error {
	w.Type = strings.TrimSpace(w.Type)
	if w.Type == "" {
		return apperror.ValidationFailed("type", "workout type is required")
	}
	if w.Duration < 0 {
		return apperror.ValidationFailed("duration", "duration must not be negative")
	}
	if !nonNegative(w.CaloriesBurned) {
		return apperror.ValidationFailed("caloriesBurned", "calories burned must be a non-negative number")
	}

	w.UserID = userID
	if err := s.logs.CreateWorkout(ctx, w); err != nil {
		return apperror.Persistence("logging workout", err)
	}
	s.logger.Debug("workout logged", slog.String("userID", userID), slog.String("type", w.Type))
	return nil
}

// LogWeight records a weigh-in, then makes it the current weight and
// recomputes the calorie target. The two writes are independent: if the
// second fails the weigh-in stays logged.
func (s *TrackerService) LogWeight(ctx context.Context, userID string, w *model.WeightLog) (*model.User, error) {
	if !nonNegative(w.Weight) || w.Weight == 0 {
		return nil, apperror.ValidationFailed("weight", "weight must be a positive number")
	}

	w.UserID = userID
	if err := s.logs.CreateWeight(ctx, w); err != nil {
		return nil, apperror.Persistence("logging weight", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/tracker: fetching user %s: %w", userID, err)
	}
	user.Weight = w.Weight
	user.DailyCalories = fitness.RoundedTarget(user)
	if err := s.users.UpdateWeight(ctx, userID, user.Weight, user.DailyCalories); err != nil {
		return nil, apperror.Persistence("updating current weight", err)
	}

	s.logger.Info("weight logged",
		slog.String("userID", userID),
		slog.Float64("weight", w.Weight),
		slog.Int("dailyCalories", user.DailyCalories),
	)
	return user, nil
}

// LogPlanItem logs one rendered plan entry with a single click. kind is
// the item's data-type: "meal" or "workout".
func (s *TrackerService) LogPlanItem(ctx context.Context, userID, kind, name string, calories float64) error {
	switch kind {
	case ItemMeal:
		return s.LogMeal(ctx, userID, &model.MealLog{Name: name, Calories: calories, Notes: planItemNote})
	case ItemWorkout:
		return s.LogWorkout(ctx, userID, &model.WorkoutLog{Type: name, CaloriesBurned: calories, Notes: planItemNote})
	default:
		return apperror.ValidationFailed("type", "invalid item type")
	}
}

// RecentWorkouts returns the latest limit workouts, newest first.
func (s *TrackerService) RecentWorkouts(ctx context.Context, userID string, limit int) ([]model.WorkoutLog, error) {
	workouts, err := s.logs.RecentWorkouts(ctx, userID, time.Time{}, limit)
	if err != nil {
		return nil, apperror.Persistence("loading workouts", err)
	}
	return workouts, nil
}
