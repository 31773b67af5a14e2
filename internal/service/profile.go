package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// ProfileUpdate is a partial update: nil fields are left unchanged.
type ProfileUpdate struct {
	Name              *string  `json:"name"`
	ProfilePhoto      *string  `json:"profilePhoto"`
	Age               *int     `json:"age"`
	Gender            *string  `json:"gender"`
	Height            *float64 `json:"height"`
	Weight            *float64 `json:"weight"`
	GoalWeight        *float64 `json:"goalWeight"`
	DietPreference    *string  `json:"dietPreference"`
	FitnessGoal       *string  `json:"fitnessGoal"`
	ActivityLevel     *string  `json:"activityLevel"`
	MedicalConditions *string  `json:"medicalConditions"`
	PastSurgeries     *string  `json:"pastSurgeries"`
	NewPassword       *string  `json:"newPassword"`
}

var (
	validGenders = map[string]bool{"": true, "male": true, "female": true}
	validGoals   = map[string]bool{"": true, model.GoalLose: true, model.GoalMaintain: true, model.GoalGain: true}
	validLevels  = map[string]bool{
		"":                       true,
		model.ActivitySedentary:  true,
		model.ActivityLight:      true,
		model.ActivityModerate:   true,
		model.ActivityActive:     true,
		model.ActivityVeryActive: true,
	}
)

type ProfileService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewProfileService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, passwords: passwords, logger: logger}
}

// UpdateProfile applies upd and recomputes the daily calorie target from
// the resulting biometrics.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching user %s: %w", userID, err)
	}

	if err := apply(user, upd); err != nil {
		return nil, err
	}
	if upd.NewPassword != nil && *upd.NewPassword != "" {
		if len(*upd.NewPassword) < MinPasswordLength {
			return nil, apperror.ValidationFailed("newPassword",
				fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		}
		hash, err := s.passwords.Hash(*upd.NewPassword)
		if err != nil {
			return nil, apperror.ValidationFailed("newPassword", err.Error())
		}
		user.PasswordHash = hash
	}

	user.DailyCalories = fitness.RoundedTarget(user)

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, apperror.Persistence("updating profile", err)
	}

	s.logger.Info("profile updated",
		slog.String("userID", user.ID),
		slog.Int("dailyCalories", user.DailyCalories),
	)
	return user, nil
}

// ToggleDarkMode flips the preference and returns the new value.
func (s *ProfileService) ToggleDarkMode(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("service/profile: fetching user %s: %w", userID, err)
	}
	on := !user.DarkMode
	if err := s.users.SetDarkMode(ctx, userID, on); err != nil {
		return false, apperror.Persistence("saving dark mode", err)
	}
	return on, nil
}

func apply(u *model.User, upd ProfileUpdate) error {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return apperror.ValidationFailed("name", "name is required")
		}
		u.Name = name
	}
	if upd.ProfilePhoto != nil {
		u.ProfilePhoto = strings.TrimSpace(*upd.ProfilePhoto)
	}
	if upd.Age != nil {
		if *upd.Age < 0 || *upd.Age > 150 {
			return apperror.ValidationFailed("age", "age must be between 0 and 150")
		}
		u.Age = *upd.Age
	}
	if upd.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*upd.Gender))
		if !validGenders[g] {
			return apperror.ValidationFailed("gender", "gender must be male or female")
		}
		u.Gender = g
	}
	for _, f := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"height", upd.Height, &u.Height},
		{"weight", upd.Weight, &u.Weight},
		{"goalWeight", upd.GoalWeight, &u.GoalWeight},
	} {
		if f.src == nil {
			continue
		}
		if !nonNegative(*f.src) {
			return apperror.ValidationFailed(f.name, f.name+" must be a non-negative number")
		}
		*f.dst = *f.src
	}
	if upd.DietPreference != nil {
		u.DietPreference = strings.TrimSpace(*upd.DietPreference)
	}
	if upd.FitnessGoal != nil {
		if !validGoals[*upd.FitnessGoal] {
			return apperror.ValidationFailed("fitnessGoal", "fitness goal must be lose, maintain or gain")
		}
		u.FitnessGoal = *upd.FitnessGoal
	}
	if upd.ActivityLevel != nil {
		if !validLevels[*upd.ActivityLevel] {
			return apperror.ValidationFailed("activityLevel", "unknown activity level")
		}
		u.ActivityLevel = *upd.ActivityLevel
	}
	if upd.MedicalConditions != nil {
		u.MedicalConditions = strings.TrimSpace(*upd.MedicalConditions)
	}
	if upd.PastSurgeries != nil {
		u.PastSurgeries = strings.TrimSpace(*upd.PastSurgeries)
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
