package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// Trend windows, in days ending today.
const (
	CalorieTrendDays = 7
	WeightTrendDays  = 30
)

// WeightPoint is one weigh-in on the weight chart.
type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// CalorieTrend is the daily calories chart: one entry per day, empty days
// included as zero.
type CalorieTrend struct {
	Dates    []string  `json:"dates"`
	Calories []float64 `json:"calories"`
	Goal     int       `json:"goal"`
}

// Dashboard is everything the home page shows.
type Dashboard struct {
	User           *model.User        `json:"user"`
	Date           string             `json:"date"`
	Meals          []model.MealLog    `json:"meals"`
	Workouts       []model.WorkoutLog `json:"workouts"`
	CaloriesEaten  float64            `json:"caloriesEaten"`
	CaloriesBurned float64            `json:"caloriesBurned"`
	Remaining      float64            `json:"remaining"`
	Streak         int                `json:"streak"`
	BMI            float64            `json:"bmi,omitempty"`
	BMICategory    string             `json:"bmiCategory,omitempty"`
	Quote          string             `json:"quote"`
	DietPlan       *PlanResult        `json:"dietPlan"`
	WorkoutPlan    *PlanResult        `json:"workoutPlan"`
	Weights        []WeightPoint      `json:"weights"`
	CalorieTrend   *CalorieTrend      `json:"calorieTrend"`
}

type DashboardService struct {
	logs      repository.LogRepository
	plans     *PlanService
	assistant *AssistantService
	logger    *slog.Logger
	now       func() time.Time
}

func NewDashboardService(
	logs repository.LogRepository,
	plans *PlanService,
	assistant *AssistantService,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		logs:      logs,
		plans:     plans,
		assistant: assistant,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard assembles today's view. An incomplete profile is a validation
// error: the plans and targets would be meaningless without it.
func (s *DashboardService) Dashboard(ctx context.Context, user *model.User) (*Dashboard, error) {
	if !user.ProfileComplete() {
		return nil, apperror.ValidationFailed("profile", "Please complete your profile to see your dashboard.")
	}

	now := s.now()
	today := repository.Day(now)

	meals, err := s.logs.ListMeals(ctx, user.ID, today)
	if err != nil {
		return nil, apperror.Persistence("loading today's meals", err)
	}
	workouts, err := s.logs.ListWorkouts(ctx, user.ID, today)
	if err != nil {
		return nil, apperror.Persistence("loading today's workouts", err)
	}
	logTimes, err := s.logs.MealLogTimes(ctx, user.ID)
	if err != nil {
		return nil, apperror.Persistence("loading meal history", err)
	}

	d := &Dashboard{
		User:     user,
		Date:     model.DayOf(now),
		Meals:    meals,
		Workouts: workouts,
		Streak:   fitness.Streak(logTimes),
	}
	for _, m := range meals {
		d.CaloriesEaten += m.Calories
	}
	for _, w := range workouts {
		d.CaloriesBurned += w.CaloriesBurned
	}
	d.Remaining = float64(user.DailyCalories) - d.CaloriesEaten + d.CaloriesBurned

	if bmi, err := fitness.BMI(user.Height, user.Weight); err == nil {
		d.BMI = math.Round(bmi*10) / 10
		d.BMICategory = fitness.BMICategory(bmi)
	}

	if d.Weights, err = s.WeightTrend(ctx, user, WeightTrendDays); err != nil {
		return nil, err
	}
	if d.CalorieTrend, err = s.CalorieTrend(ctx, user); err != nil {
		return nil, err
	}

	// The three AI-backed parts run side by side so a slow provider costs
	// one AI timeout, not three.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.DietPlan, err = s.plans.GetOrCreate(gctx, user, d.Date, model.PlanDiet)
		return err
	})
	g.Go(func() (err error) {
		d.WorkoutPlan, err = s.plans.GetOrCreate(gctx, user, d.Date, model.PlanWorkout)
		return err
	})
	g.Go(func() error {
		d.Quote = s.assistant.DailyQuote(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return d, nil
}

// CalorieTrend sums calories per UTC day over the last CalorieTrendDays
// days, today included.
func (s *DashboardService) CalorieTrend(ctx context.Context, user *model.User) (*CalorieTrend, error) {
	r := repository.LastDays(s.now(), CalorieTrendDays)
	meals, err := s.logs.ListMeals(ctx, user.ID, r)
	if err != nil {
		return nil, apperror.Persistence("loading calorie trend", err)
	}

	totals := make(map[string]float64, CalorieTrendDays)
	for _, m := range meals {
		totals[model.DayOf(m.LoggedAt)] += m.Calories
	}

	trend := &CalorieTrend{
		Dates:    make([]string, 0, CalorieTrendDays),
		Calories: make([]float64, 0, CalorieTrendDays),
		Goal:     user.DailyCalories,
	}
	for d := r.From; d.Before(r.To); d = d.AddDate(0, 0, 1) {
		day := model.DayOf(d)
		trend.Dates = append(trend.Dates, day)
		trend.Calories = append(trend.Calories, totals[day])
	}
	return trend, nil
}

// WeightTrend lists weigh-ins of the last days days, oldest first.
func (s *DashboardService) WeightTrend(ctx context.Context, user *model.User, days int) ([]WeightPoint, error) {
	if days <= 0 {
		days = WeightTrendDays
	}
	weights, err := s.logs.ListWeights(ctx, user.ID, repository.LastDays(s.now(), days))
	if err != nil {
		return nil, apperror.Persistence("loading weight trend", err)
	}
	points := make([]WeightPoint, len(weights))
	for i, w := range weights {
		points[i] = WeightPoint{Date: model.DayOf(w.LoggedAt), Weight: w.Weight}
	}
	return points, nil
}
