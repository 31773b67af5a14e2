package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/metrics"
	"github.com/sakif/fittrack/internal/model"
)

// planOrQuote answers plan prompts with a plan and everything else with a
// quote.
func planOrQuote() *fakeCompleter {
	return &fakeCompleter{respond: func(req ai.Request) (string, error) {
		switch req.Purpose {
		case "diet_plan":
			return "Breakfast:Oats:300", nil
		case "workout_plan":
			return "Cardio:Walk:200", nil
		}
		return "Keep going.", nil
	}}
}

func newTestDashboard(store *fakeStore, completer ai.Completer, now time.Time) *DashboardService {
	plans := newTestPlanService(store, completer, nil)
	plans.now = func() time.Time { return now }
	assistant := newTestAssistant(store, completer)
	assistant.now = plans.now
	d := NewDashboardService(store, plans, assistant, discardLogger())
	d.now = plans.now
	return d
}

func TestDashboard(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(completeUser())
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	store.meals = []model.MealLog{
		{UserID: user.ID, Calories: 500, LoggedAt: day(0).Add(-6 * time.Hour)},
		{UserID: user.ID, Calories: 700, LoggedAt: day(0).Add(-2 * time.Hour)},
		{UserID: user.ID, Calories: 400, LoggedAt: day(1)},
		{UserID: user.ID, Calories: 300, LoggedAt: day(2)},
		{UserID: user.ID, Calories: 900, LoggedAt: day(4)},
	}
	store.workouts = []model.WorkoutLog{{UserID: user.ID, Type: "Run", CaloriesBurned: 300, LoggedAt: day(0)}}
	store.weights = []model.WeightLog{{UserID: user.ID, Weight: 80, LoggedAt: day(3)}}

	svc := newTestDashboard(store, planOrQuote(), now)
	d, err := svc.Dashboard(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", d.Date)
	assert.Len(t, d.Meals, 2)
	assert.Equal(t, 1200.0, d.CaloriesEaten)
	assert.Equal(t, 300.0, d.CaloriesBurned)
	assert.Equal(t, 2373.0-1200+300, d.Remaining)
	assert.Equal(t, 3, d.Streak, "gap on day 3 ends the streak")
	assert.Equal(t, 24.7, d.BMI)
	assert.Equal(t, "Normal weight", d.BMICategory)
	assert.Equal(t, "Keep going.", d.Quote)
	assert.Equal(t, metrics.PlanGenerated, d.DietPlan.Source)
	assert.Contains(t, d.WorkoutPlan.Content, "Walk")
	assert.Equal(t, []WeightPoint{{Date: "2026-03-07", Weight: 80}}, d.Weights)

	require.Len(t, d.CalorieTrend.Dates, CalorieTrendDays)
	assert.Equal(t, "2026-03-04", d.CalorieTrend.Dates[0])
	assert.Equal(t, "2026-03-10", d.CalorieTrend.Dates[6])
	assert.Equal(t, []float64{0, 0, 900, 0, 300, 400, 1200}, d.CalorieTrend.Calories)
	assert.Equal(t, 2373, d.CalorieTrend.Goal)
}

func TestDashboard_IncompleteProfile(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(&model.User{Email: "new@example.com", Name: "New"})
	completer := planOrQuote()
	svc := newTestDashboard(store, completer, time.Now())

	_, err := svc.Dashboard(context.Background(), user)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, completer.calls.Load())
}

func TestDashboard_AIDownStillRenders(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(completeUser())
	svc := newTestDashboard(store, failWith(errors.New("down")), time.Now())

	d, err := svc.Dashboard(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, d.DietPlan.Content)
	assert.Empty(t, d.WorkoutPlan.Content)
	assert.Equal(t, QuoteFallback, d.Quote)
}

func TestWeightTrend_DefaultWindow(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(completeUser())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.weights = []model.WeightLog{
		{UserID: user.ID, Weight: 85, LoggedAt: now.AddDate(0, 0, -40)},
		{UserID: user.ID, Weight: 82, LoggedAt: now.AddDate(0, 0, -10)},
		{UserID: user.ID, Weight: 81, LoggedAt: now},
	}
	svc := newTestDashboard(store, planOrQuote(), now)

	points, err := svc.WeightTrend(context.Background(), user, 0)
	require.NoError(t, err)
	assert.Equal(t, []WeightPoint{{"2026-02-28", 82}, {"2026-03-10", 81}}, points)
}

func TestDashboard_AICallsRunSideBySide(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(completeUser())
	inner := planOrQuote()
	slow := &fakeCompleter{respond: func(req ai.Request) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return inner.respond(req)
	}}
	svc := newTestDashboard(store, slow, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))

	start := time.Now()
	d, err := svc.Dashboard(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, int32(3), slow.calls.Load())
	// Three calls in a row would take at least 600ms.
	assert.Less(t, time.Since(start), 450*time.Millisecond)
	assert.Equal(t, "Keep going.", d.Quote)
	assert.Contains(t, d.DietPlan.Content, "Oats")
	assert.Contains(t, d.WorkoutPlan.Content, "Walk")
}
