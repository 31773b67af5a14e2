package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/fittrack/internal/model"
)

func TestWeekly(t *testing.T) {
	meals := []model.MealLog{{Calories: 2100}, {Calories: 1400}, {Calories: 3500}}
	workouts := []model.WorkoutLog{{Duration: 30, CaloriesBurned: 300}, {Duration: 45, CaloriesBurned: 250.5}}
	weights := []model.WeightLog{{Weight: 82}, {Weight: 81.2}, {Weight: 80.5}}

	s := Weekly(2000, meals, workouts, weights)

	assert.InDelta(t, 7000, s.TotalCalories, 0.001)
	assert.InDelta(t, 1000, s.AvgDailyCalories, 0.001)
	assert.InDelta(t, 50, s.GoalMetPercent, 0.001)
	assert.Equal(t, 75, s.TotalWorkoutMinutes)
	assert.InDelta(t, 550.5, s.TotalCaloriesBurned, 0.001)
	assert.Equal(t, 82.0, s.StartWeight)
	assert.Equal(t, 80.5, s.EndWeight)
	assert.InDelta(t, -1.5, s.WeightChange, 0.001)
}

func TestWeekly_Empty(t *testing.T) {
	s := Weekly(0, nil, nil, []model.WeightLog{{Weight: 70}})

	assert.Zero(t, s.AvgDailyCalories)
	assert.Zero(t, s.GoalMetPercent)
	assert.Equal(t, 70.0, s.StartWeight)
	assert.Zero(t, s.WeightChange, "a single weigh-in has no change")
}
