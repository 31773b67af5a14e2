package fitness

import "github.com/sakif/fittrack/internal/model"

// WeekDays is the divisor for the weekly average, regardless of how many
// days actually have logs.
const WeekDays = 7

// WeeklyStats summarises one week of logs.
type WeeklyStats struct {
	TotalCalories       float64 `json:"totalCalories"`
	AvgDailyCalories    float64 `json:"avgDailyCalories"`
	DailyGoal           int     `json:"dailyGoal"`
	GoalMetPercent      float64 `json:"goalMetPercent"`
	TotalWorkoutMinutes int     `json:"totalWorkoutMinutes"`
	TotalCaloriesBurned float64 `json:"totalCaloriesBurned"`
	StartWeight         float64 `json:"startWeight"` // 0 when no weigh-ins
	EndWeight           float64 `json:"endWeight"`
	WeightChange        float64 `json:"weightChange"` // 0 with fewer than two weigh-ins
	WeighIns            int     `json:"weighIns"`
}

// Weekly computes WeeklyStats. weights must be in ascending time order.
func Weekly(dailyGoal int, meals []model.MealLog, workouts []model.WorkoutLog, weights []model.WeightLog) WeeklyStats {
	s := WeeklyStats{DailyGoal: dailyGoal, WeighIns: len(weights)}

	for _, m := range meals {
		s.TotalCalories += m.Calories
	}
	if len(meals) > 0 {
		s.AvgDailyCalories = s.TotalCalories / WeekDays
	}
	if dailyGoal > 0 {
		s.GoalMetPercent = s.AvgDailyCalories / float64(dailyGoal) * 100
	}

	for _, w := range workouts {
		s.TotalWorkoutMinutes += w.Duration
		s.TotalCaloriesBurned += w.CaloriesBurned
	}

	if len(weights) > 0 {
		s.StartWeight = weights[0].Weight
		s.EndWeight = weights[len(weights)-1].Weight
	}
	if len(weights) >= 2 {
		s.WeightChange = s.EndWeight - s.StartWeight
	}
	return s
}
