// Package fitness holds the pure calculations derived from a profile and
// its logs: calorie target, BMI, logging streak and weekly totals.
package fitness

import (
	"errors"
	"math"

	"github.com/sakif/fittrack/internal/model"
)

// DefaultDailyCalories is used whenever the profile lacks an input.
const DefaultDailyCalories = 2000.0

const goalAdjustment = 500.0

var activityMultipliers = map[string]float64{
	model.ActivitySedentary:  1.2,
	model.ActivityLight:      1.375,
	model.ActivityModerate:   1.55,
	model.ActivityActive:     1.725,
	model.ActivityVeryActive: 1.9,
}

// ActivityMultiplier returns the TDEE factor for level; unknown levels
// count as sedentary.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[model.ActivitySedentary]
}

// BMR is the revised Harris-Benedict basal metabolic rate. Any gender other
// than "male" uses the female coefficients.
func BMR(gender string, weightKg, heightCm float64, age int) float64 {
	if gender == "male" {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(age)
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*float64(age)
}

// DailyCalorieTarget returns TDEE adjusted by -500 for "lose" and +500 for
// "gain". Gender, weight, height, age, activity level and goal must all be
// set; otherwise DefaultDailyCalories.
func DailyCalorieTarget(u *model.User) float64 {
	if u == nil || u.Gender == "" || u.Weight <= 0 || u.Height <= 0 || u.Age <= 0 ||
		u.ActivityLevel == "" || u.FitnessGoal == "" {
		return DefaultDailyCalories
	}

	tdee := BMR(u.Gender, u.Weight, u.Height, u.Age) * ActivityMultiplier(u.ActivityLevel)
	switch u.FitnessGoal {
	case model.GoalLose:
		return tdee - goalAdjustment
	case model.GoalGain:
		return tdee + goalAdjustment
	default:
		return tdee
	}
}

// RoundedTarget is DailyCalorieTarget as stored on the user row.
func RoundedTarget(u *model.User) int {
	return int(math.Round(DailyCalorieTarget(u)))
}

// BMI expects height in centimeters and weight in kilograms.
func BMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("fitness: height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("fitness: height/weight out of plausible range")
	}
	h := heightCm / 100.0
	return weightKg / (h * h), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}
