package model

import "time"

// MealLog is one eaten item. Append-only.
type MealLog struct {
	ID       string    `json:"id"       db:"id"`
	UserID   string    `json:"userId"   db:"user_id"`
	Name     string    `json:"name"     db:"name"`
	Calories float64   `json:"calories" db:"calories"`
	Protein  float64   `json:"protein"  db:"protein"` // grams
	Carbs    float64   `json:"carbs"    db:"carbs"`
	Fat      float64   `json:"fat"      db:"fat"`
	Notes    string    `json:"notes"    db:"notes"`
	LoggedAt time.Time `json:"loggedAt" db:"logged_at"`
}

// WorkoutLog is one exercise session. Append-only.
type WorkoutLog struct {
	ID             string    `json:"id"             db:"id"`
	UserID         string    `json:"userId"         db:"user_id"`
	Type           string    `json:"type"           db:"type"`
	Duration       int       `json:"duration"       db:"duration"` // minutes
	CaloriesBurned float64   `json:"caloriesBurned" db:"calories_burned"`
	Notes          string    `json:"notes"          db:"notes"`
	LoggedAt       time.Time `json:"loggedAt"       db:"logged_at"`
}

// WeightLog is one weigh-in. The newest entry feeds User.Weight.
type WeightLog struct {
	ID       string    `json:"id"       db:"id"`
	UserID   string    `json:"userId"   db:"user_id"`
	Weight   float64   `json:"weight"   db:"weight"` // kg
	Notes    string    `json:"notes"    db:"notes"`
	LoggedAt time.Time `json:"loggedAt" db:"logged_at"`
}

// DayTotal is a per-day sum of calories.
type DayTotal struct {
	Date     string  `json:"date"` // DateLayout
	Calories float64 `json:"calories"`
}
