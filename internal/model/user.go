// Package model defines the data structures used throughout the application.
package model

import "time"

// Activity levels accepted by the calorie target calculation.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Fitness goals. Anything else counts as maintenance.
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// User is the root aggregate: every log and plan row belongs to one user.
//
// Biometric fields use their zero value for "not provided yet". A freshly
// registered account has only Email, Name and PasswordHash set; the profile
// form fills the rest in.
//
// PasswordHash is empty for accounts created through GitHub sign-in, which
// means password login is impossible for them until they set one.
type User struct {
	ID                string    `json:"id"                db:"id"`
	Email             string    `json:"email"             db:"email"`
	Name              string    `json:"name"              db:"name"`
	PasswordHash      string    `json:"-"                 db:"password_hash"`
	ProfilePhoto      string    `json:"profilePhoto"      db:"profile_photo"`
	Age               int       `json:"age"               db:"age"`
	Gender            string    `json:"gender"            db:"gender"` // "male" or "female"
	Height            float64   `json:"height"            db:"height"` // cm
	Weight            float64   `json:"weight"            db:"weight"` // kg
	GoalWeight        float64   `json:"goalWeight"        db:"goal_weight"`
	DietPreference    string    `json:"dietPreference"    db:"diet_preference"`
	FitnessGoal       string    `json:"fitnessGoal"       db:"fitness_goal"`
	ActivityLevel     string    `json:"activityLevel"     db:"activity_level"`
	DailyCalories     int       `json:"dailyCalories"     db:"daily_calories"`
	MedicalConditions string    `json:"medicalConditions" db:"medical_conditions"`
	PastSurgeries     string    `json:"pastSurgeries"     db:"past_surgeries"`
	DarkMode          bool      `json:"darkMode"          db:"dark_mode"`
	CreatedAt         time.Time `json:"createdAt"         db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt"         db:"updated_at"`
}

// ProfileComplete reports whether the dashboard has enough data to work with.
func (u *User) ProfileComplete() bool {
	return u.Age > 0 && u.Height > 0 && u.Weight > 0 && u.DailyCalories > 0
}
