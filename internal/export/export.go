// Package export renders a user's history as downloadable PDF and Excel
// reports.
package export

import (
	"fmt"
	"time"

	"github.com/sakif/fittrack/internal/model"
)

// Report is everything a report file contains. Logs are oldest first.
type Report struct {
	User        model.User
	Meals       []model.MealLog
	Workouts    []model.WorkoutLog
	Weights     []model.WeightLog
	GeneratedAt time.Time
}

// Filename returns "fitness_report_YYYYMMDD.<ext>" for the generation day.
func (r *Report) Filename(ext string) string {
	return fmt.Sprintf("fitness_report_%s.%s", r.GeneratedAt.UTC().Format("20060102"), ext)
}

const (
	ContentTypePDF   = "application/pdf"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	mealHeaders    = []string{"Date", "Meal", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)", "Notes"}
	workoutHeaders = []string{"Date", "Type", "Duration (min)", "Calories Burned", "Notes"}
	weightHeaders  = []string{"Date", "Weight (kg)", "Notes"}
)

func day(t time.Time) string {
	return t.UTC().Format(model.DateLayout)
}

// num prints whole numbers without a trailing ".0".
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
