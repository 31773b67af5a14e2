package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetProfile  = "Profile"
	sheetMeals    = "Meals"
	sheetWorkouts = "Workouts"
	sheetWeights  = "Weights"
)

// WriteExcel writes r as a workbook with one sheet for the profile and one
// per log kind. Numbers are written as numbers so the sheet can be charted.
func WriteExcel(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes Profile instead of lingering as "Sheet1".
	if err := f.SetSheetName("Sheet1", sheetProfile); err != nil {
		return fmt.Errorf("export: renaming default sheet: %w", err)
	}
	u := r.User
	profile := [][]any{
		{"User Profile"},
		{"Name", u.Name},
		{"Age", u.Age},
		{"Gender", u.Gender},
		{"Height (cm)", u.Height},
		{"Weight (kg)", u.Weight},
		{"Goal Weight (kg)", u.GoalWeight},
		{"Daily Calorie Target", u.DailyCalories},
	}
	if err := writeRows(f, sheetProfile, profile); err != nil {
		return err
	}

	meals := [][]any{toRow(mealHeaders)}
	for _, m := range r.Meals {
		meals = append(meals, []any{day(m.LoggedAt), m.Name, m.Calories, m.Protein, m.Carbs, m.Fat, m.Notes})
	}
	workouts := [][]any{toRow(workoutHeaders)}
	for _, wl := range r.Workouts {
		workouts = append(workouts, []any{day(wl.LoggedAt), wl.Type, wl.Duration, wl.CaloriesBurned, wl.Notes})
	}
	weights := [][]any{toRow(weightHeaders)}
	for _, wt := range r.Weights {
		weights = append(weights, []any{day(wt.LoggedAt), wt.Weight, wt.Notes})
	}

	for _, s := range []struct {
		name string
		rows [][]any
	}{
		{sheetMeals, meals},
		{sheetWorkouts, workouts},
		{sheetWeights, weights},
	} {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("export: creating sheet %s: %w", s.name, err)
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
	}

	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
	}); err == nil {
		for _, sheet := range []string{sheetMeals, sheetWorkouts, sheetWeights} {
			_ = f.SetRowStyle(sheet, 1, 1, style)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}
