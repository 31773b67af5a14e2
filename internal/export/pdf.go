package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// WritePDF writes r as a single A4 document: title, profile block and one
// table per log kind.
func WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Fitness Report for "+r.User.Name, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252; translate so accented names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0x2c, 0x3e, 0x50)
	pdf.CellFormat(0, 10, tr("Fitness Report for "+r.User.Name), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on "+r.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	u := r.User
	section(pdf, "User Profile")
	for _, kv := range [][2]string{
		{"Name", u.Name},
		{"Age", strconv.Itoa(u.Age)},
		{"Gender", u.Gender},
		{"Height", num(u.Height) + " cm"},
		{"Weight", num(u.Weight) + " kg"},
		{"Goal Weight", num(u.GoalWeight) + " kg"},
		{"Daily Calorie Target", strconv.Itoa(u.DailyCalories)},
	} {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Meal Logs")
	rows := make([][]string, 0, len(r.Meals))
	for _, m := range r.Meals {
		rows = append(rows, []string{day(m.LoggedAt), m.Name, num(m.Calories), num(m.Protein), num(m.Carbs), num(m.Fat), m.Notes})
	}
	table(pdf, tr, mealHeaders, []float64{22, 40, 20, 22, 20, 18, 48}, rows)

	section(pdf, "Workout Logs")
	rows = rows[:0]
	for _, wl := range r.Workouts {
		rows = append(rows, []string{day(wl.LoggedAt), wl.Type, strconv.Itoa(wl.Duration), num(wl.CaloriesBurned), wl.Notes})
	}
	table(pdf, tr, workoutHeaders, []float64{22, 45, 30, 33, 60}, rows)

	section(pdf, "Weight Logs")
	rows = rows[:0]
	for _, wt := range r.Weights {
		rows = append(rows, []string{day(wt.LoggedAt), num(wt.Weight), wt.Notes})
	}
	table(pdf, tr, weightHeaders, []float64{30, 30, 130}, rows)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: writing pdf: %w", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func table(pdf *fpdf.Fpdf, tr func(string) string, headers []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(0xf2, 0xf2, 0xf2)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, tr(truncate(cell, widths[i])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

// truncate keeps a cell on one line; roughly two characters per mm at 9pt.
func truncate(s string, width float64) string {
	max := int(width * 0.55)
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return string(r[:max-3]) + "..."
}
