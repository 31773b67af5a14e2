package plan

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sakif/fittrack/internal/model"
)

// System prompts pin the response to the wire grammar of this package.
const (
	DietSystemPrompt = `You are a cautious and responsible diet planning AI. Your ONLY job is to create a one-day meal plan.
**CRITICAL RULES:**
1. You MUST carefully consider the user's medical conditions and diet preferences. For example, for high blood pressure, suggest low-sodium foods.
2. You MUST respond in the format: ` + "`MealType:FoodName:Calories;MealType:FoodName:Calories`" + `.
3. Do NOT include any text other than the plan string.
4. If you cannot generate a safe plan, you MUST respond with the single word: ` + "`None`" + `.
**EXAMPLE RESPONSE:**
Breakfast:Oatmeal with Berries:350;Lunch:Grilled Chicken Salad:450;Dinner:Salmon with Quinoa:550`

	WorkoutSystemPrompt = `You are a cautious and responsible personal trainer AI. Your ONLY job is to create a one-day workout plan.
**CRITICAL RULES:**
1. You MUST create a safe workout that considers the user's medical conditions and past injuries. Avoid any exercises that could cause harm or strain.
2. You MUST respond in the format: ` + "`Category:ExerciseName:CaloriesBurned;Category:ExerciseName:CaloriesBurned`" + `.
3. Do NOT include any text other than the plan string.
4. If you cannot generate a safe plan, you MUST respond with the single word: ` + "`None`" + `.
**EXAMPLE RESPONSE:**
Cardio:Brisk Walking:250;Strength:Bodyweight Squats:100;Flexibility:Gentle Stretching:50`
)

const notSpecified = "None specified"

// SystemPrompt returns the instruction for plan type t.
func SystemPrompt(t model.PlanType) string {
	if t == model.PlanWorkout {
		return WorkoutSystemPrompt
	}
	return DietSystemPrompt
}

// DietContext describes the user and what they ate recently.
func DietContext(u *model.User, recent []model.MealLog) string {
	var buf bytes.Buffer
	buf.WriteString("User Profile:\n")
	fmt.Fprintf(&buf, "- Age: %d, Gender: %s\n", u.Age, orUnknown(u.Gender))
	fmt.Fprintf(&buf, "- Weight: %s kg, Height: %s cm\n", num(u.Weight), num(u.Height))
	fmt.Fprintf(&buf, "- Goal: %s weight\n", orUnknown(u.FitnessGoal))
	fmt.Fprintf(&buf, "- Diet Preference: %s\n", orUnknown(u.DietPreference))
	fmt.Fprintf(&buf, "- Daily Calorie Target: %d\n", u.DailyCalories)
	writeMedical(&buf, u)

	meals := make([]string, len(recent))
	for i, m := range recent {
		meals[i] = fmt.Sprintf("%s (%s cal)", m.Name, num(m.Calories))
	}
	fmt.Fprintf(&buf, "- Recent Meals: %s\n", list(meals))
	return buf.String()
}

// WorkoutContext describes the user and how they trained recently.
func WorkoutContext(u *model.User, recent []model.WorkoutLog) string {
	var buf bytes.Buffer
	buf.WriteString("User Profile:\n")
	fmt.Fprintf(&buf, "- Name: %s, Age: %d, Gender: %s\n", u.Name, u.Age, orUnknown(u.Gender))
	fmt.Fprintf(&buf, "- Weight: %s kg, Height: %s cm\n", num(u.Weight), num(u.Height))
	fmt.Fprintf(&buf, "- Fitness Goal: %s\n", orUnknown(u.FitnessGoal))
	fmt.Fprintf(&buf, "- Activity Level: %s\n", orUnknown(u.ActivityLevel))
	writeMedical(&buf, u)

	workouts := make([]string, len(recent))
	for i, w := range recent {
		workouts[i] = fmt.Sprintf("%s (%d min)", w.Type, w.Duration)
	}
	fmt.Fprintf(&buf, "- Recent Workouts: %s\n", list(workouts))
	return buf.String()
}

func writeMedical(buf *bytes.Buffer, u *model.User) {
	fmt.Fprintf(buf, "- Medical Conditions: %s\n", orDefault(u.MedicalConditions, notSpecified))
	fmt.Fprintf(buf, "- Past Surgeries/Injuries: %s\n", orDefault(u.PastSurgeries, notSpecified))
}

func list(items []string) string {
	if len(items) == 0 {
		return "none logged"
	}
	return strings.Join(items, ", ")
}

func num(f float64) string {
	return fmt.Sprintf("%g", f)
}

func orUnknown(s string) string {
	return orDefault(s, "unknown")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
