package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/fittrack/internal/model"
)

func testUser() *model.User {
	return &model.User{
		Name:              "Ada",
		Age:               30,
		Gender:            "female",
		Weight:            62.5,
		Height:            168,
		FitnessGoal:       model.GoalLose,
		DietPreference:    "vegetarian",
		ActivityLevel:     model.ActivityModerate,
		DailyCalories:     1800,
		MedicalConditions: "high blood pressure",
	}
}

func TestDietContext(t *testing.T) {
	ctx := DietContext(testUser(), []model.MealLog{
		{Name: "Lentil soup", Calories: 320},
		{Name: "Greek yogurt", Calories: 150},
	})

	assert.Contains(t, ctx, "- Age: 30, Gender: female")
	assert.Contains(t, ctx, "- Weight: 62.5 kg, Height: 168 cm")
	assert.Contains(t, ctx, "- Goal: lose weight")
	assert.Contains(t, ctx, "- Diet Preference: vegetarian")
	assert.Contains(t, ctx, "- Daily Calorie Target: 1800")
	assert.Contains(t, ctx, "- Medical Conditions: high blood pressure")
	assert.Contains(t, ctx, "- Past Surgeries/Injuries: None specified")
	assert.Contains(t, ctx, "- Recent Meals: Lentil soup (320 cal), Greek yogurt (150 cal)")
}

func TestWorkoutContext(t *testing.T) {
	ctx := WorkoutContext(testUser(), nil)

	assert.Contains(t, ctx, "- Name: Ada, Age: 30, Gender: female")
	assert.Contains(t, ctx, "- Activity Level: moderate")
	assert.Contains(t, ctx, "- Recent Workouts: none logged")
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt(model.PlanDiet), "MealType:FoodName:Calories")
	assert.Contains(t, SystemPrompt(model.PlanWorkout), "Category:ExerciseName:CaloriesBurned")
}
