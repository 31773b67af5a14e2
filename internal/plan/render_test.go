package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/model"
)

func TestRender_Diet(t *testing.T) {
	html, err := Render([]model.PlanItem{
		{Label: "Breakfast", Name: "Oats", Value: 300},
		{Label: "Dinner", Name: "Fish", Value: 412.6},
	}, model.PlanDiet)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(html, `<li class="plan-item"`))
	assert.Contains(t, html, `data-name="Oats" data-calories="300" data-type="meal"`)
	assert.Contains(t, html, `<div class="item-name">Breakfast: Oats</div>`)
	assert.Contains(t, html, `<div class="item-info">300 kcal</div>`)
	assert.Contains(t, html, `<div class="item-info">413 kcal</div>`)
	assert.NotContains(t, html, "burned")
}

func TestRender_Workout(t *testing.T) {
	html, err := Render([]model.PlanItem{{Label: "Cardio", Name: "Brisk Walking", Value: 250}}, model.PlanWorkout)
	require.NoError(t, err)

	assert.Contains(t, html, `data-type="workout"`)
	assert.Contains(t, html, `<div class="item-info">250 kcal burned</div>`)
}

func TestRender_EscapesModelOutput(t *testing.T) {
	html, err := Render([]model.PlanItem{{Label: "Lunch", Name: `<script>alert(1)</script>" onclick="x`, Value: 1}}, model.PlanDiet)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, `" onclick="x`)
}

func TestRender_Empty(t *testing.T) {
	html, err := Render(nil, model.PlanDiet)
	require.NoError(t, err)
	assert.Empty(t, html)
}
