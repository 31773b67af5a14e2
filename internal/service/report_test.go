package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/model"
)

func TestReportBuild_Window(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(completeUser())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.meals = []model.MealLog{
		{UserID: user.ID, Name: "in", LoggedAt: now.AddDate(0, 0, -3)},
		{UserID: user.ID, Name: "out", LoggedAt: now.AddDate(0, 0, -10)},
	}
	store.workouts = []model.WorkoutLog{{UserID: user.ID, Type: "Run", LoggedAt: now}}

	svc := NewReportService(store)
	svc.now = func() time.Time { return now }

	weekly, err := svc.Build(context.Background(), user, PDFReportDays)
	require.NoError(t, err)
	require.Len(t, weekly.Meals, 1)
	assert.Equal(t, "in", weekly.Meals[0].Name)
	assert.Len(t, weekly.Workouts, 1, "a log at generation time is included")
	assert.Equal(t, "fitness_report_20260310.pdf", weekly.Filename("pdf"))

	monthly, err := svc.Build(context.Background(), user, ExcelReportDays)
	require.NoError(t, err)
	assert.Len(t, monthly.Meals, 2)
}
