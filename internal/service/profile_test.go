package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
)

func ptr[T any](v T) *T { return &v }

func newTestProfileService(store *fakeStore) *ProfileService {
	return NewProfileService(store, auth.NewPasswordServiceForTest(4), discardLogger())
}

func TestUpdateProfile_RecomputesCalories(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(&model.User{Email: "p@example.com", Name: "P"})
	svc := newTestProfileService(store)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		Age:           ptr(30),
		Gender:        ptr("Male"),
		Height:        ptr(180.0),
		Weight:        ptr(80.0),
		ActivityLevel: ptr(model.ActivityModerate),
		FitnessGoal:   ptr(model.GoalLose),
	})
	require.NoError(t, err)
	assert.Equal(t, "male", updated.Gender)
	assert.Equal(t, 2373, updated.DailyCalories)
	assert.True(t, updated.ProfileComplete())

	stored, _ := store.GetUserByID(context.Background(), user.ID)
	assert.Equal(t, 2373, stored.DailyCalories)
	assert.Equal(t, "P", stored.Name, "nil fields are left unchanged")
}

func TestUpdateProfile_IncompleteUsesDefaultTarget(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(&model.User{Email: "p@example.com", Name: "P"})
	svc := newTestProfileService(store)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Age: ptr(25)})
	require.NoError(t, err)
	assert.Equal(t, int(fitness.DefaultDailyCalories), updated.DailyCalories)
}

func TestUpdateProfile_Validation(t *testing.T) {
	tests := []struct {
		name  string
		upd   ProfileUpdate
		field string
	}{
		{"negative age", ProfileUpdate{Age: ptr(-1)}, "age"},
		{"unknown gender", ProfileUpdate{Gender: ptr("robot")}, "gender"},
		{"negative height", ProfileUpdate{Height: ptr(-180.0)}, "height"},
		{"unknown goal", ProfileUpdate{FitnessGoal: ptr("bulk")}, "fitnessGoal"},
		{"unknown activity", ProfileUpdate{ActivityLevel: ptr("couch")}, "activityLevel"},
		{"blank name", ProfileUpdate{Name: ptr(" ")}, "name"},
		{"short password", ProfileUpdate{NewPassword: ptr("123")}, "newPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			user := store.addUser(&model.User{Email: "p@example.com", Name: "P"})
			_, err := newTestProfileService(store).UpdateProfile(context.Background(), user.ID, tt.upd)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestUpdateProfile_ChangesPassword(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(&model.User{Email: "p@example.com", Name: "P"})
	svc := newTestProfileService(store)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{NewPassword: ptr("new-secret")})
	require.NoError(t, err)
	assert.NoError(t, auth.NewPasswordServiceForTest(4).Verify(updated.PasswordHash, "new-secret"))
}

func TestToggleDarkMode(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(&model.User{Email: "d@example.com", Name: "D"})
	svc := newTestProfileService(store)
	ctx := context.Background()

	on, err := svc.ToggleDarkMode(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, on)

	off, err := svc.ToggleDarkMode(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = svc.ToggleDarkMode(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
