package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/service"
)

const recentWorkoutsLimit = 5

// TrackerHandler logs meals, workouts and weigh-ins.
type TrackerHandler struct {
	users   *service.AuthService
	tracker *service.TrackerService
}

func NewTrackerHandler(users *service.AuthService, tracker *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{users: users, tracker: tracker}
}

type mealRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Notes    string  `json:"notes"`
}

// HandleLogMeal
//
// HTTP: POST /api/meals
func (h *TrackerHandler) HandleLogMeal(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req mealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	meal := &model.MealLog{
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Notes:    req.Notes,
	}
	if err := h.tracker.LogMeal(r.Context(), user.ID, meal); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

type workoutRequest struct {
	Type           string  `json:"type"`
	Duration       int     `json:"duration"`
	CaloriesBurned float64 `json:"caloriesBurned"`
	Notes          string  `json:"notes"`
}

// HandleLogWorkout
//
// HTTP: POST /api/workouts
func (h *TrackerHandler) HandleLogWorkout(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req workoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	workout := &model.WorkoutLog{
		Type:           req.Type,
		Duration:       req.Duration,
		CaloriesBurned: req.CaloriesBurned,
		Notes:          req.Notes,
	}
	if err := h.tracker.LogWorkout(r.Context(), user.ID, workout); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

// HandleRecentWorkouts lists the latest workouts, newest first.
//
// HTTP: GET /api/workouts/recent?limit=5
func (h *TrackerHandler) HandleRecentWorkouts(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := recentWorkoutsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	workouts, err := h.tracker.RecentWorkouts(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

type weightRequest struct {
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes"`
}

// HandleLogWeight records a weigh-in and returns the updated user, whose
// calorie target follows the new weight.
//
// HTTP: POST /api/weights
func (h *TrackerHandler) HandleLogWeight(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req weightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.tracker.LogWeight(r.Context(), user.ID, &model.WeightLog{Weight: req.Weight, Notes: req.Notes})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

type planItemRequest struct {
	Type     string  `json:"type"` // "meal" or "workout"
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

// HandleLogPlanItem logs one entry of a rendered plan.
//
// HTTP: POST /api/plan-items
// REQUEST BODY: {"type": "meal", "name": "Oatmeal", "calories": 350}
func (h *TrackerHandler) HandleLogPlanItem(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req planItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.tracker.LogPlanItem(r.Context(), user.ID, req.Type, req.Name, req.Calories); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}
