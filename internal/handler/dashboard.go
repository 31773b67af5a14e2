package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/service"
)

const maxTrendDays = 365

// DashboardHandler serves the home page data and the two charts.
type DashboardHandler struct {
	users     *service.AuthService
	dashboard *service.DashboardService
}

func NewDashboardHandler(users *service.AuthService, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{users: users, dashboard: dashboard}
}

// HandleDashboard
//
// HTTP: GET /api/dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	d, err := h.dashboard.Dashboard(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleCalorieTrend returns calories eaten per day for the last week.
//
// HTTP: GET /api/calories-trend
func (h *DashboardHandler) HandleCalorieTrend(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	trend, err := h.dashboard.CalorieTrend(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// HandleWeightTrend returns weigh-ins, oldest first.
//
// HTTP: GET /api/weight-trend?days=30
func (h *DashboardHandler) HandleWeightTrend(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	days := service.WeightTrendDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxTrendDays {
			writeError(w, apperror.ValidationFailed("days", "days must be between 1 and 365"))
			return
		}
		days = n
	}

	points, err := h.dashboard.WeightTrend(r.Context(), user, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
