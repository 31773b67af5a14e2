package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/service"
)

// PlanHandler serves the daily diet and workout plans.
type PlanHandler struct {
	users *service.AuthService
	plans *service.PlanService
}

func NewPlanHandler(users *service.AuthService, plans *service.PlanService) *PlanHandler {
	return &PlanHandler{users: users, plans: plans}
}

type planResponse struct {
	*service.PlanResult
	PlanType model.PlanType `json:"planType"`
	Message  string         `json:"message,omitempty"` // set when Content is empty
}

// HandleGet returns the plan for today, or for ?date=YYYY-MM-DD, creating
// it on a cache miss. A plan the AI could not produce answers 200 with
// empty content; only storage failures are errors.
//
// HTTP: GET /api/plans/{type}
func (h *PlanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	planType := model.PlanType(chi.URLParam(r, "type"))

	var result *service.PlanResult
	if date := r.URL.Query().Get("date"); date != "" {
		result, err = h.plans.GetOrCreate(r.Context(), user, date, planType)
	} else {
		result, err = h.plans.Today(r.Context(), user, planType)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := planResponse{PlanResult: result, PlanType: planType}
	if result.Reason != nil {
		resp.Message = "Could not generate a plan right now. Please try again later."
	}
	writeJSON(w, http.StatusOK, resp)
}
