package handler

import (
	"net/http"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/service"
)

// AssistantHandler exposes the chat bot and the AI estimates.
type AssistantHandler struct {
	users     *service.AuthService
	assistant *service.AssistantService
}

func NewAssistantHandler(users *service.AuthService, assistant *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{users: users, assistant: assistant}
}

// HandleChat continues the conversation of the caller's login session.
//
// HTTP: POST /api/chat
// REQUEST BODY: {"prompt": "How much protein do I need?"}
// RESPONSE: {"reply": "..."}
func (h *AssistantHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.assistant.Chat(r.Context(), id.SessionID, req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// HandleFoodDetails estimates the macros of a food.
//
// HTTP: POST /api/ai/food-details
// REQUEST BODY: {"food_name": "2 boiled eggs"}
func (h *AssistantHandler) HandleFoodDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FoodName string `json:"food_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := h.assistant.EstimateNutrition(r.Context(), req.FoodName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": n})
}

// HandleWorkoutCalories estimates calories burned by a described workout.
//
// HTTP: POST /api/ai/workout-calories
// REQUEST BODY: {"description": "running on treadmill for 30 minutes"}
func (h *AssistantHandler) HandleWorkoutCalories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	calories, err := h.assistant.EstimateWorkoutCalories(r.Context(), req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]int{"calories_burned": calories},
	})
}

// HandleWeeklySummary
//
// HTTP: GET /api/ai/weekly-summary
func (h *AssistantHandler) HandleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.assistant.WeeklySummary(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
