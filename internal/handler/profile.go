package handler

import (
	"net/http"

	"github.com/sakif/fittrack/internal/service"
)

// ProfileHandler edits the signed-in user's profile.
type ProfileHandler struct {
	users   *service.AuthService
	profile *service.ProfileService
}

func NewProfileHandler(users *service.AuthService, profile *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{users: users, profile: profile}
}

// HandleUpdate applies a partial profile update. Omitted fields are kept;
// the response carries the recomputed daily calorie target.
//
// HTTP: PUT /api/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var upd service.ProfileUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.profile.UpdateProfile(r.Context(), user.ID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleToggleDarkMode flips the dark mode preference.
//
// HTTP: POST /api/profile/dark-mode
func (h *ProfileHandler) HandleToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	on, err := h.profile.ToggleDarkMode(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "darkMode": on})
}
