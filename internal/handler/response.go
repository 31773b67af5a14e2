// Package handler holds the JSON HTTP handlers. Handlers decode input, call
// one service and encode the result; they never touch the store directly.
package handler

// RESPONSE HELPERS:
// Every endpoint answers JSON through writeJSON, and every failure goes
// through writeError so the body always has the same shape:
//
//	{"error": "not_found", "message": "user not found with id abc123"}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/service"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input field, for validation errors
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status. Only *apperror.AppError
// messages reach the client; anything else becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrTransient):
			status = http.StatusServiceUnavailable
			errorType = "unavailable"
		case errors.Is(err, apperror.ErrPersistence):
			errorType = "storage_error"
		}

		if status >= http.StatusInternalServerError {
			slog.Error("request failed", slog.String("error", err.Error()))
		}
		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Never expose raw internal errors: they can carry SQL or file paths.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a bounded JSON body into v. An empty body is allowed
// and leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

// currentUser loads the authenticated caller. Routes using it sit behind
// auth.RequireAuth; a token for a deleted user reads as unauthorized.
func currentUser(r *http.Request, users *service.AuthService) (*model.User, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthorized("valid authentication required")
	}
	user, err := users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}
