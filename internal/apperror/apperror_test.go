package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	dbErr := errors.New("disk I/O error")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("calories", "calories must not be negative"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "a@b.c"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid email or password"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Transient wraps ErrTransient",
			err:       Transient("diet plan", errors.New("timeout")),
			target:    ErrTransient,
			wantMatch: true,
		},
		{
			name:      "Persistence wraps ErrPersistence",
			err:       Persistence("saving plan", dbErr),
			target:    ErrPersistence,
			wantMatch: true,
		},
		{
			name:      "Persistence also matches its cause",
			err:       Persistence("saving plan", dbErr),
			target:    dbErr,
			wantMatch: true,
		},
		{
			name:      "Transient does NOT match ErrPersistence",
			err:       Transient("quote", errors.New("timeout")),
			target:    ErrPersistence,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("user", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "abc123"),
			wantMessage: "user not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Transient includes cause",
			err:         Transient("diet plan", errors.New("timeout")),
			wantMessage: "diet plan temporarily unavailable: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), Transient("chat", errors.New("503")))
	if !IsTransient(wrapped) {
		t.Error("IsTransient() = false for wrapped transient error")
	}
	if IsTransient(Persistence("saving plan", errors.New("locked"))) {
		t.Error("IsTransient() = true for persistence error")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
