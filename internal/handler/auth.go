package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/service"
)

const stateCookie = "oauth_state"

// GitHubProvider is the part of *auth.GitHubProvider the handler needs.
type GitHubProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler manages registration, login and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister / HandleLogin → check credentials, set the token cookie
//   - HandleGitHubLogin / HandleGitHubCallback → OAuth sign-in (optional)
//   - HandleLogout → clear the cookie and the session's chat history
//   - HandleMe → the current user's profile
type AuthHandler struct {
	auth      *service.AuthService
	assistant *service.AssistantService
	tokens    *auth.TokenService
	github    GitHubProvider // nil when GitHub sign-in is not configured
	secure    bool
	logger    *slog.Logger
}

func NewAuthHandler(
	authSvc *service.AuthService,
	assistant *service.AssistantService,
	tokens *auth.TokenService,
	github GitHubProvider,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:      authSvc,
		assistant: assistant,
		tokens:    tokens,
		github:    github,
		secure:    secureCookies,
		logger:    logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister creates an account and signs it in.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"email": "...", "name": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setToken(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin checks email and password.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setToken(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the token cookie and forgets the session's chat.
// It works without a valid token so a stale cookie can always be removed.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		if id, err := h.tokens.Validate(c.Value); err == nil {
			h.assistant.ResetChat(r.Context(), id.SessionID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects to GitHub's authorization page. The random
// state is kept in a short-lived cookie and checked on callback.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile
//  3. Sign in (or create) the account with that email
//  4. Set the token cookie and redirect to the app
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || r.URL.Query().Get("state") != c.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: sign-in failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.setToken(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setToken stores the session token in an HttpOnly cookie living as long
// as the token itself.
func (h *AuthHandler) setToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
