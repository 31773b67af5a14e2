package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/handler"
	"github.com/sakif/fittrack/internal/metrics"
	sqliteRepo "github.com/sakif/fittrack/internal/repository/sqlite"
	"github.com/sakif/fittrack/internal/service"
	"github.com/sakif/fittrack/internal/session"
)

// stubCompleter answers by request purpose. Purposes without an answer
// fail like an unreachable provider.
type stubCompleter struct {
	replies map[string]string
	calls   atomic.Int32
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.calls.Add(1)
	if reply, ok := s.replies[req.Purpose]; ok {
		return reply, nil
	}
	return "", ai.ErrEmptyResponse
}

type fakeGitHub struct {
	user *auth.GitHubUser
	err  error
}

func (f *fakeGitHub) AuthURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}

func (f *fakeGitHub) Exchange(context.Context, string) (*auth.GitHubUser, error) {
	return f.user, f.err
}

type testEnv struct {
	router   http.Handler
	store    *sqliteRepo.DB
	tokens   *auth.TokenService
	sessions *session.MemoryStore
	ai       *stubCompleter
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires real services over an in-memory database, mounted the
// same way the server mounts them.
func newTestEnv(t *testing.T, replies map[string]string) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	logger := discardLogger()
	completer := &stubCompleter{replies: replies}
	sessions := session.NewMemoryStore(20, time.Hour)
	m := metrics.New()

	authSvc := service.NewAuthService(db, tokens, passwords, logger)
	planSvc := service.NewPlanService(db, db, db, completer, m, config.Default().Plans, logger)
	assistantSvc := service.NewAssistantService(completer, sessions, db, "summary-model", logger)

	authH := handler.NewAuthHandler(authSvc, assistantSvc, tokens, &fakeGitHub{
		user: &auth.GitHubUser{ID: 7, Login: "octo", Name: "Octo Cat", Email: "octo@example.com"},
	}, false, logger)
	profileH := handler.NewProfileHandler(authSvc, service.NewProfileService(db, passwords, logger))
	trackerH := handler.NewTrackerHandler(authSvc, service.NewTrackerService(db, db, logger))
	planH := handler.NewPlanHandler(authSvc, planSvc)
	dashH := handler.NewDashboardHandler(authSvc, service.NewDashboardService(db, planSvc, assistantSvc, logger))
	assistantH := handler.NewAssistantHandler(authSvc, assistantSvc)
	exportH := handler.NewExportHandler(authSvc, service.NewReportService(db), logger)

	r := chi.NewRouter()
	r.Post("/auth/register", authH.HandleRegister)
	r.Post("/auth/login", authH.HandleLogin)
	r.Post("/auth/logout", authH.HandleLogout)
	r.Get("/auth/github/login", authH.HandleGitHubLogin)
	r.Get("/auth/github/callback", authH.HandleGitHubCallback)
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/me", authH.HandleMe)
		r.Put("/profile", profileH.HandleUpdate)
		r.Post("/profile/dark-mode", profileH.HandleToggleDarkMode)
		r.Get("/dashboard", dashH.HandleDashboard)
		r.Get("/calories-trend", dashH.HandleCalorieTrend)
		r.Get("/weight-trend", dashH.HandleWeightTrend)
		r.Post("/meals", trackerH.HandleLogMeal)
		r.Post("/workouts", trackerH.HandleLogWorkout)
		r.Get("/workouts/recent", trackerH.HandleRecentWorkouts)
		r.Post("/weights", trackerH.HandleLogWeight)
		r.Post("/plan-items", trackerH.HandleLogPlanItem)
		r.Get("/plans/{type}", planH.HandleGet)
		r.Post("/chat", assistantH.HandleChat)
		r.Post("/ai/food-details", assistantH.HandleFoodDetails)
		r.Post("/ai/workout-calories", assistantH.HandleWorkoutCalories)
		r.Get("/ai/weekly-summary", assistantH.HandleWeeklySummary)
		r.Get("/export/pdf", exportH.HandlePDF)
		r.Get("/export/excel", exportH.HandleExcel)
	})

	return &testEnv{router: r, store: db, tokens: tokens, sessions: sessions, ai: completer}
}

// do sends a request; token, when set, goes in the session cookie.
func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns its session token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/auth/register",
		`{"email":"`+email+`","name":"Test User","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	c := tokenCookie(rr)
	require.NotNil(t, c)
	return c.Value
}

// registerComplete registers and fills in the profile so the dashboard
// and plans have what they need.
func (e *testEnv) registerComplete(t *testing.T, email string) string {
	t.Helper()
	token := e.register(t, email)
	rr := e.do(t, http.MethodPut, "/api/profile", `{
		"age": 30, "gender": "male", "height": 180, "weight": 80,
		"activityLevel": "moderate", "fitnessGoal": "lose"
	}`, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return token
}

func tokenCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v), rr.Body.String())
	return v
}
