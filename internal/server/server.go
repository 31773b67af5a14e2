// Package server is the composition root: it opens the store, the AI
// client and the session store, wires services into handlers and owns the
// http.Server lifecycle.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz, /metrics              → public
//	POST /auth/register, /auth/login     → public
//	POST /auth/logout                    → public (clears a cookie if any)
//	GET  /auth/github/*                  → public, only when configured
//	     /api/*                          → requires a valid session token
//
// MIDDLEWARE ORDER:
// RequestID first so the logger can print it, then RealIP, the request
// logger and Recoverer innermost so a panic still gets logged as a 500.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/handler"
	"github.com/sakif/fittrack/internal/metrics"
	"github.com/sakif/fittrack/internal/middleware"
	"github.com/sakif/fittrack/internal/repository"
	sqliteRepo "github.com/sakif/fittrack/internal/repository/sqlite"
	"github.com/sakif/fittrack/internal/service"
	"github.com/sakif/fittrack/internal/session"
)

// Deps are the external collaborators. New opens the real ones; tests pass
// an in-memory store, a stub completer and a memory session store.
type Deps struct {
	Store     repository.Store
	Completer ai.Completer
	Sessions  session.Store
	Metrics   *metrics.Metrics
	GitHub    handler.GitHubProvider // nil disables GitHub sign-in

	// Extra health checks besides the store, e.g. Redis.
	Checks map[string]handler.Pinger
}

type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	deps    Deps
	closers []func() error
}

// New opens the database, the optional Redis connection and the AI client
// and builds the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	closers := []func() error{db.Close}

	m := metrics.New()
	deps := Deps{
		Store:   db,
		Metrics: m,
		Checks:  map[string]handler.Pinger{},
		Completer: ai.NewClient(ai.Config{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, m, logger),
	}

	if cfg.Redis.Addr != "" {
		client := session.NewRedisClient(cfg.Redis)
		if err := session.Ping(context.Background(), client); err != nil {
			client.Close()
			db.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		closers = append(closers, client.Close)
		deps.Sessions = session.NewRedisStore(client, cfg.Chat.MaxHistory, cfg.Chat.SessionTTL)
		deps.Checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return session.Ping(ctx, client)
		})
		logger.Info("chat sessions stored in redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		deps.Sessions = session.NewMemoryStore(cfg.Chat.MaxHistory, cfg.Chat.SessionTTL)
	}

	if cfg.Auth.GitHubEnabled() {
		deps.GitHub = auth.NewGitHubProvider(cfg.Auth.GitHubClientID, cfg.Auth.GitHubClientSecret, cfg.Auth.GitHubCallbackURL)
	}

	s, err := NewWithDeps(cfg, logger, deps)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, err
	}
	s.closers = closers
	return s, nil
}

// NewWithDeps builds the router over already opened dependencies. The
// caller keeps ownership of them.
func NewWithDeps(cfg *config.Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()
	store := s.deps.Store

	// Services
	authSvc := service.NewAuthService(store, tokens, passwords, s.logger)
	profileSvc := service.NewProfileService(store, passwords, s.logger)
	trackerSvc := service.NewTrackerService(store, store, s.logger)
	planSvc := service.NewPlanService(store, store, store, s.deps.Completer, s.deps.Metrics, s.config.Plans, s.logger)
	assistantSvc := service.NewAssistantService(s.deps.Completer, s.deps.Sessions, store, s.config.AI.SummaryModel, s.logger)
	dashboardSvc := service.NewDashboardService(store, planSvc, assistantSvc, s.logger)
	reportSvc := service.NewReportService(store)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, assistantSvc, tokens, s.deps.GitHub, s.config.Auth.SecureCookies, s.logger)
	profileHandler := handler.NewProfileHandler(authSvc, profileSvc)
	trackerHandler := handler.NewTrackerHandler(authSvc, trackerSvc)
	planHandler := handler.NewPlanHandler(authSvc, planSvc)
	dashboardHandler := handler.NewDashboardHandler(authSvc, dashboardSvc)
	assistantHandler := handler.NewAssistantHandler(authSvc, assistantSvc)
	exportHandler := handler.NewExportHandler(authSvc, reportSvc, s.logger)

	checks := map[string]handler.Pinger{"database": store}
	for name, p := range s.deps.Checks {
		checks[name] = p
	}

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, s.deps.Metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handler.HandleHealth(checks))
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		if s.deps.GitHub != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Put("/profile", profileHandler.HandleUpdate)
		r.Post("/profile/dark-mode", profileHandler.HandleToggleDarkMode)

		r.Get("/dashboard", dashboardHandler.HandleDashboard)
		r.Get("/calories-trend", dashboardHandler.HandleCalorieTrend)
		r.Get("/weight-trend", dashboardHandler.HandleWeightTrend)

		r.Post("/meals", trackerHandler.HandleLogMeal)
		r.Post("/workouts", trackerHandler.HandleLogWorkout)
		r.Get("/workouts/recent", trackerHandler.HandleRecentWorkouts)
		r.Post("/weights", trackerHandler.HandleLogWeight)
		r.Post("/plan-items", trackerHandler.HandleLogPlanItem)

		r.Get("/plans/{type}", planHandler.HandleGet)

		r.Post("/chat", assistantHandler.HandleChat)
		r.Post("/ai/food-details", assistantHandler.HandleFoodDetails)
		r.Post("/ai/workout-calories", assistantHandler.HandleWorkoutCalories)
		r.Get("/ai/weekly-summary", assistantHandler.HandleWeeklySummary)

		r.Get("/export/pdf", exportHandler.HandlePDF)
		r.Get("/export/excel", exportHandler.HandleExcel)
	})

	return nil
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to the configured shutdown timeout and closes what New opened.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Database.Path),
			slog.Bool("githubAuth", s.deps.GitHub != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("closing resource failed", slog.String("error", err.Error()))
		}
	}
}
