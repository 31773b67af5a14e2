package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/metrics"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/plan"
	"github.com/sakif/fittrack/internal/repository"
)

// PlanObserver counts plan requests by outcome. *metrics.Metrics
// implements it.
type PlanObserver interface {
	ObservePlan(planType, result string)
}

// PlanResult is the outcome of GetOrCreate.
//
// Content is the rendered list markup; it is empty on a soft failure, in
// which case Reason says why (an apperror.ErrTransient for a provider
// failure, apperror.ErrValidation for a declined or unparsable plan).
// Soft failures are never cached, so the next request tries again.
type PlanResult struct {
	Date    string           `json:"date"`
	Content string           `json:"content"`
	Items   []model.PlanItem `json:"items,omitempty"` // set only when generated
	Source  string           `json:"source"`          // metrics.PlanHit, PlanGenerated or PlanEmpty
	Reason  error            `json:"-"`
}

// PlanService is the daily plan cache and generator.
//
// Concurrent misses for the same (user, date, type) inside this process are
// collapsed into one AI call. Separate processes can still race; the
// upsert keeps exactly one row and the last writer wins.
type PlanService struct {
	plans    repository.PlanRepository
	meals    repository.MealRepository
	workouts repository.WorkoutRepository
	ai       ai.Completer
	observer PlanObserver
	cfg      config.PlansConfig
	logger   *slog.Logger
	now      func() time.Time
	inflight singleflight.Group
}

func NewPlanService(
	plans repository.PlanRepository,
	meals repository.MealRepository,
	workouts repository.WorkoutRepository,
	completer ai.Completer,
	observer PlanObserver,
	cfg config.PlansConfig,
	logger *slog.Logger,
) *PlanService {
	return &PlanService{
		plans:    plans,
		meals:    meals,
		workouts: workouts,
		ai:       completer,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Today returns the plan of type t for the current UTC day.
func (s *PlanService) Today(ctx context.Context, user *model.User, t model.PlanType) (*PlanResult, error) {
	return s.GetOrCreate(ctx, user, model.DayOf(s.now()), t)
}

// GetOrCreate returns the cached plan for (user, date, t) or generates one.
//
// The error return is reserved for persistence failures. Everything the
// AI can do wrong ends up as an empty PlanResult with Reason set.
func (s *PlanService) GetOrCreate(ctx context.Context, user *model.User, date string, t model.PlanType) (*PlanResult, error) {
	if user == nil || user.ID == "" {
		return nil, apperror.ValidationFailed("user", "user is required")
	}
	if _, ok := model.ParsePlanType(string(t)); !ok {
		return nil, apperror.ValidationFailed("plan_type", fmt.Sprintf("unknown plan type %q", t))
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, apperror.ValidationFailed("date", "date must be YYYY-MM-DD")
	}

	key := model.PlanKey{UserID: user.ID, Date: date, Type: t}

	cached, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		s.observe(t, metrics.PlanHit)
		return &PlanResult{Date: date, Content: cached.Content, Source: metrics.PlanHit}, nil
	}

	// The shared call outlives any single caller: one client disconnecting
	// must not fail the others waiting on it. The AI client's own timeout
	// still bounds it.
	v, err, shared := s.inflight.Do(key.UserID+"/"+key.Date+"/"+string(key.Type), func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), user, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("plan generation shared",
			slog.String("userID", key.UserID),
			slog.String("planType", string(t)),
		)
	}

	result := *v.(*PlanResult)
	result.Date = date
	s.observe(t, result.Source)
	return &result, nil
}

// lookup returns nil, nil on a miss. A row with empty content counts as a
// miss.
func (s *PlanService) lookup(ctx context.Context, key model.PlanKey) (*model.DailyPlan, error) {
	p, err := s.plans.GetPlan(ctx, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, apperror.Persistence("loading plan", err)
	}
	if p.Content == "" {
		return nil, nil
	}
	return p, nil
}

func (s *PlanService) generate(ctx context.Context, user *model.User, key model.PlanKey) (*PlanResult, error) {
	userContext, err := s.context(ctx, user, key.Type)
	if err != nil {
		return nil, err
	}

	raw, err := s.ai.Complete(ctx, ai.Request{
		Purpose:     string(key.Type) + "_plan",
		System:      plan.SystemPrompt(key.Type),
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: userContext}},
		Temperature: 0.5,
		MaxTokens:   200,
	})
	if err != nil {
		s.logger.Warn("plan generation failed",
			slog.String("userID", key.UserID),
			slog.String("planType", string(key.Type)),
			slog.String("error", err.Error()),
		)
		return &PlanResult{Source: metrics.PlanEmpty, Reason: err}, nil
	}

	items := plan.Parse(raw)
	if len(items) == 0 {
		msg := "no valid plan items in response"
		if plan.IsDeclined(raw) {
			msg = "model declined to produce a plan"
		}
		s.logger.Info("plan not cached",
			slog.String("userID", key.UserID),
			slog.String("planType", string(key.Type)),
			slog.String("reason", msg),
		)
		return &PlanResult{Source: metrics.PlanEmpty, Reason: apperror.ValidationFailed("plan", msg)}, nil
	}

	content, err := plan.Render(items, key.Type)
	if err != nil {
		return nil, fmt.Errorf("service/plan: rendering %s plan: %w", key.Type, err)
	}

	row := &model.DailyPlan{UserID: key.UserID, Date: key.Date, Type: key.Type, Content: content}
	if err := s.plans.UpsertPlan(ctx, row); err != nil {
		return nil, apperror.Persistence("saving plan", err)
	}

	s.logger.Info("plan generated",
		slog.String("userID", key.UserID),
		slog.String("date", key.Date),
		slog.String("planType", string(key.Type)),
		slog.Int("items", len(items)),
	)
	return &PlanResult{Content: row.Content, Items: items, Source: metrics.PlanGenerated}, nil
}

// context builds the user turn: profile plus recent history for the type.
func (s *PlanService) context(ctx context.Context, user *model.User, t model.PlanType) (string, error) {
	now := s.now()
	if t == model.PlanWorkout {
		since := now.AddDate(0, 0, -s.cfg.WorkoutLookbackDays)
		recent, err := s.workouts.RecentWorkouts(ctx, user.ID, since, s.cfg.RecentLimit)
		if err != nil {
			return "", apperror.Persistence("loading recent workouts", err)
		}
		return plan.WorkoutContext(user, recent), nil
	}

	since := now.AddDate(0, 0, -s.cfg.DietLookbackDays)
	recent, err := s.meals.RecentMeals(ctx, user.ID, since, s.cfg.RecentLimit)
	if err != nil {
		return "", apperror.Persistence("loading recent meals", err)
	}
	return plan.DietContext(user, recent), nil
}

func (s *PlanService) observe(t model.PlanType, result string) {
	if s.observer != nil {
		s.observer.ObservePlan(string(t), result)
	}
}
