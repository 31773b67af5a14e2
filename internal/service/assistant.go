package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
	"github.com/sakif/fittrack/internal/session"
)

const (
	chatSystemPrompt = "You are a friendly and knowledgeable fitness assistant named FitBot. Your goal is to help users with their diet, workout, and general health questions. Keep your answers concise and encouraging."

	nutritionSystemPrompt = `Your only task is to analyze a food description and respond with a valid JSON object containing "calories", "protein", "carbs", and "fat". The values must be numbers. Example: {"calories": 260, "protein": 13.5, "carbs": 28.0, "fat": 11.2}`

	workoutCaloriesSystemPrompt = `You are a fitness expert AI. Your only task is to analyze a workout description and respond with a valid JSON object containing the key "calories_burned". The value must be an integer.
Example for "running on treadmill for 30 minutes": {"calories_burned": 300}
Example for "weight lifting 1 hour": {"calories_burned": 250}`

	summarySystemPrompt = "You are a fitness coach AI assistant. Analyze the user's weekly summary and provide encouraging feedback and actionable tips for the next week. Keep it concise and positive."

	quoteSystemPrompt = "You are a motivational coach. Your only task is to provide one short, powerful, and inspiring fitness or health-related quote. Do not include quotation marks or any other text."
)

// Fallback texts returned when the provider fails.
const (
	ChatFallback    = "Sorry, I'm having trouble connecting right now. Please try again in a moment."
	SummaryFallback = "Could not generate weekly summary. Please try again later."
	QuoteFallback   = "The only bad workout is the one that didn't happen."
)

// Nutrition is the estimate for one food description.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// WeeklySummary pairs the computed stats with the coach's feedback.
type WeeklySummary struct {
	Stats    fitness.WeeklyStats `json:"stats"`
	Summary  string              `json:"summary"`
	Fallback bool                `json:"fallback"`
}

// AssistantService covers every AI feature other than plans: chat,
// estimates, weekly summary and the daily quote.
type AssistantService struct {
	ai           ai.Completer
	sessions     session.Store
	logs         repository.LogRepository
	summaryModel string
	logger       *slog.Logger
	now          func() time.Time

	quoteMu     sync.Mutex
	quoteDay    string
	quote       string
	quoteFlight singleflight.Group
}

func NewAssistantService(
	completer ai.Completer,
	sessions session.Store,
	logs repository.LogRepository,
	summaryModel string,
	logger *slog.Logger,
) *AssistantService {
	return &AssistantService{
		ai:           completer,
		sessions:     sessions,
		logs:         logs,
		summaryModel: summaryModel,
		logger:       logger,
		now:          time.Now,
	}
}

// Chat sends message with the session's history and returns the reply.
// Provider failures reply with ChatFallback; session store failures only
// cost the conversation its memory.
func (s *AssistantService) Chat(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperror.ValidationFailed("prompt", "Please enter a message.")
	}

	history, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("chat history unavailable", slog.String("error", err.Error()))
		history = nil
	}
	history = append(history, model.ChatMessage{Role: ai.RoleUser, Content: message})

	msgs := make([]ai.Message, len(history))
	for i, m := range history {
		msgs[i] = ai.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := s.ai.Complete(ctx, ai.Request{
		Purpose:     "chat",
		System:      chatSystemPrompt,
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		reply = ChatFallback
	}

	history = append(history, model.ChatMessage{Role: ai.RoleAssistant, Content: reply})
	if err := s.sessions.Save(ctx, sessionID, history); err != nil {
		s.logger.Warn("saving chat history failed", slog.String("error", err.Error()))
	}
	return reply, nil
}

// ResetChat forgets the conversation; called on logout.
func (s *AssistantService) ResetChat(ctx context.Context, sessionID string) {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("clearing chat history failed", slog.String("error", err.Error()))
	}
}

// EstimateNutrition asks for the macros of a food description. Any failure,
// including an object missing keys, reads as "no data" (ErrNotFound).
func (s *AssistantService) EstimateNutrition(ctx context.Context, food string) (*Nutrition, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return nil, apperror.ValidationFailed("food_name", "Food name is required.")
	}

	var raw struct {
		Calories *float64 `json:"calories"`
		Protein  *float64 `json:"protein"`
		Carbs    *float64 `json:"carbs"`
		Fat      *float64 `json:"fat"`
	}
	err := ai.CompleteJSON(ctx, s.ai, ai.Request{
		Purpose:     "nutrition",
		System:      nutritionSystemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: food}},
		Temperature: 0.2,
		MaxTokens:   100,
	}, &raw)
	if err == nil && (raw.Calories == nil || raw.Protein == nil || raw.Carbs == nil || raw.Fat == nil) {
		err = fmt.Errorf("incomplete nutrition object")
	}
	if err != nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "Could not find nutrition data for this food.",
			Cause:   err,
		}
	}
	return &Nutrition{Calories: *raw.Calories, Protein: *raw.Protein, Carbs: *raw.Carbs, Fat: *raw.Fat}, nil
}

// EstimateWorkoutCalories asks for the calories burned by a described
// workout, e.g. "running on treadmill for 30 minutes".
func (s *AssistantService) EstimateWorkoutCalories(ctx context.Context, description string) (int, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, apperror.ValidationFailed("description", "Description is required")
	}

	var raw struct {
		CaloriesBurned *float64 `json:"calories_burned"`
	}
	err := ai.CompleteJSON(ctx, s.ai, ai.Request{
		Purpose:     "workout_calories",
		System:      workoutCaloriesSystemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: description}},
		Temperature: 0.1,
		MaxTokens:   100,
	}, &raw)
	if err != nil {
		return 0, err
	}
	if raw.CaloriesBurned == nil || !nonNegative(*raw.CaloriesBurned) {
		return 0, apperror.Transient("workout calorie estimate", fmt.Errorf("missing calories_burned"))
	}
	return int(*raw.CaloriesBurned + 0.5), nil
}

// WeeklySummary computes the last seven days of stats and asks the coach
// model for feedback on them.
func (s *AssistantService) WeeklySummary(ctx context.Context, user *model.User) (*WeeklySummary, error) {
	week := repository.TimeRange{From: s.now().AddDate(0, 0, -fitness.WeekDays), To: s.now()}

	meals, err := s.logs.ListMeals(ctx, user.ID, week)
	if err != nil {
		return nil, apperror.Persistence("loading meals", err)
	}
	workouts, err := s.logs.ListWorkouts(ctx, user.ID, week)
	if err != nil {
		return nil, apperror.Persistence("loading workouts", err)
	}
	weights, err := s.logs.ListWeights(ctx, user.ID, week)
	if err != nil {
		return nil, apperror.Persistence("loading weights", err)
	}

	stats := fitness.Weekly(user.DailyCalories, meals, workouts, weights)
	out := &WeeklySummary{Stats: stats}

	text, err := s.ai.Complete(ctx, ai.Request{
		Purpose:     "weekly_summary",
		Model:       s.summaryModel,
		System:      summarySystemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: summaryContext(user.Name, stats)}},
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		out.Summary, out.Fallback = SummaryFallback, true
		return out, nil
	}
	out.Summary = text
	return out, nil
}

func summaryContext(name string, st fitness.WeeklyStats) string {
	weight := func(w float64) string {
		if st.WeighIns == 0 {
			return "N/A"
		}
		return fmt.Sprintf("%g", w)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Weekly Fitness Summary for %s:\n", name)
	buf.WriteString("Nutrition:\n")
	fmt.Fprintf(&buf, "- Total Calories Consumed: %g\n", st.TotalCalories)
	fmt.Fprintf(&buf, "- Average Daily Calories: %.0f\n", st.AvgDailyCalories)
	fmt.Fprintf(&buf, "- Daily Calorie Goal: %d\n", st.DailyGoal)
	fmt.Fprintf(&buf, "- Goal Met: %.1f%%\n", st.GoalMetPercent)
	buf.WriteString("Exercise:\n")
	fmt.Fprintf(&buf, "- Total Workout Time: %d minutes\n", st.TotalWorkoutMinutes)
	fmt.Fprintf(&buf, "- Total Calories Burned: %g\n", st.TotalCaloriesBurned)
	buf.WriteString("Weight:\n")
	fmt.Fprintf(&buf, "- Starting Weight: %s kg\n", weight(st.StartWeight))
	fmt.Fprintf(&buf, "- Ending Weight: %s kg\n", weight(st.EndWeight))
	fmt.Fprintf(&buf, "- Change: %.1f kg\n", st.WeightChange)
	return buf.String()
}

// DailyQuote returns one motivational quote per UTC day. A fallback quote
// is not remembered, so the next call retries the provider.
func (s *AssistantService) DailyQuote(ctx context.Context) string {
	today := model.DayOf(s.now())

	s.quoteMu.Lock()
	if s.quoteDay == today && s.quote != "" {
		q := s.quote
		s.quoteMu.Unlock()
		return q
	}
	s.quoteMu.Unlock()

	// Concurrent misses share one provider call; the lock is never held
	// across it.
	v, _, _ := s.quoteFlight.Do(today, func() (any, error) {
		q, err := s.ai.Complete(context.WithoutCancel(ctx), ai.Request{
			Purpose:     "quote",
			System:      quoteSystemPrompt,
			Temperature: 1.2,
			MaxTokens:   100,
		})
		q = strings.Trim(strings.TrimSpace(q), `"`)
		if err != nil || q == "" {
			return QuoteFallback, nil
		}
		s.quoteMu.Lock()
		s.quoteDay, s.quote = today, q
		s.quoteMu.Unlock()
		return q, nil
	})
	return v.(string)
}
