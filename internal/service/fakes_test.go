package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory repository.Store. Counters and error fields let
// tests assert on store traffic and simulate failures.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	meals    []model.MealLog
	workouts []model.WorkoutLog
	weights  []model.WeightLog
	plans    map[model.PlanKey]*model.DailyPlan
	nextID   int

	planReads  int
	planWrites int

	createUserErr   error
	getPlanErr      error
	upsertPlanErr   error
	createWeightErr error
	updateWeightErr error
	listErr         error
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.User),
		plans: make(map[model.PlanKey]*model.DailyPlan),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) addUser(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = f.id("user")
	}
	c := *u
	f.users[u.ID] = &c
	return u
}

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	u.ID = f.id("user")
	u.CreatedAt = time.Now()
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) UpdateProfile(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) UpdateWeight(_ context.Context, userID string, weight float64, cal int) error {
	if f.updateWeightErr != nil {
		return f.updateWeightErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.Weight, u.DailyCalories = weight, cal
	return nil
}

func (f *fakeStore) SetDarkMode(_ context.Context, userID string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.DarkMode = on
	return nil
}

func inRange(t time.Time, r repository.TimeRange) bool {
	return !t.Before(r.From) && (r.To.IsZero() || t.Before(r.To))
}

func (f *fakeStore) CreateMeal(_ context.Context, m *model.MealLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id("meal")
	if m.LoggedAt.IsZero() {
		m.LoggedAt = time.Now().UTC()
	}
	f.meals = append(f.meals, *m)
	return nil
}

func (f *fakeStore) ListMeals(_ context.Context, userID string, r repository.TimeRange) ([]model.MealLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.MealLog{}
	for _, m := range f.meals {
		if m.UserID == userID && inRange(m.LoggedAt, r) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.Before(out[j].LoggedAt) })
	return out, nil
}

func (f *fakeStore) RecentMeals(_ context.Context, userID string, since time.Time, limit int) ([]model.MealLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.MealLog{}
	for _, m := range f.meals {
		if m.UserID == userID && !m.LoggedAt.Before(since) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.After(out[j].LoggedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MealLogTimes(_ context.Context, userID string) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []time.Time
	for _, m := range f.meals {
		if m.UserID == userID {
			out = append(out, m.LoggedAt)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateWorkout(_ context.Context, w *model.WorkoutLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.ID = f.id("workout")
	if w.LoggedAt.IsZero() {
		w.LoggedAt = time.Now().UTC()
	}
	f.workouts = append(f.workouts, *w)
	return nil
}

func (f *fakeStore) ListWorkouts(_ context.Context, userID string, r repository.TimeRange) ([]model.WorkoutLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.WorkoutLog{}
	for _, w := range f.workouts {
		if w.UserID == userID && inRange(w.LoggedAt, r) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.Before(out[j].LoggedAt) })
	return out, nil
}

func (f *fakeStore) RecentWorkouts(_ context.Context, userID string, since time.Time, limit int) ([]model.WorkoutLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.WorkoutLog{}
	for _, w := range f.workouts {
		if w.UserID == userID && !w.LoggedAt.Before(since) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.After(out[j].LoggedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CreateWeight(_ context.Context, w *model.WeightLog) error {
	if f.createWeightErr != nil {
		return f.createWeightErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w.ID = f.id("weight")
	if w.LoggedAt.IsZero() {
		w.LoggedAt = time.Now().UTC()
	}
	f.weights = append(f.weights, *w)
	return nil
}

func (f *fakeStore) ListWeights(_ context.Context, userID string, r repository.TimeRange) ([]model.WeightLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.WeightLog{}
	for _, w := range f.weights {
		if w.UserID == userID && inRange(w.LoggedAt, r) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.Before(out[j].LoggedAt) })
	return out, nil
}

func (f *fakeStore) GetPlan(_ context.Context, key model.PlanKey) (*model.DailyPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planReads++
	if f.getPlanErr != nil {
		return nil, f.getPlanErr
	}
	p, ok := f.plans[key]
	if !ok {
		return nil, apperror.NotFound("plan", key.Date)
	}
	c := *p
	return &c, nil
}

func (f *fakeStore) UpsertPlan(_ context.Context, p *model.DailyPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertPlanErr != nil {
		return f.upsertPlanErr
	}
	f.planWrites++
	if existing, ok := f.plans[p.Key()]; ok {
		existing.Content = p.Content
		*p = *existing
		return nil
	}
	p.ID = f.id("plan")
	c := *p
	f.plans[p.Key()] = &c
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) counts() (reads, writes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.planReads, f.planWrites
}

// fakeCompleter answers every request through respond and records calls.
type fakeCompleter struct {
	mu       sync.Mutex
	calls    atomic.Int32
	requests []ai.Request
	respond  func(ai.Request) (string, error)
}

func replyWith(text string) *fakeCompleter {
	return &fakeCompleter{respond: func(ai.Request) (string, error) { return text, nil }}
}

func failWith(err error) *fakeCompleter {
	return &fakeCompleter{respond: func(req ai.Request) (string, error) {
		return "", apperror.Transient(req.Purpose, err)
	}}
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeCompleter) lastRequest() ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeObserver records plan outcomes.
type fakeObserver struct {
	mu      sync.Mutex
	results []string
}

func (o *fakeObserver) ObservePlan(planType, result string) {
	o.mu.Lock()
	o.results = append(o.results, planType+":"+result)
	o.mu.Unlock()
}

func completeUser() *model.User {
	return &model.User{
		Email: "fit@example.com", Name: "Fit", Age: 30, Gender: "male",
		Height: 180, Weight: 80, FitnessGoal: model.GoalLose,
		ActivityLevel: model.ActivityModerate, DailyCalories: 2373,
	}
}
