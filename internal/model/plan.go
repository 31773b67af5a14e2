package model

import "time"

// DateLayout is the calendar-day format used for plan keys and trend output.
const DateLayout = "2006-01-02"

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PlanType selects which kind of daily plan is generated.
type PlanType string

const (
	PlanDiet    PlanType = "diet"
	PlanWorkout PlanType = "workout"
)

// ParsePlanType validates a plan type coming from user input.
func ParsePlanType(s string) (PlanType, bool) {
	switch PlanType(s) {
	case PlanDiet, PlanWorkout:
		return PlanType(s), true
	}
	return "", false
}

// PlanKey identifies at most one DailyPlan row.
type PlanKey struct {
	UserID string
	Date   string // DateLayout
	Type   PlanType
}

// DailyPlan is a cached rendering of one day's AI plan.
type DailyPlan struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Date      string    `json:"date"      db:"date"`
	Type      PlanType  `json:"planType"  db:"plan_type"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Key returns the cache key of p.
func (p *DailyPlan) Key() PlanKey {
	return PlanKey{UserID: p.UserID, Date: p.Date, Type: p.Type}
}

// PlanItem is one parsed "label:name:value" entry of an AI plan.
// For diet plans Value is calories eaten, for workouts calories burned.
type PlanItem struct {
	Label string  `json:"label"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
