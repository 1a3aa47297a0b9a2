package schedule

import (
	"time"
)

// MaxDays caps the planning horizon of a single schedule.
const MaxDays = 31

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// DayPlan is one day's unit of work inside a schedule. Summary is never
// empty after a successful parse; every detail field is optional.
type DayPlan struct {
	Day        int       `json:"day"`
	Date       time.Time `json:"date"`
	Summary    string    `json:"summary"`
	KeyPoints  []string  `json:"key_points,omitempty"`
	Example    string    `json:"example,omitempty"`
	Resources  []string  `json:"resources,omitempty"`
	Tips       []string  `json:"tips,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	Motivation string    `json:"motivation,omitempty"`
	Status     Status    `json:"status"`
}

// Stats are maintained incrementally on every mark-day call. Completed and
// Skipped are cumulative across regenerations; only streaks reset.
type Stats struct {
	Completed     int `json:"completed"`
	Skipped       int `json:"skipped"`
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// Schedule is the per-user aggregate of day-indexed plans for one goal.
type Schedule struct {
	ID           string    `json:"id"`
	UserID       int       `json:"user_id"`
	Title        string    `json:"title"`
	Requirements string    `json:"requirements,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Days         []DayPlan `json:"days"`
	CurrentDay   int       `json:"current_day"`
	Stats        Stats     `json:"stats"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DayByNumber returns the plan for a 1-based day number, or nil.
func (s *Schedule) DayByNumber(n int) *DayPlan {
	for i := range s.Days {
		if s.Days[i].Day == n {
			return &s.Days[i]
		}
	}
	return nil
}

// DayByDate returns the plan scheduled on the given calendar day
// (time-of-day ignored), or nil.
func (s *Schedule) DayByDate(date time.Time) *DayPlan {
	target := ToDate(date)
	for i := range s.Days {
		if ToDate(s.Days[i].Date).Equal(target) {
			return &s.Days[i]
		}
	}
	return nil
}

// ToDate truncates a timestamp to midnight UTC so two timestamps on the
// same calendar day compare equal.
func ToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
