package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"lifeplan-backend/internal/schedule"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
)

// Signal tells the caller what follow-up a mark-day event requires.
type Signal string

const (
	// SignalAdvanced: currentDay moved forward, notify the user about it.
	SignalAdvanced Signal = "advanced"
	// SignalComplete: the last day was completed, nothing left to do.
	SignalComplete Signal = "schedule-complete"
	// SignalRegenerate: a day was skipped, the remaining plan must be rebuilt.
	SignalRegenerate Signal = "regenerate"
)

var (
	ErrNotFound      = errors.New("no scheduled day for date")
	ErrAlreadyMarked = errors.New("day already marked")
)

// Store is the persistence the tracker needs: one schedule aggregate per
// row, with atomic progress updates and atomic replace-and-reset.
type Store interface {
	Create(ctx context.Context, s *schedule.Schedule) error
	ActiveSchedule(ctx context.Context, userID int, asOf time.Time) (*schedule.Schedule, error)
	UpdateProgress(ctx context.Context, s *schedule.Schedule) error
	ReplaceDays(ctx context.Context, s *schedule.Schedule) error
	ActiveUserIDs(ctx context.Context, asOf time.Time) ([]int, error)
	History(ctx context.Context, userID int) ([]*schedule.Schedule, error)
}

// Regenerator produces a replacement schedule from the same goal inputs.
// Satisfied by *schedule.Generator.
type Regenerator interface {
	Generate(ctx context.Context, userID int, title, requirements string, start, end time.Time) (*schedule.Schedule, error)
}

// Tracker advances per-schedule state. All mutations of one schedule
// serialize on a per-schedule lock; different schedules never contend.
type Tracker struct {
	store Store
	log   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTracker(store Store, log *zap.Logger) *Tracker {
	return &Tracker{
		store: store,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) lockFor(scheduleID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[scheduleID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[scheduleID] = l
	}
	return l
}

// MarkDay records the outcome for the day scheduled on the given calendar
// date. A day may be marked exactly once; the second call for the same date
// fails with ErrAlreadyMarked.
func (t *Tracker) MarkDay(ctx context.Context, s *schedule.Schedule, date time.Time, outcome Outcome) (Signal, error) {
	lock := t.lockFor(s.ID)
	lock.Lock()
	defer lock.Unlock()

	day := s.DayByDate(date)
	if day == nil {
		return "", fmt.Errorf("%w: schedule %s, date %s",
			ErrNotFound, s.ID, date.Format("2006-01-02"))
	}
	if day.Status != schedule.StatusPending {
		return "", fmt.Errorf("%w: schedule %s, day %d is %s",
			ErrAlreadyMarked, s.ID, day.Day, day.Status)
	}

	// Snapshot for rollback if persistence fails.
	prevDay := *day
	prevStats := s.Stats
	prevCurrent := s.CurrentDay
	prevUpdated := s.UpdatedAt

	var signal Signal
	switch outcome {
	case OutcomeCompleted:
		day.Status = schedule.StatusCompleted
		s.Stats.Completed++
		s.Stats.CurrentStreak++
		if s.Stats.CurrentStreak > s.Stats.BestStreak {
			s.Stats.BestStreak = s.Stats.CurrentStreak
		}
		if s.DayByNumber(day.Day+1) != nil {
			s.CurrentDay = day.Day + 1
			signal = SignalAdvanced
		} else {
			signal = SignalComplete
		}

	case OutcomeSkipped:
		day.Status = schedule.StatusSkipped
		s.Stats.Skipped++
		s.Stats.CurrentStreak = 0
		signal = SignalRegenerate

	default:
		return "", fmt.Errorf("unknown outcome %q", outcome)
	}

	s.UpdatedAt = time.Now()

	if err := t.store.UpdateProgress(ctx, s); err != nil {
		*day = prevDay
		s.Stats = prevStats
		s.CurrentDay = prevCurrent
		s.UpdatedAt = prevUpdated
		return "", fmt.Errorf("persist mark: %w", err)
	}

	t.log.Info("day marked",
		zap.String("schedule_id", s.ID),
		zap.Int("day", day.Day),
		zap.String("outcome", string(outcome)),
		zap.String("signal", string(signal)))

	return signal, nil
}

// Regenerate replaces the day list wholesale after a skip, using the same
// title, requirements and date range, and resets currentDay to 1. Cumulative
// completed/skipped totals survive; only the streak stays reset. It holds
// the same lock as MarkDay, so no mark can interleave with the in-flight
// generation. A failed generation leaves the schedule untouched.
func (t *Tracker) Regenerate(ctx context.Context, s *schedule.Schedule, gen Regenerator) error {
	lock := t.lockFor(s.ID)
	lock.Lock()
	defer lock.Unlock()

	fresh, err := gen.Generate(ctx, s.UserID, s.Title, s.Requirements, s.StartDate, s.EndDate)
	if err != nil {
		return fmt.Errorf("regenerate schedule %s: %w", s.ID, err)
	}

	prevDays := s.Days
	prevCurrent := s.CurrentDay
	prevStreak := s.Stats.CurrentStreak
	prevUpdated := s.UpdatedAt

	s.Days = fresh.Days
	s.CurrentDay = 1
	s.Stats.CurrentStreak = 0
	s.UpdatedAt = time.Now()

	if err := t.store.ReplaceDays(ctx, s); err != nil {
		s.Days = prevDays
		s.CurrentDay = prevCurrent
		s.Stats.CurrentStreak = prevStreak
		s.UpdatedAt = prevUpdated
		return fmt.Errorf("persist regeneration: %w", err)
	}

	t.log.Info("schedule regenerated",
		zap.String("schedule_id", s.ID),
		zap.Int("days", len(s.Days)))

	return nil
}

// Today returns the plan scheduled for the given date, if any. "Nothing
// scheduled" is a normal condition, not an error.
func Today(s *schedule.Schedule, asOf time.Time) (*schedule.DayPlan, bool) {
	day := s.DayByDate(asOf)
	return day, day != nil
}
