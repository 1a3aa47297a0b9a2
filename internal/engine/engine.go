// Package engine wires the generation, progress and notification components
// into the flows the rest of the system calls: set up a plan, mark a day,
// send the daily reminder.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lifeplan-backend/internal/analytics"
	"lifeplan-backend/internal/notify"
	"lifeplan-backend/internal/progress"
	"lifeplan-backend/internal/schedule"
	"lifeplan-backend/internal/user"
)

type Engine struct {
	generator  progress.Regenerator
	tracker    *progress.Tracker
	store      progress.Store
	users      UserStore
	dispatcher *notify.Dispatcher
	events     *sql.DB // nil disables event logging
	log        *zap.Logger
}

// UserStore is the read-only preference lookup the engine needs.
type UserStore interface {
	Get(ctx context.Context, id int) (*user.User, error)
}

func New(
	generator progress.Regenerator,
	tracker *progress.Tracker,
	store progress.Store,
	users UserStore,
	dispatcher *notify.Dispatcher,
	events *sql.DB,
	log *zap.Logger,
) *Engine {
	return &Engine{
		generator:  generator,
		tracker:    tracker,
		store:      store,
		users:      users,
		dispatcher: dispatcher,
		events:     events,
		log:        log,
	}
}

// Setup generates and persists a new schedule for the user's goal.
func (e *Engine) Setup(ctx context.Context, userID int, title, requirements string, start, end time.Time) (*schedule.Schedule, error) {
	s, err := e.generator.Generate(ctx, userID, title, requirements, start, end)
	if err != nil {
		return nil, err
	}
	if err := e.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("persist schedule: %w", err)
	}

	analytics.Log(ctx, e.events, userID, analytics.EventScheduleGenerated, map[string]any{
		"schedule_id": s.ID,
		"days":        len(s.Days),
	})
	return s, nil
}

// MarkDay records the outcome for the given date on the user's active
// schedule and runs the follow-up the signal demands: notify the next day
// on advance, regenerate and notify day 1 on skip. Notification failures
// never affect schedule state.
func (e *Engine) MarkDay(ctx context.Context, userID int, date time.Time, outcome progress.Outcome) (progress.Signal, error) {
	s, err := e.store.ActiveSchedule(ctx, userID, date)
	if err != nil {
		return "", err
	}

	signal, err := e.tracker.MarkDay(ctx, s, date, outcome)
	if err != nil {
		return "", err
	}

	analytics.Log(ctx, e.events, userID, analytics.EventDayMarked, map[string]any{
		"schedule_id": s.ID,
		"date":        schedule.ToDate(date).Format("2006-01-02"),
		"outcome":     string(outcome),
		"signal":      string(signal),
	})

	switch signal {
	case progress.SignalAdvanced:
		e.notifyDay(ctx, userID, s, s.CurrentDay)

	case progress.SignalRegenerate:
		if err := e.tracker.Regenerate(ctx, s, e.generator); err != nil {
			return signal, err
		}
		analytics.Log(ctx, e.events, userID, analytics.EventScheduleRegenerated, map[string]any{
			"schedule_id": s.ID,
			"days":        len(s.Days),
		})
		e.notifyDay(ctx, userID, s, 1)
	}

	return signal, nil
}

// History returns every schedule the user ever had, newest first. Older
// schedules survive regeneration untouched.
func (e *Engine) History(ctx context.Context, userID int) ([]*schedule.Schedule, error) {
	return e.store.History(ctx, userID)
}

// DailyReminder sends today's plan to the user's preferred channel.
func (e *Engine) DailyReminder(ctx context.Context, userID int, asOf time.Time) (notify.Result, error) {
	s, err := e.store.ActiveSchedule(ctx, userID, asOf)
	if err != nil {
		return notify.Result{}, err
	}

	day, ok := progress.Today(s, asOf)
	if !ok {
		return notify.Result{Skipped: true}, nil
	}

	u, err := e.users.Get(ctx, userID)
	if err != nil {
		return notify.Result{}, err
	}

	result, err := e.dispatcher.Send(ctx, u, s, day.Day)
	if err != nil {
		return result, err
	}
	if result.Delivered {
		analytics.Log(ctx, e.events, userID, analytics.EventReminderSent, map[string]any{
			"schedule_id": s.ID,
			"day":         day.Day,
			"channel":     string(result.Channel),
		})
	}
	return result, nil
}

// notifyDay is best-effort; errors are logged and dropped.
func (e *Engine) notifyDay(ctx context.Context, userID int, s *schedule.Schedule, dayNumber int) {
	u, err := e.users.Get(ctx, userID)
	if err != nil {
		e.log.Warn("skipping notification, preference lookup failed",
			zap.Int("user_id", userID),
			zap.Error(err))
		return
	}
	if _, err := e.dispatcher.Send(ctx, u, s, dayNumber); err != nil {
		e.log.Warn("notification dispatch rejected",
			zap.Int("user_id", userID),
			zap.Int("day", dayNumber),
			zap.Error(err))
	}
}
