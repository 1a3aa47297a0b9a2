package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lifeplan-backend/internal/ai"
)

// ErrGenerationFailed is terminal: both the rich and the strict attempt
// produced unparseable output. Callers should ask the user to rephrase.
var ErrGenerationFailed = errors.New("AI did not return a valid schedule")

// Generation parameters. The first attempt favors content diversity; the
// strict fallback trades richness for parseability.
const (
	richTemperature   = 0.7
	strictTemperature = 0.3
	tokensPerDay      = 160
	tokenBudgetFloor  = 400
)

// Generator owns the two-state generation protocol: rich attempt, strict
// attempt, terminal failure. Parse defects escalate between states; provider
// failures do not.
type Generator struct {
	client ai.Completer
	log    *zap.Logger
	now    func() time.Time
}

func NewGenerator(client ai.Completer, log *zap.Logger) *Generator {
	return &Generator{
		client: client,
		log:    log,
		now:    time.Now,
	}
}

// Generate builds a validated schedule for the given goal and date range.
// It never returns a schedule containing a day with an empty summary.
func (g *Generator) Generate(ctx context.Context, userID int, title, requirements string, start, end time.Time) (*Schedule, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}

	start = ToDate(start)
	end = ToDate(end)
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > MaxDays {
		days = MaxDays
	}

	// Rich attempt first.
	plans, err := g.attempt(ctx, ai.BuildSchedulePrompt(title, requirements, days), days, richTemperature)
	if err != nil {
		if !retryable(err) {
			return nil, err
		}
		g.log.Warn("schedule generation attempt failed, retrying with strict prompt",
			zap.Int("user_id", userID),
			zap.Int("days", days),
			zap.Error(err))

		// Strict attempt. A second failure of any retryable kind is terminal.
		plans, err = g.attempt(ctx, ai.BuildStrictSchedulePrompt(title, requirements, days), days, strictTemperature)
		if err != nil {
			if !retryable(err) {
				return nil, err
			}
			g.log.Error("schedule generation failed after strict retry",
				zap.Int("user_id", userID),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
	}

	now := g.now()
	for i := range plans {
		plans[i].Date = start.AddDate(0, 0, plans[i].Day-1)
	}

	return &Schedule{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Requirements: requirements,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, days-1),
		Days:         plans,
		CurrentDay:   1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// attempt runs one provider call and parse pass.
func (g *Generator) attempt(ctx context.Context, prompt string, days int, temperature float64) ([]DayPlan, error) {
	raw, err := g.client.Complete(ctx, prompt, tokenBudget(days), temperature)
	if err != nil {
		return nil, err
	}
	return Parse(raw, days)
}

// retryable reports whether a failed attempt may escalate to the strict
// prompt: parse defects and timed-out requests consume an attempt, while
// other provider failures propagate immediately.
func retryable(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func tokenBudget(days int) int {
	budget := days * tokensPerDay
	if budget < tokenBudgetFloor {
		budget = tokenBudgetFloor
	}
	return budget
}
