package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lifeplan-backend/internal/schedule"
)

// ErrNoActiveSchedule means the user has no schedule covering the given day.
var ErrNoActiveSchedule = errors.New("no active schedule")

// PostgresStore keeps one schedule aggregate per row, day list embedded as
// jsonb. Progress updates and regeneration are single-statement UPDATEs, so
// each is atomic on its own.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, s *schedule.Schedule) error {
	daysJSON, err := json.Marshal(s.Days)
	if err != nil {
		return fmt.Errorf("encode days: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO schedules (
			id, user_id, title, requirements,
			start_date, end_date, days, current_day,
			completed, skipped, current_streak, best_streak,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10,$11,$12,$13,$14)
	`,
		s.ID, s.UserID, s.Title, s.Requirements,
		s.StartDate, s.EndDate, string(daysJSON), s.CurrentDay,
		s.Stats.Completed, s.Stats.Skipped, s.Stats.CurrentStreak, s.Stats.BestStreak,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// ActiveSchedule returns the most recently created schedule whose date range
// covers asOf. Older schedules stay in the table as history.
func (p *PostgresStore) ActiveSchedule(ctx context.Context, userID int, asOf time.Time) (*schedule.Schedule, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, requirements,
		       start_date, end_date, days, current_day,
		       completed, skipped, current_streak, best_streak,
		       created_at, updated_at
		FROM schedules
		WHERE user_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, schedule.ToDate(asOf))

	s, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrNoActiveSchedule, userID)
	}
	return s, err
}

// UpdateProgress writes day statuses, stats and the current-day pointer in
// one statement.
func (p *PostgresStore) UpdateProgress(ctx context.Context, s *schedule.Schedule) error {
	daysJSON, err := json.Marshal(s.Days)
	if err != nil {
		return fmt.Errorf("encode days: %w", err)
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE schedules
		SET days = $2::jsonb,
		    current_day = $3,
		    completed = $4,
		    skipped = $5,
		    current_streak = $6,
		    best_streak = $7,
		    updated_at = $8
		WHERE id = $1
	`,
		s.ID, string(daysJSON), s.CurrentDay,
		s.Stats.Completed, s.Stats.Skipped, s.Stats.CurrentStreak, s.Stats.BestStreak,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update progress: schedule %s not found", s.ID)
	}
	return nil
}

// ReplaceDays swaps in the regenerated day list and resets the pointer.
// Cumulative completed/skipped totals are written as-is, so history survives
// the replacement.
func (p *PostgresStore) ReplaceDays(ctx context.Context, s *schedule.Schedule) error {
	daysJSON, err := json.Marshal(s.Days)
	if err != nil {
		return fmt.Errorf("encode days: %w", err)
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE schedules
		SET days = $2::jsonb,
		    current_day = 1,
		    current_streak = 0,
		    completed = $3,
		    skipped = $4,
		    best_streak = $5,
		    updated_at = $6
		WHERE id = $1
	`,
		s.ID, string(daysJSON),
		s.Stats.Completed, s.Stats.Skipped, s.Stats.BestStreak,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("replace days: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("replace days: schedule %s not found", s.ID)
	}
	return nil
}

// ActiveUserIDs lists users that have a schedule covering asOf. Used by the
// daily reminder worker.
func (p *PostgresStore) ActiveUserIDs(ctx context.Context, asOf time.Time) ([]int, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT DISTINCT user_id
		FROM schedules
		WHERE start_date <= $1 AND end_date >= $1
		ORDER BY user_id
	`, schedule.ToDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// History returns every schedule the user ever had, newest first.
func (p *PostgresStore) History(ctx context.Context, userID int) ([]*schedule.Schedule, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, title, requirements,
		       start_date, end_date, days, current_day,
		       completed, skipped, current_streak, best_streak,
		       created_at, updated_at
		FROM schedules
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var result []*schedule.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*schedule.Schedule, error) {
	var s schedule.Schedule
	var daysJSON []byte

	err := row.Scan(
		&s.ID, &s.UserID, &s.Title, &s.Requirements,
		&s.StartDate, &s.EndDate, &daysJSON, &s.CurrentDay,
		&s.Stats.Completed, &s.Stats.Skipped, &s.Stats.CurrentStreak, &s.Stats.BestStreak,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(daysJSON, &s.Days); err != nil {
		return nil, fmt.Errorf("decode days for schedule %s: %w", s.ID, err)
	}
	return &s, nil
}
