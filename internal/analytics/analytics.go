package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event names the engine records.
const (
	EventScheduleGenerated   = "schedule_generated"
	EventScheduleRegenerated = "schedule_regenerated"
	EventDayMarked           = "day_marked"
	EventReminderSent        = "reminder_sent"
)

// Log inserts one engine event. Best-effort: a failed insert never breaks
// the core flow, so errors are swallowed after marshaling.
func Log(ctx context.Context, db *sql.DB, userID int, eventName string, props any) {
	if eventName == "" || db == nil {
		return
	}

	b, err := json.Marshal(props)
	if err != nil {
		// if props can't marshal, don't break core flow
		return
	}

	_, _ = db.ExecContext(ctx, `
		INSERT INTO engine_events (event_name, event_time, user_id, properties)
		VALUES ($1, $2, $3, $4::jsonb)
	`, eventName, time.Now().UTC(), userID, string(b))
}
