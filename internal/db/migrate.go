package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the engine tables if they do not exist yet.
// The day list is stored as a jsonb document inside the schedule row,
// so a regeneration can replace it in a single UPDATE.
func Migrate(db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id               SERIAL PRIMARY KEY,
		email            TEXT NOT NULL DEFAULT '',
		telegram_chat_id TEXT NOT NULL DEFAULT '',
		phone_number     TEXT NOT NULL DEFAULT '',
		channel          TEXT NOT NULL DEFAULT 'email',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id             UUID PRIMARY KEY,
		user_id        INT NOT NULL REFERENCES users(id),
		title          TEXT NOT NULL,
		requirements   TEXT NOT NULL DEFAULT '',
		start_date     DATE NOT NULL,
		end_date       DATE NOT NULL,
		days           JSONB NOT NULL,
		current_day    INT NOT NULL DEFAULT 1,
		completed      INT NOT NULL DEFAULT 0,
		skipped        INT NOT NULL DEFAULT 0,
		current_streak INT NOT NULL DEFAULT 0,
		best_streak    INT NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_user    ON schedules(user_id);
	CREATE INDEX IF NOT EXISTS idx_schedules_created ON schedules(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS engine_events (
		id         SERIAL PRIMARY KEY,
		event_name TEXT NOT NULL,
		event_time TIMESTAMPTZ NOT NULL,
		user_id    INT NOT NULL,
		properties JSONB
	);
	`

	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
