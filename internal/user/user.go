package user

import (
	"context"
	"database/sql"
	"fmt"
)

// Channel is a notification transport.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
	ChannelWhatsApp Channel = "whatsapp"
)

// User carries the notification preferences the engine reads. Writes happen
// in account settings, outside this engine.
type User struct {
	ID             int
	Email          string
	TelegramChatID string
	PhoneNumber    string
	Channel        Channel
}

// ContactAddress returns the contact field the user's channel requires.
// Empty means the preference is incomplete.
func (u *User) ContactAddress() string {
	switch u.Channel {
	case ChannelTelegram:
		return u.TelegramChatID
	case ChannelWhatsApp:
		return u.PhoneNumber
	case ChannelEmail:
		return u.Email
	default:
		return ""
	}
}

// Store is read-only access to user notification preferences.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id int) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, telegram_chat_id, phone_number, channel
		FROM users
		WHERE id = $1
	`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.TelegramChatID, &u.PhoneNumber, &u.Channel); err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	if u.Channel == "" {
		u.Channel = ChannelEmail
	}
	return &u, nil
}
