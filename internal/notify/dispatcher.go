package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"lifeplan-backend/internal/schedule"
	"lifeplan-backend/internal/user"
)

// ErrMissingContact means the user's preferred channel has no contact
// address configured. Dispatch is skipped; the user fixes it in settings.
var ErrMissingContact = errors.New("missing contact for notification channel")

// Result reports one delivery attempt. Send failures live here, not in the
// error return: notification is best-effort and must never look fatal.
type Result struct {
	Channel   user.Channel
	Address   string
	Delivered bool
	Skipped   bool
	Err       error
}

// Dispatcher resolves a user's channel and contact, formats the day's plan
// once, and hands it to the matching sender.
type Dispatcher struct {
	senders map[user.Channel]Sender
	log     *zap.Logger

	// Remember the last delivered (schedule, day) per user so the same day
	// is never delivered twice.
	mu       sync.Mutex
	lastSent map[int]string
}

func NewDispatcher(senders map[user.Channel]Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		senders:  senders,
		log:      log,
		lastSent: make(map[int]string),
	}
}

// Send delivers the plan for dayNumber to the user's preferred channel.
//
// An absent day is a no-op, not an error: nothing scheduled is a valid
// terminal state. A missing contact address returns ErrMissingContact before
// any transport is touched. A transport failure is logged and surfaced in
// the Result only.
func (d *Dispatcher) Send(ctx context.Context, u *user.User, s *schedule.Schedule, dayNumber int) (Result, error) {
	day := s.DayByNumber(dayNumber)
	if day == nil {
		return Result{Skipped: true}, nil
	}

	dedupKey := fmt.Sprintf("%s:%d", s.ID, dayNumber)
	d.mu.Lock()
	if d.lastSent[u.ID] == dedupKey {
		d.mu.Unlock()
		return Result{Channel: u.Channel, Skipped: true}, nil
	}
	d.mu.Unlock()

	sender, ok := d.senders[u.Channel]
	if !ok {
		return Result{Channel: u.Channel}, fmt.Errorf("no sender for channel %q", u.Channel)
	}

	address := u.ContactAddress()
	if address == "" {
		return Result{Channel: u.Channel}, fmt.Errorf("%w: user %d, channel %s", ErrMissingContact, u.ID, u.Channel)
	}

	msg := FormatMessage(s, day)
	result := Result{Channel: u.Channel, Address: address}

	if err := sender.Send(ctx, address, msg); err != nil {
		result.Err = err
		d.log.Warn("notification delivery failed",
			zap.Int("user_id", u.ID),
			zap.String("channel", string(u.Channel)),
			zap.Int("day", dayNumber),
			zap.Error(err))
		return result, nil
	}

	result.Delivered = true
	d.mu.Lock()
	d.lastSent[u.ID] = dedupKey
	d.mu.Unlock()

	d.log.Info("notification delivered",
		zap.Int("user_id", u.ID),
		zap.String("channel", string(u.Channel)),
		zap.String("schedule_id", s.ID),
		zap.Int("day", dayNumber))

	return result, nil
}
