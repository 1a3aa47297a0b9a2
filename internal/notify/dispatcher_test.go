package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifeplan-backend/internal/schedule"
	"lifeplan-backend/internal/user"
)

type recordingSender struct {
	calls []sentMessage
	err   error
}

type sentMessage struct {
	address string
	msg     Message
}

func (r *recordingSender) Send(_ context.Context, address string, msg Message) error {
	r.calls = append(r.calls, sentMessage{address: address, msg: msg})
	return r.err
}

func twoDaySchedule() *schedule.Schedule {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &schedule.Schedule{
		ID:        "sched-1",
		UserID:    1,
		Title:     "Learn Go",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		Days: []schedule.DayPlan{
			{Day: 1, Date: start, Summary: "Read the tour", Status: schedule.StatusPending},
			{Day: 2, Date: start.AddDate(0, 0, 1), Summary: "Write a program", Status: schedule.StatusPending},
		},
		CurrentDay: 1,
	}
}

func telegramUser() *user.User {
	return &user.User{ID: 1, TelegramChatID: "chat-42", Channel: user.ChannelTelegram}
}

func TestDispatcher_Send(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(map[user.Channel]Sender{user.ChannelTelegram: sender}, zap.NewNop())

	result, err := d.Send(context.Background(), telegramUser(), twoDaySchedule(), 1)
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Equal(t, user.ChannelTelegram, result.Channel)
	assert.Equal(t, "chat-42", result.Address)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "chat-42", sender.calls[0].address)
	assert.Equal(t, "Day 1: Learn Go", sender.calls[0].msg.Title)
	assert.Contains(t, sender.calls[0].msg.Body, "Read the tour")
}

func TestDispatcher_AbsentDayIsNoOp(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(map[user.Channel]Sender{user.ChannelTelegram: sender}, zap.NewNop())

	result, err := d.Send(context.Background(), telegramUser(), twoDaySchedule(), 9)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.False(t, result.Delivered)
	assert.Empty(t, sender.calls)
}

func TestDispatcher_MissingContactShortCircuits(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(map[user.Channel]Sender{user.ChannelTelegram: sender}, zap.NewNop())

	u := &user.User{ID: 1, Channel: user.ChannelTelegram} // no chat id
	_, err := d.Send(context.Background(), u, twoDaySchedule(), 1)
	require.ErrorIs(t, err, ErrMissingContact)

	// The transport was never touched.
	assert.Empty(t, sender.calls)
}

func TestDispatcher_UnknownChannel(t *testing.T) {
	d := NewDispatcher(map[user.Channel]Sender{}, zap.NewNop())

	u := &user.User{ID: 1, Email: "a@b.c", Channel: user.ChannelEmail}
	_, err := d.Send(context.Background(), u, twoDaySchedule(), 1)
	assert.Error(t, err)
}

func TestDispatcher_TransportFailureStaysInResult(t *testing.T) {
	sendErr := errors.New("telegram: 502")
	sender := &recordingSender{err: sendErr}
	d := NewDispatcher(map[user.Channel]Sender{user.ChannelTelegram: sender}, zap.NewNop())

	result, err := d.Send(context.Background(), telegramUser(), twoDaySchedule(), 1)
	require.NoError(t, err)
	assert.False(t, result.Delivered)
	assert.ErrorIs(t, result.Err, sendErr)
}

func TestDispatcher_SameDayDeliveredOnce(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(map[user.Channel]Sender{user.ChannelTelegram: sender}, zap.NewNop())

	s := twoDaySchedule()
	u := telegramUser()

	result, err := d.Send(context.Background(), u, s, 1)
	require.NoError(t, err)
	assert.True(t, result.Delivered)

	result, err = d.Send(context.Background(), u, s, 1)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Len(t, sender.calls, 1)

	// A different day goes through.
	result, err = d.Send(context.Background(), u, s, 2)
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Len(t, sender.calls, 2)
}

func TestDispatcher_FailedDeliveryNotDeduplicated(t *testing.T) {
	sender := &recordingSender{err: errors.New("down")}
	d := NewDispatcher(map[user.Channel]Sender{user.ChannelTelegram: sender}, zap.NewNop())

	s := twoDaySchedule()
	u := telegramUser()

	_, err := d.Send(context.Background(), u, s, 1)
	require.NoError(t, err)

	// The failure must not block the retry.
	sender.err = nil
	result, err := d.Send(context.Background(), u, s, 1)
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Len(t, sender.calls, 2)
}
