package reminderdispatcher

import (
	"context"
	"errors"
	"medbot/internal/core/domain/bot"
	"medbot/internal/core/domain/reminder"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchSendsToOwnersChat(t *testing.T) {
	// Setup ---
	sender := bot.NewFakeMessageSender()
	dispatcher := NewTelegram(sender)

	// Exercise ---
	id, err := dispatcher.Dispatch(
		context.Background(),
		reminder.Notification{ReminderID: 3, OwnerID: 42, Text: "Take pills"},
	)

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(reminder.NotificationID("1001"), id)
	messages := sender.Messages()
	assert.Len(messages, 1)
	assert.Equal(bot.ChatID(42), messages[0].ChatID)
	assert.Equal("Take pills", messages[0].Text)
}

func TestDispatchFailureWrapsSentinel(t *testing.T) {
	// Setup ---
	sender := bot.NewFakeMessageSender()
	sender.Error = errors.New("connection reset")
	dispatcher := NewTelegram(sender)

	// Exercise ---
	_, err := dispatcher.Dispatch(context.Background(), reminder.Notification{ReminderID: 3, OwnerID: 42})

	// Verify ---
	assert := require.New(t)
	assert.ErrorIs(err, reminder.ErrDispatchFailed)
	assert.Contains(err.Error(), "connection reset")
}
