package reminderdispatcher

import (
	"context"
	"fmt"
	"medbot/internal/core/domain/bot"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/reminder"
	"strconv"
)

// TelegramDispatcher sends notifications to the owner's private chat, whose id
// equals the Telegram user id.
type TelegramDispatcher struct {
	botMessageSender bot.MessageSender
}

func NewTelegram(botMessageSender bot.MessageSender) *TelegramDispatcher {
	if botMessageSender == nil {
		panic(e.NewNilArgumentError("botMessageSender"))
	}
	return &TelegramDispatcher{botMessageSender: botMessageSender}
}

func (d *TelegramDispatcher) Dispatch(ctx context.Context, n reminder.Notification) (reminder.NotificationID, error) {
	messageID, err := d.botMessageSender.SendMessage(ctx, bot.Message{
		ChatID: bot.ChatID(n.OwnerID),
		Text:   n.Text,
	})
	if err != nil {
		return "", fmt.Errorf("%w: reminder %d: %v", reminder.ErrDispatchFailed, n.ReminderID, err)
	}
	return NotificationIDOf(messageID), nil
}

func NotificationIDOf(messageID bot.MessageID) reminder.NotificationID {
	return reminder.NotificationID(strconv.FormatInt(int64(messageID), 10))
}
