package reminder

import (
	"context"
	"medbot/internal/core/domain/user"
)

const notificationHeader = "⚠️🚨👇\nIt's time to take your pills 💊!"
const notificationFooter = "Then send a photo as confirmation for your reward 🏆"

type Notification struct {
	ReminderID ID
	OwnerID    user.ID
	Text       string
}

func NewNotification(r Reminder) Notification {
	text := notificationHeader + "\n"
	if r.Label != "" {
		text += "💊 " + r.Label + "\n"
	}
	text += notificationFooter
	return Notification{ReminderID: r.ID, OwnerID: r.OwnerID, Text: text}
}

// Dispatcher delivers a notification to its owner. Errors wrap ErrDispatchFailed.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) (NotificationID, error)
}
