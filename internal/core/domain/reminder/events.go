package reminder

import (
	"context"
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/user"
	"time"
)

// Acknowledgement is a user's proof of intake. NotificationRef is set when the
// user replied to a specific notification.
type Acknowledgement struct {
	OwnerID         user.ID
	NotificationRef c.Optional[NotificationID]
	ReceivedAt      time.Time
}

type AcknowledgementPublisher interface {
	PublishAcknowledgement(ctx context.Context, ack Acknowledgement) error
}

type EventPublisher interface {
	PublishConfirmed(ctx context.Context, r Reminder) error
}
