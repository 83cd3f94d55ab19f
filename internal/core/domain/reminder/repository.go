package reminder

import (
	"context"
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/user"
	"time"
)

type CreateInput struct {
	OwnerID   user.ID
	TimeOfDay localtime.TimeOfDay
	Label     string
	CreatedAt time.Time
}

// Version is the part of a reminder a conditional update is checked against.
type Version struct {
	LastSentOn c.Optional[localtime.Date]
	State      State
}

type UpdateInput struct {
	ID              ID
	Expected        Version
	State           State
	LastSentOn      c.Optional[localtime.Date]
	LastSentAt      c.Optional[time.Time]
	LastConfirmedOn c.Optional[localtime.Date]
	Streak          uint32
	LongestStreak   uint32
	NotificationID  c.Optional[NotificationID]
}

func NewUpdateInput(expected Version, updated Reminder) UpdateInput {
	return UpdateInput{
		ID:              updated.ID,
		Expected:        expected,
		State:           updated.State,
		LastSentOn:      updated.LastSentOn,
		LastSentAt:      updated.LastSentAt,
		LastConfirmedOn: updated.LastConfirmedOn,
		Streak:          updated.Streak,
		LongestStreak:   updated.LongestStreak,
		NotificationID:  updated.NotificationID,
	}
}

type ReminderRepository interface {
	Create(ctx context.Context, input CreateInput) (Reminder, error)
	GetByID(ctx context.Context, id ID) (Reminder, error)
	// ListDueCandidates returns every reminder with its owner's timezone.
	ListDueCandidates(ctx context.Context) ([]Candidate, error)
	// ConditionalUpdate writes input only when the stored reminder still
	// matches input.Expected. It reports false when another writer got there first.
	ConditionalUpdate(ctx context.Context, input UpdateInput) (bool, error)
	FindByNotificationID(ctx context.Context, ownerID user.ID, id NotificationID) (c.Optional[Reminder], error)
	FindMostRecentUnconfirmed(ctx context.Context, ownerID user.ID) (c.Optional[Reminder], error)
	ReadByOwner(ctx context.Context, ownerID user.ID) ([]Reminder, error)
	Delete(ctx context.Context, id ID) error
}
