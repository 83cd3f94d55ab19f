package reminder

import (
	c "medbot/internal/core/domain/common"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/user"
	"time"
)

type ID int64

// NotificationID correlates a delivered notification with the reminder it was sent for.
type NotificationID string

type Reminder struct {
	ID              ID
	OwnerID         user.ID
	TimeOfDay       localtime.TimeOfDay
	Label           string
	State           State
	LastSentOn      c.Optional[localtime.Date]
	LastSentAt      c.Optional[time.Time]
	LastConfirmedOn c.Optional[localtime.Date]
	Streak          uint32
	LongestStreak   uint32
	NotificationID  c.Optional[NotificationID]
	CreatedAt       time.Time
}

func (r *Reminder) Validate() error {
	if r.State == StatePending && r.LastSentOn.IsPresent {
		return e.NewInvalidStateErrorf("pending reminder %d has LastSentOn set", r.ID)
	}
	if r.State != StatePending && !r.LastSentOn.IsPresent {
		return e.NewInvalidStateErrorf("reminder %d in state %s has no LastSentOn", r.ID, r.State)
	}
	if r.LastConfirmedOn.IsPresent {
		if !r.LastSentOn.IsPresent {
			return e.NewInvalidStateErrorf("reminder %d is confirmed but was never sent", r.ID)
		}
		if r.LastConfirmedOn.Value.After(r.LastSentOn.Value) {
			return e.NewInvalidStateErrorf("reminder %d is confirmed after its last sent date", r.ID)
		}
	}
	if r.State == StateConfirmed && (!r.LastConfirmedOn.IsPresent || r.LastConfirmedOn.Value != r.LastSentOn.Value) {
		return e.NewInvalidStateErrorf("confirmed reminder %d must be confirmed on its last sent date", r.ID)
	}
	if r.Streak > r.LongestStreak {
		return e.NewInvalidStateErrorf("reminder %d streak exceeds its longest streak", r.ID)
	}
	return nil
}

func (r *Reminder) Version() Version {
	return Version{LastSentOn: r.LastSentOn, State: r.State}
}

// MarkSent records a successful delivery for the local date on.
func (r Reminder) MarkSent(on localtime.Date, at time.Time, notificationID NotificationID) Reminder {
	r.State = StateSentUnconfirmed
	r.LastSentOn = c.NewOptional(on, true)
	r.LastSentAt = c.NewOptional(at, true)
	r.NotificationID = c.NewOptional(notificationID, true)
	return r
}

// MarkConfirmed confirms the last sent notification and advances the streak.
func (r Reminder) MarkConfirmed() Reminder {
	confirmedOn := r.LastSentOn.Value
	r.Streak = NextStreak(r.LastConfirmedOn, r.Streak, confirmedOn)
	r.LongestStreak = NextLongestStreak(r.LongestStreak, r.Streak)
	r.State = StateConfirmed
	r.LastConfirmedOn = c.NewOptional(confirmedOn, true)
	return r
}

// Candidate is a reminder paired with its owner's configured timezone.
type Candidate struct {
	Reminder Reminder
	Timezone c.Optional[string]
}
