package response

import (
	"medbot/internal/core/domain/reminder"
	"time"
)

type Reminder struct {
	ID              int64      `json:"id"`
	OwnerID         int64      `json:"owner_id"`
	Time            string     `json:"time"`
	Label           string     `json:"label"`
	State           string     `json:"state"`
	LastSentOn      *string    `json:"last_sent_on"`
	LastSentAt      *time.Time `json:"last_sent_at"`
	LastConfirmedOn *string    `json:"last_confirmed_on"`
	Streak          uint32     `json:"streak"`
	LongestStreak   uint32     `json:"longest_streak"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r *Reminder) FromDomainType(dr reminder.Reminder) {
	r.ID = int64(dr.ID)
	r.OwnerID = int64(dr.OwnerID)
	r.Time = dr.TimeOfDay.String()
	r.Label = dr.Label
	r.State = dr.State.String()
	if dr.LastSentOn.IsPresent {
		on := dr.LastSentOn.Value.String()
		r.LastSentOn = &on
	}
	if dr.LastSentAt.IsPresent {
		r.LastSentAt = &dr.LastSentAt.Value
	}
	if dr.LastConfirmedOn.IsPresent {
		on := dr.LastConfirmedOn.Value.String()
		r.LastConfirmedOn = &on
	}
	r.Streak = dr.Streak
	r.LongestStreak = dr.LongestStreak
	r.CreatedAt = dr.CreatedAt
}

func FromDomainReminders(drs []reminder.Reminder) []Reminder {
	reminders := make([]Reminder, 0, len(drs))
	for _, dr := range drs {
		r := Reminder{}
		r.FromDomainType(dr)
		reminders = append(reminders, r)
	}
	return reminders
}
