package eventpublisher

import (
	"context"
	"encoding/json"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/reminder"
	"strconv"
	"time"

	"github.com/r3labs/sse/v2"
)

const REMINDER_CONFIRMED = "reminder_confirmed"

// Publisher is satisfied by *sse.Server.
type Publisher interface {
	Publish(id string, event *sse.Event)
}

type reminderConfirmed struct {
	ReminderID    int64  `json:"reminder_id"`
	Label         string `json:"label"`
	ConfirmedOn   string `json:"confirmed_on"`
	Streak        uint32 `json:"streak"`
	LongestStreak uint32 `json:"longest_streak"`
	PublishedAt   string `json:"published_at"`
}

// SSE pushes events to the owner's stream. Owners without an open stream miss them.
type SSE struct {
	publisher Publisher
	now       func() time.Time
}

func NewSSE(publisher Publisher, now func() time.Time) *SSE {
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &SSE{publisher: publisher, now: now}
}

func StreamID(ownerID int64) string {
	return strconv.FormatInt(ownerID, 10)
}

func (p *SSE) PublishConfirmed(ctx context.Context, rem reminder.Reminder) error {
	data, err := json.Marshal(reminderConfirmed{
		ReminderID:    int64(rem.ID),
		Label:         rem.Label,
		ConfirmedOn:   rem.LastConfirmedOn.ValueOr(rem.LastSentOn.Value).String(),
		Streak:        rem.Streak,
		LongestStreak: rem.LongestStreak,
		PublishedAt:   p.now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	p.publisher.Publish(StreamID(int64(rem.OwnerID)), &sse.Event{
		Event: []byte(REMINDER_CONFIRMED),
		Data:  data,
	})
	return nil
}
