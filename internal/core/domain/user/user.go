package user

import (
	c "medbot/internal/core/domain/common"
	"time"
)

// ID is the Telegram user id. Private chats share it as chat id.
type ID int64

type User struct {
	ID        ID
	Timezone  c.Optional[string]
	CreatedAt time.Time
}

func (u *User) HasTimezone() bool {
	return u.Timezone.IsPresent && u.Timezone.Value != ""
}
