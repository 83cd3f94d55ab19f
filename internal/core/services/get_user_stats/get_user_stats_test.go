package getuserstats

import (
	"context"
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	Now       = time.Date(2024, time.May, 10, 7, 0, 0, 0, time.UTC)
	Today     = localtime.NewDate(2024, time.May, 10)
	Yesterday = Today.PreviousDay()
)

func confirmed(id reminder.ID, on localtime.Date, streak, longest uint32) reminder.Reminder {
	return reminder.Reminder{
		ID:              id,
		OwnerID:         1,
		State:           reminder.StateConfirmed,
		LastSentOn:      c.NewOptional(on, true),
		LastConfirmedOn: c.NewOptional(on, true),
		Streak:          streak,
		LongestStreak:   longest,
	}
}

func TestUserStats(t *testing.T) {
	// Setup ---
	users := user.NewFakeUserRepository(user.User{ID: 1, Timezone: c.NewOptional("Europe/London", true)})
	reminders := reminder.NewFakeReminderRepository()
	reminders.Put(confirmed(1, Today, 3, 3))
	reminders.Put(confirmed(2, Yesterday, 5, 9))
	reminders.Put(confirmed(3, Today.AddDays(-3), 12, 12))
	reminders.Put(reminder.Reminder{ID: 4, OwnerID: 1, State: reminder.StatePending})
	foreign := confirmed(5, Today, 40, 40)
	foreign.OwnerID = 2
	reminders.Put(foreign)
	service := New(logging.NewFakeLogger(), users, reminders, localtime.NewFakeResolver(Now))

	// Exercise ---
	result, err := service.Run(context.Background(), Input{UserID: 1})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(4, result.Reminders)
	assert.Equal(1, result.ConfirmedToday)
	assert.Equal(uint32(5), result.CurrentStreak)
	assert.Equal(uint32(12), result.LongestStreak)
	assert.Equal(c.NewOptional(Today, true), result.Today)
}

func TestUserStatsWithoutTimezone(t *testing.T) {
	// Setup ---
	users := user.NewFakeUserRepository(user.User{ID: 1})
	reminders := reminder.NewFakeReminderRepository()
	reminders.Put(confirmed(1, Today, 3, 4))
	service := New(logging.NewFakeLogger(), users, reminders, localtime.NewFakeResolver(Now))

	// Exercise ---
	result, err := service.Run(context.Background(), Input{UserID: 1})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(1, result.Reminders)
	assert.Equal(0, result.ConfirmedToday)
	assert.Equal(uint32(0), result.CurrentStreak)
	assert.Equal(uint32(4), result.LongestStreak)
	assert.False(result.Today.IsPresent)
}

func TestUnknownUser(t *testing.T) {
	// Setup ---
	service := New(
		logging.NewFakeLogger(),
		user.NewFakeUserRepository(),
		reminder.NewFakeReminderRepository(),
		localtime.NewFakeResolver(Now),
	)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{UserID: 1})

	// Verify ---
	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
}
