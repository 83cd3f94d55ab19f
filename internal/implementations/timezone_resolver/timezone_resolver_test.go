package timezoneresolver

import (
	"medbot/internal/core/domain/localtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		id       string
		now      time.Time
		timezone string
		date     localtime.Date
		time     string
	}{
		{
			id:       "london summer time",
			now:      time.Date(2024, time.May, 10, 7, 0, 0, 0, time.UTC),
			timezone: "Europe/London",
			date:     localtime.NewDate(2024, time.May, 10),
			time:     "08:00",
		},
		{
			id:       "tokyo is already tomorrow",
			now:      time.Date(2024, time.May, 10, 16, 30, 0, 0, time.UTC),
			timezone: "Asia/Tokyo",
			date:     localtime.NewDate(2024, time.May, 11),
			time:     "01:30",
		},
		{
			id:       "new york before spring forward",
			now:      time.Date(2024, time.March, 10, 6, 59, 0, 0, time.UTC),
			timezone: "America/New_York",
			date:     localtime.NewDate(2024, time.March, 10),
			time:     "01:59",
		},
		{
			id:       "new york after spring forward",
			now:      time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC),
			timezone: "America/New_York",
			date:     localtime.NewDate(2024, time.March, 10),
			time:     "03:00",
		},
		{
			id:       "kathmandu quarter hour offset",
			now:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			timezone: "Asia/Kathmandu",
			date:     localtime.NewDate(2024, time.January, 1),
			time:     "05:45",
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			// Setup ---
			now := testcase.now
			resolver := NewIANA(func() time.Time { return now })

			// Exercise ---
			moment, err := resolver.Resolve(testcase.timezone)

			// Verify ---
			assert := require.New(t)
			assert.Nil(err)
			assert.Equal(testcase.date, moment.Date)
			assert.Equal(localtime.MustTimeOfDay(testcase.time), moment.Time)
			assert.Equal(testcase.timezone, moment.Zone)
			assert.True(now.Equal(moment.Instant))
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, timezone := range []string{"", "Local", "Mars/Olympus_Mons", "../etc/passwd"} {
		t.Run(timezone, func(t *testing.T) {
			// Setup ---
			resolver := NewIANA(time.Now)

			// Exercise ---
			_, err := resolver.Resolve(timezone)

			// Verify ---
			require.ErrorIs(t, err, localtime.ErrUnknownTimezone)
		})
	}
}

func TestResolveUsesCurrentInstantEachCall(t *testing.T) {
	// Setup ---
	now := time.Date(2024, time.May, 10, 22, 59, 0, 0, time.UTC)
	resolver := NewIANA(func() time.Time { return now })
	before, err := resolver.Resolve("Europe/London")
	require.Nil(t, err)

	// Exercise ---
	now = now.Add(2 * time.Minute)
	after, err := resolver.Resolve("Europe/London")

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(localtime.NewDate(2024, time.May, 10), before.Date)
	assert.Equal(localtime.NewDate(2024, time.May, 11), after.Date)
}
