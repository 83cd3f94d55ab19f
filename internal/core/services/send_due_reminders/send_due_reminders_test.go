package sendduereminders

import (
	"context"
	"errors"
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	OWNER_ID       = user.ID(100)
	OTHER_OWNER_ID = user.ID(200)
)

var (
	// 07:00 UTC is 08:00 in London during BST.
	Now   = time.Date(2024, time.May, 10, 7, 0, 0, 0, time.UTC)
	Today = localtime.NewDate(2024, time.May, 10)
)

type testSuite struct {
	suite.Suite
	logger     *logging.FakeLogger
	repository *reminder.FakeReminderRepository
	resolver   *localtime.FakeResolver
	dispatcher *reminder.FakeDispatcher
	service    services.Service[Input, Result]
}

func (s *testSuite) SetupTest() {
	s.logger = logging.NewFakeLogger()
	s.repository = reminder.NewFakeReminderRepository()
	s.resolver = localtime.NewFakeResolver(Now)
	s.dispatcher = reminder.NewFakeDispatcher()
	s.service = New(s.logger, s.repository, s.resolver, s.dispatcher, time.Second, 4)
}

func TestSendDueRemindersService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) addReminder(id reminder.ID, owner user.ID, timeOfDay string) reminder.Reminder {
	rem := reminder.Reminder{
		ID:        id,
		OwnerID:   owner,
		TimeOfDay: localtime.MustTimeOfDay(timeOfDay),
		State:     reminder.StatePending,
	}
	s.repository.Put(rem)
	return rem
}

func (s *testSuite) tick(at time.Time) Result {
	s.resolver.SetNow(at)
	result, err := s.service.Run(context.Background(), Input{})
	s.Require().Nil(err)
	return result
}

func (s *testSuite) TestSendsDueReminderAndRecordsIt() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.addReminder(1, OWNER_ID, "08:00")

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(1, result.Total)
	assert.Equal(1, result.Sent)
	assert.NotEmpty(result.TickID)
	assert.Equal(1, s.dispatcher.Count())
	assert.Equal(OWNER_ID, s.dispatcher.Dispatched[0].OwnerID)

	stored := s.repository.Get(1)
	assert.Equal(reminder.StateSentUnconfirmed, stored.State)
	assert.Equal(c.NewOptional(Today, true), stored.LastSentOn)
	assert.Equal(c.NewOptional(Now, true), stored.LastSentAt)
	assert.Equal(c.NewOptional(reminder.NotificationID("n-1"), true), stored.NotificationID)
	assert.Nil(stored.Validate())
}

func (s *testSuite) TestSendsExactlyOnceAroundReminderTime() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Asia/Tokyo"
	s.addReminder(1, OWNER_ID, "08:00")
	// 08:00 in Tokyo is 23:00 UTC of the previous day.
	at := time.Date(2024, time.May, 9, 23, 0, 0, 0, time.UTC)

	// Exercise ---
	before := s.tick(at.Add(-30 * time.Second))
	onTime := s.tick(at)
	after := s.tick(at.Add(30 * time.Second))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, before.NotYetDue)
	assert.Equal(1, onTime.Sent)
	assert.Equal(1, after.AlreadySent)
	assert.Equal(1, s.dispatcher.Count())
	assert.Equal(c.NewOptional(Today, true), s.repository.Get(1).LastSentOn)
}

func (s *testSuite) TestFiresOnFirstTickAfterDowntime() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "UTC"
	s.addReminder(1, OWNER_ID, "08:00")

	// Exercise ---
	result := s.tick(time.Date(2024, time.May, 10, 15, 42, 0, 0, time.UTC))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, result.Sent)
	assert.Equal(1, s.dispatcher.Count())
}

func (s *testSuite) TestSendsAgainOnNextLocalDay() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "UTC"
	s.addReminder(1, OWNER_ID, "08:00")

	// Exercise ---
	s.tick(time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC))
	sameDay := s.tick(time.Date(2024, time.May, 10, 23, 59, 0, 0, time.UTC))
	nextDayEarly := s.tick(time.Date(2024, time.May, 11, 7, 59, 0, 0, time.UTC))
	nextDay := s.tick(time.Date(2024, time.May, 11, 8, 0, 0, 0, time.UTC))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, sameDay.AlreadySent)
	assert.Equal(1, nextDayEarly.NotYetDue)
	assert.Equal(1, nextDay.Sent)
	assert.Equal(2, s.dispatcher.Count())
	assert.Equal(c.NewOptional(localtime.NewDate(2024, time.May, 11), true), s.repository.Get(1).LastSentOn)
}

func (s *testSuite) TestDispatchFailureIsRetriedOnNextTick() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	original := s.addReminder(1, OWNER_ID, "08:00")
	s.dispatcher.Errors[1] = errors.New("telegram is down")

	// Exercise ---
	failed := s.tick(Now)
	failedState := s.repository.Get(1)
	delete(s.dispatcher.Errors, 1)
	retried := s.tick(Now.Add(30 * time.Second))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, failed.Failed)
	assert.Equal(original, failedState)
	assert.Len(s.repository.UpdateCalls, 1)
	assert.Equal(1, retried.Sent)
	assert.Equal(reminder.StateSentUnconfirmed, s.repository.Get(1).State)
	assert.NotEmpty(s.logger.ByLevel(logging.ERROR))
}

func (s *testSuite) TestSkipsOwnersWithoutUsableTimezone() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.repository.Timezones[OTHER_OWNER_ID] = "Not/AZone"
	s.addReminder(1, OWNER_ID, "08:00")
	s.addReminder(2, OTHER_OWNER_ID, "08:00")
	s.addReminder(3, user.ID(300), "08:00")

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(3, result.Total)
	assert.Equal(1, result.Sent)
	assert.Equal(2, result.Skipped)
	assert.Equal(1, s.dispatcher.Count())
	assert.Equal(reminder.StatePending, s.repository.Get(2).State)
	assert.Equal(reminder.StatePending, s.repository.Get(3).State)
	assert.Len(s.logger.ByLevel(logging.WARNING), 2)
}

func (s *testSuite) TestFailureOfOneReminderDoesNotAffectOthers() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.addReminder(1, OWNER_ID, "08:00")
	s.addReminder(2, OWNER_ID, "07:30")
	s.addReminder(3, OWNER_ID, "06:00")
	s.dispatcher.Errors[2] = errors.New("chat not found")

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(2, result.Sent)
	assert.Equal(1, result.Failed)
	assert.Equal(reminder.StateSentUnconfirmed, s.repository.Get(1).State)
	assert.Equal(reminder.StatePending, s.repository.Get(2).State)
	assert.Equal(reminder.StateSentUnconfirmed, s.repository.Get(3).State)
}

func (s *testSuite) TestDispatchTimeoutCountsAsFailure() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.addReminder(1, OWNER_ID, "08:00")
	s.dispatcher.Delay = time.Second
	service := New(s.logger, s.repository, s.resolver, s.dispatcher, 20*time.Millisecond, 1)

	// Exercise ---
	result, err := service.Run(context.Background(), Input{})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(1, result.Failed)
	assert.Equal(reminder.StatePending, s.repository.Get(1).State)
}

func (s *testSuite) TestSpringForwardDoesNotSkipOrDuplicate() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "America/New_York"
	// 02:30 does not exist on 2024-03-10 in New York: clocks jump from 02:00 to 03:00.
	s.addReminder(1, OWNER_ID, "02:30")

	// Exercise ---
	beforeJump := s.tick(time.Date(2024, time.March, 10, 6, 59, 30, 0, time.UTC))
	afterJump := s.tick(time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC))
	later := s.tick(time.Date(2024, time.March, 10, 7, 0, 30, 0, time.UTC))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, beforeJump.NotYetDue)
	assert.Equal(1, afterJump.Sent)
	assert.Equal(1, later.AlreadySent)
	assert.Equal(1, s.dispatcher.Count())
	assert.Equal(c.NewOptional(localtime.NewDate(2024, time.March, 10), true), s.repository.Get(1).LastSentOn)
}

func (s *testSuite) TestFallBackDoesNotDuplicate() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "America/New_York"
	// 01:30 happens twice on 2024-11-03 in New York.
	s.addReminder(1, OWNER_ID, "01:30")

	// Exercise ---
	first := s.tick(time.Date(2024, time.November, 3, 5, 30, 0, 0, time.UTC))
	repeated := s.tick(time.Date(2024, time.November, 3, 6, 30, 0, 0, time.UTC))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, first.Sent)
	assert.Equal(1, repeated.AlreadySent)
	assert.Equal(1, s.dispatcher.Count())
}

func (s *testSuite) TestTimezoneChangeToEarlierZoneDoesNotResend() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Asia/Tokyo"
	s.addReminder(1, OWNER_ID, "08:00")
	sentAt := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC) // 09:00 May 10 in Tokyo

	// Exercise ---
	s.tick(sentAt)
	s.repository.Timezones[OWNER_ID] = "America/Los_Angeles" // 17:00 May 9 there
	afterMove := s.tick(sentAt.Add(time.Minute))

	// Verify ---
	assert := s.Require()
	assert.Equal(1, afterMove.AlreadySent)
	assert.Equal(1, s.dispatcher.Count())
}

func (s *testSuite) TestConcurrentSendIsRecordedOnce() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.addReminder(1, OWNER_ID, "08:00")
	calls := 0
	s.repository.BeforeUpdate = func(input reminder.UpdateInput) {
		calls++
		if calls > 1 {
			return
		}
		other := s.repository.Get(1).MarkSent(Today, Now, reminder.NotificationID("other-tick"))
		s.repository.Put(other)
	}

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(1, result.AlreadySent)
	assert.Equal(0, result.Sent)
	assert.Equal(1, s.dispatcher.Count())
	assert.Len(s.repository.UpdateCalls, 1)
	assert.Equal(c.NewOptional(reminder.NotificationID("other-tick"), true), s.repository.Get(1).NotificationID)
}

func (s *testSuite) TestRetriesWriteAfterConcurrentConfirmation() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	yesterday := Today.PreviousDay()
	s.repository.Put(reminder.Reminder{
		ID:             1,
		OwnerID:        OWNER_ID,
		TimeOfDay:      localtime.MustTimeOfDay("08:00"),
		State:          reminder.StateSentUnconfirmed,
		LastSentOn:     c.NewOptional(yesterday, true),
		NotificationID: c.NewOptional(reminder.NotificationID("old"), true),
	})
	calls := 0
	s.repository.BeforeUpdate = func(input reminder.UpdateInput) {
		calls++
		if calls > 1 {
			return
		}
		s.repository.Put(s.repository.Get(1).MarkConfirmed())
	}

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(1, result.Sent)
	assert.Equal(1, s.dispatcher.Count())
	assert.Equal(1, s.repository.RejectedCalls)
	stored := s.repository.Get(1)
	assert.Equal(reminder.StateSentUnconfirmed, stored.State)
	assert.Equal(c.NewOptional(Today, true), stored.LastSentOn)
	assert.Equal(c.NewOptional(yesterday, true), stored.LastConfirmedOn)
	assert.Equal(uint32(1), stored.Streak)
}

func (s *testSuite) TestGivesUpAfterRepeatedContention() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.addReminder(1, OWNER_ID, "08:00")
	s.repository.BeforeUpdate = func(input reminder.UpdateInput) {
		// another writer keeps moving the version to an older day
		rem := s.repository.Get(1)
		older := Today.AddDays(-len(s.repository.UpdateCalls) - 1)
		rem.State = reminder.StateSentUnconfirmed
		rem.LastSentOn = c.NewOptional(older, true)
		s.repository.Put(rem)
	}

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(1, result.Failed)
	assert.Len(s.repository.UpdateCalls, MAX_UPDATE_ATTEMPTS)
	assert.Equal(1, s.dispatcher.Count())
}

func (s *testSuite) TestListErrorIsReturned() {
	// Setup ---
	s.repository.ListError = errors.New("db is down")

	// Exercise ---
	_, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	s.Require().ErrorIs(err, s.repository.ListError)
}

func (s *testSuite) TestManyRemindersAreProcessedConcurrently() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	for id := reminder.ID(1); id <= 20; id++ {
		s.addReminder(id, OWNER_ID, "07:00")
	}
	s.dispatcher.Delay = 5 * time.Millisecond

	// Exercise ---
	result := s.tick(Now)

	// Verify ---
	assert := s.Require()
	assert.Equal(20, result.Sent)
	assert.Equal(20, s.dispatcher.Count())
}

func (s *testSuite) TestOverlappingTicksRecordOneSend() {
	// Setup ---
	s.repository.Timezones[OWNER_ID] = "Europe/London"
	s.addReminder(1, OWNER_ID, "08:00")
	results := make([]Result, 2)
	var wg sync.WaitGroup

	// Exercise ---
	for ix := range results {
		ix := ix
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.service.Run(context.Background(), Input{})
			s.Require().Nil(err)
			results[ix] = result
		}()
	}
	wg.Wait()

	// Verify ---
	assert := s.Require()
	assert.Equal(1, results[0].Sent+results[1].Sent)
	assert.Equal(1, results[0].AlreadySent+results[1].AlreadySent)
	assert.Equal(reminder.StateSentUnconfirmed, s.repository.Get(1).State)
}
