package getuserstats

import (
	"context"
	"errors"
	c "medbot/internal/core/domain/common"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
)

type Input struct {
	UserID user.ID
}

type Result struct {
	Reminders      int
	ConfirmedToday int
	// CurrentStreak is the best streak that can still be continued today.
	CurrentStreak uint32
	LongestStreak uint32
	// Today is absent while the user has no usable timezone.
	Today c.Optional[localtime.Date]
}

type service struct {
	log                logging.Logger
	userRepository     user.UserRepository
	reminderRepository reminder.ReminderRepository
	resolver           localtime.Resolver
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	reminderRepository reminder.ReminderRepository,
	resolver localtime.Resolver,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	if resolver == nil {
		panic(e.NewNilArgumentError("resolver"))
	}
	return &service{
		log:                log,
		userRepository:     userRepository,
		reminderRepository: reminderRepository,
		resolver:           resolver,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, err := s.userRepository.GetByID(ctx, input.UserID)
	if err != nil {
		if !errors.Is(err, user.ErrUserDoesNotExist) {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	reminders, err := s.reminderRepository.ReadByOwner(ctx, u.ID)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	if u.HasTimezone() {
		moment, err := s.resolver.Resolve(u.Timezone.Value)
		if err != nil {
			s.log.Warning(
				ctx,
				"Could not resolve user timezone, stats are reported without today.",
				logging.Entry("userID", u.ID),
				logging.Entry("err", err),
			)
		} else {
			result.Today = c.NewOptional(moment.Date, true)
		}
	}

	result.Reminders = len(reminders)
	for _, r := range reminders {
		if r.LongestStreak > result.LongestStreak {
			result.LongestStreak = r.LongestStreak
		}
		if !result.Today.IsPresent || !r.LastConfirmedOn.IsPresent {
			continue
		}
		today := result.Today.Value
		confirmedOn := r.LastConfirmedOn.Value
		if confirmedOn == today {
			result.ConfirmedToday++
		}
		if confirmedOn == today || confirmedOn == today.PreviousDay() {
			if r.Streak > result.CurrentStreak {
				result.CurrentStreak = r.Streak
			}
		}
	}
	return result, nil
}
