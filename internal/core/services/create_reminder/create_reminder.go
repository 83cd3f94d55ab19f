package createreminder

import (
	"context"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	"time"
	"unicode/utf8"
)

const MAX_LABEL_LENGTH = 64

type Input struct {
	OwnerID   user.ID
	TimeOfDay localtime.TimeOfDay
	Label     string
}

type Result struct {
	Reminder reminder.Reminder
	// HasTimezone is false when the reminder can't fire until the owner sets a timezone.
	HasTimezone bool
}

type service struct {
	log                logging.Logger
	userRepository     user.UserRepository
	reminderRepository reminder.ReminderRepository
	now                func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	reminderRepository reminder.ReminderRepository,
	now func() time.Time,
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
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                log,
		userRepository:     userRepository,
		reminderRepository: reminderRepository,
		now:                now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if utf8.RuneCountInString(input.Label) > MAX_LABEL_LENGTH {
		return result, reminder.ErrLabelTooLong
	}

	owner, err := s.userRepository.Ensure(ctx, user.EnsureInput{ID: input.OwnerID, CreatedAt: s.now()})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	rem, err := s.reminderRepository.Create(ctx, reminder.CreateInput{
		OwnerID:   owner.ID,
		TimeOfDay: input.TimeOfDay,
		Label:     input.Label,
		CreatedAt: s.now(),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	s.log.Info(
		ctx,
		"Reminder created.",
		logging.Entry("reminderID", rem.ID),
		logging.Entry("ownerID", rem.OwnerID),
		logging.Entry("timeOfDay", rem.TimeOfDay),
	)
	return Result{Reminder: rem, HasTimezone: owner.HasTimezone()}, nil
}
