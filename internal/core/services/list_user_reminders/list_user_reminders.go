package listuserreminders

import (
	"context"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	"sort"
)

type Input struct {
	UserID user.ID
}

type Result struct {
	Reminders []reminder.Reminder
}

type service struct {
	log                logging.Logger
	reminderRepository reminder.ReminderRepository
}

func New(
	log logging.Logger,
	reminderRepository reminder.ReminderRepository,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	return &service{
		log:                log,
		reminderRepository: reminderRepository,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	reminders, err := s.reminderRepository.ReadByOwner(ctx, input.UserID)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		if reminders[i].TimeOfDay != reminders[j].TimeOfDay {
			return reminders[i].TimeOfDay.Before(reminders[j].TimeOfDay)
		}
		return reminders[i].ID < reminders[j].ID
	})

	s.log.Info(
		ctx,
		"User reminders successfully read.",
		logging.Entry("input", input),
		logging.Entry("count", len(reminders)),
	)
	result.Reminders = reminders
	return result, nil
}
