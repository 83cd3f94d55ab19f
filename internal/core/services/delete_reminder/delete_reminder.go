package deletereminder

import (
	"context"
	"errors"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
)

type Input struct {
	UserID     user.ID
	ReminderID reminder.ID
}

type Result struct {
	Reminder reminder.Reminder
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
	rem, err := s.reminderRepository.GetByID(ctx, input.ReminderID)
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrReminderDoesNotExist):
			s.log.Info(ctx, "Reminder not found.", logging.Entry("input", input))
		default:
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	if rem.OwnerID != input.UserID {
		s.log.Info(ctx, "Reminder belongs to another user.", logging.Entry("input", input))
		return result, reminder.ErrReminderPermission
	}

	err = s.reminderRepository.Delete(ctx, rem.ID)
	if err != nil {
		if !errors.Is(err, reminder.ErrReminderDoesNotExist) {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	s.log.Info(
		ctx,
		"Reminder has been successfully deleted.",
		logging.Entry("input", input),
		logging.Entry("reminderID", rem.ID),
	)
	result.Reminder = rem
	return result, nil
}
