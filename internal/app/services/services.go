package services

import (
	"medbot/internal/app/deps"
	drl "medbot/internal/core/domain/rate_limiter"
	"medbot/internal/core/services"
	confirmreminder "medbot/internal/core/services/confirm_reminder"
	createreminder "medbot/internal/core/services/create_reminder"
	deletereminder "medbot/internal/core/services/delete_reminder"
	getuserstats "medbot/internal/core/services/get_user_stats"
	listuserreminders "medbot/internal/core/services/list_user_reminders"
	ratelimiting "medbot/internal/core/services/rate_limiting"
	sendduereminders "medbot/internal/core/services/send_due_reminders"
	setusertimezone "medbot/internal/core/services/set_user_timezone"
)

type Services struct {
	SetUserTimezone services.Service[setusertimezone.Input, setusertimezone.Result]
	GetUserStats    services.Service[getuserstats.Input, getuserstats.Result]

	CreateReminder    services.Service[createreminder.Input, createreminder.Result]
	DeleteReminder    services.Service[deletereminder.Input, deletereminder.Result]
	ListUserReminders services.Service[listuserreminders.Input, listuserreminders.Result]

	SendDueReminders services.Service[sendduereminders.Input, sendduereminders.Result]
	ConfirmReminder  services.Service[confirmreminder.Input, confirmreminder.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SetUserTimezone = setusertimezone.New(
		deps.Logger,
		deps.UserRepository,
		deps.TimezoneResolver,
		deps.Now,
	)
	s.GetUserStats = getuserstats.New(
		deps.Logger,
		deps.UserRepository,
		deps.ReminderRepository,
		deps.TimezoneResolver,
	)
	s.CreateReminder = createreminder.New(
		deps.Logger,
		deps.UserRepository,
		deps.ReminderRepository,
		deps.Now,
	)
	s.DeleteReminder = deletereminder.New(
		deps.Logger,
		deps.ReminderRepository,
	)
	s.ListUserReminders = listuserreminders.New(
		deps.Logger,
		deps.ReminderRepository,
	)
	s.SendDueReminders = sendduereminders.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.TimezoneResolver,
		deps.ReminderDispatcher,
		deps.Config.DispatchTimeout,
		deps.Config.TickConcurrency,
	)
	s.ConfirmReminder = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: deps.Config.AckRateLimitPerMinute},
		confirmreminder.New(
			deps.Logger,
			deps.ReminderRepository,
			deps.EventPublisher,
			deps.TextGenerator,
			deps.Config.TextGenerationTimeout,
		),
	)

	return s
}
