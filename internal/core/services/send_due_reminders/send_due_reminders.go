package sendduereminders

import (
	"context"
	"errors"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/services"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MAX_UPDATE_ATTEMPTS bounds re-reads after a rejected conditional update.
const MAX_UPDATE_ATTEMPTS = 3

type Input struct{}

type Result struct {
	TickID      string
	Total       int
	Sent        int
	AlreadySent int
	NotYetDue   int
	Skipped     int
	Failed      int
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeAlreadySent
	outcomeNotYetDue
	outcomeSkipped
	outcomeFailed
)

type service struct {
	log                logging.Logger
	reminderRepository reminder.ReminderRepository
	resolver           localtime.Resolver
	dispatcher         reminder.Dispatcher
	dispatchTimeout    time.Duration
	concurrency        int
}

func New(
	log logging.Logger,
	reminderRepository reminder.ReminderRepository,
	resolver localtime.Resolver,
	dispatcher reminder.Dispatcher,
	dispatchTimeout time.Duration,
	concurrency int,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	if resolver == nil {
		panic(e.NewNilArgumentError("resolver"))
	}
	if dispatcher == nil {
		panic(e.NewNilArgumentError("dispatcher"))
	}
	if dispatchTimeout <= 0 {
		panic("dispatchTimeout must be positive")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &service{
		log:                log,
		reminderRepository: reminderRepository,
		resolver:           resolver,
		dispatcher:         dispatcher,
		dispatchTimeout:    dispatchTimeout,
		concurrency:        concurrency,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	result.TickID = uuid.NewString()

	candidates, err := s.reminderRepository.ListDueCandidates(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("tickID", result.TickID))
		return result, err
	}

	outcomes := make([]outcome, len(candidates))
	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for ix, candidate := range candidates {
		ix, candidate := ix, candidate
		group.Go(func() error {
			outcomes[ix] = s.process(ctx, result.TickID, candidate)
			return nil
		})
	}
	group.Wait()

	result.Total = len(candidates)
	for _, o := range outcomes {
		switch o {
		case outcomeSent:
			result.Sent++
		case outcomeAlreadySent:
			result.AlreadySent++
		case outcomeNotYetDue:
			result.NotYetDue++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}

	s.log.Info(
		ctx,
		"Tick finished.",
		logging.Entry("tickID", result.TickID),
		logging.Entry("total", result.Total),
		logging.Entry("sent", result.Sent),
		logging.Entry("alreadySent", result.AlreadySent),
		logging.Entry("notYetDue", result.NotYetDue),
		logging.Entry("skipped", result.Skipped),
		logging.Entry("failed", result.Failed),
	)
	return result, nil
}

func (s *service) process(ctx context.Context, tickID string, candidate reminder.Candidate) outcome {
	rem := candidate.Reminder
	entries := []logging.LogEntry{
		logging.Entry("tickID", tickID),
		logging.Entry("reminderID", rem.ID),
		logging.Entry("ownerID", rem.OwnerID),
	}

	if !candidate.Timezone.IsPresent || candidate.Timezone.Value == "" {
		s.log.Warning(ctx, "Owner has no timezone, reminder skipped.", entries...)
		return outcomeSkipped
	}
	now, err := s.resolver.Resolve(candidate.Timezone.Value)
	if err != nil {
		s.log.Warning(
			ctx,
			"Could not resolve owner timezone, reminder skipped.",
			append(entries, logging.Entry("timezone", candidate.Timezone.Value), logging.Entry("err", err))...,
		)
		return outcomeSkipped
	}

	switch reminder.EvaluateDue(rem, now) {
	case reminder.NotYetDue:
		return outcomeNotYetDue
	case reminder.AlreadySentToday:
		return outcomeAlreadySent
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	notificationID, err := s.dispatcher.Dispatch(dispatchCtx, reminder.NewNotification(rem))
	if err != nil {
		logging.Error(ctx, s.log, err, entries...)
		return outcomeFailed
	}

	return s.recordSent(ctx, rem, now, notificationID, entries)
}

// recordSent persists a delivery that already happened. A rejected update is
// re-evaluated against the stored reminder and never dispatches again.
func (s *service) recordSent(
	ctx context.Context,
	rem reminder.Reminder,
	now localtime.Moment,
	notificationID reminder.NotificationID,
	entries []logging.LogEntry,
) outcome {
	for attempt := 1; attempt <= MAX_UPDATE_ATTEMPTS; attempt++ {
		sent := rem.MarkSent(now.Date, now.Instant, notificationID)
		ok, err := s.reminderRepository.ConditionalUpdate(ctx, reminder.NewUpdateInput(rem.Version(), sent))
		if err != nil {
			logging.Error(ctx, s.log, err, append(entries, logging.Entry("notificationID", notificationID))...)
			return outcomeFailed
		}
		if ok {
			s.log.Info(
				ctx,
				"Reminder sent.",
				append(
					entries,
					logging.Entry("localDate", now.Date),
					logging.Entry("notificationID", notificationID),
				)...,
			)
			return outcomeSent
		}

		s.log.Info(ctx, "Reminder changed concurrently, re-reading.", append(entries, logging.Entry("attempt", attempt))...)
		rem, err = s.reminderRepository.GetByID(ctx, rem.ID)
		if errors.Is(err, reminder.ErrReminderDoesNotExist) {
			s.log.Warning(ctx, "Reminder deleted before its delivery was recorded.", entries...)
			return outcomeSent
		}
		if err != nil {
			logging.Error(ctx, s.log, err, entries...)
			return outcomeFailed
		}
		if reminder.EvaluateDue(rem, now) == reminder.AlreadySentToday {
			s.log.Warning(
				ctx,
				"Delivery for this local date was recorded by another tick.",
				append(entries, logging.Entry("notificationID", notificationID))...,
			)
			return outcomeAlreadySent
		}
	}

	logging.Error(ctx, s.log, reminder.ErrStoreContention, entries...)
	return outcomeFailed
}
