package confirmreminder

import (
	"context"
	"errors"
	"fmt"
	c "medbot/internal/core/domain/common"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/textgen"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	"strings"
	"time"
)

const MAX_UPDATE_ATTEMPTS = 3

const FALLBACK_TEXT = "Thank you for confirming your medication intake!"

type Outcome struct {
	v string
}

func (o Outcome) String() string {
	return o.v
}

var (
	Confirmed        = Outcome{v: "confirmed"}
	AlreadyConfirmed = Outcome{v: "already_confirmed"}
	NothingToConfirm = Outcome{v: "nothing_to_confirm"}
)

type Input struct {
	OwnerID         user.ID
	NotificationRef c.Optional[reminder.NotificationID]
}

func (i Input) GetRateLimitKey() string {
	return fmt.Sprintf("confirm-reminder::%d", i.OwnerID)
}

type Result struct {
	Outcome  Outcome
	Reminder reminder.Reminder
	// Text is a congratulation for a fresh confirmation, empty otherwise.
	Text string
}

type service struct {
	log                logging.Logger
	reminderRepository reminder.ReminderRepository
	eventPublisher     reminder.EventPublisher
	textGenerator      textgen.Generator
	textTimeout        time.Duration
}

func New(
	log logging.Logger,
	reminderRepository reminder.ReminderRepository,
	eventPublisher reminder.EventPublisher,
	textGenerator textgen.Generator,
	textTimeout time.Duration,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	if eventPublisher == nil {
		panic(e.NewNilArgumentError("eventPublisher"))
	}
	if textGenerator == nil {
		panic(e.NewNilArgumentError("textGenerator"))
	}
	return &service{
		log:                log,
		reminderRepository: reminderRepository,
		eventPublisher:     eventPublisher,
		textGenerator:      textGenerator,
		textTimeout:        textTimeout,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	for attempt := 1; attempt <= MAX_UPDATE_ATTEMPTS; attempt++ {
		found, err := s.find(ctx, input)
		if err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
			return result, err
		}
		if !found.IsPresent {
			s.log.Info(ctx, "Nothing to confirm.", logging.Entry("input", input))
			result.Outcome = NothingToConfirm
			return result, nil
		}

		rem := found.Value
		switch rem.State {
		case reminder.StateConfirmed:
			s.log.Info(ctx, "Reminder is already confirmed.", logging.Entry("input", input), logging.Entry("reminderID", rem.ID))
			return Result{Outcome: AlreadyConfirmed, Reminder: rem}, nil
		case reminder.StatePending:
			s.log.Info(ctx, "Reminder was never sent.", logging.Entry("input", input), logging.Entry("reminderID", rem.ID))
			return Result{Outcome: NothingToConfirm, Reminder: rem}, nil
		}

		confirmed := rem.MarkConfirmed()
		ok, err := s.reminderRepository.ConditionalUpdate(ctx, reminder.NewUpdateInput(rem.Version(), confirmed))
		if err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminderID", rem.ID))
			return result, err
		}
		if !ok {
			s.log.Info(
				ctx,
				"Reminder changed concurrently, re-reading.",
				logging.Entry("input", input),
				logging.Entry("reminderID", rem.ID),
				logging.Entry("attempt", attempt),
			)
			continue
		}

		s.log.Info(
			ctx,
			"Reminder confirmed.",
			logging.Entry("reminderID", confirmed.ID),
			logging.Entry("ownerID", confirmed.OwnerID),
			logging.Entry("confirmedOn", confirmed.LastConfirmedOn.Value),
			logging.Entry("streak", confirmed.Streak),
		)
		if err := s.eventPublisher.PublishConfirmed(ctx, confirmed); err != nil {
			s.log.Warning(
				ctx,
				"Could not publish confirmation event.",
				logging.Entry("reminderID", confirmed.ID),
				logging.Entry("err", err),
			)
		}
		return Result{Outcome: Confirmed, Reminder: confirmed, Text: s.congratulate(ctx, confirmed)}, nil
	}

	logging.Error(ctx, s.log, reminder.ErrStoreContention, logging.Entry("input", input))
	return result, reminder.ErrStoreContention
}

// find resolves the reminder an acknowledgement refers to. An explicit
// reference is authoritative: when it matches nothing the user owns, nothing
// is confirmed. Without a reference the most recently sent unconfirmed
// reminder is used.
func (s *service) find(ctx context.Context, input Input) (c.Optional[reminder.Reminder], error) {
	if input.NotificationRef.IsPresent {
		found, err := s.reminderRepository.FindByNotificationID(ctx, input.OwnerID, input.NotificationRef.Value)
		if err == nil && !found.IsPresent {
			s.log.Info(ctx, "Notification reference matched no reminder.", logging.Entry("input", input))
		}
		return found, err
	}
	return s.reminderRepository.FindMostRecentUnconfirmed(ctx, input.OwnerID)
}

func (s *service) congratulate(ctx context.Context, rem reminder.Reminder) string {
	ctx, cancel := context.WithTimeout(ctx, s.textTimeout)
	defer cancel()

	text, err := s.textGenerator.Generate(ctx, textgen.Request{OwnerID: rem.OwnerID, Prompt: congratulationPrompt(rem)})
	if err != nil {
		if !errors.Is(err, textgen.ErrNotAllowed) {
			s.log.Warning(
				ctx,
				"Text generation failed, using fallback.",
				logging.Entry("reminderID", rem.ID),
				logging.Entry("err", err),
			)
		}
		return FALLBACK_TEXT
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FALLBACK_TEXT
	}
	return text
}

func congratulationPrompt(rem reminder.Reminder) string {
	var b strings.Builder
	b.WriteString("Write one short, warm sentence congratulating a person who has just taken their medication")
	if rem.Label != "" {
		fmt.Fprintf(&b, " (%s)", rem.Label)
	}
	fmt.Fprintf(&b, ". They have confirmed it %d day(s) in a row. ", rem.Streak)
	b.WriteString("Use at most two emojis and reply with the sentence only.")
	return b.String()
}
