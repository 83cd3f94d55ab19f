package acknowledgementreceived

import (
	"context"
	"errors"
	"fmt"
	"medbot/internal/core/domain/bot"
	c "medbot/internal/core/domain/common"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	ratelimiter "medbot/internal/core/domain/rate_limiter"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/core/services"
	confirmreminder "medbot/internal/core/services/confirm_reminder"
	"medbot/internal/rabbitmq/schema"
	"strconv"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ALREADY_CONFIRMED_TEXT  = "You have already confirmed this one ✅ See you at the next reminder!"
	NOTHING_TO_CONFIRM_TEXT = "No active reminder to confirm. Set one up first, then send a photo when it arrives."
	STALE_REFERENCE_TEXT    = "That reminder can't be confirmed anymore. Please reply to the latest reminder with your photo."
	RATE_LIMITED_TEXT       = "Slow down! Too many photos at once, try again in a minute."
	FAILURE_TEXT            = "Sorry, I couldn't record your confirmation. Please send the photo again later."
)

// Source is satisfied by *rabbitmq.Channel.
type Source interface {
	Consume(queue string) <-chan amqp091.Delivery
}

type Consumer struct {
	log           logging.Logger
	source        Source
	queue         string
	service       services.Service[confirmreminder.Input, confirmreminder.Result]
	messageSender bot.MessageSender
}

func New(
	log logging.Logger,
	source Source,
	queue string,
	service services.Service[confirmreminder.Input, confirmreminder.Result],
	messageSender bot.MessageSender,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if source == nil {
		panic(e.NewNilArgumentError("source"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	if messageSender == nil {
		panic(e.NewNilArgumentError("messageSender"))
	}
	return &Consumer{log: log, source: source, queue: queue, service: service, messageSender: messageSender}
}

// Consume handles deliveries in a background goroutine until the source closes.
func (consumer *Consumer) Consume() {
	deliveries := consumer.source.Consume(consumer.queue)
	go func() {
		for delivery := range deliveries {
			consumer.Handle(context.Background(), delivery.Body)
			if err := delivery.Ack(false); err != nil {
				consumer.log.Error(context.Background(), "Could not ACK AMQP message.", logging.Entry("err", err))
			}
		}
	}()
}

// Handle confirms the acknowledgement in body and replies to its owner.
// Malformed messages are logged and dropped.
func (consumer *Consumer) Handle(ctx context.Context, body []byte) {
	ack := &schema.Acknowledgement{}
	if err := ack.Unmarshal(body); err != nil {
		consumer.log.Error(ctx, "Could not unmarshal acknowledgement.", logging.Entry("err", err), logging.Entry("body", string(body)))
		return
	}

	input := confirmreminder.Input{OwnerID: user.ID(ack.OwnerID)}
	if ack.NotificationRef != nil && *ack.NotificationRef != "" {
		input.NotificationRef = c.Some(reminder.NotificationID(*ack.NotificationRef))
	}

	result, err := consumer.service.Run(ctx, input)
	reply := bot.Message{ChatID: bot.ChatID(ack.OwnerID)}
	switch {
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		reply.Text = RATE_LIMITED_TEXT
	case err != nil:
		consumer.log.Error(
			ctx,
			"Could not confirm reminder, service returned an error.",
			logging.Entry("ownerID", ack.OwnerID),
			logging.Entry("err", err),
		)
		reply.Text = FAILURE_TEXT
	case result.Outcome == confirmreminder.Confirmed:
		reply.Text = confirmedText(result)
		reply.ReplyToMessageID = notificationMessageID(result.Reminder)
	case result.Outcome == confirmreminder.AlreadyConfirmed:
		reply.Text = ALREADY_CONFIRMED_TEXT
		reply.ReplyToMessageID = notificationMessageID(result.Reminder)
	case input.NotificationRef.IsPresent:
		reply.Text = STALE_REFERENCE_TEXT
	default:
		reply.Text = NOTHING_TO_CONFIRM_TEXT
	}

	if _, err := consumer.messageSender.SendMessage(ctx, reply); err != nil {
		consumer.log.Warning(
			ctx,
			"Could not reply to acknowledgement.",
			logging.Entry("ownerID", ack.OwnerID),
			logging.Entry("err", err),
		)
	}
}

func confirmedText(result confirmreminder.Result) string {
	streak := result.Reminder.Streak
	days := "days"
	if streak == 1 {
		days = "day"
	}
	return fmt.Sprintf("%s\n🔥 Streak: %d %s in a row", result.Text, streak, days)
}

func notificationMessageID(rem reminder.Reminder) c.Optional[bot.MessageID] {
	if !rem.NotificationID.IsPresent {
		return c.None[bot.MessageID]()
	}
	id, err := strconv.ParseInt(string(rem.NotificationID.Value), 10, 64)
	if err != nil {
		return c.None[bot.MessageID]()
	}
	return c.Some(bot.MessageID(id))
}
