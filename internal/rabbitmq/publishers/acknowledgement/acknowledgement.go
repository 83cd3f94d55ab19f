package acknowledgement

import (
	"context"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/rabbitmq/schema"
)

// Channel is satisfied by *rabbitmq.Channel.
type Channel interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

type RabbitMQ struct {
	log     logging.Logger
	channel Channel
	queue   string
}

func NewRabbitMQ(log logging.Logger, channel Channel, queue string) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	return &RabbitMQ{log: log, channel: channel, queue: queue}
}

func (p *RabbitMQ) PublishAcknowledgement(ctx context.Context, ack reminder.Acknowledgement) error {
	message := schema.Acknowledgement{OwnerID: int64(ack.OwnerID), ReceivedAt: ack.ReceivedAt}
	if ack.NotificationRef.IsPresent {
		ref := string(ack.NotificationRef.Value)
		message.NotificationRef = &ref
	}
	body, err := message.Marshal()
	if err != nil {
		return err
	}

	if err := p.channel.Publish(ctx, p.queue, body); err != nil {
		logging.Error(ctx, p.log, err, logging.Entry("ownerID", ack.OwnerID))
		return err
	}
	p.log.Info(
		ctx,
		"Acknowledgement has been published.",
		logging.Entry("queue", p.queue),
		logging.Entry("ownerID", ack.OwnerID),
		logging.Entry("notificationRef", ack.NotificationRef),
	)
	return nil
}
