package consumers

import (
	"context"
	"medbot/internal/app/deps"
	"medbot/internal/app/services"
	dl "medbot/internal/core/domain/logging"
	acknowledgementreceived "medbot/internal/rabbitmq/consumers/acknowledgement_received"
)

func initAcknowledgementReceivedConsumer(deps *deps.Deps, services *services.Services) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqAcknowledgementQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not create RabbitMQ queue.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}
	acknowledgementReceivedConsumer := acknowledgementreceived.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		services.ConfirmReminder,
		deps.BotMessageSender,
	)
	acknowledgementReceivedConsumer.Consume()

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }
}

func InitConsumers(deps *deps.Deps, services *services.Services) func() {
	shutdownAcknowledgementReceivedConsumer := initAcknowledgementReceivedConsumer(deps, services)

	return func() {
		shutdownAcknowledgementReceivedConsumer()
	}
}
