package rabbitmq

import (
	"context"
	"fmt"
	"medbot/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection and redials in the background when the
// broker drops it.
type Connection struct {
	conn *amqp.Connection
	lock sync.RWMutex
	log  logging.Logger
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{conn: conn, log: log}
	go connection.redial(url)
	return connection, nil
}

func (c *Connection) current() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.conn
}

func (c *Connection) redial(url string) {
	ctx := context.Background()
	for {
		reason, ok := <-c.current().NotifyClose(make(chan *amqp.Error, 1))
		if !ok {
			c.log.Info(ctx, "RabbitMQ connection closed.")
			return
		}

		c.log.Warning(ctx, "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(reconnectDelay)
			conn, err := amqp.Dial(url)
			if err == nil {
				c.lock.Lock()
				c.conn = conn
				c.lock.Unlock()
				c.log.Info(ctx, "RabbitMQ reconnect success.")
				break
			}
			c.log.Error(ctx, "RabbitMQ reconnect failed.", logging.Entry("err", err))
		}
	}
}

func (c *Connection) Close() error {
	return c.current().Close()
}

// Channel opens a channel that is reopened whenever the broker closes it.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}

	channel := &Channel{ch: ch, log: c.log}
	go channel.reopen(c)
	return channel, nil
}

type Channel struct {
	ch     *amqp.Channel
	lock   sync.RWMutex
	closed int32
	log    logging.Logger
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.ch
}

func (ch *Channel) reopen(c *Connection) {
	ctx := context.Background()
	for {
		reason, ok := <-ch.current().NotifyClose(make(chan *amqp.Error, 1))
		if !ok || ch.IsClosed() {
			_ = ch.Close()
			return
		}

		ch.log.Warning(ctx, "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(reconnectDelay)
			reopened, err := c.current().Channel()
			if err == nil {
				ch.lock.Lock()
				ch.ch = reopened
				ch.lock.Unlock()
				ch.log.Info(ctx, "RabbitMQ channel recreated.")
				break
			}
			ch.log.Error(ctx, "RabbitMQ channel recreate failed.", logging.Entry("err", err))
		}
	}
}

// IsClosed reports whether Close has been called.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.current().Close()
}

func (ch *Channel) DeclareQueue(name string) error {
	_, err := ch.current().QueueDeclare(name, true, false, false, false, nil)
	return err
}

func (ch *Channel) Publish(ctx context.Context, queue string, body []byte) error {
	return ch.current().PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Consume keeps delivering from queue across channel reopenings until Close is called.
func (ch *Channel) Consume(queue string) <-chan amqp.Delivery {
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		ctx := context.Background()
		for {
			d, err := ch.current().Consume(queue, "", false, false, false, false, nil)
			if err != nil {
				ch.log.Error(ctx, "Consume failed.", logging.Entry("queue", queue), logging.Entry("err", err))
				time.Sleep(reconnectDelay)
				if ch.IsClosed() {
					return
				}
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// The closed flag may be set slightly after the delivery channel ends.
			time.Sleep(reconnectDelay)
			if ch.IsClosed() {
				ch.log.Info(ctx, "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries
}
