package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

const defaultConfirmTimeout = 5 * time.Second

var (
	// ErrPublishNacked means the broker refused responsibility for the message.
	ErrPublishNacked = errors.New("rabbitmq nacked the message")
	// ErrPublishReturned means no queue was bound for the routing key.
	ErrPublishReturned = errors.New("rabbitmq returned the message as unroutable")
	// ErrConfirmTimeout means the broker did not confirm the message in time.
	ErrConfirmTimeout = errors.New("timed out waiting for rabbitmq confirmation")
)

// AMQPChannel is the subset of *amqp.Channel the publisher needs.
type AMQPChannel interface {
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	NotifyReturn(c chan amqp.Return) chan amqp.Return
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

// RabbitMQPublisher publishes persistent, mandatory messages to an exchange, routed by
// event type, on a channel in confirm mode. Publish returns only once the broker has acked
// the message; nacks, returns and confirmation timeouts are errors so the record is retried.
type RabbitMQPublisher struct {
	conn           *amqp.Connection
	ch             AMQPChannel
	exchange       string
	confirmTimeout time.Duration

	// mu serializes publishes so each confirmation matches the publish awaiting it.
	mu          sync.Mutex
	confirms    chan amqp.Confirmation
	returns     chan amqp.Return
	deliveryTag uint64
}

// NewRabbitMQPublisher dials the broker and opens a dedicated confirm-mode channel.
func NewRabbitMQPublisher(url, exchange string, confirmTimeout time.Duration) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, apperrors.Wrap(err, "failed to open rabbitmq channel")
	}

	pub, err := NewRabbitMQPublisherWithChannel(ch, exchange, confirmTimeout)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	pub.conn = conn
	return pub, nil
}

// NewRabbitMQPublisherWithChannel puts an already opened channel in confirm mode and wraps it.
// A non-positive confirmTimeout falls back to five seconds.
func NewRabbitMQPublisherWithChannel(
	ch AMQPChannel,
	exchange string,
	confirmTimeout time.Duration,
) (*RabbitMQPublisher, error) {
	if err := ch.Confirm(false); err != nil {
		return nil, apperrors.Wrap(err, "failed to enable rabbitmq publisher confirms")
	}
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}

	return &RabbitMQPublisher{
		ch:             ch,
		exchange:       exchange,
		confirmTimeout: confirmTimeout,
		confirms:       ch.NotifyPublish(make(chan amqp.Confirmation, 16)),
		returns:        ch.NotifyReturn(make(chan amqp.Return, 16)),
	}, nil
}

// Publish sends the payload with the event metadata as AMQP properties and headers and
// waits for the broker's confirmation.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msg Message) error {
	headers := amqp.Table{}
	for k, v := range msg.headers() {
		headers[k] = v
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(ctx, p.exchange, msg.EventType, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.EventType,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         msg.Payload,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to publish to rabbitmq")
	}
	p.deliveryTag++

	return p.awaitConfirm(ctx, msg.ID, p.deliveryTag)
}

// awaitConfirm waits for the confirmation of tag. Confirmations for earlier tags belong to
// publishes that already gave up waiting and are skipped.
func (p *RabbitMQPublisher) awaitConfirm(ctx context.Context, messageID string, tag uint64) error {
	timer := time.NewTimer(p.confirmTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), "rabbitmq confirmation not received")
		case <-timer.C:
			return ErrConfirmTimeout
		case confirm, ok := <-p.confirms:
			if !ok {
				return apperrors.Wrap(amqp.ErrClosed, "rabbitmq confirmation channel closed")
			}
			if confirm.DeliveryTag < tag {
				continue
			}
			if !confirm.Ack {
				return ErrPublishNacked
			}
			if ret, returned := p.takeReturn(messageID); returned {
				return fmt.Errorf("%w: %d %s", ErrPublishReturned, ret.ReplyCode, ret.ReplyText)
			}
			return nil
		}
	}
}

// takeReturn drains pending returns and reports the one for messageID, if any. The broker
// sends basic.return before the ack of the same message, so it is already buffered here.
func (p *RabbitMQPublisher) takeReturn(messageID string) (amqp.Return, bool) {
	var (
		match amqp.Return
		found bool
	)
	for {
		select {
		case ret, ok := <-p.returns:
			if !ok {
				return match, found
			}
			if ret.MessageId == messageID {
				match, found = ret, true
			}
		default:
			return match, found
		}
	}
}

// Close closes the channel and, when owned, the connection.
func (p *RabbitMQPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
