package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Exchange is the topic exchange all moderation events go to.
const Exchange = "content-warnings.events"

const confirmTimeout = 5 * time.Second

// AMQPPublisher publishes events with publisher confirms.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	log      zerolog.Logger
	mu       sync.Mutex
}

// NewPublisher returns an AMQP publisher for url, or Nop if url is empty.
func NewPublisher(url string, log zerolog.Logger) (Publisher, error) {
	if url == "" {
		log.Info().Msg("amqp: no URL configured, events disabled")
		return Nop{}, nil
	}
	return DialAMQP(url, log)
}

// DialAMQP connects, enables confirms and declares the exchange.
func DialAMQP(url string, log zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	p := &AMQPPublisher{
		conn:     conn,
		channel:  ch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		log:      log,
	}
	log.Info().Str("exchange", Exchange).Msg("amqp: connected")
	return p, nil
}

// Publish sends evt using its type as the routing key and waits for the broker ack.
func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return errors.New("amqp: channel is not initialized")
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	tag := p.channel.GetNextPublishSeqNo()
	err = p.channel.PublishWithContext(ctx,
		Exchange, // exchange
		evt.Type, // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    evt.OccurredAt,
			MessageId:    evt.ID.String(),
			Type:         evt.Type,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	if err := awaitConfirm(ctx, p.confirms, tag, confirmTimeout); err != nil {
		return err
	}

	p.log.Debug().Str("event_id", evt.ID.String()).Str("type", evt.Type).Msg("amqp: event published")
	return nil
}

// awaitConfirm waits for the confirmation of delivery tag. Confirmations for
// earlier tags that arrived after their publisher gave up are discarded.
func awaitConfirm(ctx context.Context, confirms <-chan amqp.Confirmation, tag uint64, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case confirm, ok := <-confirms:
			if !ok {
				return errors.New("amqp: confirm channel closed")
			}
			if confirm.DeliveryTag < tag {
				continue
			}
			if confirm.DeliveryTag > tag {
				return fmt.Errorf("amqp: confirmation for tag %d skipped past %d", confirm.DeliveryTag, tag)
			}
			if !confirm.Ack {
				return errors.New("amqp: message was not acknowledged by broker")
			}
			return nil
		case <-timer.C:
			return errors.New("amqp: timeout waiting for publish confirmation")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Healthy reports whether the connection and channel are open.
func (p *AMQPPublisher) Healthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}
