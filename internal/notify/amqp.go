package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gitlab.com/yelinaung/backoffice/internal/archive"
	"gitlab.com/yelinaung/backoffice/internal/logger"
)

// PublishTimeout bounds a single publish.
const PublishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// EventPublisher publishes ArchiveEvent messages to a durable direct exchange.
type EventPublisher struct {
	conn       *amqp.Connection
	channel    Channel
	exchange   string
	routingKey string
	now        func() time.Time
}

// DialEventPublisher connects to the broker and declares the exchange.
func DialEventPublisher(url, exchange, routingKey string) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	p, err := NewEventPublisher(ch, exchange, routingKey)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewEventPublisher wraps an open channel and declares the exchange.
func NewEventPublisher(ch Channel, exchange, routingKey string) (*EventPublisher, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &EventPublisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		now:        time.Now,
	}, nil
}

// NotifyArchive publishes the pass as a persistent JSON message.
func (p *EventPublisher) NotifyArchive(ctx context.Context, result *archive.Result) error {
	ev := NewArchiveEvent(result, p.now())
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal archive event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.Timestamp,
			Type:         "archive." + string(result.Status),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish archive event: %w", err)
	}

	logger.Log.Info().
		Str("period", result.Period.String()).
		Str("status", string(result.Status)).
		Str("exchange", p.exchange).
		Msg("Published archive event")
	return nil
}

// Close closes the channel and, when dialed, the connection.
func (p *EventPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
