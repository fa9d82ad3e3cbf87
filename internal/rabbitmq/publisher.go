package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"homechef/internal/config"
	"homechef/internal/services"
)

// Publisher hands order lifecycle events to the notification dispatcher
// over AMQP. The engine treats delivery as external: events are published
// post-commit and publish failures never fail the business operation.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.Config
}

func NewPublisher(cfg *config.Config) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, cfg: cfg}, nil
}

// SetupTopology declares the event exchange, the notification queue and its
// dead-letter pair. Declarations are idempotent across restarts.
func (p *Publisher) SetupTopology() error {
	if err := p.channel.ExchangeDeclare(
		p.cfg.OrderExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if err := p.channel.ExchangeDeclare(
		p.cfg.DeadLetterQueue+"_exchange",
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	if _, err := p.channel.QueueDeclare(
		p.cfg.DeadLetterQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if err := p.channel.QueueBind(
		p.cfg.DeadLetterQueue,
		p.cfg.DeadLetterQueue,
		p.cfg.DeadLetterQueue+"_exchange",
		false,
		nil,
	); err != nil {
		return err
	}

	if _, err := p.channel.QueueDeclare(
		p.cfg.OrderQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    p.cfg.DeadLetterQueue + "_exchange",
			"x-dead-letter-routing-key": p.cfg.DeadLetterQueue,
		},
	); err != nil {
		return err
	}

	return p.channel.QueueBind(
		p.cfg.OrderQueue,
		"order.*",
		p.cfg.OrderExchange,
		false,
		nil,
	)
}

// PublishOrderEvent publishes one lifecycle event as a persistent JSON
// message, routed by event type.
func (p *Publisher) PublishOrderEvent(ctx context.Context, event services.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		ContentType:  "application/json",
		Body:         body,
	}

	return p.channel.PublishWithContext(
		ctx,
		p.cfg.OrderExchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
