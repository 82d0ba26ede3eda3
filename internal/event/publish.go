package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/devboards/newswire/internal/article"
)

// StoredMessage is the payload announced for every newly stored article.
type StoredMessage struct {
	Event     string           `json:"event"`
	Timestamp time.Time        `json:"timestamp"`
	Article   article.Enriched `json:"article"`
}

// PublishingChannel is the slice of amqp.Channel the publisher needs; an
// interface so tests can swap out the broker.
type PublishingChannel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

// Publisher announces stored articles on a RabbitMQ topic exchange.
type Publisher struct {
	conn       *amqp.Connection
	ch         PublishingChannel
	exchange   string
	routingKey string
}

// NewPublisher dials the broker and declares the exchange.
func NewPublisher(uri, exchange, routingKey string) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connection failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel creation failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare failed: %w", err)
	}

	return &Publisher{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishStored announces one stored article.
func (p *Publisher) PublishStored(ctx context.Context, a *article.Enriched) error {
	body, err := json.Marshal(StoredMessage{
		Event:     "article.stored",
		Timestamp: time.Now().UTC(),
		Article:   *a,
	})
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}
