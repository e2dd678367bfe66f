package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"shopapi/internal/model"
)

// RabbitConn owns the AMQP connection and the channel publishers write to.
type RabbitConn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// DialRabbit connects and declares exchange as a durable topic exchange.
func DialRabbit(url, exchange string) (*RabbitConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitConn{Conn: conn, Ch: ch}, nil
}

func (c *RabbitConn) Close() error {
	_ = c.Ch.Close()
	return c.Conn.Close()
}

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher sends order events as persistent JSON messages routed by event type.
type RabbitPublisher struct {
	ch       amqpChannel
	exchange string
}

func NewRabbitPublisher(ch amqpChannel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, exchange: exchange}
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Headers:      headers,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func (p *RabbitPublisher) PublishJSON(ctx context.Context, routingKey string, v any, headers amqp.Table) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(ctx, routingKey, b, headers)
}

// OrderPlaced publishes an orders.placed event.
func (p *RabbitPublisher) OrderPlaced(ctx context.Context, o model.Order) error {
	evt := NewOrderPlacedEvent(o)
	return p.PublishJSON(ctx, evt.Type, evt, amqp.Table{"event_id": evt.ID, "event_version": evt.Version})
}
