package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"shopapi/internal/model"
)

// ConnectNATS opens a reconnecting NATS connection that logs its state changes.
func ConnectNATS(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.DrainTimeout(10 * time.Second),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

type natsConn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher sends order events on a core NATS subject named after the event type.
type NATSPublisher struct {
	nc natsConn
}

func NewNATSPublisher(nc natsConn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

// OrderPlaced publishes an orders.placed event.
func (p *NATSPublisher) OrderPlaced(ctx context.Context, o model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	evt := NewOrderPlacedEvent(o)
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.nc.Publish(evt.Type, b)
}
