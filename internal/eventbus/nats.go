/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/drerries/wantedboard/internal/events"
)

// NATSBus fans events out over NATS core pub/sub. Subjects are the event
// type strings prefixed with "wantedboard.".
type NATSBus struct {
	conn     *nats.Conn
	logger   zerolog.Logger
	fallback *events.Bus
	nodeID   string

	mu   sync.Mutex
	subs map[events.EventType]*nats.Subscription
}

const natsSubjectPrefix = "wantedboard."

// NewNATSBus connects to the NATS server at url. Like the Redis bus it
// degrades to in-memory delivery when the server is unreachable.
func NewNATSBus(url, nodeID string, logger zerolog.Logger) (*NATSBus, error) {
	nb := &NATSBus{
		logger:   logger,
		fallback: events.NewBus(),
		nodeID:   nodeID,
		subs:     make(map[events.EventType]*nats.Subscription),
	}

	conn, err := nats.Connect(url,
		nats.Name("wantedboard-"+nodeID),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("NATS connection failed, using in-memory fallback")
		return nb, nil
	}

	nb.conn = conn
	logger.Info().Str("url", url).Msg("NATS event bus initialized")
	return nb, nil
}

// Subscribe registers a subscriber for an event type.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	sub := nb.fallback.Subscribe(eventType)

	if nb.conn == nil {
		return sub
	}

	if _, exists := nb.subs[eventType]; !exists {
		subject := natsSubjectPrefix + string(eventType)
		natsSub, err := nb.conn.Subscribe(subject, func(msg *nats.Msg) {
			wireMsg, err := unmarshalMessage(msg.Data)
			if err != nil {
				nb.logger.Error().Err(err).Msg("failed to unmarshal NATS message")
				return
			}
			if wireMsg.NodeID == nb.nodeID {
				return
			}
			nb.fallback.Publish(eventType, wireMsg.Payload)
		})
		if err != nil {
			nb.logger.Error().Err(err).Str("subject", subject).Msg("NATS subscribe failed")
			return sub
		}
		nb.subs[eventType] = natsSub
	}

	return sub
}

// Publish sends an event payload to all subscribers (local and remote).
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.fallback.Publish(eventType, payload)

	if nb.conn == nil {
		return
	}

	data, err := marshalMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Error().Err(err).Msg("failed to marshal NATS message")
		return
	}

	if err := nb.conn.Publish(natsSubjectPrefix+string(eventType), data); err != nil {
		nb.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to publish to NATS")
	}
}

// Unsubscribe removes a subscriber.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.fallback.Unsubscribe(eventType, sub)
}

// Close drains the NATS connection.
func (nb *NATSBus) Close() error {
	nb.mu.Lock()
	for _, natsSub := range nb.subs {
		natsSub.Unsubscribe()
	}
	nb.subs = make(map[events.EventType]*nats.Subscription)
	nb.mu.Unlock()

	if nb.conn != nil {
		if err := nb.conn.Drain(); err != nil {
			nb.logger.Error().Err(err).Msg("failed to drain NATS connection")
		}
		nb.conn.Close()
	}

	nb.logger.Info().Msg("NATS event bus closed")
	return nil
}

var _ events.Broker = (*NATSBus)(nil)
