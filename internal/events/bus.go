/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventVoiceJoin  EventType = "voice.join"
	EventVoiceLeave EventType = "voice.leave"

	EventWantedCreated EventType = "wanted.created"
	EventWantedUpdated EventType = "wanted.updated"
	EventWantedDeleted EventType = "wanted.deleted"

	EventReportCreated  EventType = "report.created"
	EventReportReviewed EventType = "report.reviewed"

	EventMessageDeleted EventType = "message.deleted"
	EventMessageEdited  EventType = "message.edited"

	// Audit events (for operations that need explicit audit logging)
	EventAuditWhitelistAdd    EventType = "audit.whitelist.add"
	EventAuditWhitelistRemove EventType = "audit.whitelist.remove"
	EventAuditAPIKeyCreate    EventType = "audit.apikey.create"
	EventAuditAPIKeyRevoke    EventType = "audit.apikey.revoke"
)

// StreamTypes are the event types relayed to dashboard websocket clients.
// Audit events stay server-side.
var StreamTypes = []EventType{
	EventVoiceJoin,
	EventVoiceLeave,
	EventWantedCreated,
	EventWantedUpdated,
	EventWantedDeleted,
	EventReportCreated,
	EventReportReviewed,
	EventMessageDeleted,
	EventMessageEdited,
}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Broker is the pubsub surface shared by the in-memory, Redis and NATS
// implementations.
type Broker interface {
	Subscribe(eventType EventType) Subscriber
	Publish(eventType EventType, payload Payload)
	Unsubscribe(eventType EventType, sub Subscriber)
}

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	b.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	b.subs[eventType] = subs
	close(sub)
}

var _ Broker = (*Bus)(nil)
