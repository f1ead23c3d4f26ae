package pubsub

import (
	"sync"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
)

// MockNATSPubSub is an in-memory stand-in for the NATS upstream, used by
// tests and broker-less local runs. It mirrors the Upstream interface and
// keeps recent events for inspection.
type MockNATSPubSub struct {
	subject     string
	subscribers []chan Event
	mu          sync.RWMutex
	messages    []Event
	maxMessages int
}

// NewMockNATSPubSub creates a mock upstream. The natsURL parameter is
// accepted for constructor symmetry and ignored.
func NewMockNATSPubSub(natsURL, subject string) (*MockNATSPubSub, error) {
	return &MockNATSPubSub{
		subject:     subject,
		subscribers: make([]chan Event, 0),
		messages:    make([]Event, 0),
		maxMessages: 1000,
	}, nil
}

// Publish delivers the event to all subscribers and records it.
func (p *MockNATSPubSub) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, event)
	if len(p.messages) > p.maxMessages {
		p.messages = p.messages[len(p.messages)-p.maxMessages:]
	}

	// Lock held across the sends so Unsubscribe cannot close a channel
	// mid-delivery.
	for _, sub := range p.subscribers {
		select {
		case sub <- event:
		default:
			logger.Warn("Mock NATS: Skipping slow subscriber", "event_type", event.Type)
		}
	}
}

// Subscribe creates a subscription channel for events
func (p *MockNATSPubSub) Subscribe() chan Event {
	ch := make(chan Event, 100)

	p.mu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscription channel
func (p *MockNATSPubSub) Unsubscribe(ch chan Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// GetMessageCount returns the number of recorded events.
func (p *MockNATSPubSub) GetMessageCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.messages)
}

// GetSubscriberCount returns the number of active subscribers.
func (p *MockNATSPubSub) GetSubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}

// Close closes all subscriptions.
func (p *MockNATSPubSub) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sub := range p.subscribers {
		close(sub)
	}
	p.subscribers = nil
}
