package pubsub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
)

// Event names published by the client core.
const (
	EventSubmissionAccepted = "submission:accepted"
	EventSubmissionStatus   = "submission:status"
	EventLeaderboardUpdated = "leaderboard:updated"
	EventSessionJoined      = "session:joined"
	EventSessionLeft        = "session:left"
)

// Event is one contest lifecycle notification.
type Event struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// PubSub fans contest events out to in-process subscribers, optionally
// bridging through an upstream broker so every bridge instance observing the
// same contest sees the same events.
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
}

// New creates a local-only PubSub.
func New() *PubSub {
	return &PubSub{
		subscribers: []chan Event{},
	}
}

// NewWithUpstream creates a PubSub bridged to an upstream publisher. Publish
// sends to the upstream, which broadcasts to all instances; events arriving
// from the upstream are forwarded to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subscribers: []chan Event{},
		upstream:    upstream,
	}

	go func() {
		ch := upstream.Subscribe()
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: upstream channel closed")
	}()

	return ps
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 10)
	ps.subscribers = append(ps.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers. An empty event ID is filled in
// so cross-instance consumers can deduplicate.
func (ps *PubSub) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if ps.upstream != nil {
		// The upstream broadcasts back to us via the subscription.
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

func (ps *PubSub) publishLocal(event Event) {
	// The read lock is held across the sends so Unsubscribe cannot close a
	// channel mid-publish. The sends never block, so the hold is brief.
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			// Skip if channel is full
		}
	}
}
