package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
)

// Fetcher is the slice of the backend API the synchronizer needs.
type Fetcher interface {
	GetLeaderboard(ctx context.Context, contestID int64) (*models.LeaderboardSnapshot, error)
}

// Stats is a projection of the current snapshot for the standings header.
type Stats struct {
	Participants int       `json:"participants"`
	MaxSolved    int       `json:"maxSolved"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Synchronizer keeps a local copy of the contest standings fresh: a periodic
// pull plus an immediate refresh whenever a submission is accepted. Each
// refresh replaces the snapshot wholesale; rank order comes from the backend
// and is never recomputed here. A failed refresh keeps the previous snapshot.
type Synchronizer struct {
	fetch    Fetcher
	events   *pubsub.PubSub
	interval time.Duration

	mu       sync.RWMutex
	snapshot *models.LeaderboardSnapshot
}

func NewSynchronizer(fetch Fetcher, events *pubsub.PubSub, interval time.Duration) *Synchronizer {
	return &Synchronizer{fetch: fetch, events: events, interval: interval}
}

// Refresh pulls the standings once and replaces the snapshot. The previous
// snapshot survives a failed pull.
func (s *Synchronizer) Refresh(ctx context.Context, contestID int64) error {
	snap, err := s.fetch.GetLeaderboard(ctx, contestID)
	if err != nil {
		logger.Warn("Leaderboard refresh failed, keeping previous snapshot",
			"contest_id", contestID, "error", err)
		return err
	}
	if snap.LastUpdated.IsZero() {
		snap.LastUpdated = time.Now()
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.events.Publish(pubsub.Event{
		Type: pubsub.EventLeaderboardUpdated,
		Payload: map[string]interface{}{
			"contestId": contestID,
			"entries":   len(snap.Entries),
		},
	})
	return nil
}

// Snapshot returns the current standings, or nil before the first successful
// refresh. The returned snapshot is never mutated after publication.
func (s *Synchronizer) Snapshot() *models.LeaderboardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Stats projects the current snapshot into header numbers. Entries arrive
// rank-ordered, so the top entry carries the maximum solved count.
func (s *Synchronizer) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Stats{}
	}
	st := Stats{
		Participants: len(s.snapshot.Entries),
		LastUpdated:  s.snapshot.LastUpdated,
	}
	if len(s.snapshot.Entries) > 0 {
		st.MaxSolved = s.snapshot.Entries[0].ProblemsSolved
	}
	return st
}

// Run refreshes immediately, then on every tick and on every accepted
// submission, until ctx is cancelled.
func (s *Synchronizer) Run(ctx context.Context, contestID int64) {
	events := s.events.Subscribe()
	defer s.events.Unsubscribe(events)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_ = s.Refresh(ctx, contestID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx, contestID)
		case ev := <-events:
			if ev.Type == pubsub.EventSubmissionAccepted {
				logger.Debug("Accepted submission, refreshing leaderboard",
					"contest_id", contestID)
				_ = s.Refresh(ctx, contestID)
			}
		}
	}
}
