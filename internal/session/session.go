package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/dal"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
)

var (
	// ErrNoSession is returned when no contest has been joined.
	ErrNoSession = errors.New("no active contest session")
	// ErrEmptyUsername rejects a join with a blank username.
	ErrEmptyUsername = errors.New("username is required")
)

// ContestFetcher is the slice of the backend API the session manager needs.
type ContestFetcher interface {
	GetContest(ctx context.Context, contestID int64) (*models.Contest, error)
}

// Manager owns the participant's contest session: joining (which validates
// the contest exists), the selected problem, and leaving. The session
// persists through the DAL so a restart resumes where the user left off.
type Manager struct {
	dal      dal.ClientDAL
	contests ContestFetcher
	events   *pubsub.PubSub
}

func NewManager(d dal.ClientDAL, contests ContestFetcher, events *pubsub.PubSub) *Manager {
	return &Manager{dal: d, contests: contests, events: events}
}

// Join validates the contest against the backend and, only on success,
// persists a new session. An unknown contest leaves any existing session
// untouched.
func (m *Manager) Join(ctx context.Context, contestID int64, username string) (*models.ContestSession, *models.Contest, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, ErrEmptyUsername
	}

	contest, err := m.contests.GetContest(ctx, contestID)
	if err != nil {
		logger.Warn("Contest join rejected", "contest_id", contestID, "error", err)
		return nil, nil, err
	}

	sess := &models.ContestSession{
		Username:  username,
		ContestID: contestID,
	}
	ReconcileSelection(sess, contest.Problems)

	if err := m.dal.SaveSession(sess); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}
	logger.Info("Joined contest", "contest_id", contestID, "username", username,
		"selected_problem", sess.SelectedProblemID)
	m.events.Publish(pubsub.Event{
		Type: pubsub.EventSessionJoined,
		Payload: map[string]interface{}{
			"contestId": contestID,
			"username":  username,
		},
	})
	return sess, contest, nil
}

// Load returns the persisted session, or ErrNoSession when none exists.
func (m *Manager) Load() (*models.ContestSession, error) {
	sess, err := m.dal.GetSession()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

// Leave clears the session. It succeeds even when no session exists.
func (m *Manager) Leave() error {
	if err := m.dal.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logger.Info("Left contest")
	m.events.Publish(pubsub.Event{Type: pubsub.EventSessionLeft})
	return nil
}

// SelectProblem records the user's problem choice on the active session.
func (m *Manager) SelectProblem(problemID int64) (*models.ContestSession, error) {
	sess, err := m.Load()
	if err != nil {
		return nil, err
	}
	if sess.SelectedProblemID == problemID {
		return sess, nil
	}
	sess.SelectedProblemID = problemID
	if err := m.dal.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Refresh re-fetches session's contest from the backend and reconciles the
// problem selection against the (possibly changed) problem set.
func (m *Manager) Refresh(ctx context.Context) (*models.ContestSession, *models.Contest, error) {
	sess, err := m.Load()
	if err != nil {
		return nil, nil, err
	}
	contest, err := m.contests.GetContest(ctx, sess.ContestID)
	if err != nil {
		return nil, nil, err
	}
	if ReconcileSelection(sess, contest.Problems) {
		if err := m.dal.SaveSession(sess); err != nil {
			return nil, nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return sess, contest, nil
}

// ReconcileSelection clamps the session's selected problem to the contest's
// problem set: a selection still in the set is kept, anything else falls back
// to the first problem, and an empty set clears the selection. Returns
// whether the selection changed.
func ReconcileSelection(sess *models.ContestSession, problems []models.Problem) bool {
	for _, p := range problems {
		if p.ID == sess.SelectedProblemID {
			return false
		}
	}
	var next int64
	if len(problems) > 0 {
		next = problems[0].ID
	}
	if sess.SelectedProblemID == next {
		return false
	}
	sess.SelectedProblemID = next
	return true
}
