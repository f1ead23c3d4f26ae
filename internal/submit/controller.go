package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/api"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
)

var (
	// ErrEmptyCode blocks a submission whose code is blank after trimming.
	// No backend call is made.
	ErrEmptyCode = errors.New("code is empty")
	// ErrNoProblemSelected blocks a submission without a problem selection.
	ErrNoProblemSelected = errors.New("no problem selected")
	// ErrSubmissionInFlight rejects a dispatch while a prior submission for
	// the same (contest, problem) context is unresolved.
	ErrSubmissionInFlight = errors.New("a submission for this problem is still being judged")
	// ErrDispatchFailed marks a network or backend failure on dispatch; the
	// submission never entered judging and may be retried.
	ErrDispatchFailed = errors.New("failed to dispatch submission")
	// ErrPollFailed marks a failure while observing judging. Polling stops,
	// the submission is left without a terminal status, and the judgment
	// itself may still complete server-side.
	ErrPollFailed = errors.New("failed to poll submission status")
	// ErrClientTimeout is returned when the poll budget is exhausted without
	// a terminal status. The submission is reported as TIMED_OUT_CLIENT; the
	// backend may still be judging.
	ErrClientTimeout = errors.New("gave up waiting for a verdict")
)

// JudgeClient is the slice of the backend API the controller needs.
type JudgeClient interface {
	SubmitCode(ctx context.Context, req api.SubmitRequest) (int64, error)
	GetSubmissionStatus(ctx context.Context, submissionID int64) (models.SubmissionStatus, error)
}

// Clock abstracts poll scheduling so tests run without real delays.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// editorContext identifies one editing context for the in-flight guard.
type editorContext struct {
	contestID int64
	problemID int64
}

// Controller dispatches submissions and drives each one through the judging
// state machine: PENDING -> RUNNING -> terminal, with at most maxAttempts
// sequential polls. One unresolved submission is allowed per (contest,
// problem) context; concurrent dispatches are rejected, not queued.
type Controller struct {
	judge       JudgeClient
	events      *pubsub.PubSub
	clock       Clock
	interval    time.Duration
	maxAttempts int

	mu       sync.Mutex
	inflight map[editorContext]struct{}
}

// NewController creates a submission controller. interval and maxAttempts
// bound the observation window: interval*maxAttempts after dispatch the
// client stops watching and declares TIMED_OUT_CLIENT.
func NewController(judge JudgeClient, events *pubsub.PubSub, interval time.Duration, maxAttempts int) *Controller {
	return &Controller{
		judge:       judge,
		events:      events,
		clock:       realClock{},
		interval:    interval,
		maxAttempts: maxAttempts,
		inflight:    make(map[editorContext]struct{}),
	}
}

// InFlight reports whether a submission for the given context is unresolved.
func (c *Controller) InFlight(contestID, problemID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[editorContext{contestID, problemID}]
	return ok
}

func (c *Controller) acquire(key editorContext) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[key]; ok {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Controller) release(key editorContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// Submit validates, dispatches, and then polls until the submission reaches a
// terminal status, the attempt budget runs out, or ctx is cancelled. onStatus
// (optional) observes every forward status transition, including the final
// one. The call blocks for the life of the poll loop; callers wanting
// asynchrony run it in a goroutine and watch onStatus or the event stream.
//
// Exactly one EventSubmissionAccepted fires, and only when the terminal
// status is ACCEPTED.
func (c *Controller) Submit(ctx context.Context, sess *models.ContestSession, problemID int64, language, code string, onStatus func(models.SubmissionStatus)) (*models.Submission, error) {
	if problemID == 0 {
		return nil, ErrNoProblemSelected
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}

	key := editorContext{sess.ContestID, problemID}
	if !c.acquire(key) {
		return nil, ErrSubmissionInFlight
	}
	defer c.release(key)

	id, err := c.judge.SubmitCode(ctx, api.SubmitRequest{
		Username:  sess.Username,
		ContestID: sess.ContestID,
		ProblemID: problemID,
		Code:      code,
		Language:  language,
	})
	if err != nil {
		logger.Error("Submission dispatch failed", "error", err,
			"contest_id", sess.ContestID, "problem_id", problemID)
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	sub := &models.Submission{
		ID:        id,
		ContestID: sess.ContestID,
		ProblemID: problemID,
		Language:  language,
		Code:      code,
		Status:    models.StatusPending,
	}
	logger.Info("Submission dispatched", "submission_id", id,
		"contest_id", sess.ContestID, "problem_id", problemID, "language", language)
	c.announce(sub, onStatus)

	return c.poll(ctx, sub, onStatus)
}

// poll runs the observation loop: one immediate query after dispatch, then
// one every interval, strictly sequential, never more than maxAttempts.
func (c *Controller) poll(ctx context.Context, sub *models.Submission, onStatus func(models.SubmissionStatus)) (*models.Submission, error) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-c.clock.After(c.interval):
			case <-ctx.Done():
				return sub, ctx.Err()
			}
		}

		status, err := c.judge.GetSubmissionStatus(ctx, sub.ID)
		if err != nil {
			logger.Error("Status poll failed", "error", err,
				"submission_id", sub.ID, "attempt", attempt)
			return sub, fmt.Errorf("%w: %v", ErrPollFailed, err)
		}

		if c.advance(sub, status) {
			c.announce(sub, onStatus)
		}

		if sub.Status.IsTerminal() {
			logger.Info("Submission resolved", "submission_id", sub.ID,
				"status", sub.Status, "attempts", attempt)
			if sub.Status == models.StatusAccepted {
				c.events.Publish(pubsub.Event{
					Type: pubsub.EventSubmissionAccepted,
					Payload: map[string]interface{}{
						"submissionId": sub.ID,
						"contestId":    sub.ContestID,
						"problemId":    sub.ProblemID,
					},
				})
			}
			return sub, nil
		}
	}

	sub.Status = models.StatusTimedOutClient
	c.announce(sub, onStatus)
	logger.Warn("Submission observation timed out", "submission_id", sub.ID,
		"attempts", c.maxAttempts)
	return sub, ErrClientTimeout
}

// advance applies a polled status, enforcing forward-only movement.
// A poll reporting an earlier state than already observed is stale and
// ignored. Returns whether the observable status changed.
func (c *Controller) advance(sub *models.Submission, status models.SubmissionStatus) bool {
	if status == sub.Status {
		return false
	}
	if statusRank(status) < statusRank(sub.Status) {
		return false
	}
	sub.Status = status
	return true
}

func statusRank(s models.SubmissionStatus) int {
	switch {
	case s.IsTerminal():
		return 2
	case s == models.StatusRunning:
		return 1
	default:
		return 0
	}
}

// announce reports a status transition to the caller and to event
// subscribers (SSE bridge, other windows).
func (c *Controller) announce(sub *models.Submission, onStatus func(models.SubmissionStatus)) {
	if onStatus != nil {
		onStatus(sub.Status)
	}
	c.events.Publish(pubsub.Event{
		Type: pubsub.EventSubmissionStatus,
		Payload: map[string]interface{}{
			"submissionId": sub.ID,
			"contestId":    sub.ContestID,
			"problemId":    sub.ProblemID,
			"status":       string(sub.Status),
		},
	})
}
