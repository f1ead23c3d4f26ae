package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
)

// ErrContestNotFound is returned when the backend does not recognize a
// contest id. Join flows treat it as user-correctable input.
var ErrContestNotFound = errors.New("contest not found")

// Client talks to the judge backend over HTTP. It is the only component that
// knows the wire format; everything above it works with models types.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. baseURL includes the /api prefix,
// e.g. http://localhost:8080/api.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SubmitRequest is the dispatch payload for POST /submissions.
type SubmitRequest struct {
	Username  string `json:"username"`
	ContestID int64  `json:"contestId"`
	ProblemID int64  `json:"problemId"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

// submissionResponse is the backend's submission DTO. Only the fields the
// client consumes are listed.
type submissionResponse struct {
	SubmissionID int64                   `json:"submissionId"`
	ProblemID    int64                   `json:"problemId"`
	Language     string                  `json:"language"`
	Status       models.SubmissionStatus `json:"status"`
}

type contestResponse struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	StartTime         string           `json:"startTime"`
	EndTime           string           `json:"endTime"`
	Problems          []models.Problem `json:"problems"`
	ParticipantsCount int              `json:"participantsCount"`
	IsActive          bool             `json:"isActive"`
}

type leaderboardResponse struct {
	ContestID    int64                     `json:"contestId"`
	ContestTitle string                    `json:"contestTitle"`
	LastUpdated  string                    `json:"lastUpdated"`
	Entries      []models.LeaderboardEntry `json:"entries"`
}

// GetContest fetches a contest with its problem set. Any non-2xx response
// maps to ErrContestNotFound: the join flow only needs to know the id was
// not accepted.
func (c *Client) GetContest(ctx context.Context, contestID int64) (*models.Contest, error) {
	var resp contestResponse
	url := fmt.Sprintf("%s/contests/%d", c.baseURL, contestID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: contest %d (%s)", ErrContestNotFound, contestID, se.status)
		}
		return nil, err
	}

	return &models.Contest{
		ID:                resp.ID,
		Title:             resp.Title,
		Description:       resp.Description,
		StartTime:         parseBackendTime(resp.StartTime),
		EndTime:           parseBackendTime(resp.EndTime),
		Problems:          resp.Problems,
		ParticipantsCount: resp.ParticipantsCount,
		IsActive:          resp.IsActive,
	}, nil
}

// GetLeaderboard fetches the current ranked standings.
func (c *Client) GetLeaderboard(ctx context.Context, contestID int64) (*models.LeaderboardSnapshot, error) {
	var resp leaderboardResponse
	url := fmt.Sprintf("%s/contests/%d/leaderboard", c.baseURL, contestID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	return &models.LeaderboardSnapshot{
		ContestID:    resp.ContestID,
		ContestTitle: resp.ContestTitle,
		LastUpdated:  parseBackendTime(resp.LastUpdated),
		Entries:      resp.Entries,
	}, nil
}

// SubmitCode dispatches a solution for judging and returns the backend-assigned
// submission id.
func (c *Client) SubmitCode(ctx context.Context, req SubmitRequest) (int64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("submit code: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return 0, fmt.Errorf("submit code: %w", &statusError{status: httpResp.Status})
	}

	var resp submissionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return 0, fmt.Errorf("decode submission response: %w", err)
	}
	return resp.SubmissionID, nil
}

// GetSubmissionStatus queries the judging state of one submission.
func (c *Client) GetSubmissionStatus(ctx context.Context, submissionID int64) (models.SubmissionStatus, error) {
	var resp submissionResponse
	url := fmt.Sprintf("%s/submissions/%d", c.baseURL, submissionID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return "", fmt.Errorf("fetch submission %d: %w", submissionID, err)
	}
	return resp.Status, nil
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &statusError{status: resp.Status}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &statusError{status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError marks a non-2xx backend reply, as opposed to a transport error.
type statusError struct {
	status string
}

func (e *statusError) Error() string {
	return "backend returned " + e.status
}

// parseBackendTime handles the backend's timestamp format. Spring serializes
// LocalDateTime without a zone offset, so RFC3339 parsing is tried first and
// the offset-less form second. A zero time is returned for anything else.
func parseBackendTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
