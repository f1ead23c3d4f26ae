package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/api"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/drafts"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/leaderboard"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/session"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/submit"
)

// APIHandlers exposes the contest client over HTTP for local frontends.
type APIHandlers struct {
	sessions *session.Manager
	drafts   *drafts.Store
	submits  *submit.Controller
	board    *leaderboard.Synchronizer
	backend  *api.Client
	pubsub   *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(sessions *session.Manager, d *drafts.Store, submits *submit.Controller, board *leaderboard.Synchronizer, backend *api.Client, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		sessions: sessions,
		drafts:   d,
		submits:  submits,
		board:    board,
		backend:  backend,
		pubsub:   ps,
	}
}

// JoinContest validates the contest with the backend and opens a session.
func (h *APIHandlers) JoinContest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ContestID int64  `json:"contestId"`
		Username  string `json:"username"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode join request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, contest, err := h.sessions.Join(r.Context(), req.ContestID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyUsername):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, api.ErrContestNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			logger.Error("Failed to join contest", "error", err, "contest_id", req.ContestID)
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": sess,
		"contest": contest,
	})
}

// GetSession returns the active session, or 404 when none exists.
func (h *APIHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess)
}

// LeaveContest clears the session. Drafts are kept.
func (h *APIHandlers) LeaveContest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.sessions.Leave(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// GetContest re-fetches the session's contest and reconciles the selection.
func (h *APIHandlers) GetContest(w http.ResponseWriter, r *http.Request) {
	sess, contest, err := h.sessions.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Error("Failed to refresh contest", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": sess,
		"contest": contest,
	})
}

// SelectProblem switches the editing context and returns the draft to show:
// the user's saved work for the new problem, or its starter template.
func (h *APIHandlers) SelectProblem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ProblemID int64 `json:"problemId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.SelectProblem(req.ProblemID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	language, text := h.drafts.ChangeProblem(sess.ContestID, req.ProblemID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session":  sess,
		"language": language,
		"text":     text,
	})
}

// GetDraft returns the draft for one (problem, language), falling back to the
// starter template when nothing is saved.
func (h *APIHandlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	problemID, err := strconv.ParseInt(r.URL.Query().Get("problemId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid problemId parameter", http.StatusBadRequest)
		return
	}
	language := r.URL.Query().Get("language")
	if language == "" {
		language = h.drafts.LastLanguage(sess.ContestID, problemID)
	}
	if !models.IsSupportedLanguage(language) {
		http.Error(w, "Unsupported language", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.Draft{
		ContestID: sess.ContestID,
		ProblemID: problemID,
		Language:  language,
		Text:      h.drafts.GetDraft(sess.ContestID, problemID, language),
	})
}

// SaveDraft persists the editor text for one (problem, language).
func (h *APIHandlers) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.sessions.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req struct {
		ProblemID int64  `json:"problemId"`
		Language  string `json:"language"`
		Text      string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsSupportedLanguage(req.Language) {
		http.Error(w, "Unsupported language", http.StatusBadRequest)
		return
	}

	h.drafts.SetDraft(sess.ContestID, req.ProblemID, req.Language, req.Text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// SelectLanguage switches the editor language for a problem and returns the
// text to show in the new language.
func (h *APIHandlers) SelectLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.sessions.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req struct {
		ProblemID int64  `json:"problemId"`
		Language  string `json:"language"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsSupportedLanguage(req.Language) {
		http.Error(w, "Unsupported language", http.StatusBadRequest)
		return
	}

	text := h.drafts.SelectLanguage(sess.ContestID, req.ProblemID, req.Language)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.Draft{
		ContestID: sess.ContestID,
		ProblemID: req.ProblemID,
		Language:  req.Language,
		Text:      text,
	})
}

// Submit dispatches the draft for judging and blocks until the submission
// resolves or the poll budget runs out. Status transitions stream over SSE
// while this call is in flight.
func (h *APIHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.sessions.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req struct {
		ProblemID int64  `json:"problemId"`
		Language  string `json:"language"`
		Code      string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsSupportedLanguage(req.Language) {
		http.Error(w, "Unsupported language", http.StatusBadRequest)
		return
	}

	h.drafts.SetDraft(sess.ContestID, req.ProblemID, req.Language, req.Code)

	sub, err := h.submits.Submit(r.Context(), sess, req.ProblemID, req.Language, req.Code, nil)
	if err != nil {
		switch {
		case errors.Is(err, submit.ErrEmptyCode), errors.Is(err, submit.ErrNoProblemSelected):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, submit.ErrSubmissionInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, submit.ErrClientTimeout):
			// The submission carries TIMED_OUT_CLIENT; report it as a result.
		default:
			logger.Error("Submission failed", "error", err, "problem_id", req.ProblemID)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

// GetLeaderboard returns the latest standings snapshot.
func (h *APIHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := h.board.Snapshot()
	if snap == nil {
		snap = &models.LeaderboardSnapshot{Entries: []models.LeaderboardEntry{}}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// RefreshLeaderboard forces an immediate standings pull.
func (h *APIHandlers) RefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.sessions.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := h.board.Refresh(r.Context(), sess.ContestID); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.board.Snapshot())
}

// GetLeaderboardStats returns the standings header numbers.
func (h *APIHandlers) GetLeaderboardStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.board.Stats())
}

// Health reports bridge liveness and backend reachability.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"bridge": "ok", "backend": "ok"}
	if err := h.backend.Health(r.Context()); err != nil {
		status["backend"] = "unreachable"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Subscribe to events
	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	// Send initial connection message
	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// Listen for events
	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// Send keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
