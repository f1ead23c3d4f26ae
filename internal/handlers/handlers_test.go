package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/api"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/dal"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/drafts"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/leaderboard"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/session"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/submit"
)

// fakeBackend plays the judge backend: one contest, scripted judging.
type fakeBackend struct {
	mu       sync.Mutex
	statuses []string
	polls    int
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/contests/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 1,
			"title": "Weekly Sprint",
			"problems": [
				{"id": 1, "title": "Two Sum", "points": 100},
				{"id": 2, "title": "Palindrome Check", "points": 100}
			],
			"isActive": true
		}`))
	})
	mux.HandleFunc("/api/contests/1/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"contestId": 1,
			"contestTitle": "Weekly Sprint",
			"lastUpdated": "2026-08-29T11:15:00",
			"entries": [{"rank": 1, "username": "alice", "problemsSolved": 1, "totalPoints": 100, "totalTime": 900}]
		}`))
	})
	mux.HandleFunc("/api/submissions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"submissionId": 55, "status": "PENDING"}`))
	})
	mux.HandleFunc("/api/submissions/55", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		i := b.polls
		b.polls++
		if i >= len(b.statuses) {
			i = len(b.statuses) - 1
		}
		status := b.statuses[i]
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"submissionId": 55, "status": "` + status + `"}`))
	})
	mux.HandleFunc("/api/contests/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such contest", http.StatusNotFound)
	})
	return mux
}

type testEnv struct {
	h       *APIHandlers
	backend *httptest.Server
	events  *pubsub.PubSub
}

func newTestEnv(t *testing.T, backend *fakeBackend) *testEnv {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store := dal.NewMemoryDAL()
	events := pubsub.New()
	client := api.NewClient(srv.URL+"/api", 5*time.Second)
	sessions := session.NewManager(store, client, events)
	draftStore := drafts.NewStore(store)
	submitter := submit.NewController(client, events, time.Millisecond, 30)
	board := leaderboard.NewSynchronizer(client, events, time.Hour)

	return &testEnv{
		h:       NewAPIHandlers(sessions, draftStore, submitter, board, client, events),
		backend: srv,
		events:  events,
	}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func join(t *testing.T, env *testEnv) {
	t.Helper()
	w := doJSON(t, env.h.JoinContest, http.MethodPost, "/api/session/join",
		map[string]any{"contestId": 1, "username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("join failed: %d %s", w.Code, w.Body.String())
	}
}

func TestJoinContest(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	w := doJSON(t, env.h.JoinContest, http.MethodPost, "/api/session/join",
		map[string]any{"contestId": 1, "username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Session models.ContestSession `json:"session"`
		Contest models.Contest        `json:"contest"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session.Username != "alice" || resp.Session.SelectedProblemID != 1 {
		t.Errorf("unexpected session: %+v", resp.Session)
	}
	if resp.Contest.Title != "Weekly Sprint" {
		t.Errorf("unexpected contest: %+v", resp.Contest)
	}
}

func TestJoinUnknownContest(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	w := doJSON(t, env.h.JoinContest, http.MethodPost, "/api/session/join",
		map[string]any{"contestId": 42, "username": "alice"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	// The failed join must not create a session.
	w = doJSON(t, env.h.GetSession, http.MethodGet, "/api/session", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for session, got %d", w.Code)
	}
}

func TestJoinEmptyUsername(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	w := doJSON(t, env.h.JoinContest, http.MethodPost, "/api/session/join",
		map[string]any{"contestId": 1, "username": "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetDraftServesTemplate(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/drafts?problemId=1&language=java", nil)
	w := httptest.NewRecorder()
	env.h.GetDraft(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var draft models.Draft
	if err := json.Unmarshal(w.Body.Bytes(), &draft); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if !strings.Contains(draft.Text, "twoSum") {
		t.Errorf("expected the starter template, got %q", draft.Text)
	}
}

func TestSaveAndGetDraft(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	w := doJSON(t, env.h.SaveDraft, http.MethodPost, "/api/drafts/save",
		map[string]any{"problemId": 1, "language": "python", "text": "print(42)"})
	if w.Code != http.StatusOK {
		t.Fatalf("save failed: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/drafts?problemId=1&language=python", nil)
	rec := httptest.NewRecorder()
	env.h.GetDraft(rec, req)

	var draft models.Draft
	json.Unmarshal(rec.Body.Bytes(), &draft)
	if draft.Text != "print(42)" {
		t.Errorf("expected saved draft, got %q", draft.Text)
	}
}

func TestSaveDraftUnsupportedLanguage(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	w := doJSON(t, env.h.SaveDraft, http.MethodPost, "/api/drafts/save",
		map[string]any{"problemId": 1, "language": "cobol", "text": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSelectProblemReturnsDraft(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	w := doJSON(t, env.h.SelectProblem, http.MethodPost, "/api/session/problem",
		map[string]any{"problemId": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Session  models.ContestSession `json:"session"`
		Language string                `json:"language"`
		Text     string                `json:"text"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Session.SelectedProblemID != 2 {
		t.Errorf("selection not updated: %+v", resp.Session)
	}
	if resp.Language != models.DefaultLanguage {
		t.Errorf("expected default language, got %q", resp.Language)
	}
	if !strings.Contains(resp.Text, "isPalindrome") {
		t.Errorf("expected problem 2 template, got %q", resp.Text)
	}
}

func TestSubmitAccepted(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{statuses: []string{"PENDING", "RUNNING", "ACCEPTED"}})
	join(t, env)

	ch := env.events.Subscribe()
	defer env.events.Unsubscribe(ch)

	w := doJSON(t, env.h.Submit, http.MethodPost, "/api/submissions",
		map[string]any{"problemId": 1, "language": "java", "code": "class Main {}"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sub models.Submission
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if sub.ID != 55 || sub.Status != models.StatusAccepted {
		t.Errorf("unexpected submission: %+v", sub)
	}

	accepted := false
	timeout := time.After(time.Second)
	for !accepted {
		select {
		case ev := <-ch:
			if ev.Type == pubsub.EventSubmissionAccepted {
				accepted = true
			}
		case <-timeout:
			t.Fatal("no accepted event observed")
		}
	}
}

func TestSubmitEmptyCode(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	w := doJSON(t, env.h.Submit, http.MethodPost, "/api/submissions",
		map[string]any{"problemId": 1, "language": "java", "code": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmitWithoutSession(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	w := doJSON(t, env.h.Submit, http.MethodPost, "/api/submissions",
		map[string]any{"problemId": 1, "language": "java", "code": "class Main {}"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSubmitClientTimeoutReportedAsResult(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{statuses: []string{"PENDING"}})
	join(t, env)

	w := doJSON(t, env.h.Submit, http.MethodPost, "/api/submissions",
		map[string]any{"problemId": 1, "language": "java", "code": "class Main {}"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sub models.Submission
	json.Unmarshal(w.Body.Bytes(), &sub)
	if sub.Status != models.StatusTimedOutClient {
		t.Errorf("expected TIMED_OUT_CLIENT, got %s", sub.Status)
	}
}

func TestLeaderboardLifecycle(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	// Before any refresh the snapshot is empty, not an error.
	w := doJSON(t, env.h.GetLeaderboard, http.MethodGet, "/api/leaderboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snap models.LeaderboardSnapshot
	json.Unmarshal(w.Body.Bytes(), &snap)
	if len(snap.Entries) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap.Entries)
	}

	w = doJSON(t, env.h.RefreshLeaderboard, http.MethodPost, "/api/leaderboard/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &snap)
	if len(snap.Entries) != 1 || snap.Entries[0].Username != "alice" {
		t.Errorf("unexpected snapshot: %+v", snap.Entries)
	}

	w = doJSON(t, env.h.GetLeaderboardStats, http.MethodGet, "/api/leaderboard/stats", nil)
	var stats leaderboard.Stats
	json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Participants != 1 || stats.MaxSolved != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestLeaveContest(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	join(t, env)

	w := doJSON(t, env.h.LeaveContest, http.MethodPost, "/api/session/leave", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leave failed: %d", w.Code)
	}

	w = doJSON(t, env.h.GetSession, http.MethodGet, "/api/session", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("session should be gone, got %d", w.Code)
	}

	// Drafts survive leaving.
	join(t, env)
	doJSON(t, env.h.SaveDraft, http.MethodPost, "/api/drafts/save",
		map[string]any{"problemId": 1, "language": "java", "code": "", "text": "kept"})
	doJSON(t, env.h.LeaveContest, http.MethodPost, "/api/session/leave", nil)
	join(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/drafts?problemId=1&language=java", nil)
	rec := httptest.NewRecorder()
	env.h.GetDraft(rec, req)
	var draft models.Draft
	json.Unmarshal(rec.Body.Bytes(), &draft)
	if draft.Text != "kept" {
		t.Errorf("draft lost across leave/rejoin: %q", draft.Text)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	for name, handler := range map[string]http.HandlerFunc{
		"join":    env.h.JoinContest,
		"leave":   env.h.LeaveContest,
		"problem": env.h.SelectProblem,
		"submit":  env.h.Submit,
		"refresh": env.h.RefreshLeaderboard,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405 for GET, got %d", name, w.Code)
		}
	}
}

func TestEventsSSE(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	srv := httptest.NewServer(http.HandlerFunc(env.h.EventsSSE))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("SSE request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read SSE stream: %v", err)
	}
	if !strings.Contains(string(buf[:n]), "connected") {
		t.Errorf("expected connection message, got %q", string(buf[:n]))
	}
}
