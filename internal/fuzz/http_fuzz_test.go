package fuzz

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/api"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/dal"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/drafts"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/handlers"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/leaderboard"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/session"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/submit"
)

type staticContests struct{}

func (staticContests) GetContest(ctx context.Context, contestID int64) (*models.Contest, error) {
	if contestID != 1 {
		return nil, api.ErrContestNotFound
	}
	return &models.Contest{
		ID:       1,
		Title:    "Fuzz Contest",
		Problems: []models.Problem{{ID: 1}, {ID: 2}},
	}, nil
}

// newFuzzHandlers builds a handler set on in-memory storage with an active
// session, so draft and selection endpoints have a context to operate in.
func newFuzzHandlers() *handlers.APIHandlers {
	store := dal.NewMemoryDAL()
	store.SaveSession(&models.ContestSession{
		Username:          "fuzzer",
		ContestID:         1,
		SelectedProblemID: 1,
	})

	events := pubsub.New()
	backend := api.NewClient("http://127.0.0.1:1", time.Second)
	sessions := session.NewManager(store, staticContests{}, events)
	draftStore := drafts.NewStore(store)
	submitter := submit.NewController(backend, events, time.Millisecond, 1)
	board := leaderboard.NewSynchronizer(backend, events, time.Hour)

	return handlers.NewAPIHandlers(sessions, draftStore, submitter, board, backend, events)
}

func fuzzPost(t *testing.T, handler http.HandlerFunc, path, body string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
}

// FuzzHTTPJoinContest fuzzes the join endpoint
func FuzzHTTPJoinContest(f *testing.F) {
	// Seed corpus with valid examples
	f.Add(`{"contestId":1,"username":"alice"}`)
	f.Add(`{"contestId":999,"username":"bob"}`)
	f.Add(`{"contestId":1,"username":""}`)

	f.Fuzz(func(t *testing.T, data string) {
		h := newFuzzHandlers()
		// Should not panic - that's the main goal of fuzzing
		fuzzPost(t, h.JoinContest, "/api/session/join", data)
	})
}

// FuzzHTTPSaveDraft fuzzes the draft save endpoint
func FuzzHTTPSaveDraft(f *testing.F) {
	// Seed corpus
	f.Add(`{"problemId":1,"language":"java","text":"class Main {}"}`)
	f.Add(`{"problemId":0,"language":"","text":""}`)
	f.Add(`{"problemId":-1,"language":"cobol","text":"x"}`)

	f.Fuzz(func(t *testing.T, data string) {
		h := newFuzzHandlers()
		fuzzPost(t, h.SaveDraft, "/api/drafts/save", data)
	})
}

// FuzzHTTPSelectLanguage fuzzes the language switch endpoint
func FuzzHTTPSelectLanguage(f *testing.F) {
	// Seed corpus
	f.Add(`{"problemId":1,"language":"python"}`)
	f.Add(`{"problemId":2,"language":"javascript"}`)
	f.Add(`{"problemId":1,"language":"brainfuck"}`)

	f.Fuzz(func(t *testing.T, data string) {
		h := newFuzzHandlers()
		fuzzPost(t, h.SelectLanguage, "/api/drafts/language", data)
	})
}

// FuzzHTTPSelectProblem fuzzes the problem switch endpoint
func FuzzHTTPSelectProblem(f *testing.F) {
	// Seed corpus
	f.Add(`{"problemId":2}`)
	f.Add(`{"problemId":0}`)
	f.Add(`{"problemId":-42}`)

	f.Fuzz(func(t *testing.T, data string) {
		h := newFuzzHandlers()
		fuzzPost(t, h.SelectProblem, "/api/session/problem", data)
	})
}

// FuzzHTTPGetDraft fuzzes the draft query parameters
func FuzzHTTPGetDraft(f *testing.F) {
	// Seed corpus
	f.Add("1", "java")
	f.Add("999999999999999999999", "python")
	f.Add("", "")

	f.Fuzz(func(t *testing.T, problemID, language string) {
		h := newFuzzHandlers()
		req := httptest.NewRequest(http.MethodGet, "/api/drafts", nil)
		q := req.URL.Query()
		q.Set("problemId", problemID)
		q.Set("language", language)
		req.URL.RawQuery = q.Encode()
		w := httptest.NewRecorder()
		h.GetDraft(w, req)
	})
}

// FuzzJSONParsing fuzzes general JSON parsing
func FuzzJSONParsing(f *testing.F) {
	// Seed various JSON structures
	f.Add(`{"key":"value"}`)
	f.Add(`[1,2,3]`)
	f.Add(`null`)
	f.Add(`"string"`)
	f.Add(`123`)
	f.Add(`true`)

	f.Fuzz(func(t *testing.T, data string) {
		var result interface{}
		// Should not panic on any input
		json.Unmarshal([]byte(data), &result)
	})
}
