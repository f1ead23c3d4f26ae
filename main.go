package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/api"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/config"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/dal"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/drafts"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/handlers"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/leaderboard"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/pubsub"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/session"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/submit"
)

func main() {
	// Initialize logger first
	logger.Init()

	logger.Info("Starting contest client bridge")

	cfg := config.Load()

	// Initialize database driver
	var dataStore dal.ClientDAL
	var err error
	switch cfg.DBDriver {
	case "memory":
		dataStore = dal.NewMemoryDAL()
		logger.Info("Using in-memory data store")
	case "sqlite":
		dataStore, err = dal.NewSQLiteDAL(cfg.SQLiteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL environment variable is required for postgres driver")
			log.Fatal("DATABASE_URL environment variable is required for postgres driver")
		}
		dataStore, err = dal.NewPostgresDAL(cfg.DatabaseURL, cfg.ProfileKey)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
	default:
		logger.Error("Unknown DB_DRIVER", "driver", cfg.DBDriver)
		log.Fatalf("Unknown DB_DRIVER: %s (valid: memory, sqlite, postgres)", cfg.DBDriver)
	}
	defer dataStore.Close()

	// Initialize pub/sub (NATS JetStream or Embedded NATS for local development)
	// Use embedded NATS in development mode, real NATS in production
	var ps pubsub.Upstream
	if cfg.Environment == "" || cfg.Environment == "development" {
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:       0, // Random available port
			Subject:    cfg.NATSSubject,
			StreamName: "CONTEST_EVENTS",
			StoreDir:   "", // In-memory storage
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		ps = embeddedNats
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	} else {
		logger.Info("Using real NATS JetStream for production")
		realNats, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		ps = realNats
		logger.Info("Connected to NATS", "url", cfg.NATSURL)
	}

	// Publishes go to NATS; events coming back fan out to local subscribers.
	events := pubsub.NewWithUpstream(ps)

	backend := api.NewClient(cfg.BackendBaseURL, cfg.RequestTimeout)
	logger.Info("Backend configured", "base_url", cfg.BackendBaseURL)

	sessions := session.NewManager(dataStore, backend, events)
	draftStore := drafts.NewStore(dataStore)
	submitter := submit.NewController(backend, events, cfg.PollInterval, cfg.PollMaxAttempts)
	board := leaderboard.NewSynchronizer(backend, events, cfg.LeaderboardInterval)

	go superviseLeaderboard(board, sessions, events)
	go refreshContestLoop(sessions, cfg.ContestRefreshInterval)

	// Set up HTTP routes
	mux := http.NewServeMux()

	apiHandlers := handlers.NewAPIHandlers(sessions, draftStore, submitter, board, backend, events)

	// Session API
	mux.HandleFunc("/api/session", apiHandlers.GetSession)
	mux.HandleFunc("/api/session/join", apiHandlers.JoinContest)
	mux.HandleFunc("/api/session/leave", apiHandlers.LeaveContest)
	mux.HandleFunc("/api/session/problem", apiHandlers.SelectProblem)

	// Contest API
	mux.HandleFunc("/api/contest", apiHandlers.GetContest)

	// Drafts API
	mux.HandleFunc("/api/drafts", apiHandlers.GetDraft)
	mux.HandleFunc("/api/drafts/save", apiHandlers.SaveDraft)
	mux.HandleFunc("/api/drafts/language", apiHandlers.SelectLanguage)

	// Submissions API
	mux.HandleFunc("/api/submissions", apiHandlers.Submit)

	// Leaderboard API
	mux.HandleFunc("/api/leaderboard", apiHandlers.GetLeaderboard)
	mux.HandleFunc("/api/leaderboard/refresh", apiHandlers.RefreshLeaderboard)
	mux.HandleFunc("/api/leaderboard/stats", apiHandlers.GetLeaderboardStats)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", apiHandlers.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", apiHandlers.Health)
	mux.HandleFunc("/healthz", livenessHandler)            // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler(dataStore)) // Kubernetes readiness probe

	addr := "0.0.0.0:" + cfg.BridgePort
	logger.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

// superviseLeaderboard runs one synchronizer per joined contest: it starts
// when a session opens (or already exists at boot) and stops on leave.
func superviseLeaderboard(board *leaderboard.Synchronizer, sessions *session.Manager, events *pubsub.PubSub) {
	ch := events.Subscribe()
	defer events.Unsubscribe(ch)

	var cancel context.CancelFunc
	start := func(contestID int64) {
		if cancel != nil {
			cancel()
		}
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		logger.Info("Starting leaderboard sync", "contest_id", contestID)
		go board.Run(ctx, contestID)
	}

	if sess, err := sessions.Load(); err == nil {
		start(sess.ContestID)
	}

	for ev := range ch {
		switch ev.Type {
		case pubsub.EventSessionJoined:
			if id, ok := payloadInt64(ev.Payload, "contestId"); ok {
				start(id)
			}
		case pubsub.EventSessionLeft:
			if cancel != nil {
				logger.Info("Stopping leaderboard sync")
				cancel()
				cancel = nil
			}
		}
	}
}

// refreshContestLoop keeps the contest view fresh while a session is active,
// picking up problem set and participant count changes.
func refreshContestLoop(sessions *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		_, _, err := sessions.Refresh(ctx)
		cancel()
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			logger.Warn("Periodic contest refresh failed", "error", err)
		}
	}
}

// payloadInt64 reads a numeric payload field. Events that travel through the
// broker come back with JSON numbers decoded as float64.
func payloadInt64(payload map[string]interface{}, key string) (int64, bool) {
	switch v := payload[key].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler builds the Kubernetes readiness probe handler.
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(store dal.ClientDAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.GetSession(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "database_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ready",
			"timestamp": time.Now().Unix(),
		})
	}
}
