package config

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
)

// Config holds every knob the client core reads from the environment.
type Config struct {
	BridgePort string

	BackendBaseURL string
	RequestTimeout time.Duration

	PollInterval    time.Duration
	PollMaxAttempts int

	LeaderboardInterval    time.Duration
	ContestRefreshInterval time.Duration

	DBDriver    string // memory, sqlite, postgres
	SQLiteFile  string
	DatabaseURL string
	ProfileKey  string

	Environment string
	NATSURL     string
	NATSSubject string
}

// Load reads .env (when present) and the process environment, applying the
// defaults the original client used: 2s poll interval, 30 poll attempts,
// 15s leaderboard and contest refresh cadence.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on environment variables")
	}

	return &Config{
		BridgePort:             getEnv("PORT", "3000"),
		BackendBaseURL:         getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),
		RequestTimeout:         getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		PollInterval:           getEnvAsDuration("POLL_INTERVAL", 2*time.Second),
		PollMaxAttempts:        getEnvAsInt("POLL_MAX_ATTEMPTS", 30),
		LeaderboardInterval:    getEnvAsDuration("LEADERBOARD_INTERVAL", 15*time.Second),
		ContestRefreshInterval: getEnvAsDuration("CONTEST_REFRESH_INTERVAL", 15*time.Second),
		DBDriver:               getEnv("DB_DRIVER", "sqlite"),
		SQLiteFile:             getEnv("SQLITE_FILE", "client.sqlite"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		ProfileKey:             getEnv("PROFILE_KEY", "default"),
		Environment:            getEnv("ENVIRONMENT", ""),
		NATSURL:                getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:            getEnv("NATS_SUBJECT", "contest.events"),
	}
}
