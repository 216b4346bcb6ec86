package config

import (
	"os"
	"strconv"
	"time"
)

// Settings are read once from the environment. main and the tests load a
// .env file (godotenv) before this package is consulted.
var (
	DebugMode = os.Getenv("DEBUG_MODE") == "true"

	// Number of best price levels retained per book side for consumers.
	BookDepth = envInt("BOOK_DEPTH", 5)

	// Liveness ping period while connected.
	PingInterval = envDuration("STREAM_PING_INTERVAL", 30*time.Second)

	// No inbound traffic (frames or pongs) for this long forces a reconnect.
	IdleTimeout = envDuration("STREAM_IDLE_TIMEOUT", 90*time.Second)

	// Exponential backoff for (re)connecting.
	BackoffInitialInterval = envDuration("STREAM_BACKOFF_INITIAL", 500*time.Millisecond)
	BackoffMultiplier      = envFloat("STREAM_BACKOFF_MULTIPLIER", 1.5)

	// Upper bound on the total time spent retrying the initial connect.
	// Zero retries forever. Reconnects after a successful session always
	// retry forever.
	ConnMaxElapsedTime = envDuration("STREAM_CONN_TIMEOUT", 0)
)

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
