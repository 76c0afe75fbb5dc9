package server

import (
	"time"

	"golang.org/x/time/rate"
)

// ServerVersion is the Minecraft protocol generation this server speaks.
const ServerVersion = "1.5.2"

const (
	maxUsernameLength = 16
	worldDimension    = 0
	worldHeightBlocks = 256
	defaultMaxPlayers = 20
	defaultSpawnY     = 64

	// statsRefreshTicks is how many simulation ticks elapse between TPS and
	// resource-usage pushes to storage; at the nominal tick period this is
	// once per second.
	statsRefreshTicks = 20
	maxTPS            = 20.0
)

// Config tunes the schedulers and per-session limits. Gameplay settings
// (game mode, difficulty, max players) live in the storage collaborator's
// config table instead, so the dashboard can change them at runtime.
type Config struct {
	KeepAlivePeriod time.Duration
	TickPeriod      time.Duration
	RestartDelay    time.Duration
	ChatRate        rate.Limit
	ChatBurst       int
}

// DefaultConfig returns the production timings: 10s keep-alive rounds and a
// 50ms tick targeting 20 TPS.
func DefaultConfig() Config {
	return Config{
		KeepAlivePeriod: 10 * time.Second,
		TickPeriod:      50 * time.Millisecond,
		RestartDelay:    time.Second,
		ChatRate:        rate.Every(250 * time.Millisecond),
		ChatBurst:       10,
	}
}
