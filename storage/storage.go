package storage

import (
	"context"
	"time"
)

// Status enumerates the server lifecycle states surfaced through stats.
type Status string

const (
	StatusOffline  Status = "offline"
	StatusStarting Status = "starting"
	StatusOnline   Status = "online"
	StatusStopping Status = "stopping"
)

// Player is a persisted player record. It outlives sessions: a player stays
// in storage after disconnecting, which is what lets offline accounts be
// promoted to operator.
type Player struct {
	ID        int
	Username  string
	LastLogin time.Time
	LastIP    string
	IsOp      bool
	PlayTime  int
	Banned    bool
}

// PlayerUpdate is a partial player record; nil fields are left untouched.
type PlayerUpdate struct {
	LastLogin *time.Time
	LastIP    *string
	IsOp      *bool
	PlayTime  *int
	Banned    *bool
}

// MemoryUsage is the heap usage pair reported in server stats.
type MemoryUsage struct {
	Used  uint64
	Total uint64
}

// PlayerCounts is the online/capacity pair reported in server stats.
type PlayerCounts struct {
	Online int
	Max    int
}

// ServerStats is the externally visible performance snapshot. The server
// core only ever issues partial merges against it.
type ServerStats struct {
	Status   Status
	Uptime   int64
	Version  string
	CPUUsage float64
	Memory   MemoryUsage
	TPS      float64
	Players  PlayerCounts
}

// ServerStatsUpdate is a shallow partial merge into ServerStats. Merges are
// last-write-wins per field; concurrent partials never corrupt unrelated
// fields.
type ServerStatsUpdate struct {
	Status   *Status
	Uptime   *int64
	Version  *string
	CPUUsage *float64
	Memory   *MemoryUsage
	TPS      *float64
	Players  *PlayerCounts
}

// WorldStats describes the generated world. The core reads it once at start
// to seed spawn coordinates.
type WorldStats struct {
	Seed         string
	Size         int64
	SpawnX       int
	SpawnY       int
	SpawnZ       int
	LoadedChunks int
}

// WorldStatsUpdate is a shallow partial merge into WorldStats.
type WorldStatsUpdate struct {
	Seed         *string
	Size         *int64
	SpawnX       *int
	SpawnY       *int
	SpawnZ       *int
	LoadedChunks *int
}

// ConfigEntry is one key/value row of server configuration.
type ConfigEntry struct {
	ID    int
	Key   string
	Value string
}

// LogEntry is one persisted console log line.
type LogEntry struct {
	ID        int
	Timestamp time.Time
	Level     string
	Message   string
}

// Store is the storage collaborator consumed by the session server. Every
// call is treated as asynchronous I/O: the core assumes other handlers may
// interleave between issuing a call and its return, and relies on the
// store's own per-call atomicity rather than holding any lock across calls.
type Store interface {
	GetPlayer(ctx context.Context, id int) (*Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*Player, error)
	GetPlayers(ctx context.Context) ([]Player, error)
	CreatePlayer(ctx context.Context, username, lastIP string, isOp bool) (*Player, error)
	UpdatePlayer(ctx context.Context, id int, update PlayerUpdate) (*Player, error)

	GetConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) (*ConfigEntry, error)
	GetAllConfig(ctx context.Context) ([]ConfigEntry, error)

	GetLogs(ctx context.Context, limit int) ([]LogEntry, error)
	CreateLog(ctx context.Context, level, message string) (*LogEntry, error)

	GetWorldStats(ctx context.Context) (*WorldStats, error)
	UpdateWorldStats(ctx context.Context, update WorldStatsUpdate) (*WorldStats, error)

	GetServerStats(ctx context.Context) (ServerStats, error)
	UpdateServerStats(ctx context.Context, update ServerStatsUpdate) (ServerStats, error)
}
