package storage

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const logRetention = 1000

// Memory is the in-process Store implementation backing a standalone server.
// State lives for the process lifetime only.
type Memory struct {
	mu          sync.Mutex
	players     map[int]*Player
	configs     map[string]*ConfigEntry
	logs        []LogEntry
	worldStats  *WorldStats
	serverStats ServerStats

	nextPlayerID int
	nextConfigID int
	nextLogID    int
}

// NewMemory builds a Memory store seeded the way a fresh panel install looks:
// default game configuration, a generated world, and an initial log line.
func NewMemory() *Memory {
	m := &Memory{
		players:      make(map[int]*Player),
		configs:      make(map[string]*ConfigEntry),
		nextPlayerID: 1,
		nextConfigID: 1,
		nextLogID:    1,
		worldStats: &WorldStats{
			Seed:         randomSeed(),
			Size:         642700000,
			SpawnX:       128,
			SpawnY:       64,
			SpawnZ:       -245,
			LoadedChunks: 167,
		},
		serverStats: ServerStats{
			Status:   StatusOnline,
			Version:  "1.5.2",
			CPUUsage: 27,
			Memory:   MemoryUsage{Used: 1288490188, Total: 2147483648},
			TPS:      19.7,
			Players:  PlayerCounts{Online: 0, Max: 20},
		},
	}

	defaults := [][2]string{
		{"gameMode", "survival"},
		{"difficulty", "normal"},
		{"maxPlayers", "20"},
		{"pvp", "true"},
		{"spawnProtection", "16"},
	}
	for _, kv := range defaults {
		m.setConfigLocked(kv[0], kv[1])
	}
	m.createLogLocked("INFO", "Server initialized")
	return m
}

// randomSeed mirrors the panel's seed generation: a random integer below
// 10^16 rendered as a decimal string.
func randomSeed() string {
	return fmt.Sprintf("%d", rand.Int63n(1e16))
}

func (m *Memory) GetPlayer(ctx context.Context, id int) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (m *Memory) GetPlayerByUsername(ctx context.Context, username string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Username == username {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetPlayers(ctx context.Context) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, *p)
	}
	return players, nil
}

func (m *Memory) CreatePlayer(ctx context.Context, username, lastIP string, isOp bool) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &Player{
		ID:        m.nextPlayerID,
		Username:  username,
		LastLogin: time.Now(),
		LastIP:    lastIP,
		IsOp:      isOp,
	}
	m.nextPlayerID++
	m.players[p.ID] = p
	clone := *p
	return &clone, nil
}

func (m *Memory) UpdatePlayer(ctx context.Context, id int, update PlayerUpdate) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	if update.LastLogin != nil {
		p.LastLogin = *update.LastLogin
	}
	if update.LastIP != nil {
		p.LastIP = *update.LastIP
	}
	if update.IsOp != nil {
		p.IsOp = *update.IsOp
	}
	if update.PlayTime != nil {
		p.PlayTime = *update.PlayTime
	}
	if update.Banned != nil {
		p.Banned = *update.Banned
	}
	clone := *p
	return &clone, nil
}

func (m *Memory) GetConfig(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.configs[key]; ok {
		return entry.Value, true, nil
	}
	return "", false, nil
}

func (m *Memory) SetConfig(ctx context.Context, key, value string) (*ConfigEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.setConfigLocked(key, value)
	clone := *entry
	return &clone, nil
}

func (m *Memory) setConfigLocked(key, value string) *ConfigEntry {
	if entry, ok := m.configs[key]; ok {
		entry.Value = value
		return entry
	}
	entry := &ConfigEntry{ID: m.nextConfigID, Key: key, Value: value}
	m.nextConfigID++
	m.configs[key] = entry
	return entry
}

func (m *Memory) GetAllConfig(ctx context.Context) ([]ConfigEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]ConfigEntry, 0, len(m.configs))
	for _, entry := range m.configs {
		entries = append(entries, *entry)
	}
	return entries, nil
}

// GetLogs returns up to limit of the most recent log lines, newest first.
func (m *Memory) GetLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.logs) {
		limit = len(m.logs)
	}
	out := make([]LogEntry, 0, limit)
	for i := len(m.logs) - 1; i >= len(m.logs)-limit; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

func (m *Memory) CreateLog(ctx context.Context, level, message string) (*LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.createLogLocked(level, message)
	return &entry, nil
}

func (m *Memory) createLogLocked(level, message string) LogEntry {
	entry := LogEntry{
		ID:        m.nextLogID,
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	}
	m.nextLogID++
	m.logs = append(m.logs, entry)
	if len(m.logs) > logRetention {
		m.logs = m.logs[1:]
	}
	return entry
}

func (m *Memory) GetWorldStats(ctx context.Context) (*WorldStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.worldStats == nil {
		return nil, nil
	}
	clone := *m.worldStats
	return &clone, nil
}

func (m *Memory) UpdateWorldStats(ctx context.Context, update WorldStatsUpdate) (*WorldStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.worldStats == nil {
		m.worldStats = &WorldStats{}
	}
	ws := m.worldStats
	if update.Seed != nil {
		ws.Seed = *update.Seed
	}
	if update.Size != nil {
		ws.Size = *update.Size
	}
	if update.SpawnX != nil {
		ws.SpawnX = *update.SpawnX
	}
	if update.SpawnY != nil {
		ws.SpawnY = *update.SpawnY
	}
	if update.SpawnZ != nil {
		ws.SpawnZ = *update.SpawnZ
	}
	if update.LoadedChunks != nil {
		ws.LoadedChunks = *update.LoadedChunks
	}
	clone := *ws
	return &clone, nil
}

func (m *Memory) GetServerStats(ctx context.Context) (ServerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serverStats, nil
}

func (m *Memory) UpdateServerStats(ctx context.Context, update ServerStatsUpdate) (ServerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &m.serverStats
	if update.Status != nil {
		stats.Status = *update.Status
	}
	if update.Uptime != nil {
		stats.Uptime = *update.Uptime
	}
	if update.Version != nil {
		stats.Version = *update.Version
	}
	if update.CPUUsage != nil {
		stats.CPUUsage = *update.CPUUsage
	}
	if update.Memory != nil {
		stats.Memory = *update.Memory
	}
	if update.TPS != nil {
		stats.TPS = *update.TPS
	}
	if update.Players != nil {
		stats.Players = *update.Players
	}
	return *stats, nil
}

var _ Store = (*Memory)(nil)
