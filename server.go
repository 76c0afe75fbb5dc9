// Package server implements an Eaglercraft-compatible game-session server:
// a binary, length-prefixed Minecraft 1.5.2 protocol subset carried over a
// message-based transport, with a live session registry, chat and command
// relay, and periodic liveness and performance reporting into an external
// storage collaborator.
package server

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"ember-mc/server/internal/metrics"
	"ember-mc/server/logging"
	"ember-mc/server/protocol"
	"ember-mc/server/storage"
)

// Server owns the connection gateway, the session registry, both periodic
// schedulers, and the start/stop/restart state machine. Collaborators are
// injected at construction so tests can substitute them.
type Server struct {
	cfg     Config
	store   storage.Store
	console *logging.Console
	metrics metrics.Source

	mu            sync.Mutex
	status        storage.Status
	reg           *registry
	nextEntityID  int32
	startTime     time.Time
	lastTick      time.Time
	tickCount     uint64
	tps           float64
	stopKeepAlive chan struct{}
	stopTick      chan struct{}
}

// New constructs a stopped server. Call Start to bring it online.
func New(cfg Config, store storage.Store, console *logging.Console, src metrics.Source) *Server {
	if src == nil {
		src = metrics.Runtime{}
	}
	return &Server{
		cfg:          cfg,
		store:        store,
		console:      console,
		metrics:      src,
		status:       storage.StatusOffline,
		reg:          newRegistry(),
		nextEntityID: 1,
		tps:          maxTPS,
	}
}

// Start brings the server online: ensures world statistics exist, resets the
// published stats, and launches the keep-alive and tick schedulers. Starting
// an already-running server logs a warning and does nothing.
func (s *Server) Start() {
	s.mu.Lock()
	if s.stopTick != nil || s.stopKeepAlive != nil || s.status == storage.StatusStarting {
		s.mu.Unlock()
		s.console.Warnf("Server is already running")
		return
	}
	s.status = storage.StatusStarting
	now := time.Now()
	s.startTime = now
	s.lastTick = now
	s.tickCount = 0
	s.mu.Unlock()

	ctx := context.Background()
	starting := storage.StatusStarting
	s.updateStats(ctx, storage.ServerStatsUpdate{Status: &starting})

	s.ensureWorldStats(ctx)

	maxPlayers := s.maxPlayers(ctx)
	used, total := s.metrics.Memory()
	online := storage.StatusOnline
	version := ServerVersion
	uptime := int64(0)
	cpu := 0.0
	s.mu.Lock()
	tps := s.tps
	onlineCount := s.reg.count()
	s.mu.Unlock()
	s.updateStats(ctx, storage.ServerStatsUpdate{
		Status:   &online,
		Uptime:   &uptime,
		Version:  &version,
		CPUUsage: &cpu,
		Memory:   &storage.MemoryUsage{Used: used, Total: total},
		TPS:      &tps,
		Players:  &storage.PlayerCounts{Online: onlineCount, Max: maxPlayers},
	})

	s.mu.Lock()
	s.stopKeepAlive = make(chan struct{})
	s.stopTick = make(chan struct{})
	keepAliveStop, tickStop := s.stopKeepAlive, s.stopTick
	s.status = storage.StatusOnline
	s.mu.Unlock()

	go s.runKeepAlive(keepAliveStop)
	go s.runTicks(tickStop)

	s.console.Infof("Eaglercraft server started")
	s.console.Infof("Server running Minecraft %s", ServerVersion)
}

// Stop disconnects every registered session with an explicit reason, cancels
// both schedulers, and publishes the offline status. Broadcasting a shutdown
// notice beforehand is the caller's responsibility. Safe to invoke while a
// login is mid-flight: a session inserted after the schedulers are gone
// simply stays in the registry until the next start cycle.
func (s *Server) Stop() {
	s.mu.Lock()
	s.status = storage.StatusStopping
	keepAliveStop, tickStop := s.stopKeepAlive, s.stopTick
	s.stopKeepAlive, s.stopTick = nil, nil
	sessions := s.reg.list()
	s.reg.clear()
	s.mu.Unlock()

	ctx := context.Background()
	stopping := storage.StatusStopping
	s.updateStats(ctx, storage.ServerStatsUpdate{Status: &stopping})

	s.console.Infof("Stopping server...")

	if frame, err := protocol.Encode(protocol.Disconnect{Reason: "Server shutting down"}); err == nil {
		for _, sess := range sessions {
			if err := sess.conn.WriteMessage(frame); err != nil {
				s.console.Errorf("Failed to send disconnect to %s: %v", sess.Username, err)
			}
			sess.conn.Close()
		}
	}

	if keepAliveStop != nil {
		close(keepAliveStop)
	}
	if tickStop != nil {
		close(tickStop)
	}

	offline := storage.StatusOffline
	s.updateStats(ctx, storage.ServerStatsUpdate{
		Status:  &offline,
		Players: &storage.PlayerCounts{Online: 0, Max: s.maxPlayers(ctx)},
	})

	s.mu.Lock()
	s.status = storage.StatusOffline
	s.mu.Unlock()

	s.console.Infof("Server stopped")
}

// Restart stops the server, waits a short fixed delay, resets the registry
// and the entity ID counter, and runs the full start sequence again.
func (s *Server) Restart() {
	s.Stop()
	time.Sleep(s.cfg.RestartDelay)

	s.mu.Lock()
	s.reg.clear()
	s.nextEntityID = 1
	s.mu.Unlock()

	s.Start()
}

// Status reports the lifecycle state.
func (s *Server) Status() storage.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnlinePlayers lists the usernames of live sessions in join order.
func (s *Server) OnlinePlayers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.usernames()
}

// PlayerCount reports the number of live sessions.
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.count()
}

// TPS reports the most recent ticks-per-second measurement.
func (s *Server) TPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tps
}

// ensureWorldStats generates world statistics on first start, mirroring the
// original panel: a random decimal seed and the default spawn column.
func (s *Server) ensureWorldStats(ctx context.Context) {
	ws, err := s.store.GetWorldStats(ctx)
	if err != nil {
		s.console.Errorf("Failed to read world stats: %v", err)
		return
	}
	if ws != nil {
		return
	}

	s.console.Infof("Generating new world...")
	seed := fmt.Sprintf("%d", rand.Int63n(1e16))
	size := int64(0)
	spawnX, spawnY, spawnZ := 0, defaultSpawnY, 0
	chunks := 0
	if _, err := s.store.UpdateWorldStats(ctx, storage.WorldStatsUpdate{
		Seed:         &seed,
		Size:         &size,
		SpawnX:       &spawnX,
		SpawnY:       &spawnY,
		SpawnZ:       &spawnZ,
		LoadedChunks: &chunks,
	}); err != nil {
		s.console.Errorf("Failed to write world stats: %v", err)
		return
	}
	s.console.Infof("World generated with seed: %s", seed)
}

// updateStats pushes a partial server-stats merge, absorbing storage faults.
func (s *Server) updateStats(ctx context.Context, update storage.ServerStatsUpdate) {
	if _, err := s.store.UpdateServerStats(ctx, update); err != nil {
		s.console.Errorf("Failed to update server stats: %v", err)
	}
}

// refreshPlayerCount merges the current online count into server stats.
func (s *Server) refreshPlayerCount(ctx context.Context) {
	s.mu.Lock()
	online := s.reg.count()
	s.mu.Unlock()
	s.updateStats(ctx, storage.ServerStatsUpdate{
		Players: &storage.PlayerCounts{Online: online, Max: s.maxPlayers(ctx)},
	})
}

// maxPlayers reads the configured player capacity, defaulting when the key
// is absent or unreadable.
func (s *Server) maxPlayers(ctx context.Context) int {
	value, ok, err := s.store.GetConfig(ctx, "maxPlayers")
	if err != nil {
		s.console.Errorf("Failed to read maxPlayers config: %v", err)
		return defaultMaxPlayers
	}
	if !ok {
		return defaultMaxPlayers
	}
	max, err := strconv.Atoi(value)
	if err != nil || max <= 0 {
		return defaultMaxPlayers
	}
	return max
}

// broadcast sends a chat line to every live session.
func (s *Server) broadcast(message string) {
	frame, err := protocol.Encode(protocol.Chat{Message: message})
	if err != nil {
		s.console.Errorf("Failed to encode chat broadcast: %v", err)
		return
	}

	s.mu.Lock()
	sessions := s.reg.list()
	s.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.conn.WriteMessage(frame); err != nil {
			s.console.Errorf("Failed to send chat to %s: %v", sess.Username, err)
			sess.conn.Close()
		}
	}
}

// sendMessage sends a chat line to a single session.
func (s *Server) sendMessage(sess *Session, message string) {
	frame, err := protocol.Encode(protocol.Chat{Message: message})
	if err != nil {
		s.console.Errorf("Failed to encode chat message: %v", err)
		return
	}
	if err := sess.conn.WriteMessage(frame); err != nil {
		s.console.Errorf("Failed to send chat to %s: %v", sess.Username, err)
		sess.conn.Close()
	}
}

// disconnectConn sends an explicit disconnect packet and closes the
// connection. Used for login rejections and forced disconnects before or
// outside any session.
func (s *Server) disconnectConn(conn Conn, reason string) {
	if frame, err := protocol.Encode(protocol.Disconnect{Reason: reason}); err == nil {
		if err := conn.WriteMessage(frame); err != nil {
			s.console.Errorf("Failed to send disconnect: %v", err)
		}
	}
	conn.Close()
}
