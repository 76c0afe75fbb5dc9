package server

import (
	"context"
	"math/rand"
	"time"

	"ember-mc/server/protocol"
	"ember-mc/server/storage"
)

// runKeepAlive pings every registered session on a fixed period until the
// stop channel closes. One random identifier is shared per round and stamped
// into each session for future round-trip accounting.
func (s *Server) runKeepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.KeepAlivePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sendKeepAlive()
		}
	}
}

func (s *Server) sendKeepAlive() {
	id := rand.Int31()
	frame, err := protocol.Encode(protocol.KeepAlive{ID: id})
	if err != nil {
		s.console.Errorf("Failed to encode keep-alive: %v", err)
		return
	}

	now := time.Now()
	s.mu.Lock()
	sessions := s.reg.list()
	for _, sess := range sessions {
		sess.pendingPingID = id
		sess.lastPing = now
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.conn.WriteMessage(frame); err != nil {
			s.console.Errorf("Failed to send keep-alive to %s: %v", sess.Username, err)
			sess.conn.Close()
		}
	}
}

// runTicks drives the simulation clock until the stop channel closes.
func (s *Server) runTicks(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(time.Now())
		}
	}
}

// tick advances the counter, remeasures TPS on every twentieth tick, and
// refreshes the published uptime. The measured rate is clamped to the
// nominal 20 so scheduler catch-up bursts never report an impossible value.
func (s *Server) tick(now time.Time) {
	s.mu.Lock()
	delta := now.Sub(s.lastTick)
	s.lastTick = now
	s.tickCount++
	measure := s.tickCount%statsRefreshTicks == 0
	if measure {
		ms := float64(delta.Milliseconds())
		if ms <= 0 {
			ms = float64(s.cfg.TickPeriod.Milliseconds())
		}
		s.tps = 1000 / ms
		if s.tps > maxTPS {
			s.tps = maxTPS
		}
	}
	tps := s.tps
	uptime := int64(now.Sub(s.startTime) / time.Second)
	s.mu.Unlock()

	ctx := context.Background()
	if measure {
		used, total := s.metrics.Memory()
		cpu := s.metrics.CPUPercent()
		s.updateStats(ctx, storage.ServerStatsUpdate{
			CPUUsage: &cpu,
			Memory:   &storage.MemoryUsage{Used: used, Total: total},
			TPS:      &tps,
		})
	}
	s.updateStats(ctx, storage.ServerStatsUpdate{Uptime: &uptime})
}
