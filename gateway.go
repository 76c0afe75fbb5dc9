package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"ember-mc/server/protocol"
	"ember-mc/server/storage"
)

// HandleConnect registers interest in a new transport connection. No session
// exists yet; one is created only by a successful login on this connection.
func (s *Server) HandleConnect(conn Conn) {
	s.console.Infof("New connection: %s", conn.ID())
}

// HandleFrame decodes one inbound frame and dispatches it. Malformed frames
// are dropped and logged; the connection stays open.
func (s *Server) HandleFrame(conn Conn, frame []byte) {
	pkt, err := protocol.Decode(frame)
	if err != nil {
		var derr *protocol.DecodeError
		if errors.As(err, &derr) {
			s.console.Warnf("Dropping malformed frame from %s: %v", conn.ID(), derr)
			return
		}
		s.console.Errorf("Failed to decode frame from %s: %v", conn.ID(), err)
		return
	}

	switch p := pkt.(type) {
	case protocol.Handshake:
		s.handleHandshake(conn, p)
	case protocol.Login:
		s.handleLogin(conn, p)
	case protocol.Chat:
		s.handleChat(conn, p)
	case protocol.KeepAlive:
		// Reply bookkeeping for round-trip time is deferred.
	default:
		s.console.Warnf("Unhandled packet %T from %s", pkt, conn.ID())
	}
}

// HandleError logs a transport fault and treats it as a disconnect.
func (s *Server) HandleError(conn Conn, err error) {
	s.console.Errorf("Connection error on %s: %v", conn.ID(), err)
	s.HandleClose(conn)
}

// HandleClose destroys the session bound to a closed connection, if any.
func (s *Server) HandleClose(conn Conn) {
	s.mu.Lock()
	sess := s.reg.byConn(conn)
	if sess != nil {
		s.reg.remove(sess.Username)
	}
	s.mu.Unlock()
	if sess == nil {
		return
	}

	s.refreshPlayerCount(context.Background())
	s.broadcast("§e" + sess.Username + " left the game")
	s.console.Infof("%s disconnected", sess.Username)
}

// handleHandshake acknowledges the pre-login hello. Eaglercraft clients need
// only a placeholder hash in reply; nothing is registered yet.
func (s *Server) handleHandshake(conn Conn, p protocol.Handshake) {
	frame, err := protocol.Encode(protocol.Handshake{Value: "-"})
	if err != nil {
		s.console.Errorf("Failed to encode handshake ack: %v", err)
		return
	}
	if err := conn.WriteMessage(frame); err != nil {
		s.console.Errorf("Failed to send handshake ack: %v", err)
		return
	}
	s.console.Infof("Handshake received from %s", p.Value)
}

func (s *Server) handleLogin(conn Conn, p protocol.Login) {
	username := p.Username
	if username == "" || len(username) > maxUsernameLength {
		s.disconnectConn(conn, "Invalid username")
		return
	}

	s.mu.Lock()
	taken := s.reg.byUsername(username) != nil || s.reg.byConn(conn) != nil
	s.mu.Unlock()
	if taken {
		s.disconnectConn(conn, "Already connected")
		return
	}

	ctx := context.Background()

	spawn := Position{Y: defaultSpawnY}
	seed := int64(0)
	if ws, err := s.store.GetWorldStats(ctx); err != nil {
		s.console.Errorf("Failed to read world stats: %v", err)
	} else if ws != nil {
		spawn = Position{X: float64(ws.SpawnX), Y: float64(ws.SpawnY), Z: float64(ws.SpawnZ)}
		seed = parseSeed(ws.Seed)
	}

	gameMode := int32(0)
	if mode, ok, err := s.store.GetConfig(ctx, "gameMode"); err != nil {
		s.console.Errorf("Failed to read gameMode config: %v", err)
	} else if ok && mode == "creative" {
		gameMode = 1
	}

	difficulty := int8(2)
	if diff, ok, err := s.store.GetConfig(ctx, "difficulty"); err != nil {
		s.console.Errorf("Failed to read difficulty config: %v", err)
	} else if ok {
		switch diff {
		case "peaceful":
			difficulty = 0
		case "easy":
			difficulty = 1
		case "hard":
			difficulty = 3
		}
	}

	maxPlayers := s.maxPlayers(ctx)

	// The storage calls above are suspension points, so the duplicate check
	// is repeated atomically with the insert.
	s.mu.Lock()
	if s.reg.byUsername(username) != nil || s.reg.byConn(conn) != nil {
		s.mu.Unlock()
		s.disconnectConn(conn, "Already connected")
		return
	}
	entityID := s.nextEntityID
	s.nextEntityID++
	sess := newSession(entityID, username, conn, spawn, s.cfg)
	s.reg.add(sess)
	s.mu.Unlock()

	s.refreshPlayerCount(ctx)
	s.upsertPlayerRecord(ctx, username)

	height := worldHeightBlocks
	frame, err := protocol.Encode(protocol.LoginResponse{
		EntityID:    entityID,
		Seed:        seed,
		GameMode:    gameMode,
		Dimension:   worldDimension,
		Difficulty:  difficulty,
		WorldHeight: int8(uint8(height)),
		MaxPlayers:  int8(uint8(maxPlayers)),
	})
	if err != nil {
		s.console.Errorf("Failed to encode login response: %v", err)
		return
	}
	if err := conn.WriteMessage(frame); err != nil {
		s.console.Errorf("Failed to send login response to %s: %v", username, err)
		s.HandleClose(conn)
		return
	}

	s.broadcast("§e" + username + " joined the game")
	s.console.Infof("%s logged in", username)
}

// upsertPlayerRecord creates or refreshes the persisted player row. Browser
// clients do not expose a usable remote address, so a fixed marker is stored.
func (s *Server) upsertPlayerRecord(ctx context.Context, username string) {
	existing, err := s.store.GetPlayerByUsername(ctx, username)
	if err != nil {
		s.console.Errorf("Failed to look up player %s: %v", username, err)
		return
	}
	lastIP := "eaglercraft"
	if existing != nil {
		now := time.Now()
		if _, err := s.store.UpdatePlayer(ctx, existing.ID, storage.PlayerUpdate{
			LastLogin: &now,
			LastIP:    &lastIP,
		}); err != nil {
			s.console.Errorf("Failed to update player %s: %v", username, err)
		}
		return
	}
	if _, err := s.store.CreatePlayer(ctx, username, lastIP, false); err != nil {
		s.console.Errorf("Failed to create player %s: %v", username, err)
	}
}

func (s *Server) handleChat(conn Conn, p protocol.Chat) {
	s.mu.Lock()
	sess := s.reg.byConn(conn)
	s.mu.Unlock()
	if sess == nil {
		return
	}

	message := p.Message
	if message == "" {
		return
	}

	if !sess.chatLimiter.Allow() {
		s.console.Warnf("Chat rate limit exceeded for %s", sess.Username)
		return
	}

	if strings.HasPrefix(message, "/") {
		s.runCommand(sess, message[1:])
		return
	}

	formatted := "<" + sess.Username + "> " + message
	s.broadcast(formatted)
	s.console.Infof("%s", formatted)
}

// parseSeed converts the stored decimal seed string into the wire's 64-bit
// slot. Out-of-range values saturate at the representable boundary and
// malformed values fall back to zero.
func parseSeed(seed string) int64 {
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return 0
	}
	return v
}
