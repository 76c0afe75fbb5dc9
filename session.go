package server

import (
	"time"

	"golang.org/x/time/rate"
)

// Conn is the transport half of a session: a message-framed connection the
// gateway can write packets to. The websocket adapter satisfies it in
// production; tests substitute an in-memory fake.
type Conn interface {
	// ID identifies the underlying transport connection.
	ID() string
	// WriteMessage sends one binary frame.
	WriteMessage(data []byte) error
	// Close tears the connection down.
	Close() error
}

// Position is a session's place in the world. It is seeded from world spawn
// at login and not simulated further.
type Position struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

// Session is the server-side state for one logged-in identity. A session is
// created only by a successful login and destroyed exactly once when its
// connection goes away or the server disconnects it.
type Session struct {
	EntityID int32
	Username string
	Position Position

	conn        Conn
	chatLimiter *rate.Limiter

	// Keep-alive bookkeeping. RTT is not yet computed from replies.
	lastPing      time.Time
	pendingPingID int32
}

func newSession(entityID int32, username string, conn Conn, pos Position, cfg Config) *Session {
	return &Session{
		EntityID:    entityID,
		Username:    username,
		Position:    pos,
		conn:        conn,
		chatLimiter: rate.NewLimiter(cfg.ChatRate, cfg.ChatBurst),
		lastPing:    time.Now(),
	}
}
