package server

import (
	"context"
	"strconv"
	"strings"

	"ember-mc/server/storage"
)

// runCommand interprets a chat-originated command for a logged-in session.
// The leading slash has already been stripped. Operator permission is read
// fresh from storage on every invocation so promotions take effect without a
// re-login.
func (s *Server) runCommand(sess *Session, raw string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	ctx := context.Background()
	isOp := s.isOperator(ctx, sess.Username)

	switch command {
	case "help":
		s.sendMessage(sess, "§2Available commands:")
		s.sendMessage(sess, "§7/help - Show this help")
		s.sendMessage(sess, "§7/list - List online players")
		if isOp {
			s.sendMessage(sess, "§7/op <player> - Give player operator status")
		}

	case "list":
		s.mu.Lock()
		names := s.reg.usernames()
		s.mu.Unlock()
		s.sendMessage(sess, "§2Players online ("+strconv.Itoa(len(names))+"): §f"+strings.Join(names, ", "))

	case "op":
		if !isOp {
			s.sendMessage(sess, "§cYou do not have permission to use this command")
			return
		}
		if len(args) < 1 {
			s.sendMessage(sess, "§cUsage: /op <player>")
			return
		}
		s.opPlayer(ctx, sess, args[0])

	default:
		s.sendMessage(sess, "§cUnknown command: "+command)
	}
}

// opPlayer grants operator status to a persisted player record. The target
// is resolved in storage rather than the live registry, so offline accounts
// can be promoted.
func (s *Server) opPlayer(ctx context.Context, issuer *Session, target string) {
	player, err := s.store.GetPlayerByUsername(ctx, target)
	if err != nil {
		s.console.Errorf("Failed to look up player %s: %v", target, err)
		s.sendMessage(issuer, "§cPlayer "+target+" not found")
		return
	}
	if player == nil {
		s.sendMessage(issuer, "§cPlayer "+target+" not found")
		return
	}

	op := true
	if _, err := s.store.UpdatePlayer(ctx, player.ID, storage.PlayerUpdate{IsOp: &op}); err != nil {
		s.console.Errorf("Failed to update player %s: %v", target, err)
		return
	}
	s.sendMessage(issuer, "§2"+target+" is now an operator")
	s.console.Infof("%s gave operator status to %s", issuer.Username, target)
}

// isOperator reads the persisted operator flag. Unknown players and storage
// faults both read as non-operator.
func (s *Server) isOperator(ctx context.Context, username string) bool {
	player, err := s.store.GetPlayerByUsername(ctx, username)
	if err != nil {
		s.console.Errorf("Failed to look up player %s: %v", username, err)
		return false
	}
	return player != nil && player.IsOp
}

// ExecuteCommand is the privileged console entry point. It bypasses player
// permission checks entirely and is intended for trusted administrative
// callers only.
func (s *Server) ExecuteCommand(raw string) {
	s.console.Infof("Executing command: %s", raw)

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "stop":
		s.broadcast("§cServer is shutting down")
		s.Stop()

	case "restart":
		s.broadcast("§eServer is restarting")
		s.Restart()

	case "say":
		if len(args) > 0 {
			s.broadcast("[Server] " + strings.Join(args, " "))
		}

	default:
		s.console.Warnf("Unknown command: %s", command)
	}
}
