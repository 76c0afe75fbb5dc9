package server

import "sort"

// registry is the in-memory map of live sessions keyed by username. It never
// persists anything and is reset on every start/restart. All access is
// guarded by the owning Server's mutex; only the gateway and lifecycle code
// mutate it.
type registry struct {
	sessions map[string]*Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*Session)}
}

func (r *registry) add(sess *Session) {
	r.sessions[sess.Username] = sess
}

func (r *registry) remove(username string) *Session {
	sess, ok := r.sessions[username]
	if !ok {
		return nil
	}
	delete(r.sessions, username)
	return sess
}

func (r *registry) byUsername(username string) *Session {
	return r.sessions[username]
}

// byConn finds the session bound to a transport connection. A linear scan is
// fine at the expected scale of tens of concurrent players.
func (r *registry) byConn(conn Conn) *Session {
	for _, sess := range r.sessions {
		if sess.conn.ID() == conn.ID() {
			return sess
		}
	}
	return nil
}

// list returns the live sessions in join order.
func (r *registry) list() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

func (r *registry) usernames() []string {
	sessions := r.list()
	names := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		names = append(names, sess.Username)
	}
	return names
}

func (r *registry) count() int {
	return len(r.sessions)
}

func (r *registry) clear() {
	r.sessions = make(map[string]*Session)
}
