package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownSession is returned when a connection presents a session id
// the table has never issued (or has since swept).
var ErrUnknownSession = errors.New("unknown session")

type session struct {
	createdAt  time.Time
	lastActive time.Time
	members    map[string]bool
}

// SessionTable is the hub's invite-session registry: an explicit map with
// a defined lifecycle. An entry is created when an invite is issued,
// gains members on join, loses them on disconnect, and is discarded by
// Sweep once it has sat empty longer than the TTL.
//
// The mutex is needed because invites are issued from REST handler
// goroutines while joins and prunes run on the hub loop.
type SessionTable struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewSessionTable() *SessionTable {
	return &SessionTable{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create registers a fresh session and returns its id.
func (t *SessionTable) Create() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	now := t.now()
	t.sessions[id] = &session{
		createdAt:  now,
		lastActive: now,
		members:    make(map[string]bool),
	}
	return id
}

// Join adds a connection to a session. Joining an unknown session is a
// hard error surfaced to the caller, not a silent log line.
func (t *SessionTable) Join(sessionID, connID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	s.members[connID] = true
	s.lastActive = t.now()
	return nil
}

// Prune removes the connection from every session it belongs to. Sessions
// themselves survive until Sweep — a reconnecting participant can rejoin.
func (t *SessionTable) Prune(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.sessions {
		if s.members[connID] {
			delete(s.members, connID)
			s.lastActive = t.now()
		}
	}
}

// Sweep discards sessions that have been empty for longer than ttl and
// returns how many were removed.
func (t *SessionTable) Sweep(ttl time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-ttl)
	removed := 0
	for id, s := range t.sessions {
		if len(s.members) == 0 && s.lastActive.Before(cutoff) {
			delete(t.sessions, id)
			removed++
		}
	}
	return removed
}

// Members returns the connection ids currently in a session.
func (t *SessionTable) Members(sessionID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	return out
}

// Len reports how many sessions are registered.
func (t *SessionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
