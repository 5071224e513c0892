// Package runtime owns the process-local connection state and the
// background workers that keep it healthy.
package runtime

import (
	"sync"
	"time"

	"chat-relay/domain/chat"
	"chat-relay/errors"
)

type connection struct {
	identity       *chat.Identity
	joinedAt       time.Time
	lastActivityAt time.Time
}

// Registry maps connection ids to their state for this process only.
// Callers reference connections by id, never by alias, so all mutation
// happens under the registry's lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*connection)}
}

// Register adds an unauthenticated entry. No-op if already present.
func (r *Registry) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[connID]; ok {
		return
	}
	now := time.Now()
	r.conns[connID] = &connection{joinedAt: now, lastActivityAt: now}
}

// Bind attaches a verified identity to a connection. Rebinding an
// already authenticated connection is rejected; a client that wants a
// different identity reconnects.
func (r *Registry) Bind(connID string, identity chat.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[connID]
	if !ok {
		return errors.ErrConnectionUnknown
	}
	if conn.identity != nil {
		return errors.ErrAlreadyAuthenticated
	}
	conn.identity = &identity
	conn.lastActivityAt = time.Now()
	return nil
}

func (r *Registry) Identity(connID string) (chat.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	if !ok || conn.identity == nil {
		return chat.Identity{}, false
	}
	return *conn.identity, true
}

// Unregister removes the entry and returns the previously bound
// identity, so the caller can announce the departure exactly once.
func (r *Registry) Unregister(connID string) (chat.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[connID]
	if !ok {
		return chat.Identity{}, false
	}
	delete(r.conns, connID)
	if conn.identity == nil {
		return chat.Identity{}, false
	}
	return *conn.identity, true
}

// Count returns the number of authenticated connections in this process.
// This is deliberately not the global online count; that comes from the
// presence tracker fed by the bus.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, conn := range r.conns {
		if conn.identity != nil {
			count++
		}
	}
	return count
}

// Touch records activity on a connection. Called for every inbound
// frame, keepalive pings included, so the sweeper only reaps peers that
// have gone fully silent.
func (r *Registry) Touch(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.conns[connID]; ok {
		conn.lastActivityAt = time.Now()
	}
}

// Stale lists connections with no activity since the cutoff.
func (r *Registry) Stale(cutoff time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []string
	for id, conn := range r.conns {
		if conn.lastActivityAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}
