// Package runtime wires presence tracking and event propagation together.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"lanchat/contract"
	"lanchat/errors"
)

type presenceEntry struct {
	username string
	sink     contract.EventSink
}

// Registry is the single source of truth for the connection -> identity
// mapping. Entries live only as long as the underlying connection; a
// process restart starts from an empty registry.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]presenceEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]presenceEntry)}
}

// Admit registers the connection and returns the presence snapshot taken
// inside the same critical section, so the caller never broadcasts a state
// older than its own admission.
func (r *Registry) Admit(connID uuid.UUID, username string, sink contract.EventSink) ([]string, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.ErrUnauthenticated
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = presenceEntry{username: username, sink: sink}
	return r.snapshotLocked(), nil
}

// Remove unregisters the connection. Removing an unknown id is a no-op so
// duplicate or late disconnect notifications are safe.
func (r *Registry) Remove(connID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
	return r.snapshotLocked()
}

// Snapshot projects the registry to display names. The projection is per
// connection: two connections sharing a name yield the name twice.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Sinks returns the delivery targets registered at the moment of the call.
// Broadcasting happens outside the lock: sinks only enqueue into a bounded
// buffer, so a slow peer never stalls admissions.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(lo.Values(r.conns), func(e presenceEntry, _ int) contract.EventSink {
		return e.sink
	})
}

// Size reports the number of live connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) snapshotLocked() []string {
	names := lo.Map(lo.Values(r.conns), func(e presenceEntry, _ int) string {
		return e.username
	})
	// Map order is random; sort for a stable presence list.
	sort.Strings(names)
	return names
}
