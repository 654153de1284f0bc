package registry

import (
	"sync"
)

// Registry tracks which connections are members of which rooms. Rooms have
// no independent lifecycle: they exist while at least one member remains.
// Membership is process-local and lost on restart.
type Registry interface {
	// Join adds a connection to a room's member set. Idempotent.
	Join(connID, room string)
	// LeaveRoom removes a connection from one room.
	LeaveRoom(connID, room string)
	// Leave removes a connection from every room it had joined.
	// A no-op for connections that never joined.
	Leave(connID string)
	// MembersOf returns a snapshot of the room's current members,
	// possibly empty.
	MembersOf(room string) []string
}

// MemoryRegistry is the in-process Registry implementation.
type MemoryRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		rooms: make(map[string]map[string]struct{}),
	}
}

func (r *MemoryRegistry) Join(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[connID] = struct{}{}
}

func (r *MemoryRegistry) LeaveRoom(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(connID, room)
}

func (r *MemoryRegistry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.rooms {
		r.removeLocked(connID, room)
	}
}

func (r *MemoryRegistry) MembersOf(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// removeLocked deletes the membership entry and drops the room when it
// becomes empty. Caller must hold the write lock.
func (r *MemoryRegistry) removeLocked(connID, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}
