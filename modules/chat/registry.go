package chat

import (
	"time"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// Registry maps live connections to the user bound on them. A registered
// connection has no user until Bind. Room existence is not checked here.
// It is not safe for concurrent use; the Coordinator serializes access.
type Registry struct {
	conns map[string]*domain.User
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*domain.User)}
}

// Register records a live connection with no bound user.
func (r *Registry) Register(connID string) {
	if _, ok := r.conns[connID]; !ok {
		r.conns[connID] = nil
	}
}

// Registered reports whether the connection is live.
func (r *Registry) Registered(connID string) bool {
	_, ok := r.conns[connID]
	return ok
}

// Bind associates a user with the connection, replacing any previous binding.
func (r *Registry) Bind(connID, username, room string, joinedAt time.Time) domain.User {
	user := &domain.User{
		ID:       connID,
		Username: username,
		Room:     room,
		JoinedAt: joinedAt,
	}
	r.conns[connID] = user
	return *user
}

// Lookup returns the user bound to the connection.
func (r *Registry) Lookup(connID string) (domain.User, bool) {
	user := r.conns[connID]
	if user == nil {
		return domain.User{}, false
	}
	return *user, true
}

// UpdateRoom changes the current room of a bound connection.
func (r *Registry) UpdateRoom(connID, room string) bool {
	user := r.conns[connID]
	if user == nil {
		return false
	}
	user.Room = room
	return true
}

// Unregister removes the connection and returns the user that was bound to it.
func (r *Registry) Unregister(connID string) (domain.User, bool) {
	user, ok := r.conns[connID]
	if !ok {
		return domain.User{}, false
	}
	delete(r.conns, connID)
	if user == nil {
		return domain.User{}, false
	}
	return *user, true
}

// Len returns the number of live connections, bound or not.
func (r *Registry) Len() int {
	return len(r.conns)
}
