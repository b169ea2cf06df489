package chat

import (
	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// Transport delivers outbound events. Publish reaches the connections
// subscribed to room at the moment of the call; later subscribers miss it.
// Implementations must not block and must not call back into the Coordinator.
type Transport interface {
	Subscribe(connID, room string)
	Unsubscribe(connID, room string)
	Publish(room, event string, payload any, exclude ...string)
	PublishAll(event string, payload any)
	Send(connID, event string, payload any)
	SendError(connID, reason string)
}

// Presence derives the member and typing views of a room and pushes them to
// the room's connections.
type Presence struct {
	registry  *Registry
	store     *RoomStore
	typing    *TypingTracker
	transport Transport
}

// Members returns the bound users in the room's member set, in join order.
func (p *Presence) Members(room string) []domain.User {
	ids := p.store.MemberIDs(room)
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := p.registry.Lookup(id); ok {
			users = append(users, user)
		}
	}
	return users
}

// Typing returns the usernames typing in room, in the order they started.
func (p *Presence) Typing(room string) []string {
	ids := p.typing.Snapshot(room)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if user, ok := p.registry.Lookup(id); ok {
			names = append(names, user.Username)
		}
	}
	return names
}

// BroadcastMembers sends user_list to the room.
func (p *Presence) BroadcastMembers(room string, exclude ...string) {
	p.transport.Publish(room, EventUserList, p.Members(room), exclude...)
}

// BroadcastTyping sends typing_users to the room.
func (p *Presence) BroadcastTyping(room string) {
	p.transport.Publish(room, EventTypingUsers, p.Typing(room))
}
