package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted after a message is appended to a room log.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	Room      string    `json:"room"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Length    int       `json:"length"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a connection becomes a member of a room.
type UserJoinedEvent struct {
	Room      string    `json:"room"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a connection stops being a member of a room.
type UserLeftEvent struct {
	Room      string    `json:"room"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomCreatedEvent is emitted when a new room is created.
type RoomCreatedEvent struct {
	Room      string    `json:"room"`
	CreatedBy string    `json:"created_by"`
	Timestamp time.Time `json:"timestamp"`
}

// ReactionAddedEvent is emitted when a reaction counter is incremented.
type ReactionAddedEvent struct {
	Room      string    `json:"room"`
	MessageID string    `json:"message_id"`
	Reaction  string    `json:"reaction"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)

	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat",
		"RoomCreated",
		"v1",
	)

	ReactionAddedV1 = helper.EventDefinition[ReactionAddedEvent](
		"chat",
		"ReactionAdded",
		"v1",
	)
)
