package chat

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// Validation constants
const (
	MaxUsernameLength = 50
	MaxRoomNameLength = 100
	MaxMessageLength  = 5000
)

// Validation errors
var (
	ErrUsernameEmpty   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username exceeds maximum length")
	ErrUsernameInvalid = errors.New("username contains invalid characters")
	ErrRoomNameEmpty   = errors.New("room name cannot be empty")
	ErrRoomNameTooLong = errors.New("room name exceeds maximum length")
	ErrRoomNameInvalid = errors.New("room name contains invalid characters")
	ErrMessageEmpty    = errors.New("message content cannot be empty")
	ErrMessageTooLong  = errors.New("message exceeds maximum length")
	ErrMessageInvalid  = errors.New("message contains invalid characters")
)

// Inbound event names.
const (
	EventUserJoin       = "user_join"
	EventSendMessage    = "send_message"
	EventTyping         = "typing"
	EventPrivateMessage = "private_message"
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventReaction       = "message_reaction"
	EventMarkRead       = "mark_read"
	EventCreateRoom     = "create_room"
)

// Outbound event names. EventPrivateMessage and EventReaction are used in
// both directions.
const (
	EventConnected      = "connected"
	EventRoomJoined     = "room_joined"
	EventRoomLeft       = "room_left"
	EventUserList       = "user_list"
	EventMessageHistory = "message_history"
	EventRoomList       = "room_list"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventTypingUsers    = "typing_users"
	EventRoomCreated    = "room_created"
	EventError          = "error"
)

// Client-facing error reasons.
const (
	ReasonRoomNotFound      = "Room does not exist"
	ReasonRoomAlreadyExists = "Room already exists"
)

// Frame is the JSON envelope of every WebSocket message in both directions.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// JoinPayload is the payload of user_join.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// SendPayload is the payload of send_message.
type SendPayload struct {
	Message string `json:"message"`
	Room    string `json:"room"`
}

// PrivatePayload is the payload of an inbound private_message.
type PrivatePayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// ReactionPayload is the payload of message_reaction in both directions.
type ReactionPayload struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
	Count     int    `json:"count,omitempty"`
}

// PresencePayload is the payload of user_joined and user_left.
type PresencePayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ConnectedPayload is sent once when a connection is accepted.
type ConnectedPayload struct {
	ID string `json:"id"`
}

// Request/response types for the chat query services.

// ListRoomsRequest is the request for list-rooms.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response for list-rooms.
type ListRoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// GetMessagesRequest is the request for get-messages.
type GetMessagesRequest struct {
	Room  string `json:"room"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// GetMessagesResponse is the response for get-messages.
type GetMessagesResponse struct {
	Page  domain.Page `json:"page"`
	Error string      `json:"error,omitempty"`
}

// GetMembersRequest is the request for get-members.
type GetMembersRequest struct {
	Room string `json:"room"`
}

// GetMembersResponse is the response for get-members.
type GetMembersResponse struct {
	Members []domain.User `json:"members"`
	Error   string        `json:"error,omitempty"`
}

// SearchRequest is the request for search-messages.
type SearchRequest struct {
	Query string `json:"query"`
	Room  string `json:"room,omitempty"`
}

// SearchResponse is the response for search-messages.
type SearchResponse struct {
	Messages []domain.Message `json:"messages"`
}

// CreateRoomRequest is the request for create-room.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoomResponse is the response for create-room.
type CreateRoomResponse struct {
	Room  string `json:"room,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error codes carried in service responses.
const (
	codeRoomNotFound      = "room_not_found"
	codeRoomAlreadyExists = "room_already_exists"
	codeInvalidRoomName   = "invalid_room_name"
)

// ValidateUsername validates a username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !utf8.ValidString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidateRoomName validates a room name.
func ValidateRoomName(name string) error {
	if name == "" {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLength {
		return ErrRoomNameTooLong
	}
	if !utf8.ValidString(name) {
		return ErrRoomNameInvalid
	}
	return nil
}

// ValidateMessage validates a message content.
func ValidateMessage(content string) error {
	if content == "" {
		return ErrMessageEmpty
	}
	if len(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(content) {
		return ErrMessageInvalid
	}
	return nil
}
