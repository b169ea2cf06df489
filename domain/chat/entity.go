package chat

import (
	"maps"
	"time"
)

// User is the identity bound to one live connection.
type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Room     string    `json:"room"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Message is a chat message stored in a room log.
type Message struct {
	ID        string         `json:"id"`
	Text      string         `json:"message"`
	Sender    string         `json:"sender"`
	SenderID  string         `json:"senderId"`
	Room      string         `json:"room"`
	Timestamp time.Time      `json:"timestamp"`
	Reactions map[string]int `json:"reactions"`
	Read      bool           `json:"read"`
}

// Clone returns a copy of the message that shares no mutable state with m.
func (m Message) Clone() Message {
	out := m
	out.Reactions = make(map[string]int, len(m.Reactions))
	maps.Copy(out.Reactions, m.Reactions)
	return out
}

// PrivateMessage is a direct message between two connections. It is never logged.
type PrivateMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"message"`
	Sender     string    `json:"sender"`
	SenderID   string    `json:"senderId"`
	To         string    `json:"to"`
	ToUsername string    `json:"toUsername"`
	Timestamp  time.Time `json:"timestamp"`
	IsPrivate  bool      `json:"isPrivate"`
}

// Page is one page of a room log.
type Page struct {
	Messages   []Message `json:"messages"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}
