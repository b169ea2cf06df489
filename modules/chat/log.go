package chat

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/cases"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

const (
	// DefaultHistorySize is the number of messages kept per room.
	DefaultHistorySize = 200
	// DefaultPageSize is used when a page request has no usable size.
	DefaultPageSize = 50
)

// MessageLog is the FIFO-bounded message sequence of one room. Appending
// past capacity evicts the oldest message. It is not safe for concurrent
// use; the Coordinator serializes access.
type MessageLog struct {
	capacity int
	messages []*domain.Message
	byID     map[string]*domain.Message
}

// NewMessageLog creates an empty log holding at most capacity messages.
func NewMessageLog(capacity int) *MessageLog {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &MessageLog{
		capacity: capacity,
		messages: make([]*domain.Message, 0, capacity),
		byID:     make(map[string]*domain.Message),
	}
}

// Append stores msg at the tail, assigning an id when it has none.
// It returns the stored message and the id of the evicted head, if any.
func (l *MessageLog) Append(msg domain.Message) (domain.Message, string) {
	stored := msg.Clone()
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}

	l.messages = append(l.messages, &stored)
	l.byID[stored.ID] = &stored

	var evicted string
	if len(l.messages) > l.capacity {
		head := l.messages[0]
		copy(l.messages, l.messages[1:])
		l.messages[len(l.messages)-1] = nil
		l.messages = l.messages[:len(l.messages)-1]
		if l.byID[head.ID] == head {
			delete(l.byID, head.ID)
		}
		evicted = head.ID
	}
	return stored.Clone(), evicted
}

// Len returns the number of messages in the log.
func (l *MessageLog) Len() int {
	return len(l.messages)
}

// Find returns a copy of the message with the given id.
func (l *MessageLog) Find(id string) (domain.Message, bool) {
	msg, ok := l.byID[id]
	if !ok {
		return domain.Message{}, false
	}
	return msg.Clone(), true
}

// ApplyReaction increments reactions[symbol] on the message and returns the
// new count. Unknown ids are a no-op.
func (l *MessageLog) ApplyReaction(id, symbol string) (int, bool) {
	msg, ok := l.byID[id]
	if !ok {
		return 0, false
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string]int)
	}
	msg.Reactions[symbol]++
	return msg.Reactions[symbol], true
}

// MarkRead flags every listed message as read and returns how many matched.
func (l *MessageLog) MarkRead(ids ...string) int {
	marked := 0
	for _, id := range ids {
		if msg, ok := l.byID[id]; ok {
			msg.Read = true
			marked++
		}
	}
	return marked
}

// Snapshot returns copies of all messages in append order.
func (l *MessageLog) Snapshot() []domain.Message {
	out := make([]domain.Message, len(l.messages))
	for i, msg := range l.messages {
		out[i] = msg.Clone()
	}
	return out
}

// Page returns the 1-based page of the log. Non-positive inputs fall back to
// page 1 and DefaultPageSize; out-of-range pages are empty.
func (l *MessageLog) Page(page, size int) domain.Page {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(l.messages)
	start := total
	if page-1 <= total/size {
		start = min((page-1)*size, total)
	}
	end := start + min(size, total-start)

	items := make([]domain.Message, 0, end-start)
	for _, msg := range l.messages[start:end] {
		items = append(items, msg.Clone())
	}

	return domain.Page{
		Messages:   items,
		Total:      total,
		Page:       page,
		TotalPages: pageCount(total, size),
	}
}

func pageCount(total, size int) int {
	n := total / size
	if total%size != 0 {
		n++
	}
	return n
}

// Search returns the messages whose text contains query, ignoring case.
func (l *MessageLog) Search(query string) []domain.Message {
	fold := cases.Fold()
	needle := fold.String(query)

	var out []domain.Message
	for _, msg := range l.messages {
		if strings.Contains(fold.String(msg.Text), needle) {
			out = append(out, msg.Clone())
		}
	}
	return out
}
