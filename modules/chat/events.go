package chat

import (
	"time"
	"unicode/utf8"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/realtime-chat-engine/domain/chat"
	"github.com/example/realtime-chat-engine/events"
)

// busNotifier publishes domain changes on the mono event bus. Publication is
// best-effort; failures are logged and never reach the caller.
type busNotifier struct {
	bus    mono.EventBus
	logger types.Logger
	now    func() time.Time
}

func newBusNotifier(bus mono.EventBus, logger types.Logger) *busNotifier {
	return &busNotifier{bus: bus, logger: logger, now: time.Now}
}

func (n *busNotifier) MessageSent(msg domain.Message) {
	err := events.MessageSentV1.Publish(n.bus, events.MessageSentEvent{
		MessageID: msg.ID,
		Room:      msg.Room,
		UserID:    msg.SenderID,
		Username:  msg.Sender,
		Length:    utf8.RuneCountInString(msg.Text),
		Timestamp: msg.Timestamp,
	}, nil)
	n.warn(err, "MessageSent", "room", msg.Room)
}

func (n *busNotifier) UserJoined(user domain.User, room string) {
	err := events.UserJoinedV1.Publish(n.bus, events.UserJoinedEvent{
		Room:      room,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: n.now(),
	}, nil)
	n.warn(err, "UserJoined", "room", room)
}

func (n *busNotifier) UserLeft(user domain.User, room string) {
	err := events.UserLeftV1.Publish(n.bus, events.UserLeftEvent{
		Room:      room,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: n.now(),
	}, nil)
	n.warn(err, "UserLeft", "room", room)
}

func (n *busNotifier) RoomCreated(room, createdBy string) {
	err := events.RoomCreatedV1.Publish(n.bus, events.RoomCreatedEvent{
		Room:      room,
		CreatedBy: createdBy,
		Timestamp: n.now(),
	}, nil)
	n.warn(err, "RoomCreated", "room", room)
}

func (n *busNotifier) ReactionAdded(room, messageID, reaction string, count int) {
	err := events.ReactionAddedV1.Publish(n.bus, events.ReactionAddedEvent{
		Room:      room,
		MessageID: messageID,
		Reaction:  reaction,
		Count:     count,
		Timestamp: n.now(),
	}, nil)
	n.warn(err, "ReactionAdded", "room", room)
}

func (n *busNotifier) warn(err error, event string, kv ...any) {
	if err == nil {
		return
	}
	n.logger.Warn("Failed to publish "+event+" event", append(kv, "error", err)...)
}
