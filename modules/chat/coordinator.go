package chat

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/oklog/ulid/v2"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// Options configures a Coordinator. Zero values fall back to defaults.
type Options struct {
	Rooms         []string
	HistorySize   int
	PageSize      int
	TypingTimeout time.Duration
	Scheduler     Scheduler
	Now           func() time.Time
}

// Notifier observes domain changes. Calls happen while the Coordinator holds
// its lock, so implementations must not block or call back into it.
type Notifier interface {
	MessageSent(msg domain.Message)
	UserJoined(user domain.User, room string)
	UserLeft(user domain.User, room string)
	RoomCreated(room, createdBy string)
	ReactionAdded(room, messageID, reaction string, count int)
}

type noopNotifier struct{}

func (noopNotifier) MessageSent(domain.Message)                {}
func (noopNotifier) UserJoined(domain.User, string)            {}
func (noopNotifier) UserLeft(domain.User, string)              {}
func (noopNotifier) RoomCreated(string, string)                {}
func (noopNotifier) ReactionAdded(string, string, string, int) {}

// Coordinator owns all session state and applies inbound events to it one at
// a time. Every visible mutation is followed by the matching broadcast.
type Coordinator struct {
	mu sync.Mutex

	registry *Registry
	store    *RoomStore
	typing   *TypingTracker
	presence *Presence

	transport Transport
	notifier  Notifier
	logger    types.Logger
	now       func() time.Time
	pageSize  int
}

// NewCoordinator creates a Coordinator with the configured rooms already present.
func NewCoordinator(opts Options, transport Transport, logger types.Logger) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	c := &Coordinator{
		registry:  NewRegistry(),
		store:     NewRoomStore(opts.HistorySize),
		transport: transport,
		notifier:  noopNotifier{},
		logger:    logger,
		now:       opts.Now,
		pageSize:  opts.PageSize,
	}
	c.typing = NewTypingTracker(opts.TypingTimeout, opts.Scheduler, c.expireTyping)
	c.presence = &Presence{
		registry:  c.registry,
		store:     c.store,
		typing:    c.typing,
		transport: transport,
	}

	for _, name := range opts.Rooms {
		if err := c.store.Create(name); err != nil {
			logger.Warn("Skipping configured room", "room", name, "error", err)
		}
	}
	return c
}

// SetNotifier installs the observer of domain changes.
func (c *Coordinator) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == nil {
		n = noopNotifier{}
	}
	c.notifier = n
}

// Connect registers a live connection and sends it its id.
func (c *Coordinator) Connect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry.Register(connID)
	c.transport.Send(connID, EventConnected, ConnectedPayload{ID: connID})
}

// Join binds a username to the connection and enters room. A connection that
// is already bound leaves its rooms first.
func (c *Coordinator) Join(connID, username, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Registered(connID) {
		return domain.ErrUnboundSession
	}
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		c.transport.SendError(connID, err.Error())
		return err
	}
	if !c.store.Exists(room) {
		c.transport.SendError(connID, ReasonRoomNotFound)
		return domain.ErrRoomNotFound
	}

	if prev, ok := c.registry.Lookup(connID); ok {
		for _, name := range c.store.RoomsOf(connID) {
			c.leave(prev, name)
		}
	}

	user := c.registry.Bind(connID, username, room, c.now())
	c.enter(user, room)
	c.transport.Send(connID, EventRoomList, c.store.Rooms())
	c.transport.Send(connID, EventTypingUsers, c.presence.Typing(room))

	c.logger.Debug("User joined", "conn", connID, "username", username, "room", room)
	return nil
}

// Send appends a message to room, or to the sender's current room when room
// is empty, and fans it out. Membership is not required.
func (c *Coordinator) Send(connID, text, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.registry.Lookup(connID)
	if !ok {
		return domain.ErrUnboundSession
	}
	if room == "" {
		room = user.Room
	}
	if !c.store.Exists(room) {
		c.transport.SendError(connID, ReasonRoomNotFound)
		return domain.ErrRoomNotFound
	}

	text = strings.TrimSpace(text)
	if err := ValidateMessage(text); err != nil {
		if !errors.Is(err, ErrMessageEmpty) {
			c.transport.SendError(connID, err.Error())
		}
		return err
	}

	stored, err := c.store.Append(domain.Message{
		Text:      text,
		Sender:    user.Username,
		SenderID:  connID,
		Room:      room,
		Timestamp: c.now(),
		Reactions: map[string]int{},
	})
	if err != nil {
		return err
	}

	c.transport.Publish(room, EventReceiveMessage, stored)
	c.typing.Stop(room, connID)
	c.presence.BroadcastTyping(room)
	c.notifier.MessageSent(stored)
	return nil
}

// Typing starts or stops the typing indicator of the connection in its
// current room.
func (c *Coordinator) Typing(connID string, isTyping bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.registry.Lookup(connID)
	if !ok {
		return domain.ErrUnboundSession
	}
	if !c.store.IsMember(user.Room, connID) {
		return nil
	}

	if isTyping {
		c.typing.Start(user.Room, connID)
	} else {
		c.typing.Stop(user.Room, connID)
	}
	c.presence.BroadcastTyping(user.Room)
	return nil
}

// PrivateMessage delivers text to the sender and to the connection to.
// Nothing is stored.
func (c *Coordinator) PrivateMessage(connID, to, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, ok := c.registry.Lookup(connID)
	if !ok {
		return domain.ErrUnboundSession
	}
	recipient, ok := c.registry.Lookup(to)
	if !ok {
		return domain.ErrUnboundSession
	}

	text = strings.TrimSpace(text)
	if err := ValidateMessage(text); err != nil {
		if !errors.Is(err, ErrMessageEmpty) {
			c.transport.SendError(connID, err.Error())
		}
		return err
	}

	pm := domain.PrivateMessage{
		ID:         ulid.Make().String(),
		Text:       text,
		Sender:     from.Username,
		SenderID:   connID,
		To:         recipient.ID,
		ToUsername: recipient.Username,
		Timestamp:  c.now(),
		IsPrivate:  true,
	}
	c.transport.Send(connID, EventPrivateMessage, pm)
	if to != connID {
		c.transport.Send(to, EventPrivateMessage, pm)
	}
	return nil
}

// JoinRoom moves the connection from its current room into room.
func (c *Coordinator) JoinRoom(connID, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.registry.Lookup(connID)
	if !ok {
		return domain.ErrUnboundSession
	}
	if !c.store.Exists(room) {
		c.transport.SendError(connID, ReasonRoomNotFound)
		return domain.ErrRoomNotFound
	}

	if user.Room != room {
		c.leave(user, user.Room)
	}
	c.registry.UpdateRoom(connID, room)
	user.Room = room
	c.enter(user, room)

	c.logger.Debug("User switched room", "conn", connID, "room", room)
	return nil
}

// LeaveRoom removes the connection from room. The user's current room is
// left unchanged.
func (c *Coordinator) LeaveRoom(connID, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.registry.Lookup(connID)
	if !ok {
		return domain.ErrUnboundSession
	}
	if !c.store.Exists(room) {
		c.transport.SendError(connID, ReasonRoomNotFound)
		return domain.ErrRoomNotFound
	}

	if c.leave(user, room) {
		c.transport.Send(connID, EventRoomLeft, room)
	}
	return nil
}

// React increments a reaction on a message in whichever room owns it.
func (c *Coordinator) React(connID, messageID, reaction string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registry.Lookup(connID); !ok {
		return domain.ErrUnboundSession
	}
	if reaction == "" {
		return nil
	}

	room, count, err := c.store.ApplyReaction(messageID, reaction)
	if err != nil {
		return err
	}
	c.transport.Publish(room, EventReaction, ReactionPayload{
		MessageID: messageID,
		Reaction:  reaction,
		Count:     count,
	})
	c.notifier.ReactionAdded(room, messageID, reaction, count)
	return nil
}

// MarkRead flags messages as read in every room and returns how many matched.
func (c *Coordinator) MarkRead(connID string, ids []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registry.Lookup(connID); !ok {
		return 0, domain.ErrUnboundSession
	}
	return c.store.MarkRead(ids), nil
}

// CreateRoom adds a room and announces the new room list to every
// connection. connID is the creator and may be empty for requests that do
// not come from a connection.
func (c *Coordinator) CreateRoom(connID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := ValidateRoomName(name); err != nil {
		c.reject(connID, err.Error())
		return err
	}
	if err := c.store.Create(name); err != nil {
		c.reject(connID, ReasonRoomAlreadyExists)
		return err
	}

	c.transport.PublishAll(EventRoomList, c.store.Rooms())
	if connID != "" {
		c.transport.Send(connID, EventRoomCreated, name)
	}

	createdBy := connID
	if user, ok := c.registry.Lookup(connID); ok {
		createdBy = user.Username
	}
	c.notifier.RoomCreated(name, createdBy)
	c.logger.Info("Room created", "room", name, "by", createdBy)
	return nil
}

// Disconnect removes the connection from every room it is in and releases
// it. Calling it again for the same connection does nothing.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Registered(connID) {
		return
	}
	if user, ok := c.registry.Lookup(connID); ok {
		for _, room := range c.store.RoomsOf(connID) {
			c.leave(user, room)
		}
		c.logger.Debug("User disconnected", "conn", connID, "username", user.Username)
	}
	c.typing.StopAll(connID)
	c.registry.Unregister(connID)
}

// Close cancels all pending typing timers.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing.Clear()
}

// Rooms returns the room names in creation order.
func (c *Coordinator) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Rooms()
}

// Members returns the users in room.
func (c *Coordinator) Members(room string) ([]domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.store.Exists(room) {
		return nil, domain.ErrRoomNotFound
	}
	return c.presence.Members(room), nil
}

// Messages returns one page of room's log. A non-positive limit uses the
// configured page size.
func (c *Coordinator) Messages(room string, page, limit int) (domain.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log, ok := c.store.Log(room)
	if !ok {
		return domain.Page{}, domain.ErrRoomNotFound
	}
	if limit <= 0 {
		limit = c.pageSize
	}
	return log.Page(page, limit), nil
}

// Search returns messages containing query. With an empty room every room is
// searched in creation order; an unknown room yields no results.
func (c *Coordinator) Search(query, room string) []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := c.store.Rooms()
	if room != "" {
		rooms = []string{room}
	}

	out := []domain.Message{}
	for _, name := range rooms {
		if log, ok := c.store.Log(name); ok {
			out = append(out, log.Search(query)...)
		}
	}
	return out
}

// Stats reports live connection and room counts.
func (c *Coordinator) Stats() (connections, rooms int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Len(), len(c.store.Rooms())
}

// enter adds user to room and sends the joiner its view of the room.
// Must be called with c.mu held.
func (c *Coordinator) enter(user domain.User, room string) {
	log, _ := c.store.Log(room)
	joined := c.store.AddMember(room, user.ID)
	c.transport.Subscribe(user.ID, room)

	c.transport.Send(user.ID, EventRoomJoined, room)
	c.transport.Send(user.ID, EventUserList, c.presence.Members(room))
	c.transport.Send(user.ID, EventMessageHistory, log.Snapshot())

	if joined {
		c.transport.Publish(room, EventUserJoined, PresencePayload{ID: user.ID, Username: user.Username}, user.ID)
		c.presence.BroadcastMembers(room, user.ID)
		c.notifier.UserJoined(user, room)
	}
}

// leave removes user from room and tells the remaining members. It reports
// whether the user was a member. Must be called with c.mu held.
func (c *Coordinator) leave(user domain.User, room string) bool {
	c.typing.Stop(room, user.ID)
	if !c.store.RemoveMember(room, user.ID) {
		return false
	}
	c.transport.Unsubscribe(user.ID, room)

	c.transport.Publish(room, EventUserLeft, PresencePayload{ID: user.ID, Username: user.Username})
	c.presence.BroadcastMembers(room)
	c.presence.BroadcastTyping(room)
	c.notifier.UserLeft(user, room)
	return true
}

// reject sends reason to connID when the request came from a connection.
// Must be called with c.mu held.
func (c *Coordinator) reject(connID, reason string) {
	if connID != "" {
		c.transport.SendError(connID, reason)
	}
}

// expireTyping runs on the scheduler when a typing entry times out.
func (c *Coordinator) expireTyping(room, connID string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.typing.Expire(room, connID, gen) && c.store.IsMember(room, connID) {
		c.presence.BroadcastTyping(room)
	}
}
