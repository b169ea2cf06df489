package wsserver

import (
	"encoding/json"
	"errors"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	domain "github.com/example/realtime-chat-engine/domain/chat"
	"github.com/example/realtime-chat-engine/modules/broadcast"
	"github.com/example/realtime-chat-engine/modules/chat"
)

// Client-facing error reasons produced by the session handler itself.
const (
	ReasonInvalidFormat = "Invalid message format"
	ReasonRateLimited   = "Rate limit exceeded, please slow down"
	ReasonUnknownType   = "Unknown message type: "
)

// Sessions is the part of the chat coordinator driven by inbound frames.
type Sessions interface {
	Connect(connID string)
	Join(connID, username, room string) error
	Send(connID, text, room string) error
	Typing(connID string, isTyping bool) error
	PrivateMessage(connID, to, text string) error
	JoinRoom(connID, room string) error
	LeaveRoom(connID, room string) error
	React(connID, messageID, reaction string) error
	MarkRead(connID string, ids []string) (int, error)
	CreateRoom(connID, name string) error
	Disconnect(connID string)
}

// Hub owns the write side of every connection.
type Hub interface {
	Register(id string, conn broadcast.Conn)
	Unregister(id string)
	SendError(clientID, reason string)
}

var (
	_ Sessions = (*chat.Coordinator)(nil)
	_ Hub      = (*broadcast.Hub)(nil)
)

// Limits bounds the inbound frame rate of a single connection.
type Limits struct {
	EventsPerSecond float64
	Burst           int
}

// DefaultLimits allows ten frames per second with bursts of twenty.
var DefaultLimits = Limits{EventsPerSecond: 10, Burst: 20}

// Handlers runs the read side of WebSocket sessions.
type Handlers struct {
	sessions Sessions
	hub      Hub
	limits   Limits
	logger   types.Logger
}

// NewHandlers creates the session handlers.
func NewHandlers(sessions Sessions, hub Hub, limits Limits, logger types.Logger) *Handlers {
	if limits.EventsPerSecond <= 0 || limits.Burst <= 0 {
		limits = DefaultLimits
	}
	return &Handlers{
		sessions: sessions,
		hub:      hub,
		limits:   limits,
		logger:   logger,
	}
}

// HandleWebSocket serves one connection until the peer goes away or the hub
// closes it on shutdown.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	limiter := rate.NewLimiter(rate.Limit(h.limits.EventsPerSecond), h.limits.Burst)

	h.hub.Register(connID, c)
	defer func() {
		h.sessions.Disconnect(connID)
		h.hub.Unregister(connID)
		_ = c.Close()
		h.logger.Info("WebSocket disconnected", "conn", connID)
	}()

	h.logger.Info("WebSocket connected", "conn", connID)
	h.sessions.Connect(connID)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket error", "conn", connID, "error", err)
			}
			return
		}

		if !limiter.Allow() {
			h.hub.SendError(connID, ReasonRateLimited)
			continue
		}

		var frame chat.Frame
		if err := json.Unmarshal(msgBytes, &frame); err != nil {
			h.hub.SendError(connID, ReasonInvalidFormat)
			continue
		}

		h.dispatch(connID, frame)
	}
}

// dispatch routes one decoded frame to the coordinator. Outcomes the client
// must see are delivered by the coordinator itself.
func (h *Handlers) dispatch(connID string, frame chat.Frame) {
	var err error
	switch frame.Type {
	case chat.EventUserJoin:
		var p chat.JoinPayload
		if err = h.decode(connID, frame.Payload, &p); err == nil {
			err = h.sessions.Join(connID, p.Username, p.Room)
		}
	case chat.EventSendMessage:
		var p chat.SendPayload
		if err = h.decode(connID, frame.Payload, &p); err == nil {
			err = h.sessions.Send(connID, p.Message, p.Room)
		}
	case chat.EventTyping:
		var isTyping bool
		if err = h.decode(connID, frame.Payload, &isTyping); err == nil {
			err = h.sessions.Typing(connID, isTyping)
		}
	case chat.EventPrivateMessage:
		var p chat.PrivatePayload
		if err = h.decode(connID, frame.Payload, &p); err == nil {
			err = h.sessions.PrivateMessage(connID, p.To, p.Message)
		}
	case chat.EventJoinRoom:
		var room string
		if err = h.decode(connID, frame.Payload, &room); err == nil {
			err = h.sessions.JoinRoom(connID, room)
		}
	case chat.EventLeaveRoom:
		var room string
		if err = h.decode(connID, frame.Payload, &room); err == nil {
			err = h.sessions.LeaveRoom(connID, room)
		}
	case chat.EventReaction:
		var p chat.ReactionPayload
		if err = h.decode(connID, frame.Payload, &p); err == nil {
			err = h.sessions.React(connID, p.MessageID, p.Reaction)
		}
	case chat.EventMarkRead:
		var ids []string
		if err = h.decode(connID, frame.Payload, &ids); err == nil {
			var marked int
			marked, err = h.sessions.MarkRead(connID, ids)
			h.logger.Debug("Messages marked read", "conn", connID, "requested", len(ids), "marked", marked)
		}
	case chat.EventCreateRoom:
		var name string
		if err = h.decode(connID, frame.Payload, &name); err == nil {
			err = h.sessions.CreateRoom(connID, name)
		}
	default:
		h.hub.SendError(connID, ReasonUnknownType+frame.Type)
		return
	}

	if err != nil && !errors.Is(err, errBadPayload) {
		h.logEventError(connID, frame.Type, err)
	}
}

var errBadPayload = errors.New("bad payload")

func (h *Handlers) decode(connID string, raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		h.hub.SendError(connID, ReasonInvalidFormat)
		return errBadPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		h.hub.SendError(connID, ReasonInvalidFormat)
		return errBadPayload
	}
	return nil
}

func (h *Handlers) logEventError(connID, event string, err error) {
	if errors.Is(err, domain.ErrUnboundSession) {
		h.logger.Debug("Dropped event from unbound connection", "conn", connID, "event", event)
		return
	}
	h.logger.Debug("Event rejected", "conn", connID, "event", event, "error", err)
}
