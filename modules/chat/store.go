package chat

import (
	"cmp"
	"slices"

	domain "github.com/example/realtime-chat-engine/domain/chat"
)

// room is one named channel with its members and log.
type room struct {
	name    string
	members map[string]uint64 // connID -> join sequence
	log     *MessageLog
}

// RoomStore holds the known rooms, their member sets and message logs, and
// an index from message id to owning room. It never broadcasts. It is not
// safe for concurrent use; the Coordinator serializes access.
type RoomStore struct {
	historySize int
	order       []string
	rooms       map[string]*room
	index       map[string]string // messageID -> room name
	seq         uint64
}

// NewRoomStore creates an empty store whose logs hold historySize messages.
func NewRoomStore(historySize int) *RoomStore {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &RoomStore{
		historySize: historySize,
		rooms:       make(map[string]*room),
		index:       make(map[string]string),
	}
}

// Exists reports whether the room is known.
func (s *RoomStore) Exists(name string) bool {
	_, ok := s.rooms[name]
	return ok
}

// Create inserts an empty room.
func (s *RoomStore) Create(name string) error {
	if s.Exists(name) {
		return domain.ErrRoomAlreadyExists
	}
	s.rooms[name] = &room{
		name:    name,
		members: make(map[string]uint64),
		log:     NewMessageLog(s.historySize),
	}
	s.order = append(s.order, name)
	return nil
}

// Rooms returns room names in creation order.
func (s *RoomStore) Rooms() []string {
	return slices.Clone(s.order)
}

// AddMember adds connID to the room and reports whether membership changed.
func (s *RoomStore) AddMember(name, connID string) bool {
	r, ok := s.rooms[name]
	if !ok {
		return false
	}
	if _, member := r.members[connID]; member {
		return false
	}
	s.seq++
	r.members[connID] = s.seq
	return true
}

// RemoveMember removes connID from the room and reports whether membership
// changed. Removing an absent member is a no-op.
func (s *RoomStore) RemoveMember(name, connID string) bool {
	r, ok := s.rooms[name]
	if !ok {
		return false
	}
	if _, member := r.members[connID]; !member {
		return false
	}
	delete(r.members, connID)
	return true
}

// IsMember reports whether connID is in the room's member set.
func (s *RoomStore) IsMember(name, connID string) bool {
	r, ok := s.rooms[name]
	if !ok {
		return false
	}
	_, member := r.members[connID]
	return member
}

// MemberIDs returns the room's members in join order.
func (s *RoomStore) MemberIDs(name string) []string {
	r, ok := s.rooms[name]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(r.members[a], r.members[b])
	})
	return ids
}

// RoomsOf returns every room connID is a member of, in creation order.
func (s *RoomStore) RoomsOf(connID string) []string {
	var out []string
	for _, name := range s.order {
		if _, member := s.rooms[name].members[connID]; member {
			out = append(out, name)
		}
	}
	return out
}

// Log returns the message log of a room.
func (s *RoomStore) Log(name string) (*MessageLog, bool) {
	r, ok := s.rooms[name]
	if !ok {
		return nil, false
	}
	return r.log, true
}

// Append stores msg in the log of msg.Room and keeps the id index current.
func (s *RoomStore) Append(msg domain.Message) (domain.Message, error) {
	r, ok := s.rooms[msg.Room]
	if !ok {
		return domain.Message{}, domain.ErrRoomNotFound
	}
	stored, evicted := r.log.Append(msg)
	if evicted != "" && s.index[evicted] == r.name {
		delete(s.index, evicted)
	}
	s.index[stored.ID] = r.name
	return stored, nil
}

// Locate returns the room that owns the message id.
func (s *RoomStore) Locate(messageID string) (string, bool) {
	name, ok := s.index[messageID]
	return name, ok
}

// ApplyReaction increments a reaction on the message wherever it lives and
// returns the owning room and the new count.
func (s *RoomStore) ApplyReaction(messageID, symbol string) (string, int, error) {
	name, ok := s.index[messageID]
	if !ok {
		return "", 0, domain.ErrMessageNotFound
	}
	count, ok := s.rooms[name].log.ApplyReaction(messageID, symbol)
	if !ok {
		return "", 0, domain.ErrMessageNotFound
	}
	return name, count, nil
}

// MarkRead flags the listed messages as read across all rooms and returns
// how many matched. Unknown ids are ignored.
func (s *RoomStore) MarkRead(ids []string) int {
	byRoom := make(map[string][]string)
	for _, id := range ids {
		if name, ok := s.index[id]; ok {
			byRoom[name] = append(byRoom[name], id)
		}
	}
	marked := 0
	for name, roomIDs := range byRoom {
		marked += s.rooms[name].log.MarkRead(roomIDs...)
	}
	return marked
}
