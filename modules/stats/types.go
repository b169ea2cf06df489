package stats

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// RoomStats counts activity in one room since process start.
type RoomStats struct {
	Room         string    `json:"room"`
	Messages     int64     `json:"messages"`
	Characters   int64     `json:"characters"`
	Joins        int64     `json:"joins"`
	Leaves       int64     `json:"leaves"`
	Reactions    int64     `json:"reactions"`
	Online       int64     `json:"online"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// Summary is the response of the get-stats service.
type Summary struct {
	RoomsCreated int64       `json:"rooms_created"`
	MessagesSent int64       `json:"messages_sent"`
	Reactions    int64       `json:"reactions"`
	Rooms        []RoomStats `json:"rooms"`
}

// StatsStore provides thread-safe per-room activity counters.
type StatsStore struct {
	mu           sync.RWMutex
	rooms        map[string]*RoomStats
	roomsCreated int64
	messagesSent int64
	reactions    int64
}

// NewStatsStore creates an empty store.
func NewStatsStore() *StatsStore {
	return &StatsStore{rooms: make(map[string]*RoomStats)}
}

// room must be called with s.mu held.
func (s *StatsStore) room(name string) *RoomStats {
	stats, ok := s.rooms[name]
	if !ok {
		stats = &RoomStats{Room: name}
		s.rooms[name] = stats
	}
	return stats
}

func (s *StatsStore) touch(stats *RoomStats, at time.Time) {
	if at.After(stats.LastActivity) {
		stats.LastActivity = at
	}
}

// RecordMessage counts a message of length runes in room.
func (s *StatsStore) RecordMessage(room string, length int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.room(room)
	stats.Messages++
	stats.Characters += int64(length)
	s.touch(stats, at)
	s.messagesSent++
}

// RecordJoin counts a user entering room.
func (s *StatsStore) RecordJoin(room string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.room(room)
	stats.Joins++
	stats.Online++
	s.touch(stats, at)
}

// RecordLeave counts a user leaving room.
func (s *StatsStore) RecordLeave(room string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.room(room)
	stats.Leaves++
	if stats.Online > 0 {
		stats.Online--
	}
	s.touch(stats, at)
}

// RecordReaction counts a reaction on a message in room.
func (s *StatsStore) RecordReaction(room string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.room(room)
	stats.Reactions++
	s.touch(stats, at)
	s.reactions++
}

// RecordRoomCreated counts a new room.
func (s *StatsStore) RecordRoomCreated(room string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(s.room(room), at)
	s.roomsCreated++
}

// GetRoom returns a copy of the counters for room.
func (s *StatsStore) GetRoom(room string) (RoomStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.rooms[room]
	if !ok {
		return RoomStats{}, false
	}
	return *stats, true
}

// Summary returns totals and per-room counters ordered by room name.
func (s *StatsStore) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]RoomStats, 0, len(s.rooms))
	for _, stats := range s.rooms {
		rooms = append(rooms, *stats)
	}
	slices.SortFunc(rooms, func(a, b RoomStats) int {
		return cmp.Compare(a.Room, b.Room)
	})

	return Summary{
		RoomsCreated: s.roomsCreated,
		MessagesSent: s.messagesSent,
		Reactions:    s.reactions,
		Rooms:        rooms,
	}
}
