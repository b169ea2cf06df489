package chat

import (
	"cmp"
	"slices"
	"time"
)

// DefaultTypingTimeout is how long a typing indicator lives without a refresh.
const DefaultTypingTimeout = 3 * time.Second

// Scheduler runs fn once after d and returns a function that cancels it.
// The cancel function reports whether it stopped fn before it ran.
type Scheduler func(d time.Duration, fn func()) (cancel func() bool)

// AfterFunc is the wall-clock Scheduler.
func AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

type typingEntry struct {
	started uint64
	gen     uint64
	cancel  func() bool
}

// TypingTracker holds, per room, the connections currently typing. Each entry
// owns one expiry task tagged with a generation; a task whose generation no
// longer matches the entry has been superseded and must not act.
// It is not safe for concurrent use; the Coordinator serializes access.
type TypingTracker struct {
	timeout  time.Duration
	schedule Scheduler
	onExpire func(room, connID string, gen uint64)

	rooms map[string]map[string]*typingEntry
	seq   uint64
}

// NewTypingTracker creates a tracker. onExpire is invoked from the scheduler
// when an entry's timeout elapses; it must call Expire to take effect.
func NewTypingTracker(timeout time.Duration, schedule Scheduler, onExpire func(room, connID string, gen uint64)) *TypingTracker {
	if timeout <= 0 {
		timeout = DefaultTypingTimeout
	}
	if schedule == nil {
		schedule = AfterFunc
	}
	return &TypingTracker{
		timeout:  timeout,
		schedule: schedule,
		onExpire: onExpire,
		rooms:    make(map[string]map[string]*typingEntry),
	}
}

// Start moves connID to Typing in room, or resets its timer if it already is.
// It reports whether connID was Idle before.
func (t *TypingTracker) Start(room, connID string) bool {
	set, ok := t.rooms[room]
	if !ok {
		set = make(map[string]*typingEntry)
		t.rooms[room] = set
	}

	t.seq++
	gen := t.seq

	entry, typing := set[connID]
	if typing {
		entry.cancel()
		entry.gen = gen
	} else {
		entry = &typingEntry{started: gen, gen: gen}
		set[connID] = entry
	}
	entry.cancel = t.schedule(t.timeout, func() {
		if t.onExpire != nil {
			t.onExpire(room, connID, gen)
		}
	})
	return !typing
}

// Stop moves connID to Idle in room and cancels its timer. It reports whether
// connID was typing.
func (t *TypingTracker) Stop(room, connID string) bool {
	set := t.rooms[room]
	entry, ok := set[connID]
	if !ok {
		return false
	}
	entry.cancel()
	delete(set, connID)
	if len(set) == 0 {
		delete(t.rooms, room)
	}
	return true
}

// StopAll moves connID to Idle in every room and returns the rooms it left.
func (t *TypingTracker) StopAll(connID string) []string {
	var rooms []string
	for room, set := range t.rooms {
		if _, ok := set[connID]; ok {
			rooms = append(rooms, room)
		}
	}
	slices.Sort(rooms)
	for _, room := range rooms {
		t.Stop(room, connID)
	}
	return rooms
}

// Expire removes the entry if gen is still its current generation. A stale
// generation means the entry was refreshed, stopped, or removed since the
// task was scheduled.
func (t *TypingTracker) Expire(room, connID string, gen uint64) bool {
	entry, ok := t.rooms[room][connID]
	if !ok || entry.gen != gen {
		return false
	}
	delete(t.rooms[room], connID)
	if len(t.rooms[room]) == 0 {
		delete(t.rooms, room)
	}
	return true
}

// IsTyping reports whether connID is typing in room.
func (t *TypingTracker) IsTyping(room, connID string) bool {
	_, ok := t.rooms[room][connID]
	return ok
}

// Snapshot returns the connections typing in room, in the order they started.
func (t *TypingTracker) Snapshot(room string) []string {
	set := t.rooms[room]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(set[a].started, set[b].started)
	})
	return ids
}

// Clear cancels every pending timer and empties all rooms.
func (t *TypingTracker) Clear() {
	for room, set := range t.rooms {
		for _, entry := range set {
			entry.cancel()
		}
		delete(t.rooms, room)
	}
}
