package chat

import (
	"slices"
	"sync"
	"testing"
	"time"
)

type expiry struct {
	room, conn string
	gen        uint64
}

func TestTypingTracker_StartStop(t *testing.T) {
	sched := &manualScheduler{}
	tr := NewTypingTracker(time.Second, sched.schedule, nil)

	if !tr.Start("general", "a") {
		t.Error("Start() = false for idle connection")
	}
	if tr.Start("general", "a") {
		t.Error("Start() = true for connection already typing")
	}
	if sched.pending() != 1 {
		t.Errorf("pending timers = %d after refresh, want 1", sched.pending())
	}

	if !tr.Stop("general", "a") {
		t.Error("Stop() = false for typing connection")
	}
	if tr.Stop("general", "a") {
		t.Error("Stop() = true for idle connection")
	}
	if sched.pending() != 0 {
		t.Errorf("pending timers = %d after Stop(), want 0", sched.pending())
	}
}

func TestTypingTracker_SnapshotOrder(t *testing.T) {
	sched := &manualScheduler{}
	tr := NewTypingTracker(time.Second, sched.schedule, nil)

	tr.Start("general", "c")
	tr.Start("general", "a")
	tr.Start("general", "b")
	tr.Start("general", "c")

	if got := tr.Snapshot("general"); !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Errorf("Snapshot() = %v, want start order [c a b]", got)
	}
	if got := tr.Snapshot("random"); len(got) != 0 {
		t.Errorf("Snapshot() of idle room = %v, want empty", got)
	}
}

func TestTypingTracker_ExpireGeneration(t *testing.T) {
	sched := &manualScheduler{}
	var fired []expiry
	var tr *TypingTracker
	tr = NewTypingTracker(time.Second, sched.schedule, func(room, conn string, gen uint64) {
		fired = append(fired, expiry{room, conn, gen})
		tr.Expire(room, conn, gen)
	})

	tr.Start("general", "a")
	stale := sched.tasks[0]
	tr.Start("general", "a")

	stale.fn()
	if !tr.IsTyping("general", "a") {
		t.Fatal("superseded timer removed a refreshed entry")
	}

	sched.fire()
	if tr.IsTyping("general", "a") {
		t.Error("current timer did not remove the entry")
	}
	if len(fired) != 2 {
		t.Errorf("expiry callbacks = %d, want 2", len(fired))
	}
}

func TestTypingTracker_StopAll(t *testing.T) {
	sched := &manualScheduler{}
	tr := NewTypingTracker(time.Second, sched.schedule, nil)

	tr.Start("random", "a")
	tr.Start("general", "a")
	tr.Start("general", "b")

	if got := tr.StopAll("a"); !slices.Equal(got, []string{"general", "random"}) {
		t.Errorf("StopAll() = %v, want [general random]", got)
	}
	if tr.IsTyping("general", "a") || tr.IsTyping("random", "a") {
		t.Error("connection still typing after StopAll()")
	}
	if !tr.IsTyping("general", "b") {
		t.Error("StopAll() affected another connection")
	}

	tr.Clear()
	if sched.pending() != 0 {
		t.Errorf("pending timers = %d after Clear(), want 0", sched.pending())
	}
}

func TestTypingTracker_WallClockExpiry(t *testing.T) {
	const timeout = 50 * time.Millisecond

	var mu sync.Mutex
	done := make(chan time.Time, 1)
	var tr *TypingTracker
	tr = NewTypingTracker(timeout, AfterFunc, func(room, conn string, gen uint64) {
		mu.Lock()
		defer mu.Unlock()
		if tr.Expire(room, conn, gen) {
			done <- time.Now()
		}
	})

	mu.Lock()
	start := time.Now()
	tr.Start("general", "a")
	mu.Unlock()

	select {
	case at := <-done:
		if elapsed := at.Sub(start); elapsed < timeout {
			t.Errorf("entry expired after %s, want at least %s", elapsed, timeout)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("entry did not expire")
	}

	mu.Lock()
	defer mu.Unlock()
	if tr.IsTyping("general", "a") {
		t.Error("IsTyping() = true after expiry")
	}
}
