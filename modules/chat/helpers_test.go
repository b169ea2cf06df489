package chat

import (
	"slices"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

type frame struct {
	event   string
	payload any
}

// fakeTransport records what each connection would have received.
type fakeTransport struct {
	subs  map[string]map[string]bool
	inbox map[string][]frame
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		subs:  make(map[string]map[string]bool),
		inbox: make(map[string][]frame),
	}
}

func (f *fakeTransport) Subscribe(connID, room string) {
	if f.subs[room] == nil {
		f.subs[room] = make(map[string]bool)
	}
	f.subs[room][connID] = true
}

func (f *fakeTransport) Unsubscribe(connID, room string) {
	delete(f.subs[room], connID)
}

func (f *fakeTransport) Publish(room, event string, payload any, exclude ...string) {
	for connID := range f.subs[room] {
		if !slices.Contains(exclude, connID) {
			f.Send(connID, event, payload)
		}
	}
}

func (f *fakeTransport) PublishAll(event string, payload any) {
	for connID := range f.inbox {
		f.Send(connID, event, payload)
	}
}

func (f *fakeTransport) Send(connID, event string, payload any) {
	f.inbox[connID] = append(f.inbox[connID], frame{event: event, payload: payload})
}

func (f *fakeTransport) SendError(connID, reason string) {
	f.Send(connID, EventError, reason)
}

// events returns the event names connID received, in order.
func (f *fakeTransport) events(connID string) []string {
	var out []string
	for _, fr := range f.inbox[connID] {
		out = append(out, fr.event)
	}
	return out
}

// last returns the payload of the most recent event of that name sent to connID.
func (f *fakeTransport) last(connID, event string) (any, bool) {
	frames := f.inbox[connID]
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].event == event {
			return frames[i].payload, true
		}
	}
	return nil, false
}

func (f *fakeTransport) count(connID, event string) int {
	n := 0
	for _, fr := range f.inbox[connID] {
		if fr.event == event {
			n++
		}
	}
	return n
}

// clear forgets received frames but keeps connections known.
func (f *fakeTransport) clear() {
	for connID := range f.inbox {
		f.inbox[connID] = []frame{}
	}
}

type manualTask struct {
	fn        func()
	fired     bool
	cancelled bool
}

// manualScheduler holds scheduled tasks until the test fires them.
type manualScheduler struct {
	tasks []*manualTask
}

func (s *manualScheduler) schedule(_ time.Duration, fn func()) func() bool {
	task := &manualTask{fn: fn}
	s.tasks = append(s.tasks, task)
	return func() bool {
		if task.fired || task.cancelled {
			return false
		}
		task.cancelled = true
		return true
	}
}

// fire runs every task that is neither fired nor cancelled.
func (s *manualScheduler) fire() {
	for _, task := range slices.Clone(s.tasks) {
		if !task.fired && !task.cancelled {
			task.fired = true
			task.fn()
		}
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, task := range s.tasks {
		if !task.fired && !task.cancelled {
			n++
		}
	}
	return n
}

func newTestCoordinator(t *testing.T, opts Options) (*Coordinator, *fakeTransport, *manualScheduler) {
	t.Helper()
	if opts.Rooms == nil {
		opts.Rooms = []string{"general", "random", "help"}
	}
	sched := &manualScheduler{}
	if opts.Scheduler == nil {
		opts.Scheduler = sched.schedule
	}
	ft := newFakeTransport()
	return NewCoordinator(opts, ft, &mockLogger{}), ft, sched
}
