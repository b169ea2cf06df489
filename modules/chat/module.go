package chat

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/realtime-chat-engine/events"
)

// Module hosts the session Coordinator inside the mono application.
type Module struct {
	coord    *Coordinator
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the chat module. transport delivers every outbound event.
func NewModule(opts Options, transport Transport, logger types.Logger) *Module {
	logger = logger.WithModule("chat")
	return &Module{
		coord:  NewCoordinator(opts, transport, logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
	m.coord.SetNotifier(newBusNotifier(bus, m.logger))
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.RoomCreatedV1.ToBase(),
		events.ReactionAddedV1.ToBase(),
	}
}

// Start logs the rooms the coordinator was seeded with.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Chat module started", "rooms", m.coord.Rooms())
	return nil
}

// Stop cancels pending typing timers.
func (m *Module) Stop(_ context.Context) error {
	m.coord.Close()
	m.logger.Info("Chat module stopped")
	return nil
}

// Health reports live connections and rooms.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	connections, rooms := m.coord.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": connections,
			"rooms":       rooms,
		},
	}
}

// Coordinator returns the session coordinator.
func (m *Module) Coordinator() *Coordinator {
	return m.coord
}
