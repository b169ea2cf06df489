package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/realtime-chat-engine/events"
)

// ServiceGetStats is the request-reply service returning a Summary.
const ServiceGetStats = "get-stats"

// Module consumes chat events and keeps per-room activity counters.
type Module struct {
	store  *StatsStore
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new stats module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStatsStore(),
		logger: logger.WithModule("stats"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// RegisterEventConsumers subscribes to every chat domain event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.ReactionAddedV1, m.handleReactionAdded, m,
	); err != nil {
		return fmt.Errorf("failed to register ReactionAdded consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"MessageSent.v1", "UserJoined.v1", "UserLeft.v1", "RoomCreated.v1", "ReactionAdded.v1"})
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.store.RecordMessage(event.Room, event.Length, event.Timestamp)
	m.logger.Debug("Recorded message", "room", event.Room, "messageID", event.MessageID)
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.store.RecordJoin(event.Room, event.Timestamp)
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.store.RecordLeave(event.Room, event.Timestamp)
	return nil
}

func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.store.RecordRoomCreated(event.Room, event.Timestamp)
	m.logger.Info("Recorded room creation", "room", event.Room, "createdBy", event.CreatedBy)
	return nil
}

func (m *Module) handleReactionAdded(_ context.Context, event events.ReactionAddedEvent, _ *mono.Msg) error {
	m.store.RecordReaction(event.Room, event.Timestamp)
	return nil
}

// RegisterServices registers the get-stats service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := container.RegisterRequestReplyService(ServiceGetStats, m.handleGetStats); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}
	m.logger.Info("Registered stats services", "services", []string{ServiceGetStats})
	return nil
}

func (m *Module) handleGetStats(_ context.Context, _ *mono.Msg) ([]byte, error) {
	return json.Marshal(m.store.Summary())
}

// Start initializes the stats module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Stats module stopped")
	return nil
}

// Health reports how many rooms have recorded activity.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	summary := m.store.Summary()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms_tracked": len(summary.Rooms),
			"messages_sent": summary.MessagesSent,
		},
	}
}

// Store returns the stats store.
func (m *Module) Store() *StatsStore {
	return m.store
}
