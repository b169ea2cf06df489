package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
)

// StatsPort is the read surface of the stats module.
type StatsPort interface {
	GetSummary(ctx context.Context) (Summary, error)
}

type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a StatsPort backed by the service container.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	return &statsAdapter{container: container}
}

// GetSummary retrieves the activity summary.
func (a *statsAdapter) GetSummary(ctx context.Context) (Summary, error) {
	client, err := a.container.GetRequestReplyService(ServiceGetStats)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get %s service: %w", ServiceGetStats, err)
	}

	resp, err := client.Call(ctx, []byte{})
	if err != nil {
		return Summary{}, fmt.Errorf("%s service call failed: %w", ServiceGetStats, err)
	}

	var summary Summary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return Summary{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return summary, nil
}
