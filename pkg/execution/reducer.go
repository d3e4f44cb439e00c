package execution

import (
	"log/slog"

	"github.com/kmare/flowsync/pkg/events"
	"github.com/kmare/flowsync/pkg/graph"
	"github.com/kmare/flowsync/pkg/models"
)

// Reducer maps inbound run events onto graph node state. It trusts the
// transport's ordering and performs no deduplication; malformed payloads
// never reach it because decoding drops them first.
type Reducer struct {
	graph  *graph.Model
	logger *slog.Logger
}

func NewReducer(model *graph.Model, logger *slog.Logger) *Reducer {
	return &Reducer{
		graph:  model,
		logger: logger,
	}
}

// Apply mutates graph state for one event. Run-level bookkeeping (the
// in-progress flag, settling the waiting caller) belongs to the client.
func (r *Reducer) Apply(event events.Event) {
	switch event.Type {
	case events.NodeStart:
		r.graph.SetNodeStatus(event.NodeID, models.NodeStatusRunning)
	case events.NodeOutput:
		r.graph.SetNodeStatus(event.NodeID, models.NodeStatusRunning)
		r.graph.AppendNodeOutput(event.NodeID, event.Text())
	case events.NodeComplete, events.NodeSkipped:
		// A skipped node is indistinguishable from a completed one; the
		// executor protocol carries no separate skipped status.
		r.graph.SetNodeStatus(event.NodeID, models.NodeStatusCompleted)
	case events.Error:
		if event.NodeID != "" {
			r.graph.SetNodeError(event.NodeID, event.Message)
		}
	case events.FlowStart, events.FlowComplete, events.Pong:
		// No node mutation.
	default:
		r.logger.Debug("ignoring unhandled event", "type", event.Type)
	}
}
