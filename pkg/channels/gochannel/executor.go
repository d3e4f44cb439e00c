package gochannel

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/kmare/flowsync/pkg/events"
	"github.com/kmare/flowsync/pkg/wire"
)

// LocalExecutor is a scripted stand-in for the real backend. It walks a
// flow in topological order and emits the same event stream a real run
// produces: node_start, node_output, node_complete per reached node,
// node_skipped for nodes cut off by a conditional branch, then
// flow_complete. Node semantics are trivial (text passes through); this
// is plumbing for development and tests, not an execution engine.
type LocalExecutor struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewLocalExecutor(pubsub *gochannel.GoChannel, logger *slog.Logger) *LocalExecutor {
	return &LocalExecutor{
		pubsub: pubsub,
		logger: logger,
	}
}

// Start begins consuming run requests until the context is cancelled.
func (e *LocalExecutor) Start(ctx context.Context) error {
	messages, err := e.pubsub.Subscribe(ctx, RequestTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			e.handle(ctx, msg.Payload)
			msg.Ack()
		}
	}()

	return nil
}

func (e *LocalExecutor) handle(ctx context.Context, payload []byte) {
	var request wire.ExecuteRequest

	err := json.Unmarshal(payload, &request)
	if err != nil || request.Action != wire.ActionExecute {
		e.emit(ctx, events.Event{Type: events.Error, Message: "malformed run request"})

		return
	}

	e.run(ctx, request)
}

func (e *LocalExecutor) run(ctx context.Context, request wire.ExecuteRequest) {
	flow := request.Flow

	e.emit(ctx, events.Event{Type: events.FlowStart, FlowID: flow.ID})

	order, ok := topologicalOrder(flow)
	if !ok {
		e.emit(ctx, events.Event{Type: events.Error, FlowID: flow.ID, Message: "flow contains a cycle"})

		return
	}

	reached := reachedNodes(flow, request.UserInput)
	texts := make(map[string]string, len(flow.Nodes))

	for _, node := range order {
		if !reached[node.ID] {
			e.emit(ctx, events.Event{Type: events.NodeSkipped, FlowID: flow.ID, NodeID: node.ID})

			continue
		}

		e.emit(ctx, events.Event{Type: events.NodeStart, FlowID: flow.ID, NodeID: node.ID})

		text := e.evaluate(flow, node, request.UserInput, texts)
		texts[node.ID] = text

		if text != "" {
			e.emit(ctx, events.Event{
				Type:   events.NodeOutput,
				FlowID: flow.ID,
				NodeID: node.ID,
				Data:   text,
			})
		}

		e.emit(ctx, events.Event{Type: events.NodeComplete, FlowID: flow.ID, NodeID: node.ID})
	}

	e.emit(ctx, events.Event{Type: events.FlowComplete, FlowID: flow.ID})
}

// evaluate produces a node's output text: input nodes emit the user
// input, everything else concatenates its upstream texts.
func (e *LocalExecutor) evaluate(flow wire.Flow, node wire.Node, userInput string, texts map[string]string) string {
	if node.Config.Input != nil {
		return userInput
	}

	upstream := make([]string, 0, 2)

	for _, edge := range flow.Edges {
		if edge.Target != node.ID {
			continue
		}

		if text := texts[edge.Source]; text != "" {
			upstream = append(upstream, text)
		}
	}

	return strings.Join(upstream, "\n")
}

func (e *LocalExecutor) emit(_ context.Context, event events.Event) {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("failed to encode event", "error", err)

		return
	}

	err = e.pubsub.Publish(EventTopic, message.NewMessage(watermill.NewUUID(), payload))
	if err != nil {
		e.logger.Error("failed to publish event", "error", err)
	}
}

// topologicalOrder returns the flow's nodes in dependency order, or
// ok=false when the edge set contains a cycle.
func topologicalOrder(flow wire.Flow) ([]wire.Node, bool) {
	indegree := make(map[string]int, len(flow.Nodes))
	byID := make(map[string]wire.Node, len(flow.Nodes))

	for _, node := range flow.Nodes {
		indegree[node.ID] = 0
		byID[node.ID] = node
	}

	for _, edge := range flow.Edges {
		indegree[edge.Target]++
	}

	frontier := make([]string, 0, len(flow.Nodes))

	for _, node := range flow.Nodes {
		if indegree[node.ID] == 0 {
			frontier = append(frontier, node.ID)
		}
	}

	order := make([]wire.Node, 0, len(flow.Nodes))

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		order = append(order, byID[current])

		for _, edge := range flow.Edges {
			if edge.Source != current {
				continue
			}

			indegree[edge.Target]--
			if indegree[edge.Target] == 0 {
				frontier = append(frontier, edge.Target)
			}
		}
	}

	return order, len(order) == len(flow.Nodes)
}

// reachedNodes walks the flow from its roots, pruning the branch a
// conditional did not take. The stub's branch rule: the "true" handle is
// taken when the user input contains the conditional's expression text.
func reachedNodes(flow wire.Flow, userInput string) map[string]bool {
	indegree := make(map[string]int, len(flow.Nodes))
	for _, node := range flow.Nodes {
		indegree[node.ID] = 0
	}

	for _, edge := range flow.Edges {
		indegree[edge.Target]++
	}

	reached := make(map[string]bool, len(flow.Nodes))
	frontier := make([]string, 0, len(flow.Nodes))

	for _, node := range flow.Nodes {
		if indegree[node.ID] == 0 {
			reached[node.ID] = true
			frontier = append(frontier, node.ID)
		}
	}

	byID := make(map[string]wire.Node, len(flow.Nodes))
	for _, node := range flow.Nodes {
		byID[node.ID] = node
	}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		branch := ""
		if config := byID[current].Config.Conditional; config != nil {
			branch = "false"
			if strings.Contains(userInput, config.Expression) {
				branch = "true"
			}
		}

		for _, edge := range flow.Edges {
			if edge.Source != current || reached[edge.Target] {
				continue
			}

			if branch != "" && edge.SourceHandle != "" && edge.SourceHandle != branch {
				continue
			}

			reached[edge.Target] = true
			frontier = append(frontier, edge.Target)
		}
	}

	return reached
}
