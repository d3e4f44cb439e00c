// Package wire translates editor flow definitions into the executor's
// vocabulary. The translation is a pure function of graph state: the
// same definition always yields a byte-identical payload apart from
// timestamps, which are omitted from the wire form entirely.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/kmare/flowsync/pkg/models"
)

// ActionExecute is the only outbound action the executor accepts.
const ActionExecute = "execute"

// Flow is the executor-facing form of a flow definition.
type Flow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node carries the remapped type tag and the capability-keyed config.
type Node struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Config Config `json:"config"`
}

// Config nests the node's flat configuration under its capability key.
// Exactly one field is non-nil per node.
type Config struct {
	Input       *models.InputConfig       `json:"input,omitempty"`
	Output      *models.OutputConfig      `json:"output,omitempty"`
	Agent       *models.AgentConfig       `json:"agent,omitempty"`
	Tool        *models.ToolConfig        `json:"tool,omitempty"`
	Conditional *models.ConditionalConfig `json:"conditional,omitempty"`
	Knowledge   *models.KnowledgeConfig   `json:"knowledge,omitempty"`
}

// Edge mirrors the editor edge minus editor-only state.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// ExecuteRequest is the single message sent after the channel opens.
type ExecuteRequest struct {
	Action    string `json:"action"`
	Flow      Flow   `json:"flow"`
	UserInput string `json:"user_input"`
}

// NewExecuteRequest builds the run request for a flow and user input.
func NewExecuteRequest(definition *models.FlowDefinition, userInput string) (ExecuteRequest, error) {
	flow, err := FromDefinition(definition)
	if err != nil {
		return ExecuteRequest{}, err
	}

	return ExecuteRequest{
		Action:    ActionExecute,
		Flow:      flow,
		UserInput: userInput,
	}, nil
}

// Encode marshals the request to its wire bytes.
func (r ExecuteRequest) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// FromDefinition translates a flow definition into the wire form. The
// switch over node kinds is exhaustive; an unknown kind is a programming
// error surfaced as an error rather than a silently dropped node.
func FromDefinition(definition *models.FlowDefinition) (Flow, error) {
	flow := Flow{
		ID:    definition.ID,
		Name:  definition.Name,
		Nodes: make([]Node, 0, len(definition.Nodes)),
		Edges: make([]Edge, 0, len(definition.Edges)),
	}

	for _, node := range definition.Nodes {
		wireNode, err := fromNode(node)
		if err != nil {
			return Flow{}, err
		}

		flow.Nodes = append(flow.Nodes, wireNode)
	}

	for _, edge := range definition.Edges {
		flow.Edges = append(flow.Edges, Edge{
			ID:           edge.ID,
			Source:       edge.Source,
			Target:       edge.Target,
			SourceHandle: edge.SourceHandle,
			TargetHandle: edge.TargetHandle,
		})
	}

	return flow, nil
}

func fromNode(node *models.Node) (Node, error) {
	wireNode := Node{
		ID:   node.ID,
		Type: string(node.Kind),
	}

	switch config := node.Config.(type) {
	case models.InputConfig:
		wireNode.Config.Input = &config
	case models.OutputConfig:
		wireNode.Config.Output = &config
	case models.AgentConfig:
		wireNode.Config.Agent = &config
	case models.ToolConfig:
		wireNode.Config.Tool = &config
	case models.ConditionalConfig:
		wireNode.Config.Conditional = &config
	case models.KnowledgeConfig:
		wireNode.Config.Knowledge = &config
	case nil:
		return Node{}, fmt.Errorf("node %s has no config", node.ID)
	default:
		return Node{}, fmt.Errorf("node %s has unmapped config type %T", node.ID, node.Config)
	}

	return wireNode, nil
}
