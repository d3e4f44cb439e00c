package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	node := &Node{
		ID:       "n1",
		Kind:     NodeKindAgent,
		Position: Position{X: 120, Y: 40},
		Config: AgentConfig{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			SystemPrompt: "be brief",
			Temperature:  0.2,
			Tools:        []string{"web_search"},
		},
		Status: NodeStatusCompleted,
		Output: "done",
	}

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var decoded Node
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, node.ID, decoded.ID)
	assert.Equal(t, node.Kind, decoded.Kind)
	assert.Equal(t, node.Position, decoded.Position)
	assert.Equal(t, node.Status, decoded.Status)
	assert.Equal(t, node.Output, decoded.Output)

	config, isAgent := decoded.Config.(AgentConfig)
	require.True(t, isAgent, "config decodes into the variant the kind tag selects")
	assert.Equal(t, "be brief", config.SystemPrompt)
	assert.Equal(t, []string{"web_search"}, config.Tools)
}

func TestNode_UnmarshalDefaults(t *testing.T) {
	t.Parallel()

	var node Node
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n1","kind":"tool"}`), &node))

	assert.Equal(t, NodeStatusIdle, node.Status, "missing status defaults to idle")

	config, isTool := node.Config.(ToolConfig)
	require.True(t, isTool, "missing config yields the kind's zero config")
	assert.Empty(t, config.Tool)
}

func TestNode_UnmarshalUnknownKind(t *testing.T) {
	t.Parallel()

	var node Node

	err := json.Unmarshal([]byte(`{"id":"n1","kind":"teleporter"}`), &node)
	assert.Error(t, err)
}

func TestNode_CloneIsDeep(t *testing.T) {
	t.Parallel()

	node := &Node{
		ID:     "n1",
		Kind:   NodeKindTool,
		Config: ToolConfig{Tool: "web_search", Params: map[string]string{"lang": "en"}},
	}

	clone := node.Clone()
	clone.Config.(ToolConfig).Params["lang"] = "fr"

	assert.Equal(t, "en", node.Config.(ToolConfig).Params["lang"])
}

func TestFlowDefinition_CloneIsDeep(t *testing.T) {
	t.Parallel()

	flow := &FlowDefinition{
		ID:   "f1",
		Name: "original",
		Nodes: []*Node{
			{ID: "n1", Kind: NodeKindInput, Config: InputConfig{Placeholder: "ask"}},
		},
		Edges: []*Edge{
			{ID: "e1", Source: "n1", Target: "n2"},
		},
	}

	clone := flow.Clone()
	clone.Nodes[0].ID = "mutated"
	clone.Edges[0].Target = "mutated"

	assert.Equal(t, "n1", flow.Nodes[0].ID)
	assert.Equal(t, "n2", flow.Edges[0].Target)
}

func TestFlowDefinition_Node(t *testing.T) {
	t.Parallel()

	flow := &FlowDefinition{
		Nodes: []*Node{{ID: "n1", Kind: NodeKindInput}},
	}

	assert.NotNil(t, flow.Node("n1"))
	assert.Nil(t, flow.Node("ghost"))
}
