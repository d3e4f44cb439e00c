package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmare/flowsync/pkg/models"
)

func fullDefinition() *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:   "flow-1",
		Name: "support bot",
		Nodes: []*models.Node{
			{ID: "in", Kind: models.NodeKindInput, Config: models.InputConfig{Placeholder: "Ask me"}},
			{ID: "kb", Kind: models.NodeKindKnowledge, Config: models.KnowledgeConfig{Sources: []string{"doc-1"}, TopK: 3}},
			{ID: "agent", Kind: models.NodeKindAgent, Config: models.AgentConfig{
				Provider:     "openai",
				Model:        "gpt-4o-mini",
				SystemPrompt: "be helpful",
				Temperature:  0.2,
				Tools:        []string{"web_search"},
			}},
			{ID: "cond", Kind: models.NodeKindConditional, Config: models.ConditionalConfig{Expression: "refund"}},
			{ID: "tool", Kind: models.NodeKindTool, Config: models.ToolConfig{Tool: "web_search", Params: map[string]string{"lang": "en"}}},
			{ID: "out", Kind: models.NodeKindOutput, Config: models.OutputConfig{Format: "text"}},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "in", Target: "kb"},
			{ID: "e2", Source: "kb", Target: "agent"},
			{ID: "e3", Source: "agent", Target: "cond"},
			{ID: "e4", Source: "cond", Target: "tool", SourceHandle: "true"},
			{ID: "e5", Source: "cond", Target: "out", SourceHandle: "false"},
		},
	}
}

func TestFromDefinition(t *testing.T) {
	t.Parallel()

	flow, err := FromDefinition(fullDefinition())
	require.NoError(t, err)

	require.Len(t, flow.Nodes, 6)
	require.Len(t, flow.Edges, 5)

	byID := make(map[string]Node, len(flow.Nodes))
	for _, node := range flow.Nodes {
		byID[node.ID] = node
	}

	agent := byID["agent"]
	assert.Equal(t, "agent", agent.Type)
	require.NotNil(t, agent.Config.Agent)
	assert.Equal(t, "openai", agent.Config.Agent.Provider)
	assert.Nil(t, agent.Config.Tool)

	tool := byID["tool"]
	assert.Equal(t, "tool", tool.Type)
	require.NotNil(t, tool.Config.Tool)
	assert.Equal(t, "web_search", tool.Config.Tool.Tool)

	assert.Equal(t, "true", flow.Edges[3].SourceHandle)
}

func TestFromDefinition_UnconfiguredNode(t *testing.T) {
	t.Parallel()

	_, err := FromDefinition(&models.FlowDefinition{
		Nodes: []*models.Node{{ID: "n1", Kind: models.NodeKindAgent}},
	})
	assert.Error(t, err)
}

func TestExecuteRequest_EncodeIsStable(t *testing.T) {
	t.Parallel()

	first, err := NewExecuteRequest(fullDefinition(), "hi")
	require.NoError(t, err)

	second, err := NewExecuteRequest(fullDefinition(), "hi")
	require.NoError(t, err)

	firstBytes, err := first.Encode()
	require.NoError(t, err)

	secondBytes, err := second.Encode()
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes, "identical graph state must yield byte-identical payloads")
}

func TestExecuteRequest_WireShape(t *testing.T) {
	t.Parallel()

	request, err := NewExecuteRequest(fullDefinition(), "where is my refund")
	require.NoError(t, err)

	payload, err := request.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "execute", decoded["action"])
	assert.Equal(t, "where is my refund", decoded["user_input"])

	flow, ok := decoded["flow"].(map[string]any)
	require.True(t, ok)

	nodes, ok := flow["nodes"].([]any)
	require.True(t, ok)

	// The agent node's flat config is nested under its capability key.
	agent := nodes[2].(map[string]any)
	config := agent["config"].(map[string]any)
	require.Contains(t, config, "agent")
	assert.Equal(t, "be helpful", config["agent"].(map[string]any)["system_prompt"])
}
