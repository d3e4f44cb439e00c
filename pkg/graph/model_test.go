package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmare/flowsync/pkg/models"
)

func TestModel_AddNode(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	node, err := model.AddNode(models.NodeKindAgent, models.Position{X: 10, Y: 20})
	require.NoError(t, err)

	assert.NotEmpty(t, node.ID)
	assert.Equal(t, models.NodeStatusIdle, node.Status)
	assert.Equal(t, models.Position{X: 10, Y: 20}, node.Position)

	config, ok := node.Config.(models.AgentConfig)
	require.True(t, ok, "agent node carries its default agent config")
	assert.NotEmpty(t, config.Model)

	_, err = model.AddNode("teleporter", models.Position{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestModel_RemoveNodeDropsTouchingEdges(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	input, _ := model.AddNode(models.NodeKindInput, models.Position{})
	agent, _ := model.AddNode(models.NodeKindAgent, models.Position{})
	output, _ := model.AddNode(models.NodeKindOutput, models.Position{})

	require.True(t, model.Connect(Candidate{Source: input.ID, Target: agent.ID}))
	require.True(t, model.Connect(Candidate{Source: agent.ID, Target: output.ID}))

	model.Select(agent.ID)
	model.RemoveNode(agent.ID)

	assert.Len(t, model.Nodes(), 2)
	assert.Empty(t, model.Edges(), "both edges touched the removed node")
	assert.Empty(t, model.Selected())

	// Unknown id is a silent no-op and takes no snapshot.
	before := model.Nodes()
	model.RemoveNode("ghost")
	assert.Equal(t, before, model.Nodes())
}

func TestModel_UpdateNodeConfig(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	agent, _ := model.AddNode(models.NodeKindAgent, models.Position{})

	err := model.UpdateNodeConfig(agent.ID, models.AgentConfig{
		Provider: "anthropic",
		Model:    "claude-sonnet-4-5",
	})
	require.NoError(t, err)

	node, ok := model.Node(agent.ID)
	require.True(t, ok)
	assert.Equal(t, "anthropic", node.Config.(models.AgentConfig).Provider)

	// Wrong config variant for the node's kind.
	err = model.UpdateNodeConfig(agent.ID, models.ToolConfig{Tool: "web_search"})
	assert.ErrorIs(t, err, ErrKindMismatch)

	// Unknown node is a no-op, not an error.
	assert.NoError(t, model.UpdateNodeConfig("ghost", models.AgentConfig{}))

	// Config edits are not undoable.
	assert.False(t, model.Undo())
}

func TestModel_LoadValidatesInvariants(t *testing.T) {
	t.Parallel()

	valid := &models.FlowDefinition{
		Name: "pipeline",
		Nodes: []*models.Node{
			{ID: "in", Kind: models.NodeKindInput, Config: models.InputConfig{}},
			{ID: "a", Kind: models.NodeKindAgent, Config: models.AgentConfig{Model: "m"}, Status: models.NodeStatusError, Error: "stale"},
			{ID: "out", Kind: models.NodeKindOutput, Config: models.OutputConfig{}},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "in", Target: "a"},
			{ID: "e2", Source: "a", Target: "out"},
		},
	}

	model := testModel(t)
	require.NoError(t, model.Load(valid))
	assert.Equal(t, 3, model.NodeCount())

	// Stale run state is reset on load.
	agent, ok := model.Node("a")
	require.True(t, ok)
	assert.Equal(t, models.NodeStatusIdle, agent.Status)
	assert.Empty(t, agent.Error)

	tests := []struct {
		name   string
		mutate func(def *models.FlowDefinition)
	}{
		{
			name: "edge references missing node",
			mutate: func(def *models.FlowDefinition) {
				def.Edges = append(def.Edges, &models.Edge{ID: "e3", Source: "ghost", Target: "a"})
			},
		},
		{
			name: "duplicate source target pair",
			mutate: func(def *models.FlowDefinition) {
				def.Edges = append(def.Edges, &models.Edge{ID: "e3", Source: "in", Target: "a", SourceHandle: "x"})
			},
		},
		{
			name: "cycle",
			mutate: func(def *models.FlowDefinition) {
				def.Edges = append(def.Edges, &models.Edge{ID: "e3", Source: "out", Target: "a"})
			},
		},
		{
			name: "unknown kind",
			mutate: func(def *models.FlowDefinition) {
				def.Nodes = append(def.Nodes, &models.Node{ID: "x", Kind: "teleporter"})
			},
		},
		{
			name: "duplicate node id",
			mutate: func(def *models.FlowDefinition) {
				def.Nodes = append(def.Nodes, &models.Node{ID: "a", Kind: models.NodeKindAgent})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := valid.Clone()
			tt.mutate(def)

			err := testModel(t).Load(def)
			assert.ErrorIs(t, err, ErrInvalidFlow)
		})
	}
}

func TestModel_RunStateAndOutputText(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	agent, _ := model.AddNode(models.NodeKindAgent, models.Position{})
	output, _ := model.AddNode(models.NodeKindOutput, models.Position{})

	_, ok := model.OutputText()
	assert.False(t, ok)

	model.SetNodeStatus(agent.ID, models.NodeStatusRunning)
	model.AppendNodeOutput(agent.ID, "partial ")
	model.AppendNodeOutput(agent.ID, "answer")

	// No output node has text yet: fall back to the last output carrier.
	text, ok := model.OutputText()
	require.True(t, ok)
	assert.Equal(t, "partial answer", text)

	// The designated output node wins once it has text.
	model.AppendNodeOutput(output.ID, "final")
	text, ok = model.OutputText()
	require.True(t, ok)
	assert.Equal(t, "final", text)

	model.ResetRunState()

	node, _ := model.Node(agent.ID)
	assert.Equal(t, models.NodeStatusIdle, node.Status)
	assert.Empty(t, node.Output)

	_, ok = model.OutputText()
	assert.False(t, ok)
}

func TestModel_DefinitionIsDetachedCopy(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	agent, _ := model.AddNode(models.NodeKindAgent, models.Position{})

	definition := model.Definition("flow", "desc")
	require.Len(t, definition.Nodes, 1)
	assert.Equal(t, "flow", definition.Name)
	assert.Equal(t, 1, definition.Version)

	// Mutating the exported definition must not leak into the model.
	definition.Nodes[0].Status = models.NodeStatusError

	node, _ := model.Node(agent.ID)
	assert.Equal(t, models.NodeStatusIdle, node.Status)
}

func TestModel_DefinitionIDIsStable(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	_, err := model.AddNode(models.NodeKindAgent, models.Position{})
	require.NoError(t, err)

	first := model.Definition("flow", "")
	second := model.Definition("flow", "")

	require.NotEmpty(t, first.ID)
	assert.Equal(t, first.ID, second.ID, "identical graph state yields the same flow id")

	// Loading a definition adopts its id.
	loaded := &models.FlowDefinition{
		ID:   "flow-42",
		Name: "loaded",
		Nodes: []*models.Node{
			{ID: "n1", Kind: models.NodeKindInput, Config: models.InputConfig{}},
		},
	}
	require.NoError(t, model.Load(loaded))

	assert.Equal(t, "flow-42", model.Definition("loaded", "").ID)
}
