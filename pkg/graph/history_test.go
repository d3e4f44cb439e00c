package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmare/flowsync/pkg/models"
)

func TestHistory_PushPop(t *testing.T) {
	t.Parallel()

	history := NewHistory()

	_, ok := history.Pop()
	assert.False(t, ok, "empty history pops nothing")

	nodes := []*models.Node{{ID: "n1", Kind: models.NodeKindAgent, Config: models.AgentConfig{Model: "m"}}}
	edges := []*models.Edge{{ID: "e1", Source: "n1", Target: "n2"}}

	history.Push(nodes, edges)
	require.Equal(t, 1, history.Len())

	// Mutating the live graph must not change the snapshot.
	nodes[0].Status = models.NodeStatusError
	edges[0].Target = "changed"

	snapshot, ok := history.Pop()
	require.True(t, ok)
	assert.Equal(t, models.NodeStatusIdle, snapshot.Nodes[0].Status)
	assert.Equal(t, "n2", snapshot.Edges[0].Target)
	assert.Equal(t, 0, history.Len())
}

func TestHistory_EvictsOldestBeyondBound(t *testing.T) {
	t.Parallel()

	history := NewHistory()

	for i := 0; i < MaxHistoryEntries+1; i++ {
		history.Push([]*models.Node{{ID: fmt.Sprintf("n%d", i)}}, nil)
	}

	assert.Equal(t, MaxHistoryEntries, history.Len())

	// Pop everything: the oldest snapshot (n0) must be gone, the second
	// oldest (n1) must be the last one out.
	var last Snapshot

	for {
		snapshot, ok := history.Pop()
		if !ok {
			break
		}

		last = snapshot
	}

	require.Len(t, last.Nodes, 1)
	assert.Equal(t, "n1", last.Nodes[0].ID)
}

func TestModel_UndoRestoresEachStep(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	input, err := model.AddNode(models.NodeKindInput, models.Position{})
	require.NoError(t, err)
	agent, err := model.AddNode(models.NodeKindAgent, models.Position{X: 100})
	require.NoError(t, err)
	require.True(t, model.Connect(Candidate{Source: input.ID, Target: agent.ID}))

	model.RemoveNode(agent.ID)
	require.Len(t, model.Nodes(), 1)
	require.Empty(t, model.Edges())

	model.Clear()
	require.Empty(t, model.Nodes())

	// Undo the clear, then the removal.
	require.True(t, model.Undo())
	assert.Len(t, model.Nodes(), 1)

	require.True(t, model.Undo())
	assert.Len(t, model.Nodes(), 2)
	assert.Len(t, model.Edges(), 1)

	assert.False(t, model.Undo(), "history exhausted")
}

func TestModel_UndoClearsDanglingSelection(t *testing.T) {
	t.Parallel()

	model := testModel(t)

	_, err := model.AddNode(models.NodeKindInput, models.Position{})
	require.NoError(t, err)

	model.Clear()

	node, err := model.AddNode(models.NodeKindAgent, models.Position{})
	require.NoError(t, err)
	model.Select(node.ID)
	require.Equal(t, node.ID, model.Selected())

	// Undoing the clear replaces the graph with a snapshot that does not
	// contain the selected node.
	require.True(t, model.Undo())
	assert.Empty(t, model.Selected())
}
