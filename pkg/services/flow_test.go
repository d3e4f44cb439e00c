package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/persistence/file"
	"github.com/kmare/flowsync/pkg/registry"
)

func flowService(t *testing.T) *Flow {
	t.Helper()

	return NewFlow(file.NewStore(t.TempDir()), registry.Default())
}

func validDefinition() *models.FlowDefinition {
	return &models.FlowDefinition{
		Name: "support bot",
		Nodes: []*models.Node{
			{ID: "in", Kind: models.NodeKindInput, Config: models.InputConfig{}},
			{ID: "out", Kind: models.NodeKindOutput, Config: models.OutputConfig{}},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "in", Target: "out"},
		},
	}
}

func TestFlow_CreateAndGet(t *testing.T) {
	t.Parallel()

	service := flowService(t)
	ctx := context.Background()

	created, err := service.CreateFlow(ctx, validDefinition())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := service.GetFlow(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestFlow_CreateRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	service := flowService(t)
	ctx := context.Background()

	_, err := service.CreateFlow(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	nameless := validDefinition()
	nameless.Name = ""

	_, err = service.CreateFlow(ctx, nameless)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, IsValidationError(err))
}

func TestFlow_CreateRejectsInvalidGraph(t *testing.T) {
	t.Parallel()

	service := flowService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.FlowDefinition)
	}{
		{
			name: "edge to missing node",
			mutate: func(flow *models.FlowDefinition) {
				flow.Edges[0].Target = "ghost"
			},
		},
		{
			name: "duplicate edge pair",
			mutate: func(flow *models.FlowDefinition) {
				flow.Edges = append(flow.Edges, &models.Edge{ID: "e2", Source: "in", Target: "out"})
			},
		},
		{
			name: "unknown node kind",
			mutate: func(flow *models.FlowDefinition) {
				flow.Nodes[0].Kind = "teleporter"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flow := validDefinition()
			tt.mutate(flow)

			_, err := service.CreateFlow(ctx, flow)
			assert.ErrorIs(t, err, ErrInvalidFlow)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestFlow_UpdateBumpsVersion(t *testing.T) {
	t.Parallel()

	service := flowService(t)
	ctx := context.Background()

	created, err := service.CreateFlow(ctx, validDefinition())
	require.NoError(t, err)

	replacement := validDefinition()
	replacement.Name = "renamed"

	updated, err := service.UpdateFlow(ctx, created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestFlow_UpdateMissingFlow(t *testing.T) {
	t.Parallel()

	service := flowService(t)

	_, err := service.UpdateFlow(context.Background(), "ghost", validDefinition())
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestFlow_Delete(t *testing.T) {
	t.Parallel()

	service := flowService(t)
	ctx := context.Background()

	created, err := service.CreateFlow(ctx, validDefinition())
	require.NoError(t, err)

	require.NoError(t, service.DeleteFlow(ctx, created.ID))

	_, err = service.GetFlow(ctx, created.ID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestFlow_HealthCheck(t *testing.T) {
	t.Parallel()

	service := flowService(t)

	message, healthy := service.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, "Flow store is healthy", message)

	message, healthy = NewFlow(nil, registry.Default()).HealthCheck(context.Background())
	assert.False(t, healthy)
	assert.Contains(t, message, "not initialized")
}
