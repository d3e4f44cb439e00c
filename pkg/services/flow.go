package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kmare/flowsync/pkg/graph"
	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/persistence"
	"github.com/kmare/flowsync/pkg/registry"
)

// Flow provides CRUD over flow definitions with structural validation:
// a definition is rejected when it would violate the graph invariants the
// editor enforces (missing endpoints, duplicate edges, cycles).
type Flow struct {
	store     persistence.FlowStore
	registry  *registry.Registry
	validator *validator.Validate
}

func NewFlow(store persistence.FlowStore, reg *registry.Registry) *Flow {
	return &Flow{
		store:     store,
		registry:  reg,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the underlying store.
func (f *Flow) HealthCheck(ctx context.Context) (string, bool) {
	if f.store == nil {
		return "Flow store not initialized", false
	}

	err := f.store.HealthCheck(ctx)
	if err != nil {
		return "Flow store is unhealthy: " + err.Error(), false
	}

	return "Flow store is healthy", true
}

// ListFlows returns all stored flow definitions.
func (f *Flow) ListFlows(ctx context.Context) ([]*models.FlowDefinition, error) {
	return f.store.Flows(ctx)
}

// GetFlow returns one flow by id.
func (f *Flow) GetFlow(ctx context.Context, id string) (*models.FlowDefinition, error) {
	return f.store.FlowByID(ctx, id)
}

// CreateFlow validates and stores a new flow definition, assigning the
// id, version and timestamps.
func (f *Flow) CreateFlow(ctx context.Context, flow *models.FlowDefinition) (*models.FlowDefinition, error) {
	err := f.validate(flow)
	if err != nil {
		return nil, err
	}

	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	flow.CreatedAt = now
	flow.UpdatedAt = now
	flow.Version = 1

	err = f.store.SaveFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("save flow: %w", err)
	}

	return flow, nil
}

// UpdateFlow validates and replaces an existing flow, preserving the
// creation timestamp and bumping the version.
func (f *Flow) UpdateFlow(ctx context.Context, id string, flow *models.FlowDefinition) (*models.FlowDefinition, error) {
	existing, err := f.store.FlowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = f.validate(flow)
	if err != nil {
		return nil, err
	}

	flow.ID = id
	flow.CreatedAt = existing.CreatedAt
	flow.UpdatedAt = time.Now().UTC()
	flow.Version = existing.Version + 1

	err = f.store.SaveFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("save flow: %w", err)
	}

	return flow, nil
}

// DeleteFlow removes a flow by id.
func (f *Flow) DeleteFlow(ctx context.Context, id string) error {
	return f.store.DeleteFlow(ctx, id)
}

// validate runs struct validation and the structural graph checks by
// loading the definition into a scratch model.
func (f *Flow) validate(flow *models.FlowDefinition) error {
	if flow == nil {
		return fmt.Errorf("%w: flow is nil", ErrInvalidRequest)
	}

	err := f.validator.Struct(flow)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	scratch := graph.NewModel(f.registry, discardLogger())

	err = scratch.Load(flow)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFlow, err.Error())
	}

	return nil
}
