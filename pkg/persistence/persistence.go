// Package persistence abstracts storage of flow definitions. The editor
// core treats the store as an opaque CRUD collaborator.
package persistence

import (
	"context"
	"errors"

	"github.com/kmare/flowsync/pkg/models"
)

// ErrFlowNotFound is returned when a flow id does not exist in the store.
var ErrFlowNotFound = errors.New("flow not found")

// FlowStore is the black-box persistence contract: list, get, save,
// delete by id. No caching or conflict resolution is layered on top.
type FlowStore interface {
	Flows(ctx context.Context) ([]*models.FlowDefinition, error)
	FlowByID(ctx context.Context, id string) (*models.FlowDefinition, error)
	SaveFlow(ctx context.Context, flow *models.FlowDefinition) error
	DeleteFlow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
