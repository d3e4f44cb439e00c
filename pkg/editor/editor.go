// Package editor assembles the synchronization core into one explicit
// context object. The application root constructs an Editor once and
// injects it into consumers; there is no package-level shared state, so
// multiple independent editors can coexist (and tests need no global
// reset).
package editor

import (
	"log/slog"

	"github.com/kmare/flowsync/pkg/chat"
	"github.com/kmare/flowsync/pkg/execution"
	"github.com/kmare/flowsync/pkg/graph"
	"github.com/kmare/flowsync/pkg/registry"
)

type Editor struct {
	Registry *registry.Registry
	Graph    *graph.Model
	Client   *execution.Client
	Chat     *chat.Orchestrator
}

func New(reg *registry.Registry, transport execution.Transport, logger *slog.Logger) *Editor {
	model := graph.NewModel(reg, logger)
	client := execution.NewClient(transport, model, logger)

	return &Editor{
		Registry: reg,
		Graph:    model,
		Client:   client,
		Chat:     chat.NewOrchestrator(model, client, logger),
	}
}

// Close drops the execution channel.
func (e *Editor) Close() error {
	return e.Client.Close()
}
