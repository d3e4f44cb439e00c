// Package chat composes the graph model and execution client into a
// conversational surface: one user message becomes one run of the
// current flow.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmare/flowsync/pkg/execution"
	"github.com/kmare/flowsync/pkg/graph"
	"github.com/kmare/flowsync/pkg/models"
)

// ErrNoFlow is returned when Send is called on an empty canvas. Nothing
// is recorded and no execution is attempted.
var ErrNoFlow = errors.New("no flow to run: the canvas is empty")

const fallbackReply = "The flow completed without producing output."

// Orchestrator keeps the chat transcript and drives runs from user
// messages. The transcript is append-only except for Clear.
type Orchestrator struct {
	graph  *graph.Model
	client *execution.Client
	logger *slog.Logger

	mu       sync.Mutex
	messages []models.ChatMessage
}

func NewOrchestrator(model *graph.Model, client *execution.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		graph:  model,
		client: client,
		logger: logger,
	}
}

// Send runs the current flow against one user message.
//
// A Send while a run is in progress is a no-op; the UI is expected to
// have disabled the affordance already. An empty canvas produces a
// warning and ErrNoFlow without recording a message or touching the
// executor. Otherwise the user message is appended, the flow executes,
// and the reply (or a system error message) is appended to the
// transcript.
func (o *Orchestrator) Send(ctx context.Context, text string) error {
	if o.client.Running() {
		o.logger.Debug("ignoring message: a run is already in progress")

		return nil
	}

	if o.graph.NodeCount() == 0 {
		o.logger.Warn("no flow to run: the canvas is empty")

		return ErrNoFlow
	}

	o.append(models.ChatRoleUser, text)

	definition := o.graph.Definition("chat", "")

	err := o.client.ExecuteFlow(ctx, definition, text)
	if err != nil {
		o.append(models.ChatRoleSystem, "Run failed: "+err.Error())

		return err
	}

	reply, ok := o.graph.OutputText()
	if !ok {
		reply = fallbackReply
	}

	o.append(models.ChatRoleAssistant, reply)

	return nil
}

// Messages returns a copy of the transcript.
func (o *Orchestrator) Messages() []models.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()

	messages := make([]models.ChatMessage, len(o.messages))
	copy(messages, o.messages)

	return messages
}

// Clear empties the transcript.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.messages = nil
}

func (o *Orchestrator) append(role models.ChatRole, content string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.messages = append(o.messages, models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}
