package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmare/flowsync/pkg/events"
	"github.com/kmare/flowsync/pkg/graph"
	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/wire"
)

// State is the connection state of the execution channel.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
)

// Client owns the single persistent channel to the executor. It turns
// one flow plus one input into one run that settles on a terminal event
// (flow_complete or error), and feeds every inbound event through the
// reducer into graph state.
//
// The client does not serialize concurrent ExecuteFlow calls against each
// other; only one run is intended to be active at a time and the caller
// is responsible for enforcing that.
type Client struct {
	transport Transport
	graph     *graph.Model
	reducer   *Reducer
	logger    *slog.Logger
	tracer    trace.Tracer

	mu      sync.Mutex
	state   State
	running bool
	waiter  chan error
}

func NewClient(transport Transport, model *graph.Model, logger *slog.Logger) *Client {
	return &Client{
		transport: transport,
		graph:     model,
		reducer:   NewReducer(model, logger),
		logger:    logger,
		tracer:    otel.Tracer("flowsync/execution"),
		state:     StateDisconnected,
	}
}

// State returns the current channel state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Running reports whether a run is in progress.
func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Connect opens the execution channel. It is idempotent: when the channel
// is already open it returns immediately. On failure the state returns to
// disconnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()

	if c.state == StateOpen {
		c.mu.Unlock()

		return nil
	}

	c.state = StateConnecting
	c.mu.Unlock()

	err := c.transport.Connect(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()

		return fmt.Errorf("open execution channel: %w", err)
	}

	inbox := c.transport.Receive()

	c.mu.Lock()
	c.state = StateOpen
	c.mu.Unlock()

	go c.dispatch(inbox)

	c.logger.Info("execution channel open")

	return nil
}

// ExecuteFlow runs one flow against one user input and blocks until the
// run settles. It resets stale node state, ensures the channel is open,
// sends the single run request, then waits for flow_complete (nil) or an
// error event (RunError). A connection failure rejects before anything is
// sent. Cancelling the context abandons the wait and clears the
// in-progress flag.
func (c *Client) ExecuteFlow(ctx context.Context, definition *models.FlowDefinition, userInput string) error {
	ctx, span := c.tracer.Start(ctx, "execution.run", trace.WithAttributes(
		attribute.String("flow.id", definition.ID),
		attribute.String("flow.name", definition.Name),
		attribute.Int("flow.nodes", len(definition.Nodes)),
	))
	defer span.End()

	c.graph.ResetRunState()

	waiter := make(chan error, 1)

	c.mu.Lock()
	c.running = true
	c.waiter = waiter
	c.mu.Unlock()

	err := c.Connect(ctx)
	if err != nil {
		c.clearRun(waiter)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	request, err := wire.NewExecuteRequest(definition, userInput)
	if err != nil {
		c.clearRun(waiter)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("serialize flow: %w", err)
	}

	payload, err := request.Encode()
	if err != nil {
		c.clearRun(waiter)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("encode run request: %w", err)
	}

	err = c.transport.Send(ctx, payload)
	if err != nil {
		c.clearRun(waiter)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("send run request: %w", err)
	}

	select {
	case err := <-waiter:
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return err
	case <-ctx.Done():
		c.clearRun(waiter)
		span.SetStatus(codes.Error, ctx.Err().Error())

		return ctx.Err()
	}
}

// Close drops the execution channel. Any waiting run settles with
// ErrChannelClosed through the dispatch loop.
func (c *Client) Close() error {
	return c.transport.Close()
}

// dispatch consumes one connection's inbound stream until it closes,
// applying each decoded event and settling the waiting run on terminal
// events. Events arriving outside an active run are dropped: once a run
// has settled, trailing node events must not mutate node state.
func (c *Client) dispatch(inbox <-chan []byte) {
	for payload := range inbox {
		event, ok := events.Decode(payload)
		if !ok {
			c.logger.Debug("dropping unrecognized executor message")

			continue
		}

		if !c.Running() {
			c.logger.Debug("dropping event outside an active run", "type", event.Type)

			continue
		}

		c.reducer.Apply(event)

		if event.Terminal() {
			c.settle(event)
		}
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.running = false
	waiter := c.waiter
	c.waiter = nil
	c.mu.Unlock()

	if waiter != nil {
		waiter <- ErrChannelClosed
	}

	c.logger.Info("execution channel closed")
}

func (c *Client) settle(event events.Event) {
	c.mu.Lock()
	c.running = false
	waiter := c.waiter
	c.waiter = nil
	c.mu.Unlock()

	if waiter == nil {
		return
	}

	if event.Type == events.Error {
		waiter <- &RunError{NodeID: event.NodeID, Message: event.Message}

		return
	}

	waiter <- nil
}

// clearRun marks the run as not in progress if the given waiter is still
// the active one. A run settled by dispatch in the meantime keeps its
// result.
func (c *Client) clearRun(waiter chan error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.waiter == waiter {
		c.running = false
		c.waiter = nil
	}
}
