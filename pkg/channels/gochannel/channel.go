// Package gochannel provides an in-process execution channel over
// watermill's GoChannel pub/sub, plus a small scripted executor behind
// it. It exists for local development and tests; no external executor is
// required.
package gochannel

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topics connecting the transport and the local executor.
const (
	RequestTopic = "flowsync.run.requests"
	EventTopic   = "flowsync.run.events"
)

const channelBuffer = 256

// NewChannel creates the shared GoChannel pub/sub. The same instance
// serves both sides of the channel.
func NewChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: channelBuffer,
			Persistent:          false,
		},
		logger,
	)
}

// Transport adapts the pub/sub pair into the execution.Transport shape:
// run requests go out on RequestTopic, run events come back on
// EventTopic.
type Transport struct {
	pubsub *gochannel.GoChannel

	mu     sync.Mutex
	inbox  chan []byte
	cancel context.CancelFunc
}

func NewTransport(pubsub *gochannel.GoChannel) *Transport {
	return &Transport{
		pubsub: pubsub,
	}
}

// Connect subscribes to the event topic. Connecting while connected is a
// no-op.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inbox != nil {
		return nil
	}

	// The subscription outlives the Connect call; it is torn down by
	// Close, not by the caller's context.
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	messages, err := t.pubsub.Subscribe(subCtx, EventTopic)
	if err != nil {
		cancel()

		return err
	}

	inbox := make(chan []byte, channelBuffer)
	t.inbox = inbox
	t.cancel = cancel

	go t.forward(messages, inbox)

	return nil
}

func (t *Transport) forward(messages <-chan *message.Message, inbox chan []byte) {
	defer func() {
		t.mu.Lock()
		if t.inbox == inbox {
			t.inbox = nil
			t.cancel = nil
		}
		t.mu.Unlock()

		close(inbox)
	}()

	for msg := range messages {
		inbox <- msg.Payload
		msg.Ack()
	}
}

// Send publishes one run request.
func (t *Transport) Send(_ context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)

	return t.pubsub.Publish(RequestTopic, msg)
}

// Receive returns the inbound event stream for the current connection.
func (t *Transport) Receive() <-chan []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.inbox
}

// Close tears down the subscription; the forwarder closes the inbound
// stream.
func (t *Transport) Close() error {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	return nil
}
