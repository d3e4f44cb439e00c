package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    Event
		ok      bool
	}{
		{
			name:    "node output with string data",
			payload: `{"type":"node_output","node_id":"n1","data":"hello"}`,
			want:    Event{Type: NodeOutput, NodeID: "n1", Data: "hello"},
			ok:      true,
		},
		{
			name:    "run scoped error",
			payload: `{"type":"error","message":"executor crashed"}`,
			want:    Event{Type: Error, Message: "executor crashed"},
			ok:      true,
		},
		{
			name:    "pong keepalive",
			payload: `{"type":"pong"}`,
			want:    Event{Type: Pong},
			ok:      true,
		},
		{
			name:    "unknown tag dropped",
			payload: `{"type":"node_paused","node_id":"n1"}`,
		},
		{
			name:    "missing tag dropped",
			payload: `{"node_id":"n1"}`,
		},
		{
			name:    "malformed json dropped",
			payload: `{"type":"node_start",`,
		},
		{
			name:    "non object dropped",
			payload: `"flow_complete"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, ok := Decode([]byte(tt.payload))
			require.Equal(t, tt.ok, ok)

			if ok {
				assert.Equal(t, tt.want, event)
			}
		})
	}
}

func TestEvent_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, Event{Type: FlowComplete}.Terminal())
	assert.True(t, Event{Type: Error}.Terminal())
	assert.False(t, Event{Type: NodeComplete}.Terminal())
	assert.False(t, Event{Type: Pong}.Terminal())
}

func TestEvent_Text(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", Event{Data: "plain"}.Text())
	assert.Empty(t, Event{}.Text())

	// Structured payloads are rendered as JSON rather than dropped.
	event, ok := Decode([]byte(`{"type":"node_output","data":{"chunk":"x"}}`))
	require.True(t, ok)
	assert.JSONEq(t, `{"chunk":"x"}`, event.Text())
}
