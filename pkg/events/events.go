// Package events defines the run event stream the executor sends back
// over the execution channel, one JSON object per message.
package events

import (
	"encoding/json"
	"fmt"
)

// Type tags the inbound run events. The set is closed: anything else is
// dropped by Decode.
type Type string

const (
	FlowStart    Type = "flow_start"
	NodeStart    Type = "node_start"
	NodeOutput   Type = "node_output"
	NodeComplete Type = "node_complete"
	NodeSkipped  Type = "node_skipped"
	FlowComplete Type = "flow_complete"
	Error        Type = "error"
	Pong         Type = "pong"
)

// Event is the single inbound envelope. NodeID is set on node-scoped
// events; an error event without a NodeID is run-scoped.
type Event struct {
	Type      Type   `json:"type"`
	NodeID    string `json:"node_id,omitempty"`
	FlowID    string `json:"flow_id,omitempty"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Terminal reports whether the event ends a run.
func (e Event) Terminal() bool {
	return e.Type == FlowComplete || e.Type == Error
}

// Text coerces the event's data payload into streamable text. Non-string
// payloads are rendered through their JSON form so a malformed producer
// never breaks the stream.
func (e Event) Text() string {
	switch data := e.Data.(type) {
	case nil:
		return ""
	case string:
		return data
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}

		return string(raw)
	}
}

// Decode parses one transport message. Malformed JSON and unknown type
// tags yield ok=false; they must never propagate as errors.
func Decode(payload []byte) (Event, bool) {
	var event Event

	err := json.Unmarshal(payload, &event)
	if err != nil {
		return Event{}, false
	}

	switch event.Type {
	case FlowStart, NodeStart, NodeOutput, NodeComplete, NodeSkipped, FlowComplete, Error, Pong:
		return event, true
	default:
		return Event{}, false
	}
}
