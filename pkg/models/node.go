// Package models defines the core domain models for the flow editor:
// nodes, edges, flow definitions and chat messages.
package models

import (
	"encoding/json"
	"fmt"
)

// NodeKind identifies which kind of processing node an editor node is.
type NodeKind string

const (
	NodeKindInput       NodeKind = "input"       // Entry point, receives the user input
	NodeKindOutput      NodeKind = "output"      // Terminal node, carries the final answer
	NodeKindAgent       NodeKind = "agent"       // LLM-backed agent node
	NodeKindTool        NodeKind = "tool"        // External tool invocation (search, etc.)
	NodeKindConditional NodeKind = "conditional" // Branches on an expression, "true"/"false" handles
	NodeKindKnowledge   NodeKind = "knowledge"   // Knowledge-base retrieval node
)

// NodeStatus defines the execution states a node moves through during a run.
type NodeStatus string

const (
	NodeStatusIdle NodeStatus = "idle"
	// NodeStatusPending is reserved for editor-side queueing; the run
	// event stream never produces it.
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusError     NodeStatus = "error"
)

// Position is a node's location on the editor canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is a single typed node on the canvas. Status, Output and Error are
// runtime state: they are only ever written by the event reducer during a
// run, never by user edits.
type Node struct {
	ID       string     `json:"id"       validate:"required"`
	Kind     NodeKind   `json:"kind"     validate:"required"`
	Position Position   `json:"position"`
	Config   NodeConfig `json:"config"`
	Status   NodeStatus `json:"status"`
	Output   string     `json:"output,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Clone returns a deep copy of the node. Config values are cloned so a
// snapshot cannot be mutated through the original.
func (n *Node) Clone() *Node {
	clone := *n
	if n.Config != nil {
		clone.Config = n.Config.Clone()
	}

	return &clone
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Kind     NodeKind        `json:"kind"`
	Position Position        `json:"position"`
	Config   json.RawMessage `json:"config,omitempty"`
	Status   NodeStatus      `json:"status"`
	Output   string          `json:"output,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// MarshalJSON flattens the config union into a plain JSON object. The
// node's kind tag is authoritative; the config carries no tag of its own.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.ID,
		Kind:     n.Kind,
		Position: n.Position,
		Status:   n.Status,
		Output:   n.Output,
		Error:    n.Error,
	}

	if n.Config != nil {
		raw, err := json.Marshal(n.Config)
		if err != nil {
			return nil, fmt.Errorf("marshal %s config: %w", n.Kind, err)
		}

		out.Config = raw
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the config into the concrete variant selected by
// the node's kind tag.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON

	err := json.Unmarshal(data, &in)
	if err != nil {
		return err
	}

	n.ID = in.ID
	n.Kind = in.Kind
	n.Position = in.Position
	n.Status = in.Status
	n.Output = in.Output
	n.Error = in.Error

	if in.Status == "" {
		n.Status = NodeStatusIdle
	}

	config, err := DecodeConfig(in.Kind, in.Config)
	if err != nil {
		return err
	}

	n.Config = config

	return nil
}
