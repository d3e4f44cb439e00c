package models

import "time"

// FlowDefinition is one saved pipeline: the full node/edge graph plus
// display metadata. It is the unit of persistence and the input to a run.
type FlowDefinition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=1"`
	Description string    `json:"description"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone deep-copies the definition, nodes and edges included.
func (f *FlowDefinition) Clone() *FlowDefinition {
	clone := *f

	clone.Nodes = make([]*Node, 0, len(f.Nodes))
	for _, node := range f.Nodes {
		clone.Nodes = append(clone.Nodes, node.Clone())
	}

	clone.Edges = make([]*Edge, 0, len(f.Edges))
	for _, edge := range f.Edges {
		clone.Edges = append(clone.Edges, edge.Clone())
	}

	return &clone
}

// Node returns the node with the given id, or nil.
func (f *FlowDefinition) Node(id string) *Node {
	for _, node := range f.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
