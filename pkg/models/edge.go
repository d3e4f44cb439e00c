package models

// Edge is a directed connection between two nodes. SourceHandle names the
// output handle on multi-output nodes (a conditional exposes "true" and
// "false"); it is empty for single-output nodes.
type Edge struct {
	ID           string `json:"id"            validate:"required"`
	Source       string `json:"source"        validate:"required"`
	Target       string `json:"target"        validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	clone := *e

	return &clone
}
