package graph

import "github.com/kmare/flowsync/pkg/models"

// MaxHistoryEntries bounds the undo buffer. Once full, the oldest
// snapshot is evicted.
const MaxHistoryEntries = 20

// Snapshot is a deep copy of the graph taken immediately before a
// destructive mutation. Node configs are value types, so cloning the
// nodes is enough to make the snapshot immune to later edits.
type Snapshot struct {
	Nodes []*models.Node
	Edges []*models.Edge
}

// History is the bounded undo buffer. There is no redo.
type History struct {
	entries []Snapshot
}

func NewHistory() *History {
	return &History{}
}

// Push snapshots the given graph state, evicting the oldest entry when
// the buffer is full.
func (h *History) Push(nodes []*models.Node, edges []*models.Edge) {
	snapshot := Snapshot{
		Nodes: make([]*models.Node, 0, len(nodes)),
		Edges: make([]*models.Edge, 0, len(edges)),
	}

	for _, node := range nodes {
		snapshot.Nodes = append(snapshot.Nodes, node.Clone())
	}

	for _, edge := range edges {
		snapshot.Edges = append(snapshot.Edges, edge.Clone())
	}

	h.entries = append(h.entries, snapshot)

	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[len(h.entries)-MaxHistoryEntries:]
	}
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}

	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]

	return last, true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.entries)
}
