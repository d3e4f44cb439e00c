// Package graph owns the editor's node/edge state and enforces its
// structural invariants: endpoints exist, no directed cycles, no
// duplicate (source, target) pairs, and source-only/target-only kinds
// keep their connection rules. All mutations are synchronous and atomic
// under the model's lock; observers never see partial edge state.
package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/registry"
)

var (
	ErrUnknownKind  = errors.New("unknown node kind")
	ErrKindMismatch = errors.New("config kind does not match node kind")
	ErrInvalidFlow  = errors.New("flow definition violates graph invariants")
)

// Model is the live graph. It is safe for concurrent use; every method
// takes the model lock for its full duration.
type Model struct {
	mu       sync.Mutex
	registry *registry.Registry
	logger   *slog.Logger

	flowID  string
	nodes   []*models.Node
	edges   []*models.Edge
	history *History

	selected       string
	lastOutputNode string
}

func NewModel(reg *registry.Registry, logger *slog.Logger) *Model {
	return &Model{
		registry: reg,
		logger:   logger,
		history:  NewHistory(),
	}
}

// AddNode places a new node of the given kind with its default config and
// idle status. Adding a node alone cannot violate any invariant, so no
// history snapshot is taken.
func (m *Model) AddNode(kind models.NodeKind, position models.Position) (*models.Node, error) {
	descriptor, ok := m.registry.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	node := &models.Node{
		ID:       uuid.New().String(),
		Kind:     kind,
		Position: position,
		Config:   descriptor.NewConfig(),
		Status:   models.NodeStatusIdle,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = append(m.nodes, node)

	return node.Clone(), nil
}

// RemoveNode snapshots history, then removes the node and every edge
// touching it. Removing an unknown id is a no-op with no snapshot.
func (m *Model) RemoveNode(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index < 0 {
		return
	}

	m.history.Push(m.nodes, m.edges)

	m.nodes = append(m.nodes[:index], m.nodes[index+1:]...)

	kept := m.edges[:0]

	for _, edge := range m.edges {
		if edge.Source != id && edge.Target != id {
			kept = append(kept, edge)
		}
	}

	m.edges = kept

	if m.selected == id {
		m.selected = ""
	}

	if m.lastOutputNode == id {
		m.lastOutputNode = ""
	}
}

// UpdateNodeConfig replaces a node's configuration in place. Config edits
// are not undoable, so no history snapshot is taken. Updating an unknown
// node is a no-op.
func (m *Model) UpdateNodeConfig(id string, config models.NodeConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index < 0 {
		return nil
	}

	if config.Kind() != m.nodes[index].Kind {
		return fmt.Errorf("%w: node %s is %q, config is %q",
			ErrKindMismatch, id, m.nodes[index].Kind, config.Kind())
	}

	m.nodes[index].Config = config.Clone()

	return nil
}

// Connect adds an edge if the candidate passes validation. Acceptance is
// all-or-nothing; a rejected candidate leaves no partial state behind.
func (m *Model) Connect(candidate Candidate) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := CheckConnection(m.edges, m.kindIndex(), m.registry, candidate)
	if err != nil {
		m.logger.Debug("connection rejected",
			"source", candidate.Source, "target", candidate.Target, "reason", err)

		return false
	}

	m.edges = append(m.edges, &models.Edge{
		ID:           uuid.New().String(),
		Source:       candidate.Source,
		Target:       candidate.Target,
		SourceHandle: candidate.SourceHandle,
		TargetHandle: candidate.TargetHandle,
	})

	return true
}

// Clear snapshots history and empties the canvas.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history.Push(m.nodes, m.edges)

	m.nodes = nil
	m.edges = nil
	m.selected = ""
	m.lastOutputNode = ""
}

// Undo restores the most recent snapshot verbatim. It reports whether a
// snapshot was applied; on an empty history it is a no-op.
func (m *Model) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.history.Pop()
	if !ok {
		return false
	}

	m.nodes = snapshot.Nodes
	m.edges = snapshot.Edges

	if m.selected != "" && m.indexOf(m.selected) < 0 {
		m.selected = ""
	}

	if m.lastOutputNode != "" && m.indexOf(m.lastOutputNode) < 0 {
		m.lastOutputNode = ""
	}

	return true
}

// Select marks a node as selected. Selecting an unknown id clears the
// selection.
func (m *Model) Select(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" && m.indexOf(id) < 0 {
		id = ""
	}

	m.selected = id
}

// Selected returns the selected node id, or empty.
func (m *Model) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selected
}

// Node returns a copy of the node with the given id.
func (m *Model) Node(id string) (*models.Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index < 0 {
		return nil, false
	}

	return m.nodes[index].Clone(), true
}

// Nodes returns a deep copy of all nodes in insertion order.
func (m *Model) Nodes() []*models.Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	nodes := make([]*models.Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		nodes = append(nodes, node.Clone())
	}

	return nodes
}

// Edges returns a copy of all edges.
func (m *Model) Edges() []*models.Edge {
	m.mu.Lock()
	defer m.mu.Unlock()

	edges := make([]*models.Edge, 0, len(m.edges))
	for _, edge := range m.edges {
		edges = append(edges, edge.Clone())
	}

	return edges
}

// NodeCount returns the number of nodes on the canvas.
func (m *Model) NodeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.nodes)
}

// Load snapshots history and replaces the canvas with the given
// definition. The definition must satisfy every graph invariant: known
// kinds, existing endpoints, no duplicate (source, target) pairs and no
// cycles. Runtime state is reset to idle.
func (m *Model) Load(definition *models.FlowDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]bool, len(definition.Nodes))

	for _, node := range definition.Nodes {
		if _, ok := m.registry.Get(node.Kind); !ok {
			return fmt.Errorf("%w: node %s has unknown kind %q", ErrInvalidFlow, node.ID, node.Kind)
		}

		if ids[node.ID] {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalidFlow, node.ID)
		}

		ids[node.ID] = true
	}

	pairs := make(map[[2]string]bool, len(definition.Edges))

	for _, edge := range definition.Edges {
		if !ids[edge.Source] || !ids[edge.Target] {
			return fmt.Errorf("%w: edge %s references a missing node", ErrInvalidFlow, edge.ID)
		}

		pair := [2]string{edge.Source, edge.Target}
		if pairs[pair] {
			return fmt.Errorf("%w: duplicate edge %s -> %s", ErrInvalidFlow, edge.Source, edge.Target)
		}

		pairs[pair] = true
	}

	if hasCycle(definition.Nodes, definition.Edges) {
		return fmt.Errorf("%w: edge set contains a cycle", ErrInvalidFlow)
	}

	m.history.Push(m.nodes, m.edges)

	m.nodes = make([]*models.Node, 0, len(definition.Nodes))

	for _, node := range definition.Nodes {
		clone := node.Clone()
		clone.Status = models.NodeStatusIdle
		clone.Output = ""
		clone.Error = ""
		m.nodes = append(m.nodes, clone)
	}

	m.edges = make([]*models.Edge, 0, len(definition.Edges))
	for _, edge := range definition.Edges {
		m.edges = append(m.edges, edge.Clone())
	}

	m.flowID = definition.ID
	if m.flowID == "" {
		m.flowID = uuid.New().String()
	}

	m.selected = ""
	m.lastOutputNode = ""

	return nil
}

// Definition serializes the current graph into a flow definition. The
// translation is deterministic: identical graph state yields an identical
// definition apart from the timestamps. The flow id is stable across
// calls; it is taken from the loaded definition or minted once.
func (m *Model) Definition(name, description string) *models.FlowDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flowID == "" {
		m.flowID = uuid.New().String()
	}

	now := time.Now().UTC()

	definition := &models.FlowDefinition{
		ID:          m.flowID,
		Name:        name,
		Description: description,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
		Nodes:       make([]*models.Node, 0, len(m.nodes)),
		Edges:       make([]*models.Edge, 0, len(m.edges)),
	}

	for _, node := range m.nodes {
		definition.Nodes = append(definition.Nodes, node.Clone())
	}

	for _, edge := range m.edges {
		definition.Edges = append(definition.Edges, edge.Clone())
	}

	return definition
}

// Run-state mutators. These exist for the event reducer: node status
// transitions happen only in response to execution events, never from
// direct user edits.

// SetNodeStatus updates a node's execution status. Unknown ids are
// ignored. A failed node keeps its error status until the run state is
// reset; no later event may downgrade it.
func (m *Model) SetNodeStatus(id string, status models.NodeStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index < 0 {
		return
	}

	if m.nodes[index].Status == models.NodeStatusError {
		return
	}

	m.nodes[index].Status = status
}

// AppendNodeOutput appends streamed output text to a node and records it
// as the most recent output carrier.
func (m *Model) AppendNodeOutput(id, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index < 0 {
		return
	}

	m.nodes[index].Output += text
	m.lastOutputNode = id
}

// SetNodeError marks a node as failed with the given message.
func (m *Model) SetNodeError(id, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.indexOf(id)
	if index < 0 {
		return
	}

	m.nodes[index].Status = models.NodeStatusError
	m.nodes[index].Error = message
}

// ResetRunState clears stale per-node status, output and error from a
// previous run.
func (m *Model) ResetRunState() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, node := range m.nodes {
		node.Status = models.NodeStatusIdle
		node.Output = ""
		node.Error = ""
	}

	m.lastOutputNode = ""
}

// OutputText returns the text to surface as the run's answer: the output
// node's text when present, otherwise the most recently updated node that
// produced output.
func (m *Model) OutputText() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, node := range m.nodes {
		if node.Kind == models.NodeKindOutput && node.Output != "" {
			return node.Output, true
		}
	}

	if m.lastOutputNode != "" {
		if index := m.indexOf(m.lastOutputNode); index >= 0 && m.nodes[index].Output != "" {
			return m.nodes[index].Output, true
		}
	}

	return "", false
}

func (m *Model) indexOf(id string) int {
	for i, node := range m.nodes {
		if node.ID == id {
			return i
		}
	}

	return -1
}

func (m *Model) kindIndex() map[string]models.NodeKind {
	kinds := make(map[string]models.NodeKind, len(m.nodes))
	for _, node := range m.nodes {
		kinds[node.ID] = node.Kind
	}

	return kinds
}
