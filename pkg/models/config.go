package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// NodeConfig is the per-kind configuration variant carried by a node. Each
// node kind has exactly one concrete config type; the serialization
// boundary switches exhaustively over the kind tag instead of inspecting
// dynamic map contents.
type NodeConfig interface {
	Kind() NodeKind
	Clone() NodeConfig
}

// InputConfig configures an input node.
type InputConfig struct {
	Placeholder string `json:"placeholder,omitempty"`
}

func (InputConfig) Kind() NodeKind { return NodeKindInput }

func (c InputConfig) Clone() NodeConfig { return c }

// OutputConfig configures an output node.
type OutputConfig struct {
	Format string `json:"format,omitempty"`
}

func (OutputConfig) Kind() NodeKind { return NodeKindOutput }

func (c OutputConfig) Clone() NodeConfig { return c }

// AgentConfig configures an LLM agent node.
type AgentConfig struct {
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  float64  `json:"temperature"`
	Tools        []string `json:"tools,omitempty"`
}

func (AgentConfig) Kind() NodeKind { return NodeKindAgent }

func (c AgentConfig) Clone() NodeConfig {
	c.Tools = slices.Clone(c.Tools)

	return c
}

// ToolConfig configures an external tool node.
type ToolConfig struct {
	Tool   string            `json:"tool"`
	Params map[string]string `json:"params,omitempty"`
}

func (ToolConfig) Kind() NodeKind { return NodeKindTool }

func (c ToolConfig) Clone() NodeConfig {
	c.Params = maps.Clone(c.Params)

	return c
}

// ConditionalConfig configures a branching node. The executor evaluates
// the expression and activates the "true" or "false" source handle.
type ConditionalConfig struct {
	Expression string `json:"expression"`
}

func (ConditionalConfig) Kind() NodeKind { return NodeKindConditional }

func (c ConditionalConfig) Clone() NodeConfig { return c }

// KnowledgeConfig configures a knowledge-base retrieval node. Sources are
// opaque references resolved by the backend.
type KnowledgeConfig struct {
	Sources []string `json:"sources,omitempty"`
	TopK    int      `json:"top_k,omitempty"`
}

func (KnowledgeConfig) Kind() NodeKind { return NodeKindKnowledge }

func (c KnowledgeConfig) Clone() NodeConfig {
	c.Sources = slices.Clone(c.Sources)

	return c
}

// DecodeConfig unmarshals a raw config object into the concrete variant
// for the given node kind. A nil raw payload yields the kind's zero
// config.
func DecodeConfig(kind NodeKind, raw json.RawMessage) (NodeConfig, error) {
	switch kind {
	case NodeKindInput:
		return decodeAs[InputConfig](kind, raw)
	case NodeKindOutput:
		return decodeAs[OutputConfig](kind, raw)
	case NodeKindAgent:
		return decodeAs[AgentConfig](kind, raw)
	case NodeKindTool:
		return decodeAs[ToolConfig](kind, raw)
	case NodeKindConditional:
		return decodeAs[ConditionalConfig](kind, raw)
	case NodeKindKnowledge:
		return decodeAs[KnowledgeConfig](kind, raw)
	default:
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
}

func decodeAs[T NodeConfig](kind NodeKind, raw json.RawMessage) (NodeConfig, error) {
	var config T

	if len(raw) > 0 {
		err := json.Unmarshal(raw, &config)
		if err != nil {
			return nil, fmt.Errorf("decode %s config: %w", kind, err)
		}
	}

	return config, nil
}
