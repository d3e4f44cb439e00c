package registry

import "github.com/kmare/flowsync/pkg/models"

// ConditionalHandleTrue and ConditionalHandleFalse are the named source
// handles exposed by a conditional node.
const (
	ConditionalHandleTrue  = "true"
	ConditionalHandleFalse = "false"
)

// Default returns a registry with the built-in node kinds.
func Default() *Registry {
	r := New()

	for _, descriptor := range builtinKinds() {
		// Built-ins have distinct kinds; Register cannot fail here.
		_ = r.Register(descriptor)
	}

	return r
}

func builtinKinds() []*Descriptor {
	return []*Descriptor{
		{
			Kind:       models.NodeKindInput,
			Label:      "Input",
			SourceOnly: true,
			NewConfig:  func() models.NodeConfig { return models.InputConfig{} },
			ConfigSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"placeholder": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
		{
			Kind:       models.NodeKindOutput,
			Label:      "Output",
			TargetOnly: true,
			NewConfig:  func() models.NodeConfig { return models.OutputConfig{} },
			ConfigSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"format": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
		{
			Kind:  models.NodeKindAgent,
			Label: "Agent",
			NewConfig: func() models.NodeConfig {
				return models.AgentConfig{
					Provider:    "openai",
					Model:       "gpt-4o-mini",
					Temperature: 0.7,
				}
			},
			ConfigSchema: map[string]any{
				"type":     "object",
				"required": []string{"provider", "model"},
				"properties": map[string]any{
					"provider":      map[string]any{"type": "string", "minLength": 1},
					"model":         map[string]any{"type": "string", "minLength": 1},
					"system_prompt": map[string]any{"type": "string"},
					"temperature":   map[string]any{"type": "number", "minimum": 0, "maximum": 2},
					"tools": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
		},
		{
			Kind:  models.NodeKindTool,
			Label: "Tool",
			NewConfig: func() models.NodeConfig {
				return models.ToolConfig{Tool: "web_search"}
			},
			ConfigSchema: map[string]any{
				"type":     "object",
				"required": []string{"tool"},
				"properties": map[string]any{
					"tool": map[string]any{"type": "string", "minLength": 1},
					"params": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
		},
		{
			Kind:          models.NodeKindConditional,
			Label:         "Conditional",
			SourceHandles: []string{ConditionalHandleTrue, ConditionalHandleFalse},
			NewConfig: func() models.NodeConfig {
				return models.ConditionalConfig{}
			},
			ConfigSchema: map[string]any{
				"type":     "object",
				"required": []string{"expression"},
				"properties": map[string]any{
					"expression": map[string]any{"type": "string", "minLength": 1},
				},
				"additionalProperties": false,
			},
		},
		{
			Kind:  models.NodeKindKnowledge,
			Label: "Knowledge Base",
			NewConfig: func() models.NodeConfig {
				return models.KnowledgeConfig{TopK: 4}
			},
			ConfigSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sources": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"top_k": map[string]any{"type": "integer", "minimum": 1},
				},
				"additionalProperties": false,
			},
		},
	}
}
