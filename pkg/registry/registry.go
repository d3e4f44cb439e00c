// Package registry holds the catalog of node kinds the editor can place
// on the canvas: their connection rules, named handles, default configs
// and config schemas.
package registry

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kmare/flowsync/pkg/models"
)

// Descriptor describes one node kind. SourceOnly kinds accept no inbound
// edges; TargetOnly kinds accept no outbound edges. SourceHandles lists
// the named output handles for multi-output kinds and is empty for kinds
// with a single anonymous output.
type Descriptor struct {
	Kind          models.NodeKind
	Label         string
	SourceOnly    bool
	TargetOnly    bool
	SourceHandles []string
	NewConfig     func() models.NodeConfig
	ConfigSchema  map[string]any
}

// Registry maps node kinds to their descriptors.
type Registry struct {
	kinds map[models.NodeKind]*Descriptor
}

func New() *Registry {
	return &Registry{
		kinds: make(map[models.NodeKind]*Descriptor),
	}
}

// Register adds a descriptor. Registering the same kind twice is an error
// so plugins cannot silently shadow built-ins.
func (r *Registry) Register(descriptor *Descriptor) error {
	if descriptor.Kind == "" {
		return fmt.Errorf("descriptor has no kind")
	}

	if _, exists := r.kinds[descriptor.Kind]; exists {
		return fmt.Errorf("node kind %q already registered", descriptor.Kind)
	}

	r.kinds[descriptor.Kind] = descriptor

	return nil
}

// Get returns the descriptor for a kind.
func (r *Registry) Get(kind models.NodeKind) (*Descriptor, bool) {
	descriptor, ok := r.kinds[kind]

	return descriptor, ok
}

// Kinds returns all registered kinds.
func (r *Registry) Kinds() []models.NodeKind {
	kinds := make([]models.NodeKind, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}

	return kinds
}

// ValidateConfig checks a raw config object against the kind's JSON
// schema. Kinds without a schema accept anything.
func (r *Registry) ValidateConfig(kind models.NodeKind, config map[string]any) error {
	descriptor, ok := r.kinds[kind]
	if !ok {
		return fmt.Errorf("unknown node kind %q", kind)
	}

	if descriptor.ConfigSchema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(descriptor.ConfigSchema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("config schema validation for %q: %w", kind, err)
	}

	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			if details != "" {
				details += "; "
			}

			details += desc.String()
		}

		return fmt.Errorf("invalid %q config: %s", kind, details)
	}

	return nil
}
