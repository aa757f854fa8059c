package models

import (
	"time"
)

// DefaultModelID is the selector used when a request omits the model, and the
// deployment target that every valid-but-unmapped selector falls back to.
const DefaultModelID = "yuuki-best"

// Model represents a user-selectable model served by one or more deployments
type Model struct {
	// Identification
	ID      string `json:"id" yaml:"id"`           // e.g., "yuuki-best"
	Name    string `json:"name" yaml:"name"`       // Display name
	Family  string `json:"family" yaml:"family"`   // Model family: yuuki
	Version string `json:"version" yaml:"version"` // Model version

	// ProviderModelID is the backend-specific identifier for this model,
	// e.g. the HuggingFace repo path "YuuKi-OS/Yuuki-best".
	ProviderModelID string `json:"provider_model_id" yaml:"provider_model_id"`

	// Deployments
	Deployments []string `json:"deployments" yaml:"deployments"` // List of deployment IDs

	// Metadata
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
	Tags      map[string]string `json:"tags" yaml:"tags"`
}

// ModelRegistry manages all available models
type ModelRegistry struct {
	models map[string]*Model
}

// NewModelRegistry creates a new model registry
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		models: make(map[string]*Model),
	}
}

// Register adds a model to the registry
func (r *ModelRegistry) Register(model *Model) {
	r.models[model.ID] = model
}

// Get retrieves a model by ID
func (r *ModelRegistry) Get(id string) (*Model, bool) {
	model, exists := r.models[id]
	return model, exists
}

// Valid reports whether id is one of the enumerated model selectors
func (r *ModelRegistry) Valid(id string) bool {
	_, exists := r.models[id]
	return exists
}

// List returns all registered models
func (r *ModelRegistry) List() []*Model {
	models := make([]*Model, 0, len(r.models))
	for _, model := range r.models {
		models = append(models, model)
	}
	return models
}

// ProviderModelID maps a selector to its backend-specific identifier.
// A selector without a mapping resolves to the default model's identifier,
// so repeated calls with the same selector always land on the same backend.
func (r *ModelRegistry) ProviderModelID(selector string) string {
	if m, ok := r.models[selector]; ok && m.ProviderModelID != "" {
		return m.ProviderModelID
	}
	if m, ok := r.models[DefaultModelID]; ok {
		return m.ProviderModelID
	}
	return ""
}
