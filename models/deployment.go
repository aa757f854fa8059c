package models

import (
	"time"
)

// Deployment represents a specific backend endpoint that can serve a model
type Deployment struct {
	// Identification
	ID      string `json:"id" yaml:"id"`
	ModelID string `json:"model_id" yaml:"model_id"`

	// Source selects which adapter handles this deployment and how the
	// caller's credential is interpreted.
	Source SourceTag `json:"source" yaml:"source"`

	// ProviderModelID is the backend-specific model identifier, resolved
	// through the model registry before a request is dispatched.
	ProviderModelID string `json:"provider_model_id" yaml:"provider_model_id"`

	// Endpoint configuration
	Endpoint EndpointConfig `json:"endpoint" yaml:"endpoint"`

	// Metadata
	Tags      map[string]string `json:"tags" yaml:"tags"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
}

// SourceTag discriminates the backend family a request is routed to and how
// its credential is interpreted.
type SourceTag string

const (
	// SourceYuukiSpace is the open HuggingFace Space endpoint. No
	// credential required.
	SourceYuukiSpace SourceTag = "yuuki-space"

	// SourceHuggingFace is the credentialed HF inference router. Requires
	// a caller-supplied token.
	SourceHuggingFace SourceTag = "huggingface"

	// SourceYuukiAPI is the alternate OpenAI-compatible Yuuki endpoint.
	// Requires a caller-supplied token.
	SourceYuukiAPI SourceTag = "yuuki-api"

	// SourceDemo routes like SourceHuggingFace but with a server-managed
	// token. The caller never sees the credential.
	SourceDemo SourceTag = "demo"
)

// EndpointConfig contains backend-specific endpoint configuration
type EndpointConfig struct {
	// Connection
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UseChatFormat selects the request payload shape for credentialed
	// backends: a structured message array (chat-completion style) when
	// true, a flattened prompt string (completion style) when false.
	UseChatFormat bool `json:"use_chat_format" yaml:"use_chat_format"`

	// Authentication
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Headers
	CustomHeaders map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
}

// AuthType defines authentication methods
type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthNone   AuthType = "none"
)

// AuthConfig for endpoint authentication
type AuthConfig struct {
	Type AuthType `json:"type" yaml:"type"`

	// BearerToken is session-scoped: it is filled in per request from the
	// caller's credential (or the server demo token) and never serialized.
	BearerToken string `json:"-" yaml:"-"`
}

// DeploymentRegistry manages all deployments
type DeploymentRegistry struct {
	deployments map[string]*Deployment
}

// NewDeploymentRegistry creates a new deployment registry
func NewDeploymentRegistry() *DeploymentRegistry {
	return &DeploymentRegistry{
		deployments: make(map[string]*Deployment),
	}
}

// Register adds a deployment to the registry
func (r *DeploymentRegistry) Register(deployment *Deployment) {
	r.deployments[deployment.ID] = deployment
}

// Get retrieves a deployment by ID
func (r *DeploymentRegistry) Get(id string) (*Deployment, bool) {
	deployment, exists := r.deployments[id]
	return deployment, exists
}

// GetBySource returns the deployment registered for a source tag
func (r *DeploymentRegistry) GetBySource(source SourceTag) (*Deployment, bool) {
	for _, deployment := range r.deployments {
		if deployment.Source == source {
			return deployment, true
		}
	}
	return nil, false
}

// List returns all registered deployments
func (r *DeploymentRegistry) List() []*Deployment {
	deployments := make([]*Deployment, 0, len(r.deployments))
	for _, deployment := range r.deployments {
		deployments = append(deployments, deployment)
	}
	return deployments
}
