package main

import (
	"context"
	"fmt"

	"yuuki.chat/models"
	"yuuki.chat/providers"
)

// ChatGateway routes a chat turn to the deployment matching the client's
// token source. Credentials are per-request: the gateway clones the
// configured deployment and binds the session token to the clone, so
// nothing credential-shaped outlives the call.
type ChatGateway struct {
	models      *models.ModelRegistry
	deployments *models.DeploymentRegistry
	demoToken   string
}

// NewChatGateway wires the registries into a gateway
func NewChatGateway(modelReg *models.ModelRegistry, deployReg *models.DeploymentRegistry, demoToken string) *ChatGateway {
	return &ChatGateway{
		models:      modelReg,
		deployments: deployReg,
		demoToken:   demoToken,
	}
}

// Generate runs one chat completion against the deployment selected by
// source. The model selector must already be validated by the caller.
func (g *ChatGateway) Generate(ctx context.Context, messages []providers.Message, model, token string, source models.SourceTag) (*providers.Result, error) {
	deploySource := source

	switch source {
	case models.SourceYuukiSpace:
		// Open endpoint, no credential needed
	case models.SourceDemo:
		if g.demoToken == "" {
			return nil, &ConfigError{Msg: "Demo mode is not configured on this server"}
		}
		token = g.demoToken
		deploySource = models.SourceHuggingFace
	case models.SourceHuggingFace, models.SourceYuukiAPI:
		if token == "" {
			return nil, &AuthError{Msg: fmt.Sprintf("API token is required for %s", source)}
		}
	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("Unknown token source: %s", source)}
	}

	deployment, ok := g.deployments.GetBySource(deploySource)
	if !ok {
		return nil, &ConfigError{Msg: fmt.Sprintf("No deployment configured for source %s", deploySource)}
	}

	provider, err := providers.ForSource(deploySource)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	// Clone before binding request-scoped state
	bound := *deployment
	bound.ModelID = model
	bound.ProviderModelID = g.models.ProviderModelID(model)
	bound.Endpoint.Auth.BearerToken = token

	req := &providers.UnifiedRequest{
		Model:    model,
		Messages: messages,
	}

	return providers.Generate(ctx, provider, req, &bound)
}
