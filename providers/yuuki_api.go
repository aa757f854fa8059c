package providers

import (
	"context"
	"net/http"
	"time"

	"yuuki.chat/models"
)

// DefaultYuukiAPIBaseURL is the alternate OpenAI-compatible Yuuki endpoint.
const DefaultYuukiAPIBaseURL = "https://yuuki-api.vercel.app"

// YuukiAPIProvider handles the alternate Yuuki endpoint. It behaves like the
// credentialed inference path but targets a fixed base URL and always speaks
// the chat-completion message-array shape.
type YuukiAPIProvider struct {
	client *http.Client
}

// NewYuukiAPIProvider creates a new Yuuki API provider
func NewYuukiAPIProvider() *YuukiAPIProvider {
	return &YuukiAPIProvider{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TranslateRequest converts a unified request to the Yuuki API format
func (y *YuukiAPIProvider) TranslateRequest(ctx context.Context, req *UnifiedRequest, deployment *models.Deployment) (*ProviderRequest, error) {
	base := deployment.Endpoint.BaseURL
	if base == "" {
		base = DefaultYuukiAPIBaseURL
	}

	body := map[string]interface{}{
		"model":       req.Model,
		"messages":    req.Messages,
		"max_tokens":  hfMaxTokens,
		"temperature": hfTemperature,
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if deployment.Endpoint.Auth.Type == models.AuthBearer && deployment.Endpoint.Auth.BearerToken != "" {
		headers["Authorization"] = "Bearer " + deployment.Endpoint.Auth.BearerToken
	}

	return &ProviderRequest{
		URL:     base + "/v1/chat/completions",
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
		Timeout: deployment.Endpoint.Timeout,
	}, nil
}

// Execute sends the request to the Yuuki API
func (y *YuukiAPIProvider) Execute(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error) {
	return executeHTTP(ctx, y.client, req)
}

// TranslateResponse normalizes the Yuuki API response
func (y *YuukiAPIProvider) TranslateResponse(ctx context.Context, resp *ProviderResponse, deployment *models.Deployment) (*Result, error) {
	content := ExtractText(resp.Body)
	if content == "" {
		content = FallbackContent
	}
	return &Result{
		Content: content,
		ID:      responseID(resp.Body),
		Model:   deployment.ModelID,
	}, nil
}

// GetInfo returns provider information
func (y *YuukiAPIProvider) GetInfo() ProviderInfo {
	return ProviderInfo{
		Name:         "Yuuki API",
		Version:      "1.0",
		RequiresAuth: true,
	}
}
