package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"yuuki.chat/models"
)

// DefaultHuggingFaceBaseURL is the HF inference router model root.
const DefaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference/models"

// Generation parameters for the credentialed inference path
const (
	hfMaxTokens   = 1024
	hfTemperature = 0.7
	hfTopP        = 0.9
)

// HuggingFaceProvider handles the credentialed HF inference router. Targets
// differ in the request schema they accept, so the adapter supports both the
// chat-completion shape (structured message array) and the completion shape
// (flattened prompt string), selected per deployment.
type HuggingFaceProvider struct {
	client *http.Client
}

// NewHuggingFaceProvider creates a new HuggingFace provider
func NewHuggingFaceProvider() *HuggingFaceProvider {
	return &HuggingFaceProvider{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TranslateRequest converts a unified request to the router format. The
// model selector must already be resolved to a provider model ID on the
// deployment; requests carry a bearer authorization header built from the
// session credential.
func (h *HuggingFaceProvider) TranslateRequest(ctx context.Context, req *UnifiedRequest, deployment *models.Deployment) (*ProviderRequest, error) {
	modelID := deployment.ProviderModelID
	if modelID == "" {
		return nil, fmt.Errorf("deployment %s has no provider model ID", deployment.ID)
	}

	base := deployment.Endpoint.BaseURL
	if base == "" {
		base = DefaultHuggingFaceBaseURL
	}

	var url string
	var body map[string]interface{}
	if deployment.Endpoint.UseChatFormat {
		url = fmt.Sprintf("%s/%s/v1/chat/completions", base, modelID)
		body = map[string]interface{}{
			"model":       modelID,
			"messages":    req.Messages,
			"max_tokens":  hfMaxTokens,
			"temperature": hfTemperature,
			"top_p":       hfTopP,
		}
	} else {
		// Completion-style target: the raw inference task endpoint takes
		// a single flattened prompt
		url = fmt.Sprintf("%s/%s", base, modelID)
		body = map[string]interface{}{
			"inputs": FlattenMessages(req.Messages),
			"parameters": map[string]interface{}{
				"max_new_tokens": hfMaxTokens,
				"temperature":    hfTemperature,
				"top_p":          hfTopP,
			},
		}
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if deployment.Endpoint.Auth.Type == models.AuthBearer && deployment.Endpoint.Auth.BearerToken != "" {
		headers["Authorization"] = "Bearer " + deployment.Endpoint.Auth.BearerToken
	}
	for k, v := range deployment.Endpoint.CustomHeaders {
		headers[k] = v
	}

	return &ProviderRequest{
		URL:     url,
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
		Timeout: deployment.Endpoint.Timeout,
	}, nil
}

// Execute sends the request to the HF router
func (h *HuggingFaceProvider) Execute(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error) {
	return executeHTTP(ctx, h.client, req)
}

// TranslateResponse normalizes the router response. Chat-completion targets
// return structured content; completion targets are free text and go through
// cutoff stripping.
func (h *HuggingFaceProvider) TranslateResponse(ctx context.Context, resp *ProviderResponse, deployment *models.Deployment) (*Result, error) {
	content := ExtractText(resp.Body)
	if !deployment.Endpoint.UseChatFormat {
		content = StripCutoffs(content)
	}
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
func (h *HuggingFaceProvider) GetInfo() ProviderInfo {
	return ProviderInfo{
		Name:         "HuggingFace",
		Version:      "1.0",
		RequiresAuth: true,
	}
}
