package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"yuuki.chat/models"
)

// DefaultYuukiSpaceURL is the public Yuuki Space generation endpoint.
const DefaultYuukiSpaceURL = "https://opceanai-yuuki-api.hf.space/generate"

// Fixed generation parameters for the open endpoint
const (
	spaceMaxNewTokens = 512
	spaceTemperature  = 0.7
)

// YuukiSpaceProvider handles the open Yuuki Space endpoint. The Space is an
// open platform: no credential is required and the whole history travels as
// one flattened prompt string.
type YuukiSpaceProvider struct {
	client *http.Client
}

// NewYuukiSpaceProvider creates a new Yuuki Space provider
func NewYuukiSpaceProvider() *YuukiSpaceProvider {
	return &YuukiSpaceProvider{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TranslateRequest converts a unified request to the Space's prompt format
func (y *YuukiSpaceProvider) TranslateRequest(ctx context.Context, req *UnifiedRequest, deployment *models.Deployment) (*ProviderRequest, error) {
	url := deployment.Endpoint.BaseURL
	if url == "" {
		url = DefaultYuukiSpaceURL
	}

	body := map[string]interface{}{
		"prompt":         FlattenMessages(req.Messages),
		"max_new_tokens": spaceMaxNewTokens,
		"temperature":    spaceTemperature,
		"model":          req.Model,
	}

	return &ProviderRequest{
		URL:    url,
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body:    body,
		Timeout: deployment.Endpoint.Timeout,
	}, nil
}

// Execute sends the request to the Space
func (y *YuukiSpaceProvider) Execute(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error) {
	return executeHTTP(ctx, y.client, req)
}

// TranslateResponse normalizes the Space's response into the uniform result.
// The Space is a free-text backend, so the extracted text goes through
// cutoff stripping.
func (y *YuukiSpaceProvider) TranslateResponse(ctx context.Context, resp *ProviderResponse, deployment *models.Deployment) (*Result, error) {
	content := StripCutoffs(ExtractText(resp.Body))
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
func (y *YuukiSpaceProvider) GetInfo() ProviderInfo {
	return ProviderInfo{
		Name:         "Yuuki Space",
		Version:      "1.0",
		RequiresAuth: false,
	}
}

// executeHTTP dispatches a translated request and captures the raw response.
// Shared by all adapters; per-request timeouts override the client default.
func executeHTTP(ctx context.Context, client *http.Client, req *ProviderRequest) (*ProviderResponse, error) {
	jsonBody, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	headers := make(map[string]string)
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &ProviderResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}
