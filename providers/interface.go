package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"yuuki.chat/models"
)

// Provider interface for all generation backends
type Provider interface {
	// Translate request to provider format
	TranslateRequest(ctx context.Context, req *UnifiedRequest, deployment *models.Deployment) (*ProviderRequest, error)

	// Execute request
	Execute(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// Translate response to the uniform result
	TranslateResponse(ctx context.Context, resp *ProviderResponse, deployment *models.Deployment) (*Result, error)

	// Get provider info
	GetInfo() ProviderInfo
}

// UnifiedRequest is the standard request format
type UnifiedRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the normalized outcome of a generation call
type Result struct {
	Content string `json:"content"`
	ID      string `json:"id"`
	Model   string `json:"model"`
}

// ProviderRequest is the request to send to the provider
type ProviderRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    interface{}
	Timeout time.Duration
}

// ProviderResponse is the raw response from the provider. Body is kept as
// bytes because upstream error bodies are not always JSON.
type ProviderResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// ProviderInfo contains provider metadata
type ProviderInfo struct {
	Name         string
	Version      string
	RequiresAuth bool
}

// maxErrorBody caps how much upstream body is carried in an UpstreamError.
const maxErrorBody = 200

// UpstreamError reports a non-success response from a backend
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error (%d): %s", e.Provider, e.Status, e.Body)
}

// NewUpstreamError builds an UpstreamError with the diagnostic body truncated
func NewUpstreamError(provider string, status int, body []byte) *UpstreamError {
	diag := string(body)
	if len(diag) > maxErrorBody {
		diag = diag[:maxErrorBody]
	}
	return &UpstreamError{Provider: provider, Status: status, Body: diag}
}

// Generate runs the full translate/execute/translate cycle against one
// deployment and returns the normalized result. A non-success upstream
// status yields an *UpstreamError; the adapter does not retry.
func Generate(ctx context.Context, p Provider, req *UnifiedRequest, deployment *models.Deployment) (*Result, error) {
	providerReq, err := p.TranslateRequest(ctx, req, deployment)
	if err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}

	resp, err := p.Execute(ctx, providerReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= 300 {
		return nil, NewUpstreamError(p.GetInfo().Name, resp.StatusCode, resp.Body)
	}

	return p.TranslateResponse(ctx, resp, deployment)
}

// ForSource returns the adapter handling a source tag. The set is closed:
// adding a backend means adding a case here.
func ForSource(source models.SourceTag) (Provider, error) {
	switch source {
	case models.SourceYuukiSpace:
		return NewYuukiSpaceProvider(), nil
	case models.SourceHuggingFace, models.SourceDemo:
		return NewHuggingFaceProvider(), nil
	case models.SourceYuukiAPI:
		return NewYuukiAPIProvider(), nil
	default:
		return nil, fmt.Errorf("unknown source tag: %q", source)
	}
}
