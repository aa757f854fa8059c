package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yuuki.chat/models"
	"yuuki.chat/providers"
)

func spaceDeployment(baseURL string) *models.Deployment {
	return &models.Deployment{
		ID:      "yuuki-space",
		ModelID: "yuuki-best",
		Source:  models.SourceYuukiSpace,
		Endpoint: models.EndpointConfig{
			BaseURL: baseURL,
			Auth:    models.AuthConfig{Type: models.AuthNone},
		},
	}
}

func TestYuukiSpaceGenerate(t *testing.T) {
	var captured map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"generated_text": "Hi! User: ignored tail"})
	}))
	defer upstream.Close()

	provider := providers.NewYuukiSpaceProvider()
	req := &providers.UnifiedRequest{
		Model: "yuuki-best",
		Messages: []providers.Message{
			{Role: "user", Content: "Hello"},
		},
	}

	result, err := providers.Generate(context.Background(), provider, req, spaceDeployment(upstream.URL))
	require.NoError(t, err)

	// The whole history travels as one flattened prompt
	assert.Equal(t, "User: Hello\nAssistant:", captured["prompt"])
	assert.Equal(t, float64(512), captured["max_new_tokens"])
	assert.Equal(t, "yuuki-best", captured["model"])

	// Hallucinated continuation is stripped
	assert.Equal(t, "Hi!", result.Content)
	assert.Equal(t, "yuuki-best", result.Model)
	assert.NotEmpty(t, result.ID)
}

func TestYuukiSpaceEmptyResponseFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`""`))
	}))
	defer upstream.Close()

	provider := providers.NewYuukiSpaceProvider()
	req := &providers.UnifiedRequest{
		Model:    "yuuki-best",
		Messages: []providers.Message{{Role: "user", Content: "Hello"}},
	}

	result, err := providers.Generate(context.Background(), provider, req, spaceDeployment(upstream.URL))
	require.NoError(t, err)
	assert.Equal(t, providers.FallbackContent, result.Content)
}

func TestYuukiSpaceUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is overloaded", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	provider := providers.NewYuukiSpaceProvider()
	req := &providers.UnifiedRequest{
		Model:    "yuuki-best",
		Messages: []providers.Message{{Role: "user", Content: "Hello"}},
	}

	_, err := providers.Generate(context.Background(), provider, req, spaceDeployment(upstream.URL))
	require.Error(t, err)

	var upstreamErr *providers.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Body, "overloaded")
}

func TestForSource(t *testing.T) {
	for _, source := range []models.SourceTag{
		models.SourceYuukiSpace,
		models.SourceHuggingFace,
		models.SourceYuukiAPI,
		models.SourceDemo,
	} {
		p, err := providers.ForSource(source)
		require.NoError(t, err, "source %s", source)
		require.NotNil(t, p)
	}

	_, err := providers.ForSource("telepathy")
	assert.Error(t, err)
}
