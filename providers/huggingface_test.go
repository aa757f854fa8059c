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

func hfDeployment(baseURL string, chatFormat bool) *models.Deployment {
	return &models.Deployment{
		ID:              "hf-router",
		ModelID:         "yuuki-best",
		Source:          models.SourceHuggingFace,
		ProviderModelID: "YuuKi-OS/Yuuki-best",
		Endpoint: models.EndpointConfig{
			BaseURL:       baseURL,
			UseChatFormat: chatFormat,
			Auth: models.AuthConfig{
				Type:        models.AuthBearer,
				BearerToken: "hf_testtoken",
			},
		},
	}
}

func TestHuggingFaceChatFormat(t *testing.T) {
	var gotPath, gotAuth string
	var captured map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "chatcmpl-abc123",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Structured answer. User: label kept"}},
			},
		})
	}))
	defer upstream.Close()

	provider := providers.NewHuggingFaceProvider()
	req := &providers.UnifiedRequest{
		Model:    "yuuki-best",
		Messages: []providers.Message{{Role: "user", Content: "Hello"}},
	}

	result, err := providers.Generate(context.Background(), provider, req, hfDeployment(upstream.URL, true))
	require.NoError(t, err)

	assert.Equal(t, "/YuuKi-OS/Yuuki-best/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer hf_testtoken", gotAuth)
	assert.Equal(t, "YuuKi-OS/Yuuki-best", captured["model"])
	assert.NotNil(t, captured["messages"])
	assert.Equal(t, float64(1024), captured["max_tokens"])

	// Chat-completion targets are structured: no cutoff stripping
	assert.Equal(t, "Structured answer. User: label kept", result.Content)
	assert.Equal(t, "chatcmpl-abc123", result.ID)
}

func TestHuggingFaceCompletionFormat(t *testing.T) {
	var gotPath string
	var captured map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode([]map[string]string{
			{"generated_text": "Free text answer User: hallucinated turn"},
		})
	}))
	defer upstream.Close()

	provider := providers.NewHuggingFaceProvider()
	req := &providers.UnifiedRequest{
		Model:    "yuuki-best",
		Messages: []providers.Message{{Role: "user", Content: "Hello"}},
	}

	result, err := providers.Generate(context.Background(), provider, req, hfDeployment(upstream.URL, false))
	require.NoError(t, err)

	assert.Equal(t, "/YuuKi-OS/Yuuki-best", gotPath)
	assert.Equal(t, "User: Hello\nAssistant:", captured["inputs"])

	// Completion targets are free text: cutoff stripping applies
	assert.Equal(t, "Free text answer", result.Content)
}

func TestHuggingFaceRequiresProviderModelID(t *testing.T) {
	deployment := hfDeployment("http://unused.test", true)
	deployment.ProviderModelID = ""

	provider := providers.NewHuggingFaceProvider()
	req := &providers.UnifiedRequest{
		Model:    "yuuki-best",
		Messages: []providers.Message{{Role: "user", Content: "Hello"}},
	}

	_, err := provider.TranslateRequest(context.Background(), req, deployment)
	assert.Error(t, err)
}

func TestYuukiAPIChatShape(t *testing.T) {
	var gotPath, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "From the alternate endpoint"}},
			},
		})
	}))
	defer upstream.Close()

	deployment := &models.Deployment{
		ID:      "yuuki-api",
		ModelID: "yuuki-3.7",
		Source:  models.SourceYuukiAPI,
		Endpoint: models.EndpointConfig{
			BaseURL: upstream.URL,
			Auth: models.AuthConfig{
				Type:        models.AuthBearer,
				BearerToken: "ya_token",
			},
		},
	}

	provider := providers.NewYuukiAPIProvider()
	req := &providers.UnifiedRequest{
		Model:    "yuuki-3.7",
		Messages: []providers.Message{{Role: "user", Content: "Hello"}},
	}

	result, err := providers.Generate(context.Background(), provider, req, deployment)
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer ya_token", gotAuth)
	assert.Equal(t, "From the alternate endpoint", result.Content)
	assert.Equal(t, "yuuki-3.7", result.Model)
}
