package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yuuki.chat/config"
	"yuuki.chat/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Len(t, cfg.Models, 3)
	assert.Len(t, cfg.Deployments, 3)

	// Env defaults expand when the variables are unset
	assert.Equal(t, "https://opceanai-yuuki-api.hf.space/generate", cfg.Deployments["yuuki-space"].Endpoint.BaseURL)
	assert.Equal(t, "https://router.huggingface.co/hf-inference/models", cfg.Deployments["hf-router"].Endpoint.BaseURL)
	assert.Equal(t, "https://yuuki-api.vercel.app", cfg.Deployments["yuuki-api"].Endpoint.BaseURL)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("YUUKI_SPACE_URL", "http://localhost:9999/generate")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/generate", cfg.Deployments["yuuki-space"].Endpoint.BaseURL)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()

	modelsYAML := `
models:
  yuuki-best:
    name: Yuuki Best
    family: yuuki
    version: best
    provider_model_id: YuuKi-OS/Yuuki-best
    deployments: [yuuki-space]
`
	deploymentsYAML := `
deployments:
  yuuki-space:
    source: yuuki-space
    endpoint:
      base_url: "${TEST_SPACE_URL:-http://fallback.test/generate}"
      timeout: 45s
      auth:
        type: none
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"), []byte(modelsYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deployments.yaml"), []byte(deploymentsYAML), 0644))

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	require.Contains(t, cfg.Models, "yuuki-best")
	assert.Equal(t, "YuuKi-OS/Yuuki-best", cfg.Models["yuuki-best"].ProviderModelID)
	assert.Equal(t, "http://fallback.test/generate", cfg.Deployments["yuuki-space"].Endpoint.BaseURL)
	assert.Equal(t, "45s", cfg.Deployments["yuuki-space"].Endpoint.Timeout)
}

func TestBuildRegistries(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	modelReg, deployReg, err := config.BuildRegistries(cfg)
	require.NoError(t, err)

	// Selector enumeration
	for _, id := range []string{"yuuki-best", "yuuki-3.7", "yuuki-v0.1"} {
		assert.True(t, modelReg.Valid(id), "expected %s to be valid", id)
	}
	assert.False(t, modelReg.Valid("gpt-4"))
	assert.False(t, modelReg.Valid(""))

	// Selector to backend identifier mapping
	assert.Equal(t, "YuuKi-OS/Yuuki-3.7", modelReg.ProviderModelID("yuuki-3.7"))
	assert.Equal(t, "YuuKi-OS/Yuuki-v0.1", modelReg.ProviderModelID("yuuki-v0.1"))

	// Unmapped selectors land on the default's identifier, idempotently
	first := modelReg.ProviderModelID("unmapped")
	second := modelReg.ProviderModelID("unmapped")
	assert.Equal(t, "YuuKi-OS/Yuuki-best", first)
	assert.Equal(t, first, second)

	// One deployment per source tag
	for _, source := range []models.SourceTag{
		models.SourceYuukiSpace,
		models.SourceHuggingFace,
		models.SourceYuukiAPI,
	} {
		_, ok := deployReg.GetBySource(source)
		assert.True(t, ok, "expected deployment for source %s", source)
	}

	space, _ := deployReg.GetBySource(models.SourceYuukiSpace)
	assert.Equal(t, models.AuthNone, space.Endpoint.Auth.Type)
	assert.False(t, space.Endpoint.UseChatFormat)

	router, _ := deployReg.GetBySource(models.SourceHuggingFace)
	assert.Equal(t, models.AuthBearer, router.Endpoint.Auth.Type)
	assert.True(t, router.Endpoint.UseChatFormat)
}

func TestBuildRegistriesRejectsUnknownSource(t *testing.T) {
	cfg := &config.Config{
		Deployments: map[string]config.DeploymentConfig{
			"bad": {Source: "carrier-pigeon"},
		},
	}

	_, _, err := config.BuildRegistries(cfg)
	assert.Error(t, err)
}
