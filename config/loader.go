package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yuuki.chat/models"
)

// Config represents the complete backend configuration
type Config struct {
	Models      map[string]ModelConfig      `yaml:"models"`
	Deployments map[string]DeploymentConfig `yaml:"deployments"`
}

// ModelConfig from YAML
type ModelConfig struct {
	Name            string            `yaml:"name"`
	Family          string            `yaml:"family"`
	Version         string            `yaml:"version"`
	ProviderModelID string            `yaml:"provider_model_id"`
	Deployments     []string          `yaml:"deployments"`
	Tags            map[string]string `yaml:"tags"`
}

// DeploymentConfig from YAML
type DeploymentConfig struct {
	Source   string            `yaml:"source"`
	Endpoint EndpointConfig    `yaml:"endpoint"`
	Tags     map[string]string `yaml:"tags"`
}

// EndpointConfig from YAML
type EndpointConfig struct {
	BaseURL       string            `yaml:"base_url"`
	Timeout       string            `yaml:"timeout"`
	UseChatFormat bool              `yaml:"use_chat_format"`
	Auth          AuthConfig        `yaml:"auth"`
	CustomHeaders map[string]string `yaml:"custom_headers,omitempty"`
}

// AuthConfig from YAML
type AuthConfig struct {
	Type string `yaml:"type"`
}

// Default returns the compiled-in backend configuration used when no config
// directory is provided. The three deployments correspond one-to-one to the
// source tags the gateway dispatches on.
func Default() *Config {
	return &Config{
		Models: map[string]ModelConfig{
			"yuuki-best": {
				Name:            "Yuuki Best",
				Family:          "yuuki",
				Version:         "best",
				ProviderModelID: "YuuKi-OS/Yuuki-best",
				Deployments:     []string{"yuuki-space", "hf-router", "yuuki-api"},
			},
			"yuuki-3.7": {
				Name:            "Yuuki 3.7",
				Family:          "yuuki",
				Version:         "3.7",
				ProviderModelID: "YuuKi-OS/Yuuki-3.7",
				Deployments:     []string{"yuuki-space", "hf-router", "yuuki-api"},
			},
			"yuuki-v0.1": {
				Name:            "Yuuki v0.1",
				Family:          "yuuki",
				Version:         "0.1",
				ProviderModelID: "YuuKi-OS/Yuuki-v0.1",
				Deployments:     []string{"yuuki-space", "hf-router", "yuuki-api"},
			},
		},
		Deployments: map[string]DeploymentConfig{
			"yuuki-space": {
				Source: string(models.SourceYuukiSpace),
				Endpoint: EndpointConfig{
					BaseURL: "${YUUKI_SPACE_URL:-https://opceanai-yuuki-api.hf.space/generate}",
					Timeout: "30s",
					Auth:    AuthConfig{Type: "none"},
				},
			},
			"hf-router": {
				Source: string(models.SourceHuggingFace),
				Endpoint: EndpointConfig{
					BaseURL:       "${HF_ROUTER_URL:-https://router.huggingface.co/hf-inference/models}",
					Timeout:       "30s",
					UseChatFormat: true,
					Auth:          AuthConfig{Type: "bearer"},
				},
			},
			"yuuki-api": {
				Source: string(models.SourceYuukiAPI),
				Endpoint: EndpointConfig{
					BaseURL:       "${YUUKI_API_URL:-https://yuuki-api.vercel.app}",
					Timeout:       "30s",
					UseChatFormat: true,
					Auth:          AuthConfig{Type: "bearer"},
				},
			},
		},
	}
}

// LoadConfig loads configuration from YAML files in configDir, falling back
// to the compiled-in defaults when configDir is empty.
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		config := Default()
		expandEnvVars(config)
		return config, nil
	}

	config := &Config{
		Models:      make(map[string]ModelConfig),
		Deployments: make(map[string]DeploymentConfig),
	}

	// Load models.yaml
	modelsPath := filepath.Join(configDir, "models.yaml")
	if err := loadYAMLFile(modelsPath, &struct {
		Models map[string]ModelConfig `yaml:"models"`
	}{Models: config.Models}); err != nil {
		return nil, fmt.Errorf("failed to load models.yaml: %w", err)
	}

	// Load deployments.yaml
	deploymentsPath := filepath.Join(configDir, "deployments.yaml")
	if err := loadYAMLFile(deploymentsPath, &struct {
		Deployments map[string]DeploymentConfig `yaml:"deployments"`
	}{Deployments: config.Deployments}); err != nil {
		return nil, fmt.Errorf("failed to load deployments.yaml: %w", err)
	}

	// Expand environment variables
	expandEnvVars(config)

	return config, nil
}

// loadYAMLFile loads a YAML file into a structure
func loadYAMLFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// expandEnvVars expands environment variables in configuration
func expandEnvVars(config *Config) {
	for id, deployment := range config.Deployments {
		deployment.Endpoint.BaseURL = expandEnv(deployment.Endpoint.BaseURL)
		config.Deployments[id] = deployment
	}
}

// expandEnv expands environment variables in a string
func expandEnv(s string) string {
	if strings.Contains(s, "${") {
		return os.Expand(s, func(key string) string {
			// Handle default values like ${VAR:-default}
			parts := strings.SplitN(key, ":-", 2)
			value := os.Getenv(parts[0])
			if value == "" && len(parts) > 1 {
				return parts[1]
			}
			return value
		})
	}
	return s
}

// BuildRegistries creates the model and deployment registries from
// configuration.
func BuildRegistries(config *Config) (*models.ModelRegistry, *models.DeploymentRegistry, error) {
	modelRegistry := models.NewModelRegistry()
	deploymentRegistry := models.NewDeploymentRegistry()

	// Register models
	for id, modelConfig := range config.Models {
		model := &models.Model{
			ID:              id,
			Name:            modelConfig.Name,
			Family:          modelConfig.Family,
			Version:         modelConfig.Version,
			ProviderModelID: modelConfig.ProviderModelID,
			Deployments:     modelConfig.Deployments,
			Tags:            modelConfig.Tags,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		modelRegistry.Register(model)
	}

	// Register deployments
	for id, deploymentConfig := range config.Deployments {
		// Parse timeout
		timeout, _ := time.ParseDuration(deploymentConfig.Endpoint.Timeout)
		if timeout == 0 {
			timeout = 30 * time.Second
		}

		// Get auth type
		authType := models.AuthBearer
		if deploymentConfig.Endpoint.Auth.Type == "none" {
			authType = models.AuthNone
		}

		source := models.SourceTag(deploymentConfig.Source)
		switch source {
		case models.SourceYuukiSpace, models.SourceHuggingFace, models.SourceYuukiAPI:
		default:
			return nil, nil, fmt.Errorf("deployment %s: unknown source %q", id, deploymentConfig.Source)
		}

		deployment := &models.Deployment{
			ID:     id,
			Source: source,
			Endpoint: models.EndpointConfig{
				BaseURL:       deploymentConfig.Endpoint.BaseURL,
				Timeout:       timeout,
				UseChatFormat: deploymentConfig.Endpoint.UseChatFormat,
				Auth: models.AuthConfig{
					Type: authType,
				},
				CustomHeaders: deploymentConfig.Endpoint.CustomHeaders,
			},
			Tags:      deploymentConfig.Tags,
			CreatedAt: time.Now(),
		}

		deploymentRegistry.Register(deployment)
	}

	return modelRegistry, deploymentRegistry, nil
}
